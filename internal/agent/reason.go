package agent

const (
	reasonFinished    = "task finished"
	reasonMaxSteps    = "max steps reached"
	reasonInterrupted = "interrupted"
	reasonLLMFailures = "llm error"
)

func humanizeReason(reason string) string {
	switch reason {
	case reasonFinished:
		return "model explicitly finished the task"
	case reasonMaxSteps:
		return "step limit reached"
	case reasonInterrupted:
		return "execution was interrupted (signal or cancelled context)"
	case reasonLLMFailures:
		return "LLM client failed repeatedly"
	default:
		return reason
	}
}

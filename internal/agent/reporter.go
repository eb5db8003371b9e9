package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nbenliogludev/go-job-search-agent/internal/llm"
	"github.com/nbenliogludev/go-job-search-agent/internal/logging"
)

const summaryTimeout = 30 * time.Second

// traceEntry is one model decision as it appears in the report.
type traceEntry struct {
	step     int
	url      string
	decision llm.DecisionOutput
}

func (e traceEntry) String() string {
	a := e.decision.Action
	line := fmt.Sprintf("STEP %d | URL=%s | PHASE=%s | ACTION=%s", e.step, e.url,
		strings.ToUpper(e.decision.CurrentPhase), describeAction(a))
	if e.decision.Observation != "" {
		line += " | OBS=" + e.decision.Observation
	}
	return line
}

func describeAction(a llm.Action) string {
	var sb strings.Builder
	sb.WriteString(string(a.Type))
	if a.TargetID != 0 {
		fmt.Fprintf(&sb, "[%d]", a.TargetID)
	}
	if a.URL != "" {
		sb.WriteString(" " + a.URL)
	}
	if a.Text != "" {
		fmt.Fprintf(&sb, " %q", a.Text)
	}
	if a.IsDestructive {
		sb.WriteString(" [DESTRUCTIVE]")
	}
	return sb.String()
}

// Reporter prints decisions as they happen and the execution report at the
// end of a run.
type Reporter struct {
	llm   llm.Client
	task  string
	trace []traceEntry
}

func NewReporter(llmClient llm.Client, task string) *Reporter {
	return &Reporter{llm: llmClient, task: task}
}

func (r *Reporter) LogDecision(step int, url string, d *llm.DecisionOutput) {
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("🧠 PHASE:       %s\n", strings.ToUpper(d.CurrentPhase))
	fmt.Printf("👀 OBSERVATION: %s\n", d.Observation)
	fmt.Printf("🤖 THOUGHT:     %s\n", d.Thought)
	fmt.Printf("⚡ ACTION:      %s\n", describeAction(d.Action))
	fmt.Println(strings.Repeat("-", 40))

	r.trace = append(r.trace, traceEntry{step: step, url: url, decision: *d})
}

func (r *Reporter) StepError(err error) {
	logging.Warn(fmt.Sprintf("Step error: %v", err))
}

// finalURL is the page of the last decision, or "" before the first one.
func (r *Reporter) finalURL() string {
	if len(r.trace) == 0 {
		return ""
	}
	return r.trace[len(r.trace)-1].url
}

func (r *Reporter) finalAction() llm.Action {
	if len(r.trace) == 0 {
		return llm.Action{}
	}
	return r.trace[len(r.trace)-1].decision.Action
}

// Report prints the execution report and returns the model's summary of the
// run, or "" when it could not be generated.
func (r *Reporter) Report(ctx context.Context, duration time.Duration, reason string, saved int, mem *StepMemory) string {
	logging.Step("EXECUTION REPORT")
	fmt.Printf("Task: %s\nDuration: %s\nExit reason: %s\nSaved listings: %d\n",
		r.task, duration, humanizeReason(reason), saved)
	if mem.LoopTriggered() {
		fmt.Println("Loop guard triggered: yes")
	}

	fmt.Println("\n--- STEP TRACE ---")
	for _, e := range r.trace {
		fmt.Println(e)
	}

	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	summary, err := r.llm.SummarizeRun(ctx, llm.SummaryInput{
		Task:        r.task,
		ExitReason:  humanizeReason(reason),
		FinalURL:    r.finalURL(),
		FinalAction: r.finalAction(),
		Duration:    duration.String(),
		Steps:       mem.FullHistory(),
		Saved:       saved,
	})

	fmt.Println("\n--- SUMMARY ---")
	if err != nil {
		logging.Debug(fmt.Sprintf("summary failed: %v", err))
		fmt.Println("(failed to generate summary)")
		return ""
	}
	fmt.Println(summary)
	return summary
}

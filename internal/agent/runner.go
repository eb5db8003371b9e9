package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nbenliogludev/go-job-search-agent/internal/retry"
)

var (
	ErrInterrupted  = errors.New("execution interrupted")
	ErrMaxSteps     = errors.New("max steps reached")
	ErrSnapshotFail = errors.New("snapshot error")
	ErrLLMFail      = errors.New("llm error")
)

// maxLLMFailures consecutive non-rate-limit LLM errors end the run.
const maxLLMFailures = 3

type Runner struct {
	agent    *Agent
	task     string
	maxSteps int
	mem      *StepMemory
	prevSnap *PageSnapshotWrapper
	reporter *Reporter
}

func NewRunner(a *Agent) *Runner {
	task := a.opts.Task
	if a.opts.StartURL != "" {
		task = BuildTaskWithEnvironment(task, a.opts.StartURL)
	}

	mem := NewStepMemory(10, 3)
	if a.saved > 0 {
		mem.AddSystemNote(fmt.Sprintf(
			"SAVED: %d listing(s) already written to %s by an earlier attempt. Do NOT save them again; finish if the task is done.",
			a.saved, a.saver.Path()))
	}

	return &Runner{
		agent:    a,
		task:     task,
		maxSteps: a.opts.MaxSteps,
		mem:      mem,
		reporter: NewReporter(a.llm, a.opts.Task),
	}
}

func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if url := r.agent.opts.StartURL; url != "" {
		if err := r.agent.browser.Navigate(ctx, url); err != nil {
			return nil, fmt.Errorf("could not navigate to %s: %w", url, err)
		}
	}

	llmFailures := 0
	for step := 1; step <= r.maxSteps; step++ {
		if ctx.Err() != nil {
			return r.finish(ctx, start, step-1, reasonInterrupted), fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
		}

		finished, err := r.executeStep(ctx, step)
		if err != nil {
			r.reporter.StepError(err)
			// the caller decides whether to run again
			if errors.Is(err, ErrLLMFail) && retry.IsRateLimited(err) {
				return nil, err
			}
			if errors.Is(err, ErrLLMFail) {
				llmFailures++
				if llmFailures >= maxLLMFailures {
					return r.finish(ctx, start, step, reasonLLMFailures), err
				}
			}
		} else {
			llmFailures = 0
		}

		if finished {
			return r.finish(ctx, start, step, reasonFinished), nil
		}

		if step < r.maxSteps {
			if err := retry.Sleep(ctx, r.agent.opts.StepDelay); err != nil {
				return r.finish(ctx, start, step, reasonInterrupted), fmt.Errorf("%w: %w", ErrInterrupted, err)
			}
		}
	}

	return r.finish(ctx, start, r.maxSteps, reasonMaxSteps), ErrMaxSteps
}

func (r *Runner) finish(ctx context.Context, start time.Time, steps int, reason string) *Result {
	duration := time.Since(start).Truncate(time.Millisecond)
	summary := r.reporter.Report(context.WithoutCancel(ctx), duration, reason, r.agent.saved, r.mem)

	return &Result{
		ExitReason: humanizeReason(reason),
		FinalURL:   r.reporter.finalURL(),
		Steps:      steps,
		Saved:      r.agent.saved,
		LoopGuard:  r.mem.LoopTriggered(),
		OutputFile: r.agent.saver.Path(),
		Summary:    summary,
		Duration:   duration,
	}
}

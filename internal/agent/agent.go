package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nbenliogludev/go-job-search-agent/internal/browser"
	"github.com/nbenliogludev/go-job-search-agent/internal/llm"
)

// Saver stores the listings the model asks to keep.
type Saver interface {
	Save(ctx context.Context, sourceURL, text string) error
	Path() string
}

type Options struct {
	Task      string
	StartURL  string
	MaxSteps  int
	StepDelay time.Duration

	// AutoApprove runs destructive actions without asking.
	AutoApprove bool
	// Confirm asks the user about a destructive action. Defaults to a
	// prompt on /dev/tty.
	Confirm func(llm.Action) bool
}

// Agent is not safe for concurrent use. The number of saved listings is kept
// across Run calls, so a run repeated after a rate limit knows what the
// earlier attempts already wrote.
type Agent struct {
	browser browser.Engine
	llm     llm.Client
	saver   Saver
	opts    Options

	saved int
}

func NewAgent(b browser.Engine, c llm.Client, s Saver, opts Options) *Agent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 25
	}
	if opts.Confirm == nil {
		opts.Confirm = confirmDestructiveAction
	}
	return &Agent{browser: b, llm: c, saver: s, opts: opts}
}

// Result describes one finished agent run.
type Result struct {
	ExitReason string
	FinalURL   string
	Steps      int
	Saved      int
	OutputFile string
	Summary    string
	Duration   time.Duration
	// LoopGuard is set when the loop guard suppressed at least one action.
	LoopGuard bool
}

func (r *Result) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "exit reason: %s\n", r.ExitReason)
	fmt.Fprintf(&sb, "steps: %d, duration: %s\n", r.Steps, r.Duration)
	fmt.Fprintf(&sb, "saved listings: %d (%s)\n", r.Saved, r.OutputFile)
	if r.LoopGuard {
		sb.WriteString("loop guard triggered: yes\n")
	}
	if r.FinalURL != "" {
		fmt.Fprintf(&sb, "final url: %s\n", r.FinalURL)
	}
	if r.Summary != "" {
		sb.WriteString("\n" + r.Summary + "\n")
	}
	return sb.String()
}

// Run performs one complete browsing session for the configured task.
// Every call starts from a fresh step memory.
func (a *Agent) Run(ctx context.Context) (*Result, error) {
	return NewRunner(a).Run(ctx)
}

package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/nbenliogludev/go-job-search-agent/internal/llm"
)

type PageSnapshotWrapper struct {
	Tree string
	URL  string
}

func (r *Runner) executeStep(ctx context.Context, step int) (bool, error) {
	fmt.Printf("\n--- STEP %d ---\n", step)

	snap, err := r.agent.browser.Snapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrSnapshotFail, err)
	}

	if r.prevSnap != nil && snap.Tree == r.prevSnap.Tree && snap.URL == r.prevSnap.URL {
		r.mem.AddSystemNote("SYSTEM ALERT: Last action had NO VISIBLE EFFECT.")
	}

	fmt.Printf("URL: %s\nTitle: %s\n", snap.URL, snap.Title)

	decision, err := r.agent.llm.DecideAction(ctx, llm.DecisionInput{
		Task:             r.task,
		DOMTree:          snap.Tree,
		CurrentURL:       snap.URL,
		History:          r.mem.HistoryString(),
		ScreenshotBase64: snap.ScreenshotBase64,
	})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrLLMFail, err)
	}

	r.reporter.LogDecision(step, snap.URL, decision)

	if blocked, reason := r.mem.ShouldBlock(snap.URL, decision.Action); blocked {
		fmt.Printf("⛔ LOOP GUARD: %s\n", reason)
		r.mem.AddSystemNote(reason)
		_ = r.agent.browser.Scroll(ctx, 300)
		r.mem.MarkLoopTriggered()
		return false, nil
	}

	if decision.Action.Type == llm.ActionFinish {
		return true, nil
	}

	if err := r.executeAction(ctx, decision.Action, snap.URL); err != nil {
		r.mem.AddSystemNote(fmt.Sprintf("SYSTEM ERROR: %v", err))
	} else {
		r.mem.Add(step, snap.URL, decision.Action)
		r.mem.AddSystemNote(fmt.Sprintf(
			"STATE UPDATE: %s | %s",
			strings.ToUpper(decision.CurrentPhase),
			decision.Observation,
		))
	}

	r.prevSnap = &PageSnapshotWrapper{
		Tree: snap.Tree,
		URL:  snap.URL,
	}

	return false, nil
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nbenliogludev/go-job-search-agent/internal/browser"
	"github.com/nbenliogludev/go-job-search-agent/internal/llm"
)

type fakeBrowser struct {
	mu        sync.Mutex
	url       string
	tick      int
	navigated []string
	clicks    []int
	typed     []string
	scrolls   int
	staticDOM bool
	snapErr   error
}

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.url = url
	b.navigated = append(b.navigated, url)
	return nil
}

func (b *fakeBrowser) Snapshot(context.Context) (*browser.PageSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snapErr != nil {
		return nil, b.snapErr
	}
	b.tick++
	tree := "[1] <a label=\"Product Manager\" kind=\"link\">"
	if !b.staticDOM {
		tree += fmt.Sprintf("\nstep %d", b.tick)
	}
	return &browser.PageSnapshot{URL: b.url, Title: "Web3 Jobs", Tree: tree}, nil
}

func (b *fakeBrowser) Click(_ context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clicks = append(b.clicks, id)
	return nil
}

func (b *fakeBrowser) Type(_ context.Context, id int, text string, submit bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.typed = append(b.typed, fmt.Sprintf("%d:%s:%v", id, text, submit))
	return nil
}

func (b *fakeBrowser) Scroll(context.Context, int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scrolls++
	return nil
}

func (b *fakeBrowser) Close() error { return nil }

// scriptedLLM replays decisions (or errors) in order and finishes once the
// script runs out.
type scriptedLLM struct {
	mu        sync.Mutex
	steps     []scriptStep
	calls     int
	summaries int
	histories []string
}

type scriptStep struct {
	action llm.Action
	err    error
}

func (c *scriptedLLM) DecideAction(_ context.Context, in llm.DecisionInput) (*llm.DecisionOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histories = append(c.histories, in.History)

	i := c.calls
	c.calls++
	if i >= len(c.steps) {
		return &llm.DecisionOutput{CurrentPhase: "verification", Action: llm.Action{Type: llm.ActionFinish}}, nil
	}
	if c.steps[i].err != nil {
		return nil, c.steps[i].err
	}
	return &llm.DecisionOutput{CurrentPhase: "search", Observation: "ok", Action: c.steps[i].action}, nil
}

func (c *scriptedLLM) SummarizeRun(context.Context, llm.SummaryInput) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries++
	return "summary", nil
}

type memSaver struct {
	entries []string
	err     error
}

func (s *memSaver) Save(_ context.Context, sourceURL, text string) error {
	if s.err != nil {
		return s.err
	}
	if text == "" {
		return errors.New("empty")
	}
	s.entries = append(s.entries, sourceURL+"|"+text)
	return nil
}

func (s *memSaver) Path() string { return "job_listings.txt" }

func do(a llm.Action) scriptStep { return scriptStep{action: a} }

func fail(err error) scriptStep { return scriptStep{err: err} }

// Package browser drives a real Chromium instance for the agent, either
// over the DevTools protocol (chromedp) or through Playwright.
package browser

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"
)

const (
	EngineChromedp   = "chromedp"
	EnginePlaywright = "playwright"
)

// Engine is the set of page operations the agent needs. Element ids refer
// to the data-ai-id tags assigned by the most recent Snapshot.
type Engine interface {
	Navigate(ctx context.Context, url string) error
	Snapshot(ctx context.Context) (*PageSnapshot, error)
	Click(ctx context.Context, id int) error
	Type(ctx context.Context, id int, text string, submit bool) error
	Scroll(ctx context.Context, dy int) error
	Close() error
}

type PageSnapshot struct {
	URL              string
	Title            string
	Tree             string
	ScreenshotBase64 string
}

type Options struct {
	Engine      string
	Headless    bool
	UserDataDir string
	Timeout     time.Duration
}

// New starts the engine selected by opts.Engine.
func New(opts Options) (Engine, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	switch opts.Engine {
	case EngineChromedp, "":
		return NewChromeEngine(opts)
	case EnginePlaywright:
		return NewPlaywrightEngine(opts)
	default:
		return nil, fmt.Errorf("unknown browser engine %q", opts.Engine)
	}
}

func newSnapshot(url, title string, tree any, screenshot []byte) (*PageSnapshot, error) {
	treeStr, ok := tree.(string)
	if !ok {
		return nil, fmt.Errorf("expected string from js, got %T", tree)
	}

	snap := &PageSnapshot{
		URL:   url,
		Title: title,
		Tree:  treeStr,
	}
	if len(screenshot) > 0 {
		snap.ScreenshotBase64 = base64.StdEncoding.EncodeToString(screenshot)
	}
	return snap, nil
}

package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"

	"github.com/nbenliogludev/go-job-search-agent/internal/logging"
)

// PlaywrightEngine drives a persistent Chromium context through Playwright.
// Playwright calls are not context-aware; ctx is only checked up front.
type PlaywrightEngine struct {
	pw      *playwright.Playwright
	context playwright.BrowserContext
	page    playwright.Page
}

func NewPlaywrightEngine(opts Options) (*PlaywrightEngine, error) {
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return nil, fmt.Errorf("install pw failed: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start pw failed: %w", err)
	}

	userDataDir := opts.UserDataDir
	if userDataDir == "" {
		wd, _ := os.Getwd()
		userDataDir = filepath.Join(wd, ".playwright_data")
	}

	bctx, err := pw.Chromium.LaunchPersistentContext(userDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Viewport: &playwright.Size{Width: 1280, Height: 900},
		Args: []string{
			"--disable-blink-features=AutomationControlled",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium failed: %w", err)
	}

	var pg playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		pg = pages[0]
	} else {
		pg, err = bctx.NewPage()
		if err != nil {
			_ = bctx.Close()
			_ = pw.Stop()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	timeoutMs := float64(opts.Timeout.Milliseconds())
	pg.SetDefaultTimeout(timeoutMs)
	pg.SetDefaultNavigationTimeout(timeoutMs)

	return &PlaywrightEngine{
		pw:      pw,
		context: bctx,
		page:    pg,
	}, nil
}

func (e *PlaywrightEngine) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := e.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (e *PlaywrightEngine) Snapshot(ctx context.Context) (*PageSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// best effort: busy pages never reach network idle
	_ = e.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	})

	tree, err := e.page.Evaluate(snapshotScript)
	if err != nil {
		return nil, fmt.Errorf("js evaluation failed: %w", err)
	}

	title, _ := e.page.Title()

	shot, err := e.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(false),
		Type:     playwright.ScreenshotTypeJpeg,
		Quality:  playwright.Int(70),
	})
	if err != nil {
		logging.Warn(fmt.Sprintf("failed to take screenshot: %v", err))
	}

	return newSnapshot(e.page.URL(), title, tree, shot)
}

func (e *PlaywrightEngine) Click(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := e.page.Locator(Selector(id)).First()
	if err := loc.ScrollIntoViewIfNeeded(); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return loc.Click()
}

func (e *PlaywrightEngine) Type(ctx context.Context, id int, text string, submit bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := e.page.Locator(Selector(id)).First()
	if err := loc.Fill(text); err != nil {
		return err
	}
	if submit {
		return loc.Press("Enter")
	}
	return nil
}

func (e *PlaywrightEngine) Scroll(ctx context.Context, dy int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.page.Evaluate(scrollScript(dy))
	return err
}

func (e *PlaywrightEngine) Close() error {
	var firstErr error
	if e.context != nil {
		firstErr = e.context.Close()
	}
	if e.pw != nil {
		if err := e.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

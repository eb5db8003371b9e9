package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/nbenliogludev/go-job-search-agent/internal/logging"
)

// ChromeEngine talks to Chromium over the DevTools protocol.
type ChromeEngine struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration
}

func NewChromeEngine(opts Options) (*ChromeEngine, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 900),
	)
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// first Run launches the browser
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome failed: %w", err)
	}

	return &ChromeEngine{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		timeout:     opts.Timeout,
	}, nil
}

// run executes actions on the tab, bounded by the engine timeout and by ctx.
func (e *ChromeEngine) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(e.ctx, e.timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (e *ChromeEngine) Navigate(ctx context.Context, url string) error {
	if err := e.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (e *ChromeEngine) Snapshot(ctx context.Context) (*PageSnapshot, error) {
	var (
		tree       string
		url, title string
		shot       []byte
	)

	err := e.run(ctx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate("("+snapshotScript+")()", &tree),
		chromedp.Location(&url),
		chromedp.Title(&title),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatJpeg).
				WithQuality(70).
				Do(ctx)
			if err != nil {
				// the tree alone is still usable
				logging.Warn(fmt.Sprintf("failed to take screenshot: %v", err))
				return nil
			}
			shot = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("js evaluation failed: %w", err)
	}

	return newSnapshot(url, title, tree, shot)
}

func (e *ChromeEngine) Click(ctx context.Context, id int) error {
	return e.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		backendID, err := e.backendNodeID(ctx, id)
		if err != nil {
			return err
		}
		return callOn(ctx, backendID, clickScript)
	}))
}

func (e *ChromeEngine) Type(ctx context.Context, id int, text string, submit bool) error {
	return e.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		backendID, err := e.backendNodeID(ctx, id)
		if err != nil {
			return err
		}
		if err := callOn(ctx, backendID, fillScript(text)); err != nil {
			return err
		}
		if !submit {
			return nil
		}
		if err := dom.Focus().WithBackendNodeID(backendID).Do(ctx); err != nil {
			return fmt.Errorf("focus before submit: %w", err)
		}
		return chromedp.KeyEvent(kb.Enter).Do(ctx)
	}))
}

func (e *ChromeEngine) Scroll(ctx context.Context, dy int) error {
	return e.run(ctx, chromedp.Evaluate(scrollScript(dy), nil))
}

func (e *ChromeEngine) Close() error {
	e.cancel()
	e.allocCancel()
	return nil
}

func (e *ChromeEngine) backendNodeID(ctx context.Context, id int) (cdp.BackendNodeID, error) {
	var nodes []*cdp.Node
	if err := chromedp.Nodes(Selector(id), &nodes, chromedp.ByQuery, chromedp.AtLeast(0)).Do(ctx); err != nil {
		return 0, fmt.Errorf("query element %d: %w", id, err)
	}
	if len(nodes) == 0 {
		return 0, fmt.Errorf("element %d not found on page", id)
	}
	return nodes[0].BackendNodeID, nil
}

func callOn(ctx context.Context, backendID cdp.BackendNodeID, fn string) error {
	obj, err := dom.ResolveNode().WithBackendNodeID(backendID).Do(ctx)
	if err != nil {
		return fmt.Errorf("resolve node failed: %w", err)
	}
	if obj == nil || obj.ObjectID == "" {
		return fmt.Errorf("object id is empty (node might be detached)")
	}

	_, exc, err := runtime.CallFunctionOn(fn).WithObjectID(obj.ObjectID).Do(ctx)
	if err != nil {
		return err
	}
	if exc != nil {
		return fmt.Errorf("script exception: %s", exc.Text)
	}
	return nil
}

package agent

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/nbenliogludev/go-job-search-agent/internal/llm"
)

func (r *Runner) executeAction(ctx context.Context, action llm.Action, currentURL string) error {
	a := r.agent

	switch action.Type {
	case llm.ActionScroll:
		fmt.Println("📜 Scrolling down...")
		return a.browser.Scroll(ctx, 500)

	case llm.ActionNavigate:
		target := normalizeURL(currentURL, action.URL)
		fmt.Printf("🌍 Navigating to %s...\n", target)
		return a.browser.Navigate(ctx, target)

	case llm.ActionSave:
		if err := a.saver.Save(ctx, currentURL, action.Text); err != nil {
			return fmt.Errorf("save listing: %w", err)
		}
		a.saved++
		fmt.Printf("💾 Saved listing to %s\n", a.saver.Path())
		r.mem.AddSystemNote(fmt.Sprintf("SAVED: listing written to %s (%d total).", a.saver.Path(), a.saved))
		return nil
	}

	if action.TargetID == 0 {
		return fmt.Errorf("%s action without target_id", action.Type)
	}

	if action.IsDestructive && !a.opts.AutoApprove {
		if !a.opts.Confirm(action) {
			return fmt.Errorf("destructive action on target %d was not approved", action.TargetID)
		}
	}

	fmt.Printf("🎯 Targeting element [%d]\n", action.TargetID)

	switch action.Type {
	case llm.ActionClick:
		return a.browser.Click(ctx, action.TargetID)
	case llm.ActionTypeInput:
		return a.browser.Type(ctx, action.TargetID, action.Text, action.Submit)
	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
}

func normalizeURL(currentURL, target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return currentURL
	}

	u, err := url.Parse(target)
	if err == nil && u.IsAbs() {
		return target
	}

	base, err := url.Parse(currentURL)
	if err != nil || u == nil {
		return target
	}

	return base.ResolveReference(u).String()
}

func confirmDestructiveAction(action llm.Action) bool {
	fmt.Printf("⚠️ SECURITY LAYER: model suggests a DESTRUCTIVE action (application, payment, deletion, etc.).\n")
	fmt.Printf("   Planned action: %s [%d] %q\n", action.Type, action.TargetID, action.Text)
	fmt.Print("   Allow this action? (y/n): ")

	tty, err := os.Open("/dev/tty")
	if err != nil {
		fmt.Println(" (no TTY, auto-cancel)")
		fmt.Println("🚫 Destructive action cancelled (no interactive TTY).")
		return false
	}
	defer tty.Close()

	reader := bufio.NewReader(tty)

	for {
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("\n🚫 Destructive action cancelled (read error).")
			return false
		}

		answer := strings.ToLower(strings.TrimSpace(input))

		if answer == "y" || answer == "yes" {
			fmt.Println("✅ Destructive action approved by user.")
			return true
		}

		if answer == "n" || answer == "no" || answer == "" {
			fmt.Println("🚫 Destructive action cancelled by user.")
			return false
		}

		fmt.Print("   Please answer 'y' or 'n': ")
	}
}

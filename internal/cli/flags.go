// Package cli provides flag binding and config resolution for the job-search CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nbenliogludev/go-job-search-agent/internal/config"
)

// Flags holds the raw flag values. Only flags the user changed are applied
// on top of the config file.
type Flags struct {
	ConfigFile string
	cfg        *config.Config
}

// BindFlags registers all CLI flags on cmd. Defaults mirror
// config.NewDefaultConfig so that --help shows the effective values.
func BindFlags(cmd *cobra.Command) *Flags {
	f := &Flags{cfg: config.NewDefaultConfig()}
	flags := cmd.Flags()
	cfg := f.cfg

	flags.StringVarP(&f.ConfigFile, "config", "c", "", "Path to YAML config file (default ./"+config.DefaultFile+" if present)")

	// Task
	flags.StringVarP(&cfg.Task, "task", "t", cfg.Task, "Natural-language task for the agent")
	flags.StringVar(&cfg.StartURL, "start-url", cfg.StartURL, "Page to open before the agent starts")
	flags.IntVar(&cfg.MaxSteps, "max-steps", cfg.MaxSteps, "Maximum browser steps per agent run")
	flags.DurationVar(&cfg.StepDelay, "step-delay", cfg.StepDelay, "Pause between browser steps")
	flags.StringVarP(&cfg.OutputFile, "output", "o", cfg.OutputFile, "File the agent saves job listings to")
	flags.BoolVar(&cfg.AutoApprove, "auto-approve", cfg.AutoApprove, "Approve destructive actions without asking")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Enable debug output")

	// LLM
	flags.StringVar(&cfg.LLM.Model, "model", cfg.LLM.Model, "OpenAI chat model")
	flags.StringVar(&cfg.LLM.BaseURL, "base-url", cfg.LLM.BaseURL, "OpenAI-compatible API base URL")
	flags.IntVar(&cfg.LLM.RequestsPerMinute, "rpm", cfg.LLM.RequestsPerMinute, "Client-side LLM request limit per minute (0 = unlimited)")
	flags.BoolVar(&cfg.LLM.Vision, "vision", cfg.LLM.Vision, "Attach page screenshots to LLM requests")

	// Browser
	flags.StringVar(&cfg.Browser.Engine, "engine", cfg.Browser.Engine, "Browser engine: chromedp or playwright")
	flags.BoolVar(&cfg.Browser.Headless, "headless", cfg.Browser.Headless, "Run the browser without a window")
	flags.StringVar(&cfg.Browser.UserDataDir, "user-data-dir", cfg.Browser.UserDataDir, "Browser profile directory")

	// Retry
	flags.IntVar(&cfg.Retry.MaxAttempts, "max-attempts", cfg.Retry.MaxAttempts, "Maximum agent runs while rate limited")
	flags.DurationVar(&cfg.Retry.InitialDelay, "initial-delay", cfg.Retry.InitialDelay, "First wait after a rate limit")
	flags.DurationVar(&cfg.Retry.MaxDelay, "max-delay", cfg.Retry.MaxDelay, "Upper bound for the wait between attempts")
	flags.StringVar(&cfg.Retry.Policy, "backoff", cfg.Retry.Policy, "Wait policy between attempts: shrink or grow")

	return f
}

// Resolve loads the config file and applies every flag the user set
// explicitly. The built-in task follows the resolved output file. The result
// is validated.
func (f *Flags) Resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOptional(f.ConfigFile)
	if err != nil {
		return nil, err
	}

	var applyErr error
	cmd.Flags().Visit(func(fl *pflag.Flag) {
		if applyErr != nil {
			return
		}
		applyErr = f.apply(cfg, fl.Name)
	})
	if applyErr != nil {
		return nil, applyErr
	}
	cfg.DeriveTask()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (f *Flags) apply(cfg *config.Config, name string) error {
	src := f.cfg
	switch name {
	case "config":
	case "task":
		cfg.Task = src.Task
	case "start-url":
		cfg.StartURL = src.StartURL
	case "max-steps":
		cfg.MaxSteps = src.MaxSteps
	case "step-delay":
		cfg.StepDelay = src.StepDelay
	case "output":
		cfg.OutputFile = src.OutputFile
	case "auto-approve":
		cfg.AutoApprove = src.AutoApprove
	case "verbose":
		cfg.Verbose = src.Verbose
	case "model":
		cfg.LLM.Model = src.LLM.Model
	case "base-url":
		cfg.LLM.BaseURL = src.LLM.BaseURL
	case "rpm":
		cfg.LLM.RequestsPerMinute = src.LLM.RequestsPerMinute
	case "vision":
		cfg.LLM.Vision = src.LLM.Vision
	case "engine":
		cfg.Browser.Engine = src.Browser.Engine
	case "headless":
		cfg.Browser.Headless = src.Browser.Headless
	case "user-data-dir":
		cfg.Browser.UserDataDir = src.Browser.UserDataDir
	case "max-attempts":
		cfg.Retry.MaxAttempts = src.Retry.MaxAttempts
	case "initial-delay":
		cfg.Retry.InitialDelay = src.Retry.InitialDelay
	case "max-delay":
		cfg.Retry.MaxDelay = src.Retry.MaxDelay
	case "backoff":
		cfg.Retry.Policy = src.Retry.Policy
	default:
		return fmt.Errorf("flag --%s is not mapped to a config field", name)
	}
	return nil
}

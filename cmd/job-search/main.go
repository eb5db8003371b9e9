package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nbenliogludev/go-job-search-agent/internal/agent"
	"github.com/nbenliogludev/go-job-search-agent/internal/browser"
	"github.com/nbenliogludev/go-job-search-agent/internal/cli"
	"github.com/nbenliogludev/go-job-search-agent/internal/config"
	"github.com/nbenliogludev/go-job-search-agent/internal/listings"
	"github.com/nbenliogludev/go-job-search-agent/internal/llm"
	"github.com/nbenliogludev/go-job-search-agent/internal/logging"
	"github.com/nbenliogludev/go-job-search-agent/internal/retry"
)

// version is injected via ldflags at build time
var version = "dev"

const exitInterrupted = 130

func main() {
	rootCmd := &cobra.Command{
		Use:           "job-search",
		Short:         "Browser agent that finds a Web3 Product Manager job and saves it",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cli.BindFlags(rootCmd)
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Resolve(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	interrupted := ctx.Err() != nil
	stop()

	if err != nil {
		if interrupted || errors.Is(err, context.Canceled) || errors.Is(err, agent.ErrInterrupted) {
			logging.Warn("Interrupted.")
			os.Exit(exitInterrupted)
		}
		logging.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logging.SetVerbose(cfg.Verbose)

	llmClient, err := llm.NewOpenAIClient(llm.Options{
		Model:             cfg.LLM.Model,
		BaseURL:           cfg.LLM.BaseURL,
		Temperature:       cfg.LLM.Temperature,
		MaxTokens:         cfg.LLM.MaxTokens,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
		Vision:            cfg.LLM.Vision,
	})
	if err != nil {
		return fmt.Errorf("create LLM client: %w", err)
	}

	logging.Info(fmt.Sprintf("Starting %s browser...", cfg.Browser.Engine))
	b, err := browser.New(browser.Options{
		Engine:      cfg.Browser.Engine,
		Headless:    cfg.Browser.Headless,
		UserDataDir: cfg.Browser.UserDataDir,
		Timeout:     cfg.Browser.Timeout,
	})
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			logging.Debug(fmt.Sprintf("close browser: %v", err))
		}
	}()

	ag := agent.NewAgent(b, llmClient, listings.NewStore(cfg.OutputFile), agent.Options{
		Task:        cfg.Task,
		StartURL:    cfg.StartURL,
		MaxSteps:    cfg.MaxSteps,
		StepDelay:   cfg.StepDelay,
		AutoApprove: cfg.AutoApprove,
	})

	logging.Step(fmt.Sprintf("Task: %s", cfg.Task))

	result, err := retry.Run(ctx, retry.Config{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
		Policy:       retry.Policy(cfg.Retry.Policy),
		OnRetry: func(attempt, maxAttempts int, wait time.Duration, err error) {
			logging.Debug(fmt.Sprintf("attempt %d failed: %v", attempt, err))
			logging.RateLimitRetry(attempt, maxAttempts, wait)
		},
	}, ag.Run)
	if err != nil {
		return err
	}

	printCompletion(cfg.OutputFile, result)
	return nil
}

// printCompletion prints the completion line, then the run result.
func printCompletion(outputFile string, result fmt.Stringer) {
	logging.Success(fmt.Sprintf("Task completed. Check '%s' for job details.", outputFile))
	fmt.Println(result)
}

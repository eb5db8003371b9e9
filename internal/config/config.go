// Package config defines the job-search configuration model, its defaults
// and YAML loading.
//
// Sources are merged in order of increasing priority: built-in defaults <
// YAML config file < explicitly set CLI flags. Secrets such as the OpenAI
// API key are only read from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is picked up from the working directory when no --config is given.
const DefaultFile = "job-search.yaml"

// DefaultOutputFile receives saved listings unless output_file says otherwise.
const DefaultOutputFile = "job_listings.txt"

// DefaultTask is the built-in task, naming DefaultOutputFile.
var DefaultTask = TaskFor(DefaultOutputFile)

// TaskFor returns the built-in task text pointed at outputFile.
func TaskFor(outputFile string) string {
	return fmt.Sprintf("Search for Web3 Product Manager job postings and save one example job to '%s'.", outputFile)
}

type Config struct {
	Task       string        `yaml:"task"`
	StartURL   string        `yaml:"start_url"`
	MaxSteps   int           `yaml:"max_steps"`
	StepDelay  time.Duration `yaml:"step_delay"`
	OutputFile string        `yaml:"output_file"`
	Verbose    bool          `yaml:"verbose"`

	// AutoApprove skips the interactive confirmation of destructive actions.
	AutoApprove bool `yaml:"auto_approve"`

	LLM     LLMConfig     `yaml:"llm"`
	Browser BrowserConfig `yaml:"browser"`
	Retry   RetryConfig   `yaml:"retry"`
}

type LLMConfig struct {
	Model             string  `yaml:"model"`
	BaseURL           string  `yaml:"base_url"`
	Temperature       float32 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
	Vision            bool    `yaml:"vision"`
}

type BrowserConfig struct {
	Engine      string        `yaml:"engine"`
	Headless    bool          `yaml:"headless"`
	UserDataDir string        `yaml:"user_data_dir"`
	Timeout     time.Duration `yaml:"timeout"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Policy       string        `yaml:"policy"`
}

const (
	EngineChromedp   = "chromedp"
	EnginePlaywright = "playwright"

	PolicyShrink = "shrink"
	PolicyGrow   = "grow"
)

// NewDefaultConfig returns a Config populated with all built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Task:       DefaultTask,
		StartURL:   "https://web3.career/",
		MaxSteps:   25,
		StepDelay:  2 * time.Second,
		OutputFile: DefaultOutputFile,
		LLM: LLMConfig{
			Model:             "gpt-4o-mini",
			Temperature:       0,
			MaxTokens:         400,
			RequestsPerMinute: 20,
			Vision:            true,
		},
		Browser: BrowserConfig{
			Engine:      EngineChromedp,
			Headless:    false,
			UserDataDir: ".browser_data",
			Timeout:     60 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:  100,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Policy:       PolicyShrink,
		},
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the
// file keep their default value.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOptional loads path when set, otherwise DefaultFile if it exists in
// the working directory, otherwise the defaults.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	if _, err := os.Stat(DefaultFile); err == nil {
		return Load(DefaultFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", DefaultFile, err)
	}

	return NewDefaultConfig(), nil
}

// DeriveTask rewrites the built-in task to name OutputFile. Custom tasks are
// left alone. Call it once, after every source has been merged.
func (c *Config) DeriveTask() {
	if c.Task == DefaultTask {
		c.Task = TaskFor(c.OutputFile)
	}
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	if c.Task == "" {
		errs = append(errs, errors.New("task must not be empty"))
	}
	if c.MaxSteps <= 0 {
		errs = append(errs, fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps))
	}
	if c.StepDelay < 0 {
		errs = append(errs, fmt.Errorf("step_delay must not be negative, got %s", c.StepDelay))
	}
	if c.OutputFile == "" {
		errs = append(errs, errors.New("output_file must not be empty"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model must not be empty"))
	}
	if c.LLM.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("llm.requests_per_minute must not be negative, got %d", c.LLM.RequestsPerMinute))
	}
	switch c.Browser.Engine {
	case EngineChromedp, EnginePlaywright:
	default:
		errs = append(errs, fmt.Errorf("browser.engine must be %q or %q, got %q", EngineChromedp, EnginePlaywright, c.Browser.Engine))
	}
	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be positive, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.InitialDelay <= 0 {
		errs = append(errs, fmt.Errorf("retry.initial_delay must be positive, got %s", c.Retry.InitialDelay))
	}
	if c.Retry.MaxDelay <= 0 {
		errs = append(errs, fmt.Errorf("retry.max_delay must be positive, got %s", c.Retry.MaxDelay))
	}
	switch c.Retry.Policy {
	case PolicyShrink, PolicyGrow:
	default:
		errs = append(errs, fmt.Errorf("retry.policy must be %q or %q, got %q", PolicyShrink, PolicyGrow, c.Retry.Policy))
	}

	return errors.Join(errs...)
}

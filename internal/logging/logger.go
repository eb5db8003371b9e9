// Package logging provides colored, leveled console output for the job-search CLI.
//
// Every function writes one prefixed line. Debug output is suppressed unless
// verbose mode is enabled via SetVerbose(true).
package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
)

var verbose bool

var (
	infoPrefix    = color.New(color.FgBlue).SprintFunc()
	successPrefix = color.New(color.FgGreen).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed).SprintFunc()
	stepPrefix    = color.New(color.FgCyan).SprintFunc()
	debugPrefix   = color.New(color.FgMagenta).SprintFunc()
)

// SetVerbose enables or disables Debug output.
func SetVerbose(v bool) {
	verbose = v
}

// Verbose reports whether Debug output is enabled.
func Verbose() bool {
	return verbose
}

func Info(msg string) {
	fmt.Println(infoPrefix("[INFO]") + " " + msg)
}

func Success(msg string) {
	fmt.Println(successPrefix("[SUCCESS]") + " " + msg)
}

func Warn(msg string) {
	fmt.Println(warnPrefix("[WARN]") + " " + msg)
}

// Error prints to stderr.
func Error(msg string) {
	fmt.Fprintln(os.Stderr, errorPrefix("[ERROR]")+" "+msg)
}

// Step prints a step header surrounded by separator lines.
func Step(msg string) {
	sep := stepPrefix("----------------------------------------")
	fmt.Println(sep)
	fmt.Println(stepPrefix("[STEP]") + " " + msg)
	fmt.Println(sep)
}

func Debug(msg string) {
	if !verbose {
		return
	}
	fmt.Println(debugPrefix("[DEBUG]") + " " + msg)
}

// RateLimitRetry prints the notice emitted before waiting out a rate limit.
func RateLimitRetry(attempt, maxAttempts int, wait time.Duration) {
	Warn(FormatRateLimitRetry(attempt, maxAttempts, wait))
}

// FormatRateLimitRetry renders the retry notice, e.g.
//
//	Rate limit hit, retrying in 500ms (Attempt 1/100)...
func FormatRateLimitRetry(attempt, maxAttempts int, wait time.Duration) string {
	return fmt.Sprintf("Rate limit hit, retrying in %s (Attempt %d/%d)...", wait, attempt, maxAttempts)
}

package logging_test

import (
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbenliogludev/go-job-search-agent/internal/logging"
)

func init() {
	// Plain text so assertions match.
	color.NoColor = true
}

func capture(t *testing.T, target **os.File, fn func()) string {
	t.Helper()

	old := *target
	r, w, err := os.Pipe()
	require.NoError(t, err)
	*target = w

	fn()

	w.Close()
	*target = old

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(string)
		prefix string
	}{
		{"info", logging.Info, "[INFO] "},
		{"success", logging.Success, "[SUCCESS] "},
		{"warn", logging.Warn, "[WARN] "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := capture(t, &os.Stdout, func() { tt.fn("hello") })
			assert.Equal(t, tt.prefix+"hello\n", out)
		})
	}
}

func TestErrorGoesToStderr(t *testing.T) {
	var stdout string
	stderr := capture(t, &os.Stderr, func() {
		stdout = capture(t, &os.Stdout, func() { logging.Error("boom") })
	})

	assert.Empty(t, stdout)
	assert.Equal(t, "[ERROR] boom\n", stderr)
}

func TestDebugRespectsVerbose(t *testing.T) {
	t.Cleanup(func() { logging.SetVerbose(false) })

	logging.SetVerbose(false)
	assert.Empty(t, capture(t, &os.Stdout, func() { logging.Debug("hidden") }))

	logging.SetVerbose(true)
	assert.True(t, logging.Verbose())
	assert.Equal(t, "[DEBUG] shown\n", capture(t, &os.Stdout, func() { logging.Debug("shown") }))
}

func TestStep(t *testing.T) {
	out := capture(t, &os.Stdout, func() { logging.Step("STEP 3") })
	assert.Contains(t, out, "[STEP] STEP 3")
}

func TestFormatRateLimitRetry(t *testing.T) {
	assert.Equal(t,
		"Rate limit hit, retrying in 500ms (Attempt 1/100)...",
		logging.FormatRateLimitRetry(1, 100, 500*time.Millisecond),
	)
	assert.Equal(t,
		"Rate limit hit, retrying in 1s (Attempt 2/3)...",
		logging.FormatRateLimitRetry(2, 3, time.Second),
	)
}

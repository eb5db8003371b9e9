// Package listings persists the job postings the agent decides to keep.
package listings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

var ErrEmptyListing = errors.New("listing text is empty")

// Store appends listings to a plain text file. A sibling .lock file keeps
// concurrent runs from interleaving entries.
type Store struct {
	path string
	lock *flock.Flock
	now  func() time.Time
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
		now:  time.Now,
	}
}

func (s *Store) Path() string {
	return s.path
}

// Save appends one entry with the source URL and a timestamp.
func (s *Store) Save(ctx context.Context, sourceURL, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyListing
	}

	locked, err := s.lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", s.path)
	}
	defer s.lock.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatEntry(s.now(), sourceURL, text)); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return f.Sync()
}

func formatEntry(at time.Time, sourceURL, text string) string {
	var sb strings.Builder
	sb.WriteString("=== Job listing saved " + at.UTC().Format(time.RFC3339) + " ===\n")
	if sourceURL != "" {
		sb.WriteString("Source: " + sourceURL + "\n")
	}
	sb.WriteString(text + "\n\n")
	return sb.String()
}

package agent

import (
	"fmt"
	"strings"

	"github.com/nbenliogludev/go-job-search-agent/internal/llm"
)

// actionKey identifies an action for loop detection. The same target on a
// different page is a different action.
type actionKey struct {
	typ    llm.ActionType
	url    string
	target int
}

func keyOf(url string, action llm.Action) actionKey {
	return actionKey{typ: action.Type, url: url, target: action.TargetID}
}

func (k actionKey) String() string {
	return fmt.Sprintf("%s|%s|%d", k.typ, k.url, k.target)
}

// StepMemory keeps the rolling history shown to the model, the full history
// for the report, and the state of the loop guard.
//
// The guard blocks an action that was already run loopThreshold times in a
// row, and an action that would repeat a transition (previous action to
// this one) seen earlier in the run.
type StepMemory struct {
	window  int
	recent  []string
	history []string

	loopThreshold int
	last          actionKey
	streak        int
	transitions   map[[2]actionKey]bool

	loopTriggered bool
}

func NewStepMemory(window, loopThreshold int) *StepMemory {
	if window <= 0 {
		window = 5
	}
	if loopThreshold < 2 {
		loopThreshold = 2
	}
	return &StepMemory{
		window:        window,
		loopThreshold: loopThreshold,
		transitions:   make(map[[2]actionKey]bool),
	}
}

// Add records an executed action.
func (m *StepMemory) Add(step int, url string, action llm.Action) {
	m.push(fmt.Sprintf("step=%d url=%s action=%s target=%d text=%q",
		step, url, action.Type, action.TargetID, action.Text))

	key := keyOf(url, action)
	if m.streak > 0 {
		m.transitions[[2]actionKey{m.last, key}] = true
	}
	if m.streak > 0 && key == m.last {
		m.streak++
		return
	}
	m.last = key
	m.streak = 1
}

// ShouldBlock reports whether running action on url would continue a loop,
// together with a note for the model.
func (m *StepMemory) ShouldBlock(url string, action llm.Action) (bool, string) {
	switch action.Type {
	case llm.ActionScroll, llm.ActionSave, llm.ActionFinish:
		return false, ""
	}
	if m.streak == 0 {
		return false, ""
	}

	key := keyOf(url, action)
	if key == m.last {
		if m.streak < m.loopThreshold {
			return false, ""
		}
		return true, fmt.Sprintf(
			"SYSTEM NOTE: The same action (%s) has already been executed %d times in a row. "+
				"Do NOT repeat it. Choose a different action, or finish if the listing is already saved.",
			key, m.streak)
	}

	if m.transitions[[2]actionKey{m.last, key}] {
		return true, fmt.Sprintf(
			"SYSTEM NOTE: The sequence %s -> %s has already occurred before. "+
				"Do NOT repeat this pattern. Open a different posting, refine the search or finish.",
			m.last, key)
	}
	return false, ""
}

// AddSystemNote appends a note for the model. Blank notes are dropped.
func (m *StepMemory) AddSystemNote(note string) {
	if note = strings.TrimSpace(note); note != "" {
		m.push(note)
	}
}

func (m *StepMemory) push(line string) {
	m.history = append(m.history, line)
	m.recent = append(m.recent, line)
	if over := len(m.recent) - m.window; over > 0 {
		m.recent = m.recent[over:]
	}
}

func (m *StepMemory) HistoryLines() []string {
	return cloneLines(m.recent)
}

func (m *StepMemory) HistoryString() string {
	return strings.Join(m.recent, "\n")
}

func (m *StepMemory) FullHistory() []string {
	return cloneLines(m.history)
}

func (m *StepMemory) MarkLoopTriggered() { m.loopTriggered = true }

func (m *StepMemory) LoopTriggered() bool { return m.loopTriggered }

func cloneLines(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	return append([]string(nil), lines...)
}

// Package prompt asks the user for values and yes/no decisions.
//
// Two implementations are provided: Line reads answers from any line-oriented
// reader and TUI renders an interactive prompt with bubbletea. New picks one
// depending on whether stdin and stdout are terminals.
package prompt

import (
	"errors"
	"os"

	"github.com/amerryma/express-gateway/internal/term"
)

// ErrAborted is returned when the user cancels a prompt or input ends.
var ErrAborted = errors.New("prompt aborted")

// Input describes a free-text question.
type Input struct {
	Message string
	// Default is used when the answer is empty.
	Default string
	// Validate rejects an answer with a message shown to the user.
	// The question is asked again until it returns nil.
	Validate func(answer string) error
}

// Prompter asks questions.
type Prompter interface {
	Input(q Input) (string, error)
	Confirm(message string, def bool) (bool, error)
}

// New returns an interactive prompter when both in and out are terminals
// and a line prompter otherwise.
func New(in, out *os.File) Prompter {
	if term.IsTerminal(in) && term.IsTerminal(out) {
		return &TUI{In: in, Out: out, Width: term.Width(out)}
	}
	return NewLine(in, out)
}

// answer applies the default and validation shared by all prompters.
func (q Input) answer(raw string) (string, error) {
	if raw == "" {
		raw = q.Default
	}
	if q.Validate != nil {
		if err := q.Validate(raw); err != nil {
			return "", err
		}
	}
	return raw, nil
}

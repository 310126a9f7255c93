package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Line asks questions one line at a time. It is used when the session is not
// interactive, e.g. when answers are piped in.
type Line struct {
	r   *bufio.Reader
	out io.Writer
}

// NewLine returns a prompter reading answers from in and writing questions to out.
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{r: bufio.NewReader(in), out: out}
}

// Input asks q until a valid answer is given.
func (l *Line) Input(q Input) (string, error) {
	for {
		if q.Default != "" {
			fmt.Fprintf(l.out, "? %s (%s) ", q.Message, q.Default)
		} else {
			fmt.Fprintf(l.out, "? %s ", q.Message)
		}

		raw, err := l.readLine()
		if err != nil {
			return "", err
		}
		answer, err := q.answer(raw)
		if err != nil {
			fmt.Fprintf(l.out, ">> %v\n", err)
			continue
		}
		return answer, nil
	}
}

// Confirm asks a yes/no question. An empty answer selects def.
func (l *Line) Confirm(message string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(l.out, "? %s (%s) ", message, hint)

		raw, err := l.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(l.out, ">> Please answer yes or no")
	}
}

func (l *Line) readLine() (string, error) {
	line, err := l.r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading answer: %w", err)
		}
		if line == "" {
			fmt.Fprintln(l.out)
			return "", fmt.Errorf("%w: end of input", ErrAborted)
		}
	}
	return strings.TrimRight(line, "\r\n"), nil
}

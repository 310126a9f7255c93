// Package ui formats user-facing output: colored tags, messages on stderr
// and dry-run diffs.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

var (
	writer io.Writer = os.Stderr

	stdoutColor = detectColor(os.Stdout)
	stderrColor = detectColor(os.Stderr)
)

// SetWriter redirects messages. nil restores stderr.
func SetWriter(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	writer = w
}

func detectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetColorEnabled overrides color detection.
func SetColorEnabled(enabled bool) {
	stdoutColor = enabled
	stderrColor = enabled
}

func paint(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func Bold(s string) string  { return paint(stdoutColor, "1", s) }
func Dim(s string) string   { return paint(stdoutColor, "2", s) }
func Green(s string) string { return paint(stdoutColor, "32", s) }
func Red(s string) string   { return paint(stdoutColor, "31", s) }
func Cyan(s string) string  { return paint(stdoutColor, "36", s) }

func OKTag() string { return Green("✓") }

// ShortenPath replaces the home directory prefix of path with ~.
func ShortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if rest, ok := strings.CutPrefix(path, home); ok && (rest == "" || os.IsPathSeparator(rest[0])) {
		return "~" + rest
	}
	return path
}

// Success prints a checked line to w, e.g. "✓ Plugin installed!".
func Success(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", OKTag(), msg)
}

// Warnf prints a warning to stderr.
func Warnf(format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", paint(stderrColor, "33", "Warning:"), fmt.Sprintf(format, args...))
}

// Errorf prints an error to stderr.
func Errorf(format string, args ...any) {
	fmt.Fprintf(writer, "%s %s\n", paint(stderrColor, "31", "Error:"), fmt.Sprintf(format, args...))
}

// DiffWriter colors unified diff lines written through it: additions green,
// removals red and hunk headers cyan. File headers are bold. With color
// disabled it passes text through unchanged.
type DiffWriter struct {
	W io.Writer
}

func (d DiffWriter) Write(p []byte) (int, error) {
	if !stdoutColor {
		return d.W.Write(p)
	}
	lines := strings.SplitAfter(string(p), "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		text, nl := strings.CutSuffix(line, "\n")
		b.WriteString(colorDiffLine(text))
		if nl {
			b.WriteByte('\n')
		}
	}
	if _, err := io.WriteString(d.W, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func colorDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return Bold(line)
	case strings.HasPrefix(line, "@@"):
		return Cyan(line)
	case strings.HasPrefix(line, "+"):
		return Green(line)
	case strings.HasPrefix(line, "-"):
		return Red(line)
	}
	return line
}

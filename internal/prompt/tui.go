package prompt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	markStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	questionStyle = lipgloss.NewStyle().Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// TUI asks questions with an interactive terminal prompt.
type TUI struct {
	In  io.Reader
	Out io.Writer
	// Width bounds the visible input. 0 leaves it unbounded.
	Width int
}

// Input asks q until a valid answer is given. Ctrl+C or Esc return ErrAborted.
func (t *TUI) Input(q Input) (string, error) {
	m := newInputModel(q)
	if t.Width > 0 {
		m.input.Width = max(t.Width-len(q.Message)-4, 10)
	}
	final, err := t.run(m)
	if err != nil {
		return "", err
	}
	answered := final.(inputModel)
	if answered.aborted {
		return "", ErrAborted
	}
	return answered.value, nil
}

// Confirm asks a yes/no question. Enter selects def.
func (t *TUI) Confirm(message string, def bool) (bool, error) {
	final, err := t.run(newConfirmModel(message, def))
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.aborted {
		return false, ErrAborted
	}
	return m.value, nil
}

func (t *TUI) run(m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m, tea.WithInput(t.In), tea.WithOutput(t.Out))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running prompt: %w", err)
	}
	return final, nil
}

func question(message string) string {
	return markStyle.Render("?") + " " + questionStyle.Render(message)
}

// inputModel is a single free-text question.
type inputModel struct {
	q       Input
	input   textinput.Model
	err     error
	value   string
	done    bool
	aborted bool
}

func newInputModel(q Input) inputModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = q.Default
	ti.Focus()
	return inputModel{q: q, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			answer, err := m.q.answer(m.input.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.value = answer
			m.done = true
			return m, tea.Quit
		}
		m.err = nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		return question(m.q.Message) + " " + answerStyle.Render(m.value) + "\n"
	}
	if m.aborted {
		return question(m.q.Message) + "\n"
	}

	var b strings.Builder
	b.WriteString(question(m.q.Message))
	b.WriteString(" ")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(">> " + m.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

// confirmModel is a single yes/no question.
type confirmModel struct {
	message string
	def     bool
	value   bool
	done    bool
	aborted bool
}

func newConfirmModel(message string, def bool) confirmModel {
	return confirmModel{message: message, def: def}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.aborted = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.value, m.done = m.def, true
		return m, tea.Quit
	}
	switch strings.ToLower(key.String()) {
	case "y":
		m.value, m.done = true, true
		return m, tea.Quit
	case "n":
		m.value, m.done = false, true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		answer := "No"
		if m.value {
			answer = "Yes"
		}
		return question(m.message) + " " + answerStyle.Render(answer) + "\n"
	}
	hint := "(y/N)"
	if m.def {
		hint = "(Y/n)"
	}
	return question(m.message) + " " + hintStyle.Render(hint) + "\n"
}

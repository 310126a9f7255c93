package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notEmpty(s string) error {
	if s == "" {
		return errors.New("value is required")
	}
	return nil
}

func TestLineInput(t *testing.T) {
	var out bytes.Buffer
	p := NewLine(strings.NewReader("\nhello\n"), &out)

	got, err := p.Input(Input{Message: "Set value for greeting [Greeting]", Validate: notEmpty})
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Contains(t, out.String(), ">> value is required")
	assert.Equal(t, 2, strings.Count(out.String(), "? Set value for greeting [Greeting]"))
}

func TestLineInputDefault(t *testing.T) {
	var out bytes.Buffer
	p := NewLine(strings.NewReader("\r\n"), &out)

	got, err := p.Input(Input{Message: "Set value for port [port]", Default: "8080"})
	require.NoError(t, err)
	assert.Equal(t, "8080", got)
	assert.Contains(t, out.String(), "(8080)")
}

func TestLineInputLastLineWithoutNewline(t *testing.T) {
	p := NewLine(strings.NewReader("value"), &bytes.Buffer{})

	got, err := p.Input(Input{Message: "q"})
	require.NoError(t, err)
	assert.Equal(t, "value", got)
}

func TestLineInputEOF(t *testing.T) {
	p := NewLine(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.Input(Input{Message: "q"})
	assert.ErrorIs(t, err, ErrAborted)
}

func TestLineConfirm(t *testing.T) {
	var out bytes.Buffer
	p := NewLine(strings.NewReader("maybe\nY\n\nno\n"), &out)

	got, err := p.Confirm("Enable?", false)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Contains(t, out.String(), "Please answer yes or no")

	got, err = p.Confirm("Enable?", true)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = p.Confirm("Enable?", true)
	require.NoError(t, err)
	assert.False(t, got)

	_, err = p.Confirm("Enable?", true)
	assert.ErrorIs(t, err, ErrAborted)
}

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestInputModel(t *testing.T) {
	var m tea.Model = newInputModel(Input{Message: "Set value for name [name]", Validate: notEmpty})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	im := m.(inputModel)
	assert.False(t, im.done)
	require.Error(t, im.err)
	assert.Contains(t, im.View(), "value is required")

	m = typeText(m, "gateway")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	im = m.(inputModel)
	assert.True(t, im.done)
	assert.Equal(t, "gateway", im.value)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestInputModelDefault(t *testing.T) {
	var m tea.Model = newInputModel(Input{Message: "q", Default: "30"})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	im := m.(inputModel)
	assert.True(t, im.done)
	assert.Equal(t, "30", im.value)
}

func TestInputModelAbort(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		var m tea.Model = newInputModel(Input{Message: "q"})
		m, _ = m.Update(tea.KeyMsg{Type: key})
		assert.True(t, m.(inputModel).aborted)
	}
}

func TestConfirmModel(t *testing.T) {
	tests := []struct {
		name string
		def  bool
		key  tea.KeyMsg
		want bool
	}{
		{"yes", false, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, true},
		{"no", true, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("N")}, false},
		{"enter takes default yes", true, tea.KeyMsg{Type: tea.KeyEnter}, true},
		{"enter takes default no", false, tea.KeyMsg{Type: tea.KeyEnter}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newConfirmModel("Enable?", tt.def).Update(tt.key)
			cm := m.(confirmModel)
			assert.True(t, cm.done)
			assert.Equal(t, tt.want, cm.value)
		})
	}
}

func TestConfirmModelIgnoresOtherKeys(t *testing.T) {
	m, cmd := newConfirmModel("Enable?", false).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, cmd)
	assert.False(t, m.(confirmModel).done)
	assert.Contains(t, m.View(), "(y/N)")
}

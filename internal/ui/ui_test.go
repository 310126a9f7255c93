package ui

import (
	"bytes"
	"os"
	"testing"
)

func TestMessages(t *testing.T) {
	SetColorEnabled(false)
	var buf bytes.Buffer
	SetWriter(&buf)
	defer SetWriter(nil)

	Warnf("plugin %q has no options", "example")
	Errorf("npm exited with code %d", 1)

	want := "Warning: plugin \"example\" has no options\n" +
		"Error: npm exited with code 1\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestColoredPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	SetColorEnabled(true)
	defer func() {
		SetWriter(nil)
		SetColorEnabled(false)
	}()

	Errorf("boom")
	if got, want := buf.String(), "\033[31mError:\033[0m boom\n"; got != want {
		t.Errorf("Errorf = %q, want %q", got, want)
	}
}

func TestColorFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		code string
	}{
		{"Bold", Bold, "1"},
		{"Dim", Dim, "2"},
		{"Green", Green, "32"},
		{"Red", Red, "31"},
		{"Cyan", Cyan, "36"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetColorEnabled(true)
			if got, want := tt.fn("x"), "\033["+tt.code+"mx\033[0m"; got != want {
				t.Errorf("colored = %q, want %q", got, want)
			}
			SetColorEnabled(false)
			if got := tt.fn("x"); got != "x" {
				t.Errorf("plain = %q, want %q", got, "x")
			}
		})
	}
}

func TestSuccess(t *testing.T) {
	SetColorEnabled(false)
	var buf bytes.Buffer
	Success(&buf, "Plugin installed!")
	if got := buf.String(); got != "✓ Plugin installed!\n" {
		t.Errorf("Success = %q", got)
	}
}

func TestDiffWriter(t *testing.T) {
	diff := "--- a.yml\n+++ b.yml\n@@ -1,2 +1,3 @@\n a: 1\n-b: 2\n+b: 3\n"

	SetColorEnabled(false)
	var plain bytes.Buffer
	n, err := DiffWriter{W: &plain}.Write([]byte(diff))
	if err != nil || n != len(diff) {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if plain.String() != diff {
		t.Errorf("plain diff = %q", plain.String())
	}

	SetColorEnabled(true)
	defer SetColorEnabled(false)
	var colored bytes.Buffer
	if _, err := (DiffWriter{W: &colored}).Write([]byte(diff)); err != nil {
		t.Fatal(err)
	}
	want := "\033[1m--- a.yml\033[0m\n" +
		"\033[1m+++ b.yml\033[0m\n" +
		"\033[36m@@ -1,2 +1,3 @@\033[0m\n" +
		" a: 1\n" +
		"\033[31m-b: 2\033[0m\n" +
		"\033[32m+b: 3\033[0m\n"
	if colored.String() != want {
		t.Errorf("colored diff = %q, want %q", colored.String(), want)
	}
}

func TestNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	f, err := os.CreateTemp(t.TempDir(), "ui")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if detectColor(f) {
		t.Error("detectColor should be false with NO_COLOR set")
	}
}

func TestShortenPath(t *testing.T) {
	t.Setenv("HOME", "/home/gw")

	tests := []struct{ in, want string }{
		{"/home/gw/project/config/system.config.yml", "~/project/config/system.config.yml"},
		{"/home/gw", "~"},
		{"/home/gwen/system.yml", "/home/gwen/system.yml"},
		{"/etc/gateway.config.yml", "/etc/gateway.config.yml"},
	}
	for _, tt := range tests {
		if got := ShortenPath(tt.in); got != tt.want {
			t.Errorf("ShortenPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

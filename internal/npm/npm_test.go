package npm

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestParseOutput(t *testing.T) {
	out := []byte("npm WARN something\n" +
		"add\texpress-gateway-plugin-example\t1.2.3\tnode_modules/express-gateway-plugin-example\r\n\n")

	pkg, err := ParseOutput(out)
	if err != nil {
		t.Fatalf("ParseOutput: %v", err)
	}
	if pkg.Name != "express-gateway-plugin-example" {
		t.Errorf("Name = %q", pkg.Name)
	}
	if pkg.Version != "1.2.3" {
		t.Errorf("Version = %q", pkg.Version)
	}
	if pkg.Path != "node_modules/express-gateway-plugin-example" {
		t.Errorf("Path = %q", pkg.Path)
	}
}

func TestParseOutput_TooFewFields(t *testing.T) {
	for _, out := range []string{"", "added 1 package", "add\tname\t1.0.0"} {
		_, err := ParseOutput([]byte(out))
		var parseErr *OutputParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("ParseOutput(%q) error = %v, want OutputParseError", out, err)
		}
	}
}

// fakeNPM writes an executable shell script standing in for npm.
func fakeNPM(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "npm")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFetcher_Install(t *testing.T) {
	bin := fakeNPM(t, `echo "npm notice fetching" >&2
echo "$@" > args.txt
printf 'add\teg-plugin-example\t0.1.0\tnode_modules/eg-plugin-example\n'`)

	dir := t.TempDir()
	var stderr bytes.Buffer
	f := &Fetcher{Bin: bin, Dir: dir, Stderr: &stderr}

	pkg, err := f.Install(context.Background(), "eg-plugin-example@latest")
	if err != nil {
		t.Fatalf("Install: %v", err)
	}

	if pkg.Name != "eg-plugin-example" || pkg.Version != "0.1.0" {
		t.Errorf("got %+v", pkg)
	}
	if want := filepath.Join(dir, "node_modules", "eg-plugin-example"); pkg.Path != want {
		t.Errorf("Path = %q, want %q", pkg.Path, want)
	}
	if !strings.Contains(stderr.String(), "npm notice fetching") {
		t.Errorf("stderr not passed through: %q", stderr.String())
	}

	args, err := os.ReadFile(filepath.Join(dir, "args.txt"))
	if err != nil {
		t.Fatalf("npm did not run in project dir: %v", err)
	}
	if got := strings.TrimSpace(string(args)); got != "install eg-plugin-example@latest --cache-min 86400 --parseable" {
		t.Errorf("args = %q", got)
	}
}

func TestFetcher_AbsolutePath(t *testing.T) {
	bin := fakeNPM(t, `printf 'add\teg-plugin-example\t0.1.0\t/opt/plugins/eg-plugin-example\n'`)

	f := &Fetcher{Bin: bin, Dir: t.TempDir(), Stderr: &bytes.Buffer{}}
	pkg, err := f.Install(context.Background(), "eg-plugin-example")
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if pkg.Path != "/opt/plugins/eg-plugin-example" {
		t.Errorf("Path = %q", pkg.Path)
	}
}

func TestFetcher_ExitError(t *testing.T) {
	bin := fakeNPM(t, `echo "npm ERR! 404" >&2
exit 3`)

	f := &Fetcher{Bin: bin, Dir: t.TempDir(), Stderr: &bytes.Buffer{}}
	_, err := f.Install(context.Background(), "missing-plugin")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 3 {
		t.Errorf("Code = %d, want 3", exitErr.Code)
	}
}

func TestFetcher_UnparsableOutput(t *testing.T) {
	bin := fakeNPM(t, `echo "up to date in 1s"`)

	f := &Fetcher{Bin: bin, Dir: t.TempDir(), Stderr: &bytes.Buffer{}}
	_, err := f.Install(context.Background(), "eg-plugin-example")

	var parseErr *OutputParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected OutputParseError, got %v", err)
	}
	if parseErr.Line != "up to date in 1s" {
		t.Errorf("Line = %q", parseErr.Line)
	}
}

func TestFetcher_SpawnError(t *testing.T) {
	f := &Fetcher{
		Bin:    filepath.Join(t.TempDir(), "no-such-npm"),
		Dir:    t.TempDir(),
		Stderr: &bytes.Buffer{},
	}
	_, err := f.Install(context.Background(), "eg-plugin-example")

	var spawnErr *SpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("expected SpawnError, got %v", err)
	}
}

func TestFetcher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &Fetcher{Bin: "npm", Dir: t.TempDir()}
	if _, err := f.Install(ctx, "eg-plugin-example"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

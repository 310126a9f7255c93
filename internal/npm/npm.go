// Package npm installs plugin packages with the npm CLI.
package npm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/amerryma/express-gateway/internal/log"
)

// cacheMinSeconds lets npm serve package metadata from its cache for a day.
const cacheMinSeconds = 24 * 60 * 60

// Package describes an installed package as reported by npm.
type Package struct {
	// Name is the resolved package name.
	Name    string
	Version string
	// Path is the directory the package was installed into.
	Path string
}

// Fetcher runs `npm install` for a project directory.
type Fetcher struct {
	// Bin is the npm executable. Defaults to "npm".
	Bin string
	// Dir is the project directory npm runs in.
	Dir string
	// Stderr receives npm's stderr unmodified. Defaults to os.Stderr.
	Stderr io.Writer
}

// Install installs spec (a package name, optionally with a version or tag)
// and returns what npm reports about it.
func (f *Fetcher) Install(ctx context.Context, spec string) (*Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bin := f.Bin
	if bin == "" {
		bin = "npm"
	}
	stderr := f.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	args := []string{"install", spec, "--cache-min", strconv.Itoa(cacheMinSeconds), "--parseable"}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = f.Dir
	cmd.Env = os.Environ()
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = stderr

	log.Debug("running npm", "bin", bin, "args", args, "dir", f.Dir)
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Package: spec, Bin: bin, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{Package: spec, Code: exitErr.ExitCode()}
		}
		return nil, &SpawnError{Package: spec, Bin: bin, Err: err}
	}

	pkg, err := ParseOutput(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(pkg.Path) {
		pkg.Path = filepath.Join(f.Dir, pkg.Path)
	}

	log.Debug("npm install finished", "name", pkg.Name, "version", pkg.Version, "path", pkg.Path)
	return pkg, nil
}

// ParseOutput reads the package from `npm install --parseable` output.
// Only the last line counts; it is tab separated as
// action, name, version, path.
func ParseOutput(out []byte) (*Package, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	last := strings.TrimRight(lines[len(lines)-1], "\r")

	fields := strings.Split(last, "\t")
	if len(fields) < 4 {
		return nil, &OutputParseError{Line: last}
	}
	return &Package{
		Name:    fields[1],
		Version: fields[2],
		Path:    fields[3],
	}, nil
}

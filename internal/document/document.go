// Package document edits structured configuration files in place.
//
// Two formats are supported and chosen by file name: JSON (".json", any case)
// and YAML (everything else). YAML files are edited by patching the original
// text so comments, key order and blank lines outside the edited region
// survive. JSON files are re-serialized with a fixed two-space indent.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/moby/sys/atomicwriter"
	"github.com/pmezard/go-difflib/difflib"
)

// Format is the serialization format of a document.
type Format int

const (
	// FormatYAML is the human-edited, formatting-preserving format.
	FormatYAML Format = iota
	// FormatJSON is re-serialized in full on every write.
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	default:
		return "yaml"
	}
}

// FormatFor returns the format used for the file at path.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Path addresses a value by its mapping keys, outermost first.
type Path []string

func (p Path) String() string {
	return strings.Join(p, ".")
}

// Document is a configuration file loaded for editing.
type Document interface {
	// Path is the file the document was loaded from and is written back to.
	Path() string
	// Format is fixed for the lifetime of the document.
	Format() Format
	// Original returns the bytes the document was parsed from.
	Original() []byte
	// Get returns the value at path decoded into plain Go values
	// (map[string]any, []any, string, bool, numbers or nil).
	Get(path Path) (any, bool)
	// Set stores value at path, creating intermediate mappings as needed.
	Set(path Path, value any) error
	// Serialize renders the document with all edits applied.
	Serialize() ([]byte, error)
}

// Load reads and parses the file at path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse parses data as the document stored at path.
func Parse(path string, data []byte) (Document, error) {
	if FormatFor(path) == FormatJSON {
		return parseJSON(path, data)
	}
	return parseYAML(path, data)
}

// Changed reports whether serializing doc would change its file.
func Changed(doc Document) (bool, error) {
	out, err := doc.Serialize()
	if err != nil {
		return false, err
	}
	return string(out) != trimmedOriginal(doc), nil
}

// Write serializes doc and atomically replaces its file, keeping the file mode.
func Write(doc Document) error {
	out, err := doc.Serialize()
	if err != nil {
		return fmt.Errorf("rendering %s: %w", doc.Path(), err)
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(doc.Path()); err == nil {
		perm = info.Mode().Perm()
	}

	if err := atomicwriter.WriteFile(doc.Path(), out, perm); err != nil {
		return fmt.Errorf("writing config %s: %w", doc.Path(), err)
	}
	return nil
}

// Diff returns a unified diff between the file on disk and the edited document.
// It is empty when the edits do not change the file.
func Diff(doc Document) (string, error) {
	out, err := doc.Serialize()
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", doc.Path(), err)
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(trimmedOriginal(doc)),
		B:        difflib.SplitLines(string(out)),
		FromFile: doc.Path(),
		ToFile:   doc.Path(),
		FromDate: "current",
		ToDate:   "updated",
		Context:  3,
	})
}

// trimmedOriginal is the original text without trailing whitespace, which
// Serialize never emits.
func trimmedOriginal(doc Document) string {
	return strings.TrimRightFunc(string(doc.Original()), unicode.IsSpace)
}

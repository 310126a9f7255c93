package document

import "fmt"

// ParseError indicates a configuration file whose contents could not be parsed.
type ParseError struct {
	Path   string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s config %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConflictError indicates an edit below a value that is not a mapping.
type ConflictError struct {
	// Path is the existing value that blocks the edit.
	Path Path
	// Kind describes what was found there ("string", "sequence", ...).
	Kind string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot set keys below %s: it is a %s, not a mapping", e.Path, e.Kind)
}

package manifest

import "fmt"

// LoadError indicates the manifest of an installed package could not be loaded.
type LoadError struct {
	// Dir is the package directory.
	Dir string
	// Path is the file being read, when known.
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	where := e.Dir
	if e.Path != "" {
		where = e.Path
	}
	msg := fmt.Sprintf("loading plugin manifest from %s: %s", where, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

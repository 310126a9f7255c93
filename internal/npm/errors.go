package npm

import "fmt"

// SpawnError indicates npm could not be started.
type SpawnError struct {
	Package string
	Bin     string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot install %s: starting %s: %v", e.Package, e.Bin, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitError indicates npm ran but exited with a non-zero status.
type ExitError struct {
	Package string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("cannot install %s: npm exited with status %d", e.Package, e.Code)
}

// OutputParseError indicates the npm output did not describe an installed package.
type OutputParseError struct {
	// Line is the last line of output that failed to parse.
	Line string
}

func (e *OutputParseError) Error() string {
	return fmt.Sprintf("cannot parse npm output while installing plugin: %q", e.Line)
}

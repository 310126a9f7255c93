package plugin

import (
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	errNotFound        = errdefs.ErrNotFound
	errInvalidArgument = errdefs.ErrInvalidArgument
)

// OptionValidationError indicates an answer that does not satisfy its option.
// Prompters show it and ask again.
type OptionValidationError struct {
	Option string
	Reason string
}

func (e *OptionValidationError) Error() string {
	return fmt.Sprintf("value for %s %s", e.Option, e.Reason)
}

// InvalidOptionTypeError indicates a manifest option with an unsupported type.
type InvalidOptionTypeError struct {
	Option string
	Type   string
}

func (e *InvalidOptionTypeError) Error() string {
	return fmt.Sprintf("invalid plugin option: %s. Type must be string, boolean, or number (got %q)", e.Option, e.Type)
}

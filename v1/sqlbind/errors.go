package sqlbind

import (
	"errors"
	"fmt"
)

// ErrBinding is the root of every error produced by this package. Callers use
// errors.Is(err, ErrBinding) to tell a caller mistake from an engine failure.
var ErrBinding = errors.New("sqlbind: invalid placeholder binding")

var (
	// ErrMixedPlaceholders is returned when one template uses both `?` and `@name`.
	ErrMixedPlaceholders = fmt.Errorf("%w: template mixes positional and named placeholders", ErrBinding)

	// ErrArgumentCount is returned when a positional template receives a
	// different number of arguments than it has placeholders.
	ErrArgumentCount = fmt.Errorf("%w: argument count does not match placeholders", ErrBinding)

	// ErrStyleMismatch is returned when a named template receives positional
	// arguments or a positional template receives a Named set.
	ErrStyleMismatch = fmt.Errorf("%w: argument set does not match placeholder style", ErrBinding)

	// ErrNumberedPlaceholder is returned for SQLite-style numbered markers
	// such as `?1` appearing in a template.
	ErrNumberedPlaceholder = fmt.Errorf("%w: numbered placeholders are not accepted in templates", ErrBinding)
)

// BindError reports a binding failure together with the template it occurred in.
type BindError struct {
	Template string
	Err      error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("%v (template: %q)", e.Err, e.Template)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

func bindErr(template string, err error) error {
	return &BindError{Template: template, Err: err}
}

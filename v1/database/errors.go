package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/lifecoach/std/v1/sqlbind"
)

// Kind groups storage failures by how a caller is expected to react.
type Kind int

const (
	// KindUnknown covers engine failures that fit no other group.
	KindUnknown Kind = iota
	// KindConstraint is a unique, foreign key, check or not-null violation.
	KindConstraint
	// KindConnectivity is a lost connection, exhausted pool or lock timeout.
	KindConnectivity
	// KindTransaction is a failed BEGIN, COMMIT or savepoint statement.
	KindTransaction
)

func (k Kind) String() string {
	switch k {
	case KindConstraint:
		return "constraint"
	case KindConnectivity:
		return "connectivity"
	case KindTransaction:
		return "transaction"
	default:
		return "unknown"
	}
}

// Sentinel errors. A *StorageError matches ErrStorage, the sentinel of its
// Kind and, for constraint violations, the specific violation.
var (
	ErrStorage      = errors.New("storage error")
	ErrConstraint   = errors.New("constraint violation")
	ErrDuplicateKey = errors.New("duplicate key value violates unique constraint")
	ErrForeignKey   = errors.New("foreign key constraint violation")
	ErrConnection   = errors.New("database connection unavailable")
	ErrTransaction  = errors.New("transaction control statement failed")
	ErrCommitFailed = errors.New("commit failed, transaction rolled back")
	ErrScopeClosed  = errors.New("transaction scope used after it was released")
	ErrClientClosed = errors.New("database client is shut down")
)

// StorageError wraps an engine failure with the template that caused it.
// The engine error is never replaced; Unwrap returns it.
type StorageError struct {
	Engine   Engine
	Op       string
	Template string
	Kind     Kind
	// Reason is an optional sentinel refining Kind, such as ErrDuplicateKey.
	Reason error
	Err    error
}

func (e *StorageError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Engine, e.Op, e.Err)
	if e.Template != "" {
		msg += fmt.Sprintf(" (template: %q)", e.Template)
	}
	return msg
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels against the classification of e.
func (e *StorageError) Is(target error) bool {
	switch target {
	case ErrStorage:
		return true
	case ErrConstraint:
		return e.Kind == KindConstraint
	case ErrConnection:
		return e.Kind == KindConnectivity
	case ErrTransaction:
		return e.Kind == KindTransaction
	}
	return e.Reason != nil && target == e.Reason
}

// Classifier maps an engine error to a Kind and an optional refining sentinel.
type Classifier func(err error) (Kind, error)

// Wrap turns err into a *StorageError. Errors that already are storage
// errors, binding errors from sqlbind and nil pass through unchanged.
func Wrap(engine Engine, op, template string, err error, classify Classifier) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, ErrScopeClosed) || errors.Is(err, ErrClientClosed) || errors.Is(err, sqlbind.ErrBinding) {
		return err
	}
	kind, reason := KindUnknown, error(nil)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindConnectivity
	case classify != nil:
		kind, reason = classify(err)
	}
	return &StorageError{
		Engine:   engine,
		Op:       op,
		Template: template,
		Kind:     kind,
		Reason:   reason,
		Err:      err,
	}
}

// IsConstraint reports whether err is a constraint violation.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}

// IsRetryable reports whether err is a transient connectivity failure that
// the caller may choose to retry. The storage layer itself never retries.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConnection)
}

// KindOf returns the Kind of err, or KindUnknown if err is not a storage error.
func KindOf(err error) Kind {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

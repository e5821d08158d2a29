package httperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind groups business errors by how the caller is expected to react.
type Kind string

const (
	// KindValidation: the request itself is wrong. Never retried.
	KindValidation Kind = "validation"
	// KindConflict: the slot is taken or blocked. The caller may offer an override.
	KindConflict Kind = "conflict"
	// KindPersistence: the store rejected the write. Re-validate before any retry.
	KindPersistence Kind = "persistence"
)

type BusinessError struct {
	Kind   Kind
	Code   string
	Reason string
	Args   map[string]any
	Err    error
}

func (e *BusinessError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if len(e.Args) > 0 {
		keys := make([]string, 0, len(e.Args))
		for k := range e.Args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Args[k])
		}
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// Arg attaches context (staff, date, slot...) to the error.
func (e *BusinessError) Arg(key string, value any) *BusinessError {
	if e.Args == nil {
		e.Args = make(map[string]any)
	}
	e.Args[key] = value
	return e
}

func (e *BusinessError) Wrap(err error) *BusinessError {
	e.Err = err
	return e
}

// ErrBusiness is the plain validation error used across use cases.
func ErrBusiness(code string) error {
	return &BusinessError{Kind: KindValidation, Code: code}
}

func ErrValidation(code string) *BusinessError {
	return &BusinessError{Kind: KindValidation, Code: code}
}

func ErrConflict(code, reason string) *BusinessError {
	return &BusinessError{Kind: KindConflict, Code: code, Reason: reason}
}

func ErrPersistence(op string, err error) *BusinessError {
	return &BusinessError{Kind: KindPersistence, Code: op, Err: err}
}

func IsBusiness(err error, code string) bool {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// KindOf reports the category of err. Anything that is not a
// BusinessError is treated as a persistence failure.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindPersistence
}

// ReasonOf returns the human readable reason carried by a conflict.
func ReasonOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Reason
	}
	return ""
}

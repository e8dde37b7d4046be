package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// RecordFailure is a per-record failure reported by the data backend.
type RecordFailure struct {
	Message string       `json:"message,omitempty"`
	Fields  []FieldError `json:"errors,omitempty"`
}

// BackendError is returned when the data backend answers with a non-success response
// or when some records of a batch failed.
type BackendError struct {
	Op       string
	Message  string
	Failures []RecordFailure
}

func NewBackendError(op, msg string, failures ...RecordFailure) error {
	return &BackendError{Op: op, Message: msg, Failures: failures}
}

func (err BackendError) Error() string {
	var b strings.Builder
	b.WriteString(err.Op)
	if err.Message != "" {
		b.WriteString(": ")
		b.WriteString(err.Message)
	}
	if n := len(err.Failures); n > 0 {
		fmt.Fprintf(&b, " (%d failed records)", n)
	}
	return b.String()
}

// Messages flattens the failures into "<field>: <message>" lines.
func (err BackendError) Messages() []string {
	msgs := make([]string, 0, len(err.Failures))
	for _, f := range err.Failures {
		for _, fe := range f.Fields {
			msgs = append(msgs, fe.Field+": "+fe.Error)
		}
		if f.Message != "" {
			msgs = append(msgs, f.Message)
		}
	}
	return msgs
}

func IsBackendError(err error) bool {
	_, ok := errors.Cause(err).(*BackendError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

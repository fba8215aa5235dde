package core

import (
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	// ErrUnavailable marks a remote source that could not be reached: network failure, timeout, unreadable answer.
	ErrUnavailable = errors.New("remote source unavailable")
	// ErrNotAuthenticated is returned before any network call when no session token is saved.
	ErrNotAuthenticated = errors.New("please log in")
)

// IsUnavailable reports whether err means the remote source was not reached, as opposed to rejecting the request.
func IsUnavailable(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrUnavailable || cause == ErrNotAuthenticated
}

// IsNotFound reports whether err (or its cause) says the requested object does not exist.
func IsNotFound(err error) bool {
	nf, ok := errors.Cause(err).(interface{ NotFound() bool })
	return ok && nf.NotFound()
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return strings.Join(msgs, "; ")
}

// IsValidationError reports whether err (or its cause) is a validation failure.
func IsValidationError(err error) bool {
	switch errors.Cause(err).(type) {
	case validator.ValidationErrors, *ValidationError:
		return true
	}
	return false
}

// FieldErrors flattens validation errors into {field: message}.
// It returns nil if err is not a validation error.
func FieldErrors(err error, translator ut.Translator) map[string]string {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			if translator != nil {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			} else {
				fldErrs[vErr.Field()] = vErr.Error()
			}
		}
		return fldErrs
	case *ValidationError:
		fldErrs := make(map[string]string, len(origErr.Fields))
		for _, fErr := range origErr.Fields {
			fldErrs[fErr.Field] = fErr.Error
		}
		return fldErrs
	}
	return nil
}

// JoinFieldErrors renders {field: message} as a stable, human readable string.
func JoinFieldErrors(fldErrs map[string]string) string {
	keys := make([]string, 0, len(fldErrs))
	for k := range fldErrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fldErrs[k])
	}
	return strings.Join(parts, "; ")
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

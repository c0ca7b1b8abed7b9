package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/wurkwurk/internal/logger"
	"github.com/julianstephens/wurkwurk/internal/models"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// ResultError is a failed submission surfaced as an error.
type ResultError struct {
	Kind    models.ResultKind
	Message string
	Err     error
}

func (e *ResultError) Error() string {
	if hint := e.Kind.Hint(); hint != "" {
		return fmt.Sprintf("%s (%s)", e.Message, hint)
	}
	return e.Message
}

func (e *ResultError) Unwrap() error {
	return e.Err
}

// FromResult returns nil for a successful submission and a *ResultError otherwise.
func FromResult(res models.SubmissionResult) error {
	if res.OK() {
		return nil
	}
	return &ResultError{Kind: res.Kind, Message: res.Message, Err: res.Err}
}

// IsKind reports whether err is a failed submission of the given kind.
func IsKind(err error, kind models.ResultKind) bool {
	var re *ResultError
	return errors.As(err, &re) && re.Kind == kind
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}

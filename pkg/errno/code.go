// Package errno implements the pipeline's error taxonomy (§7): every
// failure a worker raises classifies into one of a fixed set of kinds so
// the queue broker can decide retry vs. terminal failure without
// inspecting error text.
package errno

import "fmt"

// Kind is one of the taxonomy's fixed failure categories (§7).
type Kind string

const (
	KindInvalidInput         Kind = "invalid_input"
	KindExternalToolFailure  Kind = "external_tool_failure"
	KindTranscriptionFailure Kind = "transcription_failure"
	KindSignalFailure        Kind = "signal_failure"
	KindStorageFailure       Kind = "storage_failure"
	KindDataIntegrity        Kind = "data_integrity"
	KindTimeout              Kind = "timeout"
)

// retryable is each kind's default retry policy: invalid_input and
// data_integrity are terminal, everything else is transient (§7).
var retryable = map[Kind]bool{
	KindInvalidInput:         false,
	KindExternalToolFailure:  true,
	KindTranscriptionFailure: true,
	KindSignalFailure:        true,
	KindStorageFailure:       true,
	KindDataIntegrity:        false,
	KindTimeout:              true,
}

// Error carries a taxonomy kind alongside the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable reports whether the queue broker should retry the task that
// produced this error (§7).
func (e *Error) Retryable() bool { return retryable[e.Kind] }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Retryable reports whether err should be retried. An error that isn't a
// taxonomy *Error is treated as retryable, since unclassified failures are
// more likely transient infrastructure noise than a permanent data problem.
func Retryable(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return true
	}
	return e.Retryable()
}

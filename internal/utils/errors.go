package utils

import "errors"

// Failure kinds as surfaced to the user. Each is shown at most once and
// never retried automatically.
const (
	KindPermission = "permission"
	KindCapture    = "capture"
	KindLocation   = "location"
	KindSubmission = "submission"
)

// CustomError tags a user-facing message with one of the failure kinds.
// Error() returns the message verbatim so the displayed text stays exactly
// what the server or provider said.
type CustomError struct {
	Kind    string
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

func New(kind, message string) error {
	return &CustomError{
		Kind:    kind,
		Message: message,
	}
}

// KindOf reports the failure kind of err, defaulting to submission for
// untagged errors reaching the user from the submit path.
func KindOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindSubmission
}

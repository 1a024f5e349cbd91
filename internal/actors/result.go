package actors

import "fmt"

// Status classifies the outcome of an actor operation. Duplicate, NotFound
// and TooLate are expected, user-facing outcomes: they travel back to the
// caller as informational results, never as errors. Only store failures
// surface as errors.
type Status string

const (
	StatusOK        Status = "ok"
	StatusDuplicate Status = "duplicate"
	StatusNotFound  Status = "not_found"
	StatusTooLate   Status = "too_late"
)

// Result is the caller-facing outcome of an actor operation.
type Result struct {
	Status  Status `json:"-"`
	Message string `json:"message"`
}

func ok(format string, args ...any) Result {
	return Result{Status: StatusOK, Message: fmt.Sprintf(format, args...)}
}

func duplicate(message string) Result {
	return Result{Status: StatusDuplicate, Message: message}
}

func notFound(format string, args ...any) Result {
	return Result{Status: StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func tooLate(message string) Result {
	return Result{Status: StatusTooLate, Message: message}
}

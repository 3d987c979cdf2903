package acquire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/ultimate-tab/internal/model"
)

// Failure reasons recorded in model.Attempt.Reason.
const (
	ReasonEmptyResponse = "empty response"
	ReasonTooShort      = "too short"
	ReasonNoMarker      = "no structural marker"
	ReasonNoContent     = "no content container"
	ReasonZeroLines     = "zero parsed lines"
	reasonException     = "exception: "
)

var (
	// ErrAcquisitionFailed matches every *AcquisitionError with errors.Is.
	ErrAcquisitionFailed = errors.New("tab acquisition failed")

	// ErrEmptyResponse is recorded when a fetch returns only whitespace.
	ErrEmptyResponse = errors.New("empty response")

	// ErrTooShort is recorded when a document is below the minimum length.
	ErrTooShort = errors.New("response too short")

	// ErrNoMarker is recorded when a fast fetch has no tab-content marker.
	ErrNoMarker = errors.New("no structural marker in response")
)

func exceptionReason(err error) string {
	return reasonException + err.Error()
}

// AcquisitionError is returned when every attempt failed.
//
// errors.Is reaches the error of each attempt, so a caller can check for
// ultimate.ErrNoContent or context.DeadlineExceeded directly.
type AcquisitionError struct {
	URL      string
	Attempts []model.Attempt

	// Cause is set when the sequence was cut short by the context.
	Cause error
}

// Reasons returns the failure reason of each attempt, in order.
func (e *AcquisitionError) Reasons() []string {
	reasons := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		reasons[i] = a.Reason
	}
	return reasons
}

func (e *AcquisitionError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.String()
	}
	msg := fmt.Sprintf("acquire %s: all %d attempt(s) failed", e.URL, len(e.Attempts))
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, "; ")
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (stopped: %v)", e.Cause)
	}
	return msg
}

// Is reports whether target is ErrAcquisitionFailed.
func (e *AcquisitionError) Is(target error) bool {
	return target == ErrAcquisitionFailed
}

// Unwrap returns the attempt errors and the context cause.
func (e *AcquisitionError) Unwrap() []error {
	var errs []error
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

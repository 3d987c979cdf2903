package model

import "fmt"

// Attempt records the outcome of one acquisition attempt.
type Attempt struct {
	// Strategy names the fetch strategy, e.g. "fast" or "rendered".
	Strategy string `json:"strategy"`

	// Number is the 1-based attempt number within the strategy.
	Number int `json:"number"`

	Succeeded bool `json:"succeeded"`

	// Reason is a short machine-readable failure reason.
	// Empty on success.
	Reason string `json:"reason,omitempty"`

	// Err is the underlying error, if any. It is not serialized.
	Err error `json:"-"`
}

// String formats the attempt as "strategy#n: reason".
func (a Attempt) String() string {
	if a.Succeeded {
		return fmt.Sprintf("%s#%d: ok", a.Strategy, a.Number)
	}
	return fmt.Sprintf("%s#%d: %s", a.Strategy, a.Number, a.Reason)
}

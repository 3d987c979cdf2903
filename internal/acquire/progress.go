package acquire

import "github.com/handiism/ultimate-tab/internal/model"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// State is a step of the acquisition sequence.
type State int

const (
	StateNotStarted State = iota
	StateTryingFast
	StateTryingSlow
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateTryingFast:
		return "trying-fast"
	case StateTryingSlow:
		return "trying-slow"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ProgressEvent represents an acquisition progress update.
type ProgressEvent struct {
	URL     string
	State   State
	Message string
	Level   ProgressLevel

	// Attempt is set once an attempt has finished.
	Attempt *model.Attempt
}

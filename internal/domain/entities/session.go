package entities

import "time"

// SessionState is a node of the screening state machine.
type SessionState string

const (
	StateIdle    SessionState = "idle"
	StateActive  SessionState = "active"
	StateWarning SessionState = "warning"
	StateEnding  SessionState = "ending"
)

// StatusOff is shown when no voice session exists.
const StatusOff = "off"

// Session is one screening attempt, bounded by an explicit start and end.
type Session struct {
	ID               string            `json:"callId,omitempty"`
	State            SessionState      `json:"state"`
	Status           string            `json:"status"`
	MaxDuration      time.Duration     `json:"-"`
	MaxSeconds       int               `json:"maxDurationSeconds"`
	RemainingSeconds int               `json:"remainingSeconds"`
	Remaining        string            `json:"remaining"`
	StartedAt        *time.Time        `json:"startedAt,omitempty"`
	EndingSoon       bool              `json:"endingSoon"`
	ShowSpeakerMute  bool              `json:"showSpeakerMute"`
	Transcript       []TranscriptEntry `json:"transcript"`
	DebugMessages    []DebugEvent      `json:"debugMessages,omitempty"`
}

// Active reports whether a call is in progress.
func (s Session) Active() bool {
	return s.State != StateIdle
}

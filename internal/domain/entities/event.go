package entities

import "time"

type EventType string

const (
	EventSessionStarted   EventType = "session_started"
	EventSessionEnded     EventType = "session_ended"
	EventStatus           EventType = "status"
	EventTranscript       EventType = "transcript"
	EventDebug            EventType = "debug"
	EventTimeWarning      EventType = "time_warning"
	EventTimeEnding       EventType = "time_ending"
	EventCandidateProfile EventType = "candidate_profile_updated"
)

// SessionEvent is the notification delivered to observers of a session.
type SessionEvent struct {
	Type             EventType               `json:"type"`
	CallID           string                  `json:"callId,omitempty"`
	Status           string                  `json:"status,omitempty"`
	Transcript       []TranscriptEntry       `json:"transcript,omitempty"`
	Debug            *DebugEvent             `json:"debug,omitempty"`
	Candidate        *CandidateProfileUpdate `json:"candidate,omitempty"`
	RemainingSeconds int                     `json:"remainingSeconds,omitempty"`
	At               time.Time               `json:"at"`
}

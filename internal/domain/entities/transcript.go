package entities

import (
	"encoding/json"
	"time"
)

type Speaker string

const (
	SpeakerAgent Speaker = "agent"
	SpeakerUser  Speaker = "user"
)

// TranscriptEntry is one utterance. Display order is arrival order.
type TranscriptEntry struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
	Final   bool    `json:"isFinal"`
	Medium  string  `json:"medium,omitempty"`
	Ordinal int     `json:"ordinal"`
}

// DebugEvent is an opaque diagnostic payload from the voice session.
type DebugEvent struct {
	Message    json.RawMessage `json:"message"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// FilterTranscript drops user lines unless includeUser is set.
func FilterTranscript(entries []TranscriptEntry, includeUser bool) []TranscriptEntry {
	out := make([]TranscriptEntry, 0, len(entries))
	for _, entry := range entries {
		if !includeUser && entry.Speaker != SpeakerAgent {
			continue
		}
		out = append(out, entry)
	}
	return out
}

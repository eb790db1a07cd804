package Iservices

import (
	"context"

	"interview-screener/internal/domain/entities"
)

// SessionCallbacks receive notifications from a joined voice call.
// Transcript changes carry the whole sequence; debug messages are appended.
type SessionCallbacks struct {
	OnStatusChange     func(status string)
	OnTranscriptChange func(transcript []entities.TranscriptEntry)
	OnDebugMessage     func(message entities.DebugEvent)
}

// IVoiceSession is the external call-start/call-stop entry point.
type IVoiceSession interface {
	StartCall(ctx context.Context, callbacks SessionCallbacks, cfg entities.CallConfig, showDebugMessages bool) error
	EndCall(ctx context.Context) error
}

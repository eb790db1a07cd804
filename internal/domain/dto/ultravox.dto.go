package dto

import (
	"encoding/json"

	"interview-screener/internal/domain/entities"
)

// CallRequest is the call configuration posted by the UI to the proxy.
type CallRequest struct {
	entities.CallConfig
	Medium json.RawMessage `json:"medium,omitempty"`
}

// UltravoxCallRequest is the exact body sent to POST /calls.
type UltravoxCallRequest struct {
	SystemPrompt         string                     `json:"systemPrompt"`
	Model                string                     `json:"model,omitempty"`
	Voice                string                     `json:"voice,omitempty"`
	LanguageHint         string                     `json:"languageHint"`
	Temperature          *float64                   `json:"temperature,omitempty"`
	InitialMessages      []json.RawMessage          `json:"initialMessages"`
	JoinTimeout          string                     `json:"joinTimeout,omitempty"`
	MaxDuration          string                     `json:"maxDuration"`
	TimeExceededMessage  string                     `json:"timeExceededMessage,omitempty"`
	SelectedTools        []entities.SelectedTool    `json:"selectedTools,omitempty"`
	Medium               json.RawMessage            `json:"medium"`
	RecordingEnabled     bool                       `json:"recordingEnabled"`
	FirstSpeaker         string                     `json:"firstSpeaker,omitempty"`
	FirstSpeakerSettings json.RawMessage            `json:"firstSpeakerSettings,omitempty"`
	Metadata             map[string]json.RawMessage `json:"metadata,omitempty"`
}

// UltravoxCallResponse holds the fields of a created call this service
// reads. The proxy itself forwards the upstream body untouched.
type UltravoxCallResponse struct {
	CallID  string `json:"callId"`
	JoinURL string `json:"joinUrl"`
	Created string `json:"created,omitempty"`
}

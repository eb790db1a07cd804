package dto

import "encoding/json"

// Data message types exchanged on a joined call's socket.
const (
	MessageTypeState            = "state"
	MessageTypeTranscript       = "transcript"
	MessageTypeDebug            = "debug"
	MessageTypeExperimental     = "experimental_message"
	MessageTypeClientToolInvoke = "client_tool_invocation"
	MessageTypeClientToolResult = "client_tool_result"
	MessageTypeHangUp           = "hang_up"
)

// Values of ClientToolResult error fields.
const (
	ToolResponseTypeError       = "tool-error"
	ToolErrorTypeUndefined      = "undefined"
	ToolErrorTypeImplementation = "implementation-error"
)

// DataMessage is an inbound frame. Only the fields of its Type are set.
type DataMessage struct {
	Type string `json:"type"`

	State string `json:"state,omitempty"`

	Role    string  `json:"role,omitempty"`
	Medium  string  `json:"medium,omitempty"`
	Text    *string `json:"text,omitempty"`
	Delta   *string `json:"delta,omitempty"`
	Final   bool    `json:"final,omitempty"`
	Ordinal int     `json:"ordinal,omitempty"`

	ToolName     string          `json:"toolName,omitempty"`
	InvocationID string          `json:"invocationId,omitempty"`
	Parameters   json.RawMessage `json:"parameters,omitempty"`
}

type ClientToolResult struct {
	Type         string `json:"type"`
	InvocationID string `json:"invocationId"`
	Result       string `json:"result,omitempty"`
	ResponseType string `json:"responseType,omitempty"`
	ErrorType    string `json:"errorType,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type HangUp struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

package dto

type StartScreeningRequest struct {
	JobDescription string `json:"jobDescription"`
}

type ToolResultResponse struct {
	Result string `json:"result"`
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// PageOptions are the query flags the screening page understands.
type PageOptions struct {
	ShowSpeakerMute     bool
	ModelOverride       string
	ShowDebugMessages   bool
	ShowUserTranscripts bool
}

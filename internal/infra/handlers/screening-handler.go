package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"interview-screener/internal/domain/dto"
	"interview-screener/internal/domain/entities"
	"interview-screener/internal/domain/interfaces/repository"
	Iservices "interview-screener/internal/domain/interfaces/services"
	"interview-screener/internal/infra/logger"

	"github.com/gorilla/mux"
)

const currentAlias = "current"

type ScreeningHandlers struct {
	Logger           *logger.Logger
	ScreeningService Iservices.IScreeningService
	ToolCallRelay    Iservices.IToolCallRelay
	ProfileService   Iservices.IProfileService
}

func NewScreeningHandlers(logger *logger.Logger, screeningService Iservices.IScreeningService, toolCallRelay Iservices.IToolCallRelay, profileService Iservices.IProfileService) *ScreeningHandlers {
	return &ScreeningHandlers{
		Logger:           logger,
		ScreeningService: screeningService,
		ToolCallRelay:    toolCallRelay,
		ProfileService:   profileService,
	}
}

// StartScreening starts a call for the posted job description.
//
// HTTP Status Codes:
// - 201 Created: the new session snapshot.
// - 400 Bad Request: invalid body or empty job description.
// - 409 Conflict: a call is already active.
// - 502 Bad Gateway: the voice call could not be started.
func (th *ScreeningHandlers) StartScreening(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var body dto.StartScreeningRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		th.Logger.Warn(fmt.Sprintf("Invalid start request payload: %s", err.Error()))
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	opts := pageOptions(r)
	req := Iservices.StartRequest{
		JobDescription:    body.JobDescription,
		ShowDebugMessages: opts.ShowDebugMessages,
	}
	if opts.ModelOverride != "" {
		req.ModelOverride = entities.ModelPrefix + opts.ModelOverride
	}

	session, err := th.ScreeningService.StartScreening(r.Context(), req)
	switch {
	case errors.Is(err, Iservices.ErrEmptyJobDescription):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, Iservices.ErrCallActive):
		writeError(w, http.StatusConflict, err.Error(), "")
	case err != nil:
		writeError(w, http.StatusBadGateway, "Error starting call", err.Error())
	default:
		session.ShowSpeakerMute = opts.ShowSpeakerMute
		writeJSON(w, http.StatusCreated, session)
	}
}

// CurrentScreening returns the session snapshot shaped by the page flags.
func (th *ScreeningHandlers) CurrentScreening(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, th.ScreeningService.Snapshot(pageOptions(r)))
}

// EndScreening ends the active call. Ending with no call is not an error.
func (th *ScreeningHandlers) EndScreening(w http.ResponseWriter, r *http.Request) {
	if err := th.ScreeningService.EndScreening(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "Error ending screening", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, th.ScreeningService.Snapshot(pageOptions(r)))
}

// UpdateCandidateProfile accepts a client tool invocation forwarded by a
// browser-hosted call. The path call id is used when the body has none.
func (th *ScreeningHandlers) UpdateCandidateProfile(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	callID, err := th.resolveCallID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), "")
		return
	}

	parameters := map[string]any{}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &parameters); err != nil {
			th.Logger.Warn(fmt.Sprintf("Invalid tool parameters: %s", err.Error()))
			writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}
	}

	if id, ok := parameters["callId"].(string); !ok || id == "" {
		parameters["callId"] = callID
	}

	writeJSON(w, http.StatusOK, dto.ToolResultResponse{Result: th.ToolCallRelay.UpdateCandidateProfile(parameters)})
}

// CandidateProfile returns the latest profile relayed for the call.
func (th *ScreeningHandlers) CandidateProfile(w http.ResponseWriter, r *http.Request) {
	callID, err := th.resolveCallID(r)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error(), "")
		return
	}

	profile, err := th.ProfileService.FindProfile(r.Context(), callID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No candidate profile for call", callID)
		return
	}
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to load candidate profile: %s", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to load candidate profile", "")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// resolveCallID reads {callId} from the path; "current" names the active call.
func (th *ScreeningHandlers) resolveCallID(r *http.Request) (string, error) {
	callID := mux.Vars(r)["callId"]
	if callID != currentAlias {
		return callID, nil
	}
	return th.ScreeningService.CurrentCallID()
}

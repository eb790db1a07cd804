package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"interview-screener/internal/domain/dto"
	"interview-screener/internal/domain/entities"
	"interview-screener/internal/domain/interfaces/repository"
	Iservices "interview-screener/internal/domain/interfaces/services"
	"interview-screener/internal/infra/logger"
	"interview-screener/internal/infra/provider"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProxy struct {
	res json.RawMessage
	err error
	got dto.CallRequest
}

func (f *fakeProxy) Reshape(req dto.CallRequest) dto.UltravoxCallRequest {
	return dto.UltravoxCallRequest{}
}

func (f *fakeProxy) CreateCall(ctx context.Context, req dto.CallRequest) (json.RawMessage, error) {
	f.got = req
	return f.res, f.err
}

type fakeScreening struct {
	startErr error
	endErr   error
	started  Iservices.StartRequest
	opts     dto.PageOptions
	current  string
	handler  func(entities.SessionEvent)
	filter   string
}

func (f *fakeScreening) StartScreening(ctx context.Context, req Iservices.StartRequest) (entities.Session, error) {
	f.started = req
	if f.startErr != nil {
		return entities.Session{}, f.startErr
	}
	return entities.Session{ID: "call-1", State: entities.StateActive, Status: "Call started successfully"}, nil
}

func (f *fakeScreening) EndScreening(ctx context.Context) error { return f.endErr }

func (f *fakeScreening) Snapshot(opts dto.PageOptions) entities.Session {
	f.opts = opts
	return entities.Session{State: entities.StateIdle, Status: entities.StatusOff, ShowSpeakerMute: opts.ShowSpeakerMute}
}

func (f *fakeScreening) CurrentCallID() (string, error) {
	if f.current == "" {
		return "", Iservices.ErrNoActiveCall
	}
	return f.current, nil
}

func (f *fakeScreening) Subscribe(callID string, handler func(entities.SessionEvent)) func() {
	f.filter = callID
	f.handler = handler
	return func() {}
}

type fakeRelay struct {
	params map[string]any
}

func (f *fakeRelay) UpdateCandidateProfile(parameters map[string]any) string {
	f.params = parameters
	return "Updated candidate profile with assessment information."
}

type fakeProfiles struct {
	profiles map[string]entities.CandidateProfileUpdate
}

func (f *fakeProfiles) FindProfile(ctx context.Context, callID string) (entities.CandidateProfileUpdate, error) {
	profile, ok := f.profiles[callID]
	if !ok {
		return entities.CandidateProfileUpdate{}, repository.ErrNotFound
	}
	return profile, nil
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestProxyHandler_PassesUpstreamBodyThrough(t *testing.T) {
	proxy := &fakeProxy{res: json.RawMessage(`{"callId":"uv","joinUrl":"wss://j"}`)}
	h := NewProxyHandlers(logger.NewDiscard(), proxy)

	rec := httptest.NewRecorder()
	h.CreateCall(rec, httptest.NewRequest(http.MethodPost, "/api/ultravox", strings.NewReader(`{"systemPrompt":"p","medium":{"webRtc":{}}}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"callId":"uv","joinUrl":"wss://j"}`, rec.Body.String())
	assert.Equal(t, "p", proxy.got.SystemPrompt)
}

func TestProxyHandler_AcceptsNonStringMetadata(t *testing.T) {
	proxy := &fakeProxy{res: json.RawMessage(`{"callId":"uv"}`)}
	h := NewProxyHandlers(logger.NewDiscard(), proxy)

	rec := httptest.NewRecorder()
	h.CreateCall(rec, httptest.NewRequest(http.MethodPost, "/api/ultravox", strings.NewReader(`{"systemPrompt":"p","metadata":{"attempt":1,"remote":true}}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `1`, string(proxy.got.Metadata["attempt"]))
	assert.JSONEq(t, `true`, string(proxy.got.Metadata["remote"]))
}

func TestProxyHandler_Errors(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		err     error
		details string
	}{
		{name: "invalid json", body: `{`, details: "invalid request body"},
		{name: "api error", body: `{}`, err: &provider.UltravoxAPIError{StatusCode: 400, Body: "bad voice"}, details: "Ultravox API error: 400, bad voice"},
		{name: "transport", body: `{}`, err: errors.New("dial tcp: connection refused"), details: "request to Ultravox API failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewProxyHandlers(logger.NewDiscard(), &fakeProxy{err: tc.err})

			rec := httptest.NewRecorder()
			h.CreateCall(rec, httptest.NewRequest(http.MethodPost, "/api/ultravox", strings.NewReader(tc.body)))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, "Error calling Ultravox API", body.Error)
			assert.Contains(t, body.Details, tc.details)
		})
	}
}

func TestScreeningHandler_StartStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "created", status: http.StatusCreated},
		{name: "empty description", err: Iservices.ErrEmptyJobDescription, status: http.StatusBadRequest},
		{name: "already active", err: Iservices.ErrCallActive, status: http.StatusConflict},
		{name: "start failure", err: errors.New("starting screening: boom"), status: http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeScreening{startErr: tc.err}
			h := NewScreeningHandlers(logger.NewDiscard(), svc, &fakeRelay{}, &fakeProfiles{})

			rec := httptest.NewRecorder()
			h.StartScreening(rec, httptest.NewRequest(http.MethodPost, "/api/screenings", strings.NewReader(`{"jobDescription":"Go dev"}`)))

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestScreeningHandler_StartAppliesQueryFlags(t *testing.T) {
	svc := &fakeScreening{}
	h := NewScreeningHandlers(logger.NewDiscard(), svc, &fakeRelay{}, &fakeProfiles{})

	rec := httptest.NewRecorder()
	h.StartScreening(rec, httptest.NewRequest(http.MethodPost, "/api/screenings?model=ultravox-8B&showDebugMessages=true", strings.NewReader(`{"jobDescription":"Go dev"}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "fixie-ai/ultravox-8B", svc.started.ModelOverride)
	assert.True(t, svc.started.ShowDebugMessages)
	assert.Equal(t, "Go dev", svc.started.JobDescription)

	var session entities.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "call-1", session.ID)
}

func TestScreeningHandler_StartRejectsInvalidBody(t *testing.T) {
	h := NewScreeningHandlers(logger.NewDiscard(), &fakeScreening{}, &fakeRelay{}, &fakeProfiles{})

	rec := httptest.NewRecorder()
	h.StartScreening(rec, httptest.NewRequest(http.MethodPost, "/api/screenings", strings.NewReader(`nope`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScreeningHandler_CurrentPassesPageOptions(t *testing.T) {
	svc := &fakeScreening{}
	h := NewScreeningHandlers(logger.NewDiscard(), svc, &fakeRelay{}, &fakeProfiles{})

	rec := httptest.NewRecorder()
	h.CurrentScreening(rec, httptest.NewRequest(http.MethodGet, "/api/screenings/current?showUserTranscripts&showSpeakerMute=1&showDebugMessages=no", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.PageOptions{ShowUserTranscripts: true, ShowSpeakerMute: true}, svc.opts)
}

func TestScreeningHandler_End(t *testing.T) {
	svc := &fakeScreening{}
	h := NewScreeningHandlers(logger.NewDiscard(), svc, &fakeRelay{}, &fakeProfiles{})

	rec := httptest.NewRecorder()
	h.EndScreening(rec, httptest.NewRequest(http.MethodDelete, "/api/screenings/current", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.endErr = errors.New("hang up failed")
	rec = httptest.NewRecorder()
	h.EndScreening(rec, httptest.NewRequest(http.MethodDelete, "/api/screenings/current", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "hang up failed", decodeError(t, rec).Details)
}

func TestScreeningHandler_ToolForwarding(t *testing.T) {
	relay := &fakeRelay{}
	h := NewScreeningHandlers(logger.NewDiscard(), &fakeScreening{current: "call-9"}, relay, &fakeProfiles{})
	router := mux.NewRouter()
	router.HandleFunc("/api/screenings/{callId}/tools/updateCandidateProfile", h.UpdateCandidateProfile)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/screenings/call-7/tools/updateCandidateProfile", strings.NewReader(`{"candidateData":{"skills":[]}}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"result":"Updated candidate profile with assessment information."}`, rec.Body.String())
	assert.Equal(t, "call-7", relay.params["callId"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/screenings/call-7/tools/updateCandidateProfile", strings.NewReader(`{"callId":"call-body","candidateData":{}}`)))
	assert.Equal(t, "call-body", relay.params["callId"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/screenings/current/tools/updateCandidateProfile", strings.NewReader(``)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "call-9", relay.params["callId"])
}

func TestScreeningHandler_CandidateProfile(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]entities.CandidateProfileUpdate{
		"call-1": {CallID: "call-1", CandidateData: json.RawMessage(`{"skills":[]}`)},
	}}
	h := NewScreeningHandlers(logger.NewDiscard(), &fakeScreening{}, &fakeRelay{}, profiles)
	router := mux.NewRouter()
	router.HandleFunc("/api/screenings/{callId}/profile", h.CandidateProfile)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screenings/call-1/profile", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"callId":"call-1"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screenings/call-2/profile", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/screenings/current/profile", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"

	"interview-screener/internal/domain/dto"
	"interview-screener/internal/domain/entities"
	"interview-screener/internal/infra/logger"
	"interview-screener/internal/infra/provider"
)

const (
	defaultLanguageHint = "en"
	defaultMaxDuration  = "300s"
	callIDParameter     = "callId"
)

var defaultMedium = json.RawMessage(`{"webRtc":{}}`)

// CallProxyService turns a UI call configuration into an Ultravox create
// call request and submits it with the service credential.
type CallProxyService struct {
	UltravoxProvider provider.IUltravoxProvider
	Logger           *logger.Logger
}

func NewCallProxyService(ultravoxProvider provider.IUltravoxProvider, logger *logger.Logger) *CallProxyService {
	return &CallProxyService{
		UltravoxProvider: ultravoxProvider,
		Logger:           logger,
	}
}

// Reshape applies the API defaults and moves a query-located callId tool
// parameter into the body. The request is not modified.
func (ps *CallProxyService) Reshape(req dto.CallRequest) dto.UltravoxCallRequest {
	cfg := req.CallConfig.Clone()

	for i := range cfg.SelectedTools {
		tool := cfg.SelectedTools[i].TemporaryTool
		if tool == nil {
			continue
		}
		for j := range tool.DynamicParameters {
			param := &tool.DynamicParameters[j]
			if param.Name == callIDParameter && param.Location == entities.ParameterLocationQuery {
				param.Location = entities.ParameterLocationBody
			}
		}
	}

	payload := dto.UltravoxCallRequest{
		SystemPrompt:         cfg.SystemPrompt,
		Model:                cfg.Model,
		Voice:                cfg.Voice,
		LanguageHint:         cfg.LanguageHint,
		Temperature:          cfg.Temperature,
		InitialMessages:      cfg.InitialMessages,
		JoinTimeout:          cfg.JoinTimeout,
		MaxDuration:          cfg.MaxDuration,
		TimeExceededMessage:  cfg.TimeExceededMessage,
		SelectedTools:        cfg.SelectedTools,
		Medium:               req.Medium,
		RecordingEnabled:     true,
		FirstSpeaker:         cfg.FirstSpeaker,
		FirstSpeakerSettings: cfg.FirstSpeakerSettings,
		Metadata:             cfg.Metadata,
	}

	if payload.LanguageHint == "" {
		payload.LanguageHint = defaultLanguageHint
	}
	if payload.MaxDuration == "" {
		payload.MaxDuration = defaultMaxDuration
	}
	if cfg.RecordingEnabled != nil {
		payload.RecordingEnabled = *cfg.RecordingEnabled
	}
	if payload.InitialMessages == nil {
		payload.InitialMessages = []json.RawMessage{}
	}
	if len(payload.Medium) == 0 || string(payload.Medium) == "null" {
		payload.Medium = append(json.RawMessage(nil), defaultMedium...)
	}

	return payload
}

// CreateCall reshapes req and creates the call upstream, returning the
// created call exactly as Ultravox described it.
func (ps *CallProxyService) CreateCall(ctx context.Context, req dto.CallRequest) (json.RawMessage, error) {
	payload := ps.Reshape(req)

	res, err := ps.UltravoxProvider.CreateCall(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create call: %w", err)
	}

	ps.Logger.Info("Ultravox call created")
	return res, nil
}

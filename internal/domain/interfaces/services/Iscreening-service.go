package Iservices

import (
	"context"
	"errors"

	"interview-screener/internal/domain/dto"
	"interview-screener/internal/domain/entities"
)

var (
	ErrCallActive          = errors.New("a screening call is already active")
	ErrEmptyJobDescription = errors.New("job description is required")
	ErrNoActiveCall        = errors.New("no active screening call")
)

type StartRequest struct {
	JobDescription    string
	ModelOverride     string
	ShowDebugMessages bool
}

// IScreeningService is the call lifecycle controller seen by the HTTP layer.
type IScreeningService interface {
	StartScreening(ctx context.Context, req StartRequest) (entities.Session, error)
	EndScreening(ctx context.Context) error
	Snapshot(opts dto.PageOptions) entities.Session
	CurrentCallID() (string, error)
	Subscribe(callID string, handler func(entities.SessionEvent)) (unsubscribe func())
}

type IToolCallRelay interface {
	UpdateCandidateProfile(parameters map[string]any) string
}

type IProfileService interface {
	FindProfile(ctx context.Context, callID string) (entities.CandidateProfileUpdate, error)
}

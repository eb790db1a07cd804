package Iservices

import (
	"context"
	"encoding/json"

	"interview-screener/internal/domain/dto"
)

type ICallProxyService interface {
	Reshape(req dto.CallRequest) dto.UltravoxCallRequest
	CreateCall(ctx context.Context, req dto.CallRequest) (json.RawMessage, error)
}

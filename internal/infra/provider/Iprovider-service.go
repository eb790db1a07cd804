package provider

import (
	"context"
	"encoding/json"

	"interview-screener/internal/domain/dto"
)

type IUltravoxProvider interface {
	CreateCall(ctx context.Context, payload dto.UltravoxCallRequest) (json.RawMessage, error)
}

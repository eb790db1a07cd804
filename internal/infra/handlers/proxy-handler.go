package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"interview-screener/internal/domain/dto"
	Iservices "interview-screener/internal/domain/interfaces/services"
	"interview-screener/internal/infra/logger"
	"interview-screener/internal/infra/provider"
)

const (
	proxyErrorMessage   = "Error calling Ultravox API"
	proxyTransportError = "request to Ultravox API failed"
)

type ProxyHandlers struct {
	Logger           *logger.Logger
	CallProxyService Iservices.ICallProxyService
}

func NewProxyHandlers(logger *logger.Logger, callProxyService Iservices.ICallProxyService) *ProxyHandlers {
	return &ProxyHandlers{Logger: logger, CallProxyService: callProxyService}
}

// CreateCall forwards a call configuration to Ultravox with the service
// credential and passes the created call back untouched.
//
// HTTP Status Codes:
// - 200 OK: the upstream call body.
// - 500 Internal Server Error: invalid body, Ultravox error or transport failure.
func (th *ProxyHandlers) CreateCall(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req dto.CallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		th.Logger.Error(fmt.Sprintf("Invalid call request payload: %s", err.Error()))
		writeError(w, http.StatusInternalServerError, proxyErrorMessage, fmt.Sprintf("invalid request body: %s", err.Error()))
		return
	}

	res, err := th.CallProxyService.CreateCall(r.Context(), req)
	if err != nil {
		var apiErr *provider.UltravoxAPIError
		if errors.As(err, &apiErr) {
			writeError(w, http.StatusInternalServerError, proxyErrorMessage, apiErr.Error())
			return
		}
		th.Logger.Error(fmt.Sprintf("Ultravox request failed: %s", err.Error()))
		writeError(w, http.StatusInternalServerError, proxyErrorMessage, proxyTransportError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(res)
}

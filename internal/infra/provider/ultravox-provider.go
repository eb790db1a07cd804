package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"interview-screener/internal/domain/dto"
	"interview-screener/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

const apiKeyHeader = "X-API-Key"

// UltravoxAPIError is a non-2xx answer from the Ultravox REST API.
type UltravoxAPIError struct {
	StatusCode int
	Body       string
}

func (e *UltravoxAPIError) Error() string {
	return fmt.Sprintf("Ultravox API error: %d, %s", e.StatusCode, e.Body)
}

type UltravoxProvider struct {
	Logger     *logger.Logger
	HttpClient *http.Client
	BaseURL    string
	APIKey     func() string
}

// NewUltravoxProvider builds the REST client. apiKey is called on every
// request so the credential never has to be held in application state.
func NewUltravoxProvider(logger *logger.Logger, httpClient *http.Client, baseURL string, apiKey func() string) *UltravoxProvider {
	return &UltravoxProvider{
		Logger:     logger,
		HttpClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
	}
}

// CreateCall creates a call and returns the upstream JSON body untouched.
//
// Returns:
//   - *UltravoxAPIError when the API answers with a non-2xx status; it carries
//     the status code and the response body.
//   - a wrapped transport error when the request could not be completed.
func (th *UltravoxProvider) CreateCall(ctx context.Context, payload dto.UltravoxCallRequest) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to marshal payload %v", err))
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/calls", th.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to create HTTP request %v", err))
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, th.APIKey())

	th.Logger.Info("Attempting to call Ultravox API...")
	th.Logger.Debug("Sending payload to Ultravox API", logrus.Fields{"payload": string(body)})

	res, err := th.HttpClient.Do(req)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("HTTP request failed %v", err))
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer res.Body.Close()

	th.Logger.Info(fmt.Sprintf("Ultravox API response status: %d", res.StatusCode))

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to read response body %v", err))
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		th.Logger.Error(fmt.Sprintf("Ultravox API error: %s", string(resBody)))
		return nil, &UltravoxAPIError{StatusCode: res.StatusCode, Body: string(resBody)}
	}

	if !json.Valid(resBody) {
		th.Logger.Error("Ultravox API returned a non-JSON body")
		return nil, fmt.Errorf("failed to decode response body: invalid JSON")
	}

	return json.RawMessage(resBody), nil
}

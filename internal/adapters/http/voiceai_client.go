package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"go.uber.org/zap"
)

const (
	VoiceAICallsPath = "/api/calls"

	FirstSpeakerAgent = "FIRST_SPEAKER_AGENT"

	ParameterLocationBody  = "PARAMETER_LOCATION_BODY"
	ParameterLocationQuery = "PARAMETER_LOCATION_QUERY"
)

// VoiceAIClient creates conversational sessions on the voice-AI provider
type VoiceAIClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// VoiceAICallRequest is the session-creation body
type VoiceAICallRequest struct {
	SystemPrompt  string                 `json:"systemPrompt"`
	Model         string                 `json:"model,omitempty"`
	Voice         string                 `json:"voice,omitempty"`
	Temperature   float64                `json:"temperature,omitempty"`
	FirstSpeaker  string                 `json:"firstSpeaker,omitempty"`
	Medium        map[string]interface{} `json:"medium,omitempty"`
	SelectedTools []VoiceAISelectedTool  `json:"selectedTools,omitempty"`
}

// VoiceAISelectedTool attaches an inline tool definition to the session
type VoiceAISelectedTool struct {
	TemporaryTool *VoiceAITemporaryTool `json:"temporaryTool,omitempty"`
}

// VoiceAITemporaryTool is an HTTP tool the provider calls during the conversation
type VoiceAITemporaryTool struct {
	ModelToolName     string                    `json:"modelToolName"`
	Description       string                    `json:"description"`
	DynamicParameters []VoiceAIDynamicParameter `json:"dynamicParameters,omitempty"`
	HTTP              *VoiceAIHTTPTool          `json:"http,omitempty"`
}

// VoiceAIDynamicParameter is a parameter the model fills in at call time
type VoiceAIDynamicParameter struct {
	Name     string                 `json:"name"`
	Location string                 `json:"location"`
	Schema   map[string]interface{} `json:"schema"`
	Required bool                   `json:"required"`
}

// VoiceAIHTTPTool is where the provider sends the tool invocation
type VoiceAIHTTPTool struct {
	BaseURLPattern string `json:"baseUrlPattern"`
	HTTPMethod     string `json:"httpMethod"`
}

// VoiceAICallResponse carries the join handle for the telephony bridge
type VoiceAICallResponse struct {
	CallID  string `json:"callId"`
	JoinURL string `json:"joinUrl"`
	Created string `json:"created,omitempty"`
}

// NewVoiceAIClient creates a voice-AI client
func NewVoiceAIClient(baseURL, apiKey string, timeout time.Duration) *VoiceAIClient {
	return &VoiceAIClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// CreateCall requests a new session. Any non-2xx response becomes a
// session-create UpstreamError carrying the provider status and body.
func (c *VoiceAIClient) CreateCall(ctx context.Context, request VoiceAICallRequest) (*VoiceAICallResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.BaseURL + VoiceAICallsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.APIKey)

	logger.Info(ctx, "Creating voice-AI session",
		zap.String("url", endpoint),
		zap.Int("tools", len(request.SelectedTools)),
		zap.Int("prompt_length", len(request.SystemPrompt)))

	startTime := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, domain.NewSessionCreateError(0, "", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewSessionCreateError(resp.StatusCode, "", fmt.Errorf("failed to read response body: %w", err))
	}

	logger.Info(ctx, "Voice-AI API responded",
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", time.Since(startTime)))

	if !isSuccess(resp.StatusCode) {
		logger.Error(ctx, "Voice-AI session creation failed",
			zap.Int("status_code", resp.StatusCode),
			zap.Any("headers", resp.Header),
			zap.String("body", string(bodyBytes)))
		return nil, domain.NewSessionCreateError(resp.StatusCode, string(bodyBytes), nil)
	}

	var response VoiceAICallResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return nil, domain.NewSessionCreateError(resp.StatusCode, string(bodyBytes), fmt.Errorf("failed to decode response: %w", err))
	}
	if response.JoinURL == "" {
		return nil, domain.NewSessionCreateError(resp.StatusCode, string(bodyBytes), fmt.Errorf("response has no joinUrl"))
	}

	return &response, nil
}

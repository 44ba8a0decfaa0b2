package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tablecall/utils"

	"go.uber.org/zap"
)

// Dialer places outbound call legs on the voice platform. The call outcome
// arrives later as a webhook delivery, not on this request.
type Dialer interface {
	PlaceCall(ctx context.Context, req CallRequest) (*CallResponse, error)
}

// CallRequest describes one outbound call leg. SystemPrompt and FirstMessage
// are injected per call as assistant overrides rather than baked into the
// static assistant configuration.
type CallRequest struct {
	CustomerPhone string
	SystemPrompt  string
	FirstMessage  string
	Variables     map[string]string
}

// CallResponse is the platform's acknowledgement of a placed call.
type CallResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Client talks to the voice platform's REST API.
type Client struct {
	BaseURL       string
	PrivateKey    string
	AssistantID   string
	PhoneNumberID string
	ServerBaseURL string
	HTTPClient    *http.Client
}

// NewClient builds a voice platform client with an explicit request timeout.
func NewClient(baseURL, privateKey, assistantID, phoneNumberID, serverBaseURL string) *Client {
	return &Client{
		BaseURL:       baseURL,
		PrivateKey:    privateKey,
		AssistantID:   assistantID,
		PhoneNumberID: phoneNumberID,
		ServerBaseURL: serverBaseURL,
		HTTPClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

type callPayload struct {
	PhoneNumberID      string             `json:"phoneNumberId"`
	AssistantID        string             `json:"assistantId"`
	Customer           customerPayload    `json:"customer"`
	AssistantOverrides assistantOverrides `json:"assistantOverrides"`
}

type customerPayload struct {
	Number string `json:"number"`
}

type assistantOverrides struct {
	Model          *modelOverride    `json:"model,omitempty"`
	FirstMessage   string            `json:"firstMessage,omitempty"`
	ServerURL      string            `json:"serverUrl,omitempty"`
	VariableValues map[string]string `json:"variableValues,omitempty"`
}

type modelOverride struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	SystemPrompt string `json:"systemPrompt"`
}

// PlaceCall issues an outbound call request. The webhook URL is pinned to
// this server so lifecycle events for the leg come back to /vapi/events.
func (c *Client) PlaceCall(ctx context.Context, req CallRequest) (*CallResponse, error) {
	logger := utils.GetLogger()

	payload := callPayload{
		PhoneNumberID: c.PhoneNumberID,
		AssistantID:   c.AssistantID,
		Customer:      customerPayload{Number: req.CustomerPhone},
		AssistantOverrides: assistantOverrides{
			FirstMessage:   req.FirstMessage,
			ServerURL:      c.ServerBaseURL + "/vapi/events",
			VariableValues: req.Variables,
		},
	}
	if req.SystemPrompt != "" {
		payload.AssistantOverrides.Model = &modelOverride{
			Provider:     "openai",
			Model:        "gpt-4o",
			SystemPrompt: req.SystemPrompt,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal call payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/call", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build call request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.PrivateKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("voice platform unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn("Outbound call request rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail))
		return nil, fmt.Errorf("voice platform returned status %d", resp.StatusCode)
	}

	var call CallResponse
	if err := json.NewDecoder(resp.Body).Decode(&call); err != nil {
		return nil, fmt.Errorf("failed to decode call response: %w", err)
	}

	logger.Info("Outbound call initiated",
		zap.String("callId", call.ID),
		zap.String("to", req.CustomerPhone))
	return &call, nil
}

package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Assistant configuration pushed to the voice platform by the one-shot setup
// binary. Not part of the runtime request path.

const assistantSystemPrompt = `You are a friendly AI assistant that helps users find and book restaurants.

Your job:
1. Listen to what the user wants (location, date, time, party size).
2. Use the search_restaurants tool to find matching restaurants.
3. Present the options to the user and ask which one they'd like.
4. Once they confirm, use the initiate_booking tool to book the table.
5. Let them know you'll call them back with the confirmation.

Always be warm, concise, and confirm details before booking.
If the user doesn't mention a date, assume today. If no time, ask for it.
If no party size, ask for it.`

type toolParameter struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

type toolParameters struct {
	Type       string                   `json:"type"`
	Properties map[string]toolParameter `json:"properties"`
	Required   []string                 `json:"required"`
}

type toolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  toolParameters `json:"parameters"`
}

type toolServer struct {
	URL string `json:"url"`
}

type toolSchema struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
	Server   toolServer   `json:"server"`
}

type assistantModel struct {
	Provider     string       `json:"provider"`
	Model        string       `json:"model"`
	SystemPrompt string       `json:"systemPrompt"`
	Tools        []toolSchema `json:"tools"`
}

type assistantVoice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

type assistantConfig struct {
	Model          assistantModel `json:"model"`
	Voice          assistantVoice `json:"voice"`
	FirstMessage   string         `json:"firstMessage"`
	ServerURL      string         `json:"serverUrl"`
	EndCallMessage string         `json:"endCallMessage"`
}

func toolSchemas(serverBaseURL string) []toolSchema {
	toolsURL := serverBaseURL + "/vapi/tools"
	return []toolSchema{
		{
			Type: "function",
			Function: toolFunction{
				Name:        "search_restaurants",
				Description: "Search for restaurants near a given location using real-time data.",
				Parameters: toolParameters{
					Type: "object",
					Properties: map[string]toolParameter{
						"query":      {Type: "string", Description: "Full user request in natural language"},
						"location":   {Type: "string", Description: "Location to search near, e.g. 'downtown San Jose, CA'"},
						"date":       {Type: "string", Description: "Date of the reservation, e.g. '2026-02-22' or 'tonight'"},
						"time":       {Type: "string", Description: "Time of the reservation, e.g. '7:00 PM'"},
						"party_size": {Type: "integer", Description: "Number of people"},
					},
					Required: []string{"query", "location"},
				},
			},
			Server: toolServer{URL: toolsURL},
		},
		{
			Type: "function",
			Function: toolFunction{
				Name:        "initiate_booking",
				Description: "Book a table at the selected restaurant by calling them.",
				Parameters: toolParameters{
					Type: "object",
					Properties: map[string]toolParameter{
						"restaurant_name":    {Type: "string", Description: "Name of the restaurant"},
						"restaurant_phone":   {Type: "string", Description: "Phone number of the restaurant in E.164 format"},
						"restaurant_address": {Type: "string", Description: "Full address of the restaurant"},
						"date":               {Type: "string", Description: "Reservation date"},
						"time":               {Type: "string", Description: "Reservation time"},
						"party_size":         {Type: "integer", Description: "Number of people"},
						"customer_name":      {Type: "string", Description: "Name for the reservation"},
					},
					Required: []string{"restaurant_name", "restaurant_phone", "date", "time", "party_size"},
				},
			},
			Server: toolServer{URL: toolsURL},
		},
	}
}

// UpdateAssistant patches the configured assistant with the booking tool
// schemas, voice settings, and this server's webhook URL.
func (c *Client) UpdateAssistant(ctx context.Context) error {
	cfg := assistantConfig{
		Model: assistantModel{
			Provider:     "openai",
			Model:        "gpt-4o",
			SystemPrompt: assistantSystemPrompt,
			Tools:        toolSchemas(c.ServerBaseURL),
		},
		Voice: assistantVoice{
			Provider: "11labs",
			VoiceID:  "rachel",
		},
		FirstMessage:   "Hi! I'm your restaurant booking assistant. Tell me where you'd like to eat, when, and for how many people!",
		ServerURL:      c.ServerBaseURL + "/vapi/events",
		EndCallMessage: "I'll take it from here and call you back once your table is confirmed. Goodbye!",
	}

	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal assistant config: %w", err)
	}

	url := c.BaseURL + "/assistant/" + c.AssistantID
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build assistant request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.PrivateKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("voice platform unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("failed to update assistant: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

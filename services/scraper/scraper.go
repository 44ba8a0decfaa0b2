package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"tablecall/models"
	"tablecall/utils"

	"go.uber.org/zap"
)

// Searcher finds restaurant candidates through the external scraping agent.
type Searcher interface {
	Search(ctx context.Context, query, location string, maxResults int) ([]models.Restaurant, error)
}

// Client calls the scraping agent's task API.
type Client struct {
	AgentURL   string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient builds a scraping agent client with an explicit request timeout.
// Agent runs are slow; the timeout matches the agent's own 60s budget.
func NewClient(agentURL, apiKey string) *Client {
	return &Client{
		AgentURL:   agentURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type agentRequest struct {
	Input    string        `json:"input"`
	URLs     []string      `json:"urls"`
	Response agentRespOpts `json:"response"`
}

type agentRespOpts struct {
	Verbosity string `json:"verbosity"`
}

type agentResponse struct {
	Result json.RawMessage `json:"result"`
	Output json.RawMessage `json:"output"`
	Data   json.RawMessage `json:"data"`
}

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

func buildTask(query, location string, maxResults int) string {
	return fmt.Sprintf(`Search Google Maps for restaurants near %s.

For each of the top %d results, extract:
- Restaurant name
- Full address
- Phone number (must include area code)
- Google rating (out of 5)
- Opening hours (today)
- Google Maps URL

Context from user: %q

Return results as a JSON array with keys: name, address, phone, rating, hours, google_maps_url.
Only include restaurants that have a phone number listed.`, location, maxResults, query)
}

// Search runs the agent task and returns up to maxResults candidates. An
// unreachable agent or an unparseable response yields an error; an empty
// candidate list is a valid result, not a failure.
func (c *Client) Search(ctx context.Context, query, location string, maxResults int) ([]models.Restaurant, error) {
	logger := utils.GetLogger()

	mapsURL := "https://www.google.com/maps/search/restaurants+near+" +
		strings.ReplaceAll(location, " ", "+")
	payload := agentRequest{
		Input:    buildTask(query, location, maxResults),
		URLs:     []string{mapsURL},
		Response: agentRespOpts{Verbosity: "final"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AgentURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build agent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraping agent unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn("Scraping agent rejected request",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail))
		return nil, fmt.Errorf("scraping agent returned status %d", resp.StatusCode)
	}

	var agentResp agentResponse
	if err := json.NewDecoder(resp.Body).Decode(&agentResp); err != nil {
		return nil, fmt.Errorf("failed to decode agent response: %w", err)
	}

	raw := firstNonNull(agentResp.Result, agentResp.Output, agentResp.Data)
	restaurants, err := parseCandidates(raw)
	if err != nil {
		return nil, err
	}
	if len(restaurants) > maxResults {
		restaurants = restaurants[:maxResults]
	}

	logger.Info("Scraper search finished",
		zap.String("location", location),
		zap.Int("candidates", len(restaurants)))
	return restaurants, nil
}

func firstNonNull(fields ...json.RawMessage) json.RawMessage {
	for _, f := range fields {
		if len(f) > 0 && string(f) != "null" {
			return f
		}
	}
	return nil
}

// parseCandidates accepts either a plain JSON array or a string containing
// one (the agent often wraps its output in markdown prose).
func parseCandidates(raw json.RawMessage) ([]models.Restaurant, error) {
	if raw == nil {
		return []models.Restaurant{}, nil
	}

	var restaurants []models.Restaurant
	if err := json.Unmarshal(raw, &restaurants); err == nil {
		return restaurants, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, fmt.Errorf("agent result is neither an array nor text")
	}
	match := jsonArrayPattern.FindString(text)
	if match == "" {
		return []models.Restaurant{}, nil
	}
	if err := json.Unmarshal([]byte(match), &restaurants); err != nil {
		return nil, fmt.Errorf("failed to parse embedded candidate array: %w", err)
	}
	return restaurants, nil
}

// SpeakableSummary formats candidates as a single utterance for the voice
// platform to read to the user.
func SpeakableSummary(restaurants []models.Restaurant) string {
	if len(restaurants) == 0 {
		return "I'm sorry, I couldn't find any restaurants matching your request."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "I found %d restaurants for you:", len(restaurants))
	for i, r := range restaurants {
		rating := "unrated"
		if r.Rating > 0 {
			rating = fmt.Sprintf("rated %.1f stars", r.Rating)
		}
		address := r.Address
		if address == "" {
			address = "address not available"
		}
		hours := r.Hours
		if hours == "" {
			hours = "hours not available"
		}
		fmt.Fprintf(&sb, " %d. %s, %s, located at %s. Open: %s.", i+1, r.Name, rating, address, hours)
	}
	sb.WriteString(" Which one would you like me to book, or shall I book the highest-rated one?")
	return sb.String()
}

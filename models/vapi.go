package models

import "encoding/json"

// Wire types for the voice platform's tool-call and server-event payloads.
// The platform wraps everything in a top-level "message" object.

// ToolCallFunction is the function invocation inside a tool call.
type ToolCallFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCall is one structured function invocation made mid-conversation.
type ToolCall struct {
	ID       string           `json:"id"`
	Function ToolCallFunction `json:"function"`
}

// CallInfo identifies the call leg an event or tool call belongs to.
type CallInfo struct {
	ID          string `json:"id"`
	EndedReason string `json:"endedReason,omitempty"`
}

// ServerMessage is the envelope the voice platform posts to both the tools
// and the events endpoint.
type ServerMessage struct {
	Type       string     `json:"type"`
	Call       CallInfo   `json:"call"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	Transcript string     `json:"transcript,omitempty"`
	Summary    string     `json:"summary,omitempty"`
	Role       string     `json:"role,omitempty"`
}

// ServerEnvelope is the top-level body of a platform webhook delivery.
type ServerEnvelope struct {
	Message ServerMessage `json:"message"`
}

// ToolCallResult answers one tool call; the platform reads Result aloud.
type ToolCallResult struct {
	ToolCallID string `json:"toolCallId"`
	Result     string `json:"result"`
}

// ToolCallResponse is the body returned from the tools endpoint.
type ToolCallResponse struct {
	Results []ToolCallResult `json:"results"`
}

// SearchToolArgs are the arguments of the search_restaurants tool.
type SearchToolArgs struct {
	Query     string `json:"query"`
	Location  string `json:"location"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	PartySize int    `json:"party_size"`
}

// BookingToolArgs are the arguments of the initiate_booking tool.
type BookingToolArgs struct {
	RestaurantName    string `json:"restaurant_name"`
	RestaurantPhone   string `json:"restaurant_phone"`
	RestaurantAddress string `json:"restaurant_address"`
	Date              string `json:"date"`
	Time              string `json:"time"`
	PartySize         int    `json:"party_size"`
	CustomerName      string `json:"customer_name"`
}

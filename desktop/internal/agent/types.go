package agent

import (
	"encoding/json"
	"fmt"
	"time"
)

// Paths and tokens of the agent's HTTP contract.
const (
	HealthPath = "/health"
	ChatPath   = "/api/v1/chat"

	// StatusHealthy is the status token a fully healthy agent reports.
	StatusHealthy = "healthy"
)

// Health is the agent's answer to GET /health.
type Health struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime"` // seconds
}

// UptimeDuration converts the reported uptime to a time.Duration.
func (h Health) UptimeDuration() time.Duration {
	return time.Duration(h.Uptime * float64(time.Second))
}

// ChatRequest is the body of POST /api/v1/chat. A nil ConversationID is
// sent as JSON null so the agent starts a new conversation.
type ChatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversation_id"`
}

// ChatResponse is the agent's reply to a chat request.
type ChatResponse struct {
	ID             string  `json:"id"`
	Response       string  `json:"response"`
	ConversationID string  `json:"conversation_id"`
	Reasoning      *string `json:"reasoning"`
}

// wire forms use pointers so a missing required field is a decode error
// rather than a silent zero value.

type healthWire struct {
	Status  *string  `json:"status"`
	Version *string  `json:"version"`
	Uptime  *float64 `json:"uptime"`
}

func decodeHealth(data []byte) (*Health, error) {
	var w healthWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	switch {
	case w.Status == nil:
		return nil, fmt.Errorf("missing field %q", "status")
	case w.Version == nil:
		return nil, fmt.Errorf("missing field %q", "version")
	case w.Uptime == nil:
		return nil, fmt.Errorf("missing field %q", "uptime")
	case *w.Uptime < 0:
		return nil, fmt.Errorf("negative uptime %v", *w.Uptime)
	}
	return &Health{Status: *w.Status, Version: *w.Version, Uptime: *w.Uptime}, nil
}

type chatResponseWire struct {
	ID             *string `json:"id"`
	Response       *string `json:"response"`
	ConversationID *string `json:"conversation_id"`
	Reasoning      *string `json:"reasoning"`
}

func decodeChatResponse(data []byte) (*ChatResponse, error) {
	var w chatResponseWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	switch {
	case w.ID == nil:
		return nil, fmt.Errorf("missing field %q", "id")
	case w.Response == nil:
		return nil, fmt.Errorf("missing field %q", "response")
	case w.ConversationID == nil:
		return nil, fmt.Errorf("missing field %q", "conversation_id")
	}
	return &ChatResponse{
		ID:             *w.ID,
		Response:       *w.Response,
		ConversationID: *w.ConversationID,
		Reasoning:      w.Reasoning,
	}, nil
}

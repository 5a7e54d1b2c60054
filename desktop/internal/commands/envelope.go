package commands

// Envelope is the only shape returned across the UI boundary. Exactly one of
// Data and Error is non-nil, and Success is true iff Data is set.
type Envelope[T any] struct {
	Success bool    `json:"success"`
	Data    *T      `json:"data"`
	Error   *string `json:"error"`
}

// OK wraps data in a successful envelope.
func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: &data}
}

// Fail wraps err in a failed envelope. The error string is never empty.
func Fail[T any](err error) Envelope[T] {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Envelope[T]{Error: &msg}
}

// AgentStatus is the payload of check_agent_status.
type AgentStatus struct {
	Status  string  `json:"status"`
	Version *string `json:"version"`
}

// ChatMessage is the payload of send_message_to_agent.
type ChatMessage struct {
	ID             string  `json:"id"`
	Response       string  `json:"response"`
	ConversationID string  `json:"conversation_id"`
	Reasoning      *string `json:"reasoning"`
}

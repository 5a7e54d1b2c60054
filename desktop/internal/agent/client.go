package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/slovo/slovo/desktop/internal/transport"
)

// Kind classifies an Error. Callers that only render the error can ignore it.
type Kind int

const (
	// KindUnreachable: no response (connection refused, timeout, broken read).
	KindUnreachable Kind = iota
	// KindStatus: the agent answered with a non-2xx status.
	KindStatus
	// KindDecode: the agent answered 2xx with a body that does not decode.
	KindDecode
	// KindRequest: the request could not be built or sent, with no network
	// failure involved (e.g. the body does not encode).
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Client operations.
type Error struct {
	Op         string // "health check" | "chat request"
	Kind       Kind
	StatusCode int    // set for KindStatus
	Body       string // verbatim response body, set for KindStatus
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Body == "" {
			return fmt.Sprintf("agent: %s failed with status %d", e.Op, e.StatusCode)
		}
		return fmt.Sprintf("agent: %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
	case KindDecode:
		return fmt.Sprintf("agent: %s: decode response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("agent: %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Transport is the subset of *transport.Client the contract needs.
type Transport interface {
	Get(ctx context.Context, path string) (*transport.Response, error)
	Post(ctx context.Context, path string, body any) (*transport.Response, error)
}

// Client implements the agent's request/response contract.
type Client struct {
	t Transport
}

// New returns a Client that sends every call through t.
func New(t Transport) *Client {
	return &Client{t: t}
}

// HealthCheck queries GET /health.
func (c *Client) HealthCheck(ctx context.Context) (*Health, error) {
	const op = "health check"

	resp, err := c.t.Get(ctx, HealthPath)
	if err != nil {
		return nil, sendError(op, err)
	}
	if !resp.OK() {
		return nil, &Error{Op: op, Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	h, err := decodeHealth(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return h, nil
}

// SendMessage posts message to the agent. message is sent exactly as given.
// A nil conversationID asks the agent to open a new conversation; the id in
// the response always comes from the agent.
func (c *Client) SendMessage(ctx context.Context, message string, conversationID *string) (*ChatResponse, error) {
	const op = "chat request"

	req := ChatRequest{Message: message, ConversationID: conversationID}
	resp, err := c.t.Post(ctx, ChatPath, req)
	if err != nil {
		return nil, sendError(op, err)
	}
	if !resp.OK() {
		return nil, &Error{
			Op:         op,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
		}
	}

	out, err := decodeChatResponse(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return out, nil
}

// sendError classifies a transport failure. Only errors that match
// transport.ErrUnreachable mean the agent gave no response.
func sendError(op string, err error) *Error {
	if errors.Is(err, transport.ErrUnreachable) {
		return &Error{Op: op, Kind: KindUnreachable, Err: err}
	}
	return &Error{Op: op, Kind: KindRequest, Err: err}
}

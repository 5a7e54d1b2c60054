package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/slovo/slovo/desktop/internal/agent"
	"github.com/slovo/slovo/desktop/internal/metrics"
	"github.com/slovo/slovo/desktop/internal/window"
)

// VoicePlaceholder is returned by ProcessVoiceInput until voice input exists.
const VoicePlaceholder = "Voice input processing not yet implemented"

// StatusDisconnected is reported by CheckAgentStatus when the agent cannot
// be queried.
const StatusDisconnected = "disconnected"

// Agent is the contract the facade calls. *agent.Client satisfies it.
type Agent interface {
	HealthCheck(ctx context.Context) (*agent.Health, error)
	SendMessage(ctx context.Context, message string, conversationID *string) (*agent.ChatResponse, error)
}

// Windows shows and hides UI surfaces by label. *window.Registry satisfies it.
type Windows interface {
	Show(label string) error
	Hide(label string) error
}

// Facade is the boundary adapter invoked by the UI. None of its methods
// panic: panics from collaborators are recovered and reported the same way
// as ordinary failures of that command.
type Facade struct {
	agent   Agent
	windows Windows
	logger  *slog.Logger
	healthy string

	chats    *metrics.Counter
	statuses *metrics.Counter
}

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(f *Facade) { f.logger = l }
}

// WithHealthyStatus sets the agent status token counted as healthy;
// agent.StatusHealthy otherwise.
func WithHealthyStatus(s string) Option {
	return func(f *Facade) { f.healthy = s }
}

// WithMetrics counts chat outcomes and status checks in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(f *Facade) {
		f.chats = reg.NewCounter("slovo_chat_requests_total",
			"Chat requests sent to the agent by outcome.", "result")
		f.statuses = reg.NewCounter("slovo_agent_status_checks_total",
			"On-demand agent status checks by outcome (healthy, other, disconnected).", "status")
	}
}

// New returns a Facade over a and w.
func New(a Agent, w Windows, opts ...Option) *Facade {
	f := &Facade{agent: a, windows: w, logger: slog.Default(), healthy: agent.StatusHealthy}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ProcessVoiceInput accepts raw audio and returns VoicePlaceholder.
func (f *Facade) ProcessVoiceInput(_ context.Context, audio []byte) (string, error) {
	f.logger.Info("commands: voice input received", "bytes", len(audio))
	return VoicePlaceholder, nil
}

// CheckAgentStatus always succeeds. Any failure to query the agent is
// reported as status "disconnected" with no version.
func (f *Facade) CheckAgentStatus(ctx context.Context) (env Envelope[AgentStatus]) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("commands: check_agent_status panicked", "panic", r)
			env = OK(AgentStatus{Status: StatusDisconnected})
		}
		f.count(f.statuses, f.statusLabel(env.Data.Status))
	}()

	h, err := f.agent.HealthCheck(ctx)
	if err != nil {
		f.logger.Debug("commands: agent status unavailable", "err", err)
		return OK(AgentStatus{Status: StatusDisconnected})
	}
	version := h.Version
	return OK(AgentStatus{Status: h.Status, Version: &version})
}

// SendMessageToAgent forwards message to the agent. Any contract error is
// returned as a failed envelope carrying the error text.
func (f *Facade) SendMessageToAgent(ctx context.Context, message string, conversationID *string) (env Envelope[ChatMessage]) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("commands: send_message_to_agent panicked", "panic", r)
			env = Fail[ChatMessage](fmt.Errorf("commands: chat request: %v", r))
		}
		if env.Success {
			f.count(f.chats, "ok")
		} else {
			f.count(f.chats, "error")
		}
	}()

	resp, err := f.agent.SendMessage(ctx, message, conversationID)
	if err != nil {
		f.logger.Warn("commands: chat request failed", "err", err)
		return Fail[ChatMessage](err)
	}
	return OK(ChatMessage{
		ID:             resp.ID,
		Response:       resp.Response,
		ConversationID: resp.ConversationID,
		Reasoning:      resp.Reasoning,
	})
}

// ShowWindow shows the main surface.
func (f *Facade) ShowWindow(_ context.Context) error {
	return f.window("show", f.windows.Show)
}

// HideWindow hides the main surface.
func (f *Facade) HideWindow(_ context.Context) error {
	return f.window("hide", f.windows.Hide)
}

func (f *Facade) window(op string, fn func(string) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("commands: window "+op+" panicked", "panic", r)
			err = fmt.Errorf("commands: %s window: %v", op, r)
		}
	}()

	if err := fn(window.Main); err != nil {
		if errors.Is(err, window.ErrNotFound) {
			return err
		}
		return fmt.Errorf("commands: %s window: %w", op, err)
	}
	return nil
}

// statusLabel folds the agent's free-form status token into a fixed label set.
func (f *Facade) statusLabel(status string) string {
	switch status {
	case f.healthy:
		return "healthy"
	case StatusDisconnected:
		return StatusDisconnected
	default:
		return "other"
	}
}

func (f *Facade) count(c *metrics.Counter, label string) {
	if c != nil {
		c.Inc(label)
	}
}

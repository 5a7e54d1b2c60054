// Package agenttest runs a fake agent process on a loopback httptest server
// for package tests.
package agenttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/slovo/slovo/desktop/internal/agent"
)

// Reply is one canned HTTP answer.
type Reply struct {
	Status int
	Body   string
	Delay  time.Duration
}

// JSON builds a 200 Reply with v encoded as the body.
func JSON(v any) Reply {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("agenttest: encode reply: %v", err))
	}
	return Reply{Status: http.StatusOK, Body: string(data)}
}

// Health builds a 200 /health Reply with the given status token.
func Health(status, version string, uptime float64) Reply {
	return JSON(agent.Health{Status: status, Version: version, Uptime: uptime})
}

// Healthy is the reply of a fully healthy agent.
func Healthy() Reply { return Health(agent.StatusHealthy, "1.0", 5.0) }

// Agent is a fake agent. Health replies are served in order and the last
// one repeats; chat requests go to the chat handler (Echo by default).
type Agent struct {
	*httptest.Server

	mu          sync.Mutex
	health      []Reply
	chat        func(agent.ChatRequest) Reply
	healthCalls int
	chatLog     []agent.ChatRequest
	rawChat     [][]byte
}

// New starts a fake agent that is healthy and echoes chat messages.
// The server is closed when the test ends.
func New(t testing.TB) *Agent {
	t.Helper()
	a := &Agent{
		health: []Reply{Healthy()},
		chat:   Echo,
	}
	mux := http.NewServeMux()
	mux.HandleFunc(agent.HealthPath, a.serveHealth)
	mux.HandleFunc(agent.ChatPath, a.serveChat)
	a.Server = httptest.NewServer(mux)
	t.Cleanup(a.Server.Close)
	return a
}

// SetHealth replaces the queue of /health replies.
func (a *Agent) SetHealth(replies ...Reply) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.health = append([]Reply(nil), replies...)
}

// SetChat replaces the chat handler.
func (a *Agent) SetChat(fn func(agent.ChatRequest) Reply) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chat = fn
}

// HealthCalls returns how many /health requests were served.
func (a *Agent) HealthCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.healthCalls
}

// ChatRequests returns the decoded chat requests received so far.
func (a *Agent) ChatRequests() []agent.ChatRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]agent.ChatRequest(nil), a.chatLog...)
}

// RawChatBodies returns the undecoded chat request bodies received so far.
func (a *Agent) RawChatBodies() [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]byte(nil), a.rawChat...)
}

// Echo answers with the request's message and conversation id. When no id
// was sent it assigns "conv-<n>", as the real agent assigns a fresh one.
func Echo(req agent.ChatRequest) Reply {
	return JSON(agent.ChatResponse{
		ID:             "msg-echo",
		Response:       req.Message,
		ConversationID: conversationOrNew(req.ConversationID),
	})
}

var (
	convMu  sync.Mutex
	convSeq int
)

func conversationOrNew(id *string) string {
	if id != nil {
		return *id
	}
	convMu.Lock()
	defer convMu.Unlock()
	convSeq++
	return fmt.Sprintf("conv-%d", convSeq)
}

func (a *Agent) serveHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a.mu.Lock()
	a.healthCalls++
	var rep Reply
	if len(a.health) > 0 {
		rep = a.health[0]
		if len(a.health) > 1 {
			a.health = a.health[1:]
		}
	}
	a.mu.Unlock()

	write(w, r, rep)
}

func (a *Agent) serveChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	var req agent.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	a.chatLog = append(a.chatLog, req)
	a.rawChat = append(a.rawChat, raw)
	fn := a.chat
	a.mu.Unlock()

	write(w, r, fn(req))
}

func write(w http.ResponseWriter, r *http.Request, rep Reply) {
	if rep.Delay > 0 {
		select {
		case <-time.After(rep.Delay):
		case <-r.Context().Done():
			return
		}
	}
	status := rep.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(rep.Body))
}

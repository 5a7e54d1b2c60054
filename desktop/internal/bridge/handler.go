package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/slovo/slovo/desktop/internal/commands"
	"github.com/slovo/slovo/desktop/internal/origin"
	"github.com/slovo/slovo/desktop/internal/tray"
	"github.com/slovo/slovo/desktop/internal/window"
)

// commandPrefix is the path prefix of every state-changing route.
const commandPrefix = "/api/v1/commands/"

// maxBodyBytes bounds command bodies. Voice input arrives as a JSON number
// array, roughly four bytes of JSON per audio byte.
const maxBodyBytes = 16 << 20

// Commands is the facade the bridge exposes. *commands.Facade satisfies it.
type Commands interface {
	ProcessVoiceInput(ctx context.Context, audio []byte) (string, error)
	CheckAgentStatus(ctx context.Context) commands.Envelope[commands.AgentStatus]
	SendMessageToAgent(ctx context.Context, message string, conversationID *string) commands.Envelope[commands.ChatMessage]
	ShowWindow(ctx context.Context) error
	HideWindow(ctx context.Context) error
}

// Windows is the part of the window registry the bridge uses directly.
type Windows interface {
	RequestClose(label string) error
	Snapshot() []window.Change
}

// Deps are the collaborators behind the bridge routes. Events and Metrics
// are optional; their routes are not mounted when nil. AllowedOrigins
// lists the browser origins accepted on every route; an empty list admits
// only requests that send no Origin header.
type Deps struct {
	Commands       Commands
	Windows        Windows
	Events         http.Handler
	Metrics        http.Handler
	Logger         *slog.Logger
	AllowedOrigins []string
}

// Handler serves the loopback bridge used by the webview.
type Handler struct {
	cmds    Commands
	windows Windows
	origins origin.AllowList
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New creates a Handler and registers all routes.
func New(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		cmds:    d.Commands,
		windows: d.Windows,
		origins: origin.NewAllowList(d.AllowedOrigins),
		logger:  logger,
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc(commandPrefix+"process_voice_input", h.processVoiceInput)
	h.mux.HandleFunc(commandPrefix+"check_agent_status", h.checkAgentStatus)
	h.mux.HandleFunc(commandPrefix+"send_message_to_agent", h.sendMessageToAgent)
	h.mux.HandleFunc(commandPrefix+"show_window", h.showWindow)
	h.mux.HandleFunc(commandPrefix+"hide_window", h.hideWindow)
	h.mux.HandleFunc(commandPrefix+"close_window", h.closeWindow)
	h.mux.HandleFunc(commandPrefix, h.unknownCommand)
	h.mux.HandleFunc("/api/v1/tray", h.trayState)
	h.mux.HandleFunc("/api/v1/windows", h.listWindows)
	if d.Events != nil {
		h.mux.Handle("/ws/events", d.Events)
	}
	if d.Metrics != nil {
		h.mux.Handle("/metrics", d.Metrics)
	}

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if v := recover(); v != nil {
			if v == http.ErrAbortHandler {
				panic(v)
			}
			h.logger.Error("bridge: handler panicked", "path", r.URL.Path, "panic", v)
			jsonErr(w, http.StatusInternalServerError, "internal error")
		}
	}()

	if o := r.Header.Get(origin.Header); !h.origins.Allowed(o) {
		h.logger.Warn("bridge: rejected foreign origin", "origin", o, "path", r.URL.Path)
		jsonErr(w, http.StatusForbidden, "origin not allowed")
		return
	}
	// A JSON body cannot be sent cross-origin without a preflight, and the
	// bridge answers no preflight.
	if r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, commandPrefix) && !isJSON(r) {
		jsonErr(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return
	}
	h.mux.ServeHTTP(w, r)
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// --- command handlers -------------------------------------------------------

// processVoiceInput handles POST process_voice_input {"audio_data": [...]}.
func (h *Handler) processVoiceInput(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req voiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.cmds.ProcessVoiceInput(r.Context(), req.AudioData)
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, out)
}

// checkAgentStatus handles POST check_agent_status. It always answers 200.
func (h *Handler) checkAgentStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.cmds.CheckAgentStatus(r.Context()))
}

// sendMessageToAgent handles POST send_message_to_agent
// {"message": "...", "conversation_id": "..."|null}. Agent failures are
// reported inside a 200 envelope; only malformed requests get a 4xx.
func (h *Handler) sendMessageToAgent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req chatRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Message == nil {
		jsonErr(w, http.StatusBadRequest, "message is required")
		return
	}
	jsonResp(w, http.StatusOK, h.cmds.SendMessageToAgent(r.Context(), *req.Message, req.ConversationID))
}

func (h *Handler) showWindow(w http.ResponseWriter, r *http.Request) {
	h.windowCommand(w, r, h.cmds.ShowWindow)
}

func (h *Handler) hideWindow(w http.ResponseWriter, r *http.Request) {
	h.windowCommand(w, r, h.cmds.HideWindow)
}

// closeWindow hides the main window; the process keeps running in the tray.
func (h *Handler) closeWindow(w http.ResponseWriter, r *http.Request) {
	h.windowCommand(w, r, func(context.Context) error {
		return h.windows.RequestClose(window.Main)
	})
}

func (h *Handler) windowCommand(w http.ResponseWriter, r *http.Request, fn func(context.Context) error) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := fn(r.Context()); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, window.ErrNotFound) {
			code = http.StatusNotFound
		}
		jsonErr(w, code, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unknownCommand(w http.ResponseWriter, r *http.Request) {
	jsonErr(w, http.StatusNotFound, "unknown command")
}

// --- read-only routes -------------------------------------------------------

// trayState handles GET /api/v1/tray[?mode=...]: the whole table, or the
// icon and tooltip for one mode.
func (h *Handler) trayState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	q := r.URL.Query()
	if !q.Has("mode") {
		jsonResp(w, http.StatusOK, tray.All())
		return
	}
	m, err := tray.ParseMode(q.Get("mode"))
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResp(w, http.StatusOK, tray.Lookup(m))
}

// listWindows handles GET /api/v1/windows.
func (h *Handler) listWindows(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.windows.Snapshot())
}

// --- helpers ----------------------------------------------------------------

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonErr(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		jsonErr(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// Package bridge is the loopback HTTP API the webview calls in place of
// in-process command invocation.
//
// New(deps) returns an http.Handler that serves:
//
//	POST /api/v1/commands/process_voice_input    {"audio_data": [..]}  -> "placeholder"
//	POST /api/v1/commands/check_agent_status                           -> envelope, always success
//	POST /api/v1/commands/send_message_to_agent  {"message", "conversation_id"} -> envelope
//	POST /api/v1/commands/show_window                                  -> 204 | 404
//	POST /api/v1/commands/hide_window                                  -> 204 | 404
//	POST /api/v1/commands/close_window           hides to tray         -> 204 | 404
//	GET  /api/v1/tray[?mode=idle|listening|processing|error]           -> icon + tooltip
//	GET  /api/v1/windows                                               -> surface visibility
//	GET  /ws/events                                                    -> event stream (ws hub)
//	GET  /metrics                                                      -> Prometheus text
//
// Agent outcomes travel inside the envelope with status 200; non-2xx codes
// are reserved for malformed requests, wrong methods and missing windows,
// and carry {"error": "..."}. Panics in a handler are recovered and answered
// with 500. No external HTTP framework is used.
//
// Every route rejects a request whose Origin header is present and not in
// Deps.AllowedOrigins with 403. POSTs under /api/v1/commands/ must declare
// Content-Type application/json or get 415, so a page in another origin
// cannot reach a command without a CORS preflight, which the bridge never
// grants.
package bridge

// Package commands is the boundary adapter the UI calls.
//
// Every agent-facing command returns an Envelope:
//
//	{"success": true,  "data": {...}, "error": null}
//	{"success": false, "data": null,  "error": "agent: chat request failed with status 500: overloaded"}
//
// The two agent commands deliberately treat failure differently.
// CheckAgentStatus never fails: when the agent cannot be queried it reports
// {"status": "disconnected", "version": null} inside a successful envelope.
// SendMessageToAgent reports every contract error as a failed envelope.
//
// ShowWindow and HideWindow address the "main" surface and fail only when it
// is not registered. ProcessVoiceInput is a placeholder.
package commands

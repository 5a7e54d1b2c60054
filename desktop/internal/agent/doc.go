// Package agent implements the request/response contract with the
// background agent process.
//
//	GET  /health       -> 200 {status, version, uptime}
//	POST /api/v1/chat  {message, conversation_id|null}
//	                   -> 200 {id, response, conversation_id, reasoning|null}
//
// Client.HealthCheck and Client.SendMessage return *Error for every failure.
// Kind tells apart a missing response (KindUnreachable, also matching
// transport.ErrUnreachable), a non-2xx answer (KindStatus, with the code and,
// for chat, the body verbatim), a 2xx body that does not decode
// (KindDecode) and a request that never left the process (KindRequest).
// Required fields missing from a body count as decode failures.
//
// Conversation ids belong to the agent: SendMessage forwards the caller's id
// (or null) and returns whatever the agent answered.
package agent

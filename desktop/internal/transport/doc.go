// Package transport is the HTTP client every agent call goes through.
//
// A Client is bound to one loopback base URL (http://127.0.0.1:8741 by
// default) and a per-request timeout (30s by default) for its whole
// lifetime. Get and Post make exactly one attempt: no retries happen here.
//
// Any response that arrives, whatever its status, is returned fully read as
// a *Response. Failing to connect, timing out, or losing the connection
// while reading the body yields a *Error, which matches ErrUnreachable.
//
// A header RoundTripper adds User-Agent and a fresh X-Request-Id (UUIDv4)
// to each request so the agent can correlate its own logs.
package transport

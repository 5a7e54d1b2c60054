// Package ws implements the WebSocket event hub the webview subscribes to.
//
// New(logger, allowedOrigins) creates a Hub. Hub.Publish(event, data) sends an event to all
// connected clients and remembers it as the latest message of that name.
// Hub.ServeHTTP upgrades a connection, replays the latest message of every
// event name in first-published order, then streams new events as they are
// published. Hub.Run(ctx) blocks until ctx is cancelled, then closes all
// active connections.
//
// Message format sent to clients:
//
//	{
//	  "event": "agent-status-changed",
//	  "data":  {"previous": "disconnected", "status": "connected", "at": "..."}
//	}
//
// The desktop process publishes "agent-status-changed" from the health
// monitor and "window-visibility" from the window registry. The endpoint is
// mounted at /ws/events by the bridge. A handshake carrying an Origin header
// outside the allow-list is refused with 403; one with no Origin header is
// accepted.
package ws

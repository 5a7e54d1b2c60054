// Package monitor supervises agent liveness.
//
// A Monitor polls agent.Client.HealthCheck once immediately and then every
// interval (DefaultInterval, 10s). Each poll is classified:
//
//	error or no response        -> Disconnected
//	status == healthy token     -> Connected
//	any other status            -> Degraded
//
// The monitor starts Disconnected and publishes an Event to its sinks only
// when the classified state differs from the last one, so a steady agent
// produces exactly one event. Transitions into Disconnected also log a single
// warning carrying the poll error. Sinks used by the desktop process are the
// ws hub (event "agent-status-changed") and the gRPC health service.
//
// With WithMetrics the monitor counts polls per outcome and transitions per
// edge, and keeps a one-hot gauge of the current state.
package monitor

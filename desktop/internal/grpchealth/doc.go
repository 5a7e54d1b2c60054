// Package grpchealth serves the standard gRPC health protocol
// (grpc.health.v1.Health) for out-of-process supervisors.
//
// The desktop process registers a Server as a monitor sink. Service
// "slovo.agent" is SERVING while the agent is connected and NOT_SERVING
// while it is degraded or disconnected; the empty service name is SERVING
// for as long as the process runs. Watch streams see every transition.
//
// The listener is disabled unless bridge.grpc_listen is set, and must be a
// loopback address.
package grpchealth

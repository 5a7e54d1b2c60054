package grpchealth

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/slovo/slovo/desktop/internal/monitor"
)

// Service is the health service name that mirrors agent connectivity.
// The empty service name reports on the desktop process itself.
const Service = "slovo.agent"

// Server is a gRPC server exposing grpc.health.v1.Health. It is a
// monitor.Sink: each transition updates the serving status of Service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// New creates a Server. Service starts NOT_SERVING, matching the monitor's
// initial Disconnected state. A nil logger means slog.Default().
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		health: health.NewServer(),
		logger: logger,
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.logCalls))
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(Service, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// ServingStatus maps a connectivity state to a health status. Only a
// healthy agent is SERVING.
func ServingStatus(s monitor.State) healthpb.HealthCheckResponse_ServingStatus {
	if s == monitor.Connected {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}

// Publish implements monitor.Sink.
func (s *Server) Publish(e monitor.Event) {
	st := ServingStatus(e.Current)
	s.health.SetServingStatus(Service, st)
	s.logger.Debug("grpchealth: serving status updated", "service", Service, "status", st.String())
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpchealth: listening", "addr", lis.Addr().String())
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING, so watchers see the shutdown, then
// stops the server gracefully.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		s.logger.Debug("grpchealth: call failed", "method", info.FullMethod, "err", err)
	}
	return resp, err
}

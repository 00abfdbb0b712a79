// Package health exposes the listener's state over the standard gRPC health
// checking protocol.
package health

import (
	"log/slog"
	"net"

	"github.com/go-faster/errors"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/openosaka/udprint/sdk/go/udprint"
)

// Service is the name reported to health checks.
const Service = "udprint"

type Server struct {
	grpcServer *grpc.Server
	health     *grpchealth.Server
	lis        net.Listener
	logger     udprint.Logger
}

// Listen binds addr and starts in NOT_SERVING until SetServing is called.
func Listen(addr string, logger udprint.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen health %s", addr)
	}

	hs := grpchealth.NewServer()
	hs.SetServingStatus(Service, healthpb.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{
		grpcServer: gs,
		health:     hs,
		lis:        lis,
		logger:     logger,
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}

func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.logger.Debug("health status changed", slog.String("status", status.String()))
	s.health.SetServingStatus(Service, status)
}

// Serve blocks until Stop is called.
func (s *Server) Serve() error {
	s.logger.Info("health server listening", slog.String("addr", s.lis.Addr().String()))
	if err := s.grpcServer.Serve(s.lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return errors.Wrap(err, "serve health")
	}
	return nil
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

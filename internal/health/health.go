package health

import (
	"errors"
	"net"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "storefront"

// Reporter publishes backend reachability through the standard gRPC health
// service. It starts SERVING and flips on every catalog fetch outcome.
type Reporter struct {
	server    *health.Server
	reachable atomic.Bool
	log       *logrus.Logger
}

func NewReporter(logger *logrus.Logger) *Reporter {
	r := &Reporter{server: health.NewServer(), log: logger}
	r.reachable.Store(true)
	r.server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return r
}

func (r *Reporter) SetBackendReachable(reachable bool) {
	if r.reachable.Swap(reachable) == reachable {
		return
	}
	status := healthpb.HealthCheckResponse_SERVING
	if !reachable {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	r.server.SetServingStatus(ServiceName, status)
	r.log.Infof("Health: Backend reachability changed, status now %s", status)
}

func (r *Reporter) BackendReachable() bool {
	return r.reachable.Load()
}

func (r *Reporter) HealthServer() healthpb.HealthServer {
	return r.server
}

// Server is the optional gRPC listener exposing the health service.
type Server struct {
	grpcServer *grpc.Server
	addr       string
	log        *logrus.Logger
}

func NewServer(addr string, reporter *Reporter, logger *logrus.Logger) *Server {
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, reporter.HealthServer())
	reflection.Register(grpcServer)
	return &Server{grpcServer: grpcServer, addr: addr, log: logger}
}

// Serve blocks until Stop is called or the listener fails.
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.log.Infof("gRPC health server listening on %s", s.addr)
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
	s.log.Info("gRPC health server gracefully stopped.")
}

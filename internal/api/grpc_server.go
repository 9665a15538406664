package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"

	"shareit/internal/config"
	"shareit/internal/logging"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/reflection"
)

// GRPCServer exposes BookingReadServer to other services.
type GRPCServer struct {
	server   *grpc.Server
	listener net.Listener
	logger   *zerolog.Logger
}

// NewGRPCServer listens on the configured port.
func NewGRPCServer(cfg config.APIConfig, svc BookingReadServer, logger *zerolog.Logger) (*GRPCServer, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
	if err != nil {
		return nil, fmt.Errorf("grpc listen on port %d: %w", cfg.GRPC.Port, err)
	}

	srv, err := NewGRPCServerWithListener(cfg, svc, lis, logger)
	if err != nil {
		_ = lis.Close()
		return nil, err
	}
	return srv, nil
}

func NewGRPCServerWithListener(cfg config.APIConfig, svc BookingReadServer, lis net.Listener, logger *zerolog.Logger) (*GRPCServer, error) {
	log := logging.Component(logger, "grpc")

	opts, err := serverOptions(cfg, *log)
	if err != nil {
		return nil, err
	}

	server := grpc.NewServer(opts...)
	RegisterBookingReadServer(server, svc)
	if cfg.GRPC.Reflection {
		reflection.Register(server)
	}

	return &GRPCServer{server: server, listener: lis, logger: log}, nil
}

// serverOptions orders interceptors outermost first: recovery, logging,
// auth, then per-client throttling.
func serverOptions(cfg config.APIConfig, log zerolog.Logger) ([]grpc.ServerOption, error) {
	chain := []grpc.UnaryServerInterceptor{
		recoverPanics(log),
		requestLogger(log),
	}
	if cfg.Auth.Enabled {
		chain = append(chain, NewAPIKeyAuth(cfg.Auth).Interceptor())
	}
	chain = append(chain, newClientLimiter(cfg.RateLimit).Interceptor())

	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(chain...)}
	if cfg.GRPC.TLS.Enabled {
		tlsCfg, err := buildTLSConfig(cfg.GRPC.TLS)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsCfg)))
	}
	return opts, nil
}

func buildTLSConfig(cfg config.APITLSConfig) (*tls.Config, error) {
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, errors.New("grpc tls needs cert_file and key_file")
	}
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load grpc tls keypair: %w", err)
	}

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if !cfg.RequireClientCert {
		return tlsCfg, nil
	}

	pool, err := loadCertPool(cfg.ClientCAFile)
	if err != nil {
		return nil, err
	}
	tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
	tlsCfg.ClientCAs = pool
	return tlsCfg, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, errors.New("grpc tls require_client_cert needs client_ca_file")
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates in %s", path)
	}
	return pool, nil
}

func (s *GRPCServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *GRPCServer) Serve() error {
	s.logger.Info().Str("addr", s.Addr()).Msg("gRPC API listening")
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown waits for in-flight calls until ctx is done, then stops hard.
func (s *GRPCServer) Shutdown(ctx context.Context) {
	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		s.logger.Warn().Msg("gRPC graceful stop timed out, forcing")
		s.server.Stop()
		<-stopped
	}
}

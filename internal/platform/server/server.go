package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/AshithaPGowda/code-challenge/internal/adapters/grpc/reviewrpc"
)

// Options はサーバーの待ち受け設定です。
type Options struct {
	ListenAddr      string
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// Server は gRPC サーバーと HTTP サーバーのライフサイクルを管理します。
type Server struct {
	opts       Options
	grpcServer *grpc.Server
	httpServer *http.Server
	health     *health.Server
	logger     *zap.Logger
}

// New は ReviewService を登録した gRPC サーバーと HTTP サーバーを構築します。
// httpHandler が nil の場合は HTTP サーバーを起動しません。
func New(opts Options, review reviewrpc.ReviewServiceServer, httpHandler http.Handler, logger *zap.Logger, grpcOpts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	grpcOpts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(unaryLogger(logger))}, grpcOpts...)
	srv := grpc.NewServer(grpcOpts...)
	reviewrpc.RegisterReviewServiceServer(srv, review)

	hs := health.NewServer()
	hs.SetServingStatus(reviewrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	s := &Server{
		opts:       opts,
		grpcServer: srv,
		health:     hs,
		logger:     logger,
	}
	if httpHandler != nil {
		s.httpServer = &http.Server{
			Addr:              opts.HTTPAddr,
			Handler:           httpHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	return s
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.ListenAddr, err)
	}

	errCh := make(chan error, 2)
	go func() {
		s.logger.Info("gRPC server listening", zap.String("addr", s.opts.ListenAddr))
		if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- fmt.Errorf("serve gRPC: %w", err)
			return
		}
		errCh <- nil
	}()

	running := 1
	if s.httpServer != nil {
		running++
		go func() {
			s.logger.Info("HTTP server listening", zap.String("addr", s.opts.HTTPAddr))
			if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("serve HTTP: %w", err)
				return
			}
			errCh <- nil
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		running--
	}

	s.shutdown()
	for ; running > 0; running-- {
		if err := <-errCh; err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func (s *Server) shutdown() {
	s.health.Shutdown()
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Warn("http shutdown failed", zap.Error(err))
		}
	}
	s.GracefulStop()
}

// GracefulStop は gRPC サーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

func unaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

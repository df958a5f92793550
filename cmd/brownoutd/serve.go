package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/brownout-core/internal/metrics"
	"github.com/GoSim-25-26J-441/brownout-core/internal/simd"
	"github.com/GoSim-25-26J-441/brownout-core/pkg/logger"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

type serveOptions struct {
	grpcAddr   string
	httpAddr   string
	submitRate int
}

func newServeCommand() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run API over HTTP and gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logLevel, _ := cmd.Flags().GetString("log-level")
			logger.SetDefault(logger.NewText(logLevel, cmd.OutOrStdout()))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
	cmd.Flags().StringVar(&opts.grpcAddr, "grpc-addr", ":50051", "gRPC listen address")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP listen address")
	cmd.Flags().IntVar(&opts.submitRate, "submit-rate", 0, "run submissions allowed per client and second (0 = unlimited)")
	return cmd
}

func serve(ctx context.Context, opts *serveOptions) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	exporter := metrics.NewExporter(nil)
	store := simd.NewRunStore()
	executor := simd.NewRunExecutor(store, exporter)

	// TODO: Configure gRPC server security (e.g., TLS, authentication)
	// before using this service in a production environment.
	grpcServer := grpc.NewServer()
	simd.RegisterBrownoutServiceServer(grpcServer, simd.NewBrownoutGRPCServer(store))

	grpcLis, err := net.Listen("tcp", opts.grpcAddr)
	if err != nil {
		logger.Error("failed to listen for gRPC", "addr", opts.grpcAddr, "error", err)
		return err
	}

	api := simd.NewHTTPServer(store, executor, exporter)
	api.SetSubmitRateLimit(opts.submitRate)

	httpSrv := &http.Server{
		Addr:              opts.httpAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start servers.
	go func() {
		logger.Info("gRPC server listening", "addr", opts.grpcAddr)
		if err := grpcServer.Serve(grpcLis); err != nil {
			logger.Error("gRPC server error", "error", err)
			stop()
		}
	}()

	go func() {
		logger.Info("HTTP server listening", "addr", opts.httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
		return err
	}
	return nil
}

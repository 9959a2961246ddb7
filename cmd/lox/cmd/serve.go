package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mdwlog "github.com/msto63/lox/foundation/core/log"
	"github.com/msto63/lox/foundation/lox"
	"github.com/msto63/lox/internal/server"
)

var (
	serveGRPCPort int
	serveHTTPPort int
	serveMaxBytes int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC and WebSocket front end",
	Long: `Starts the network front end.

Endpoints:
  gRPC  lox.v1.Frontend/Process, grpc.health.v1.Health  (default :9310)
  HTTP  GET /ws (WebSocket), GET /healthz              (default :8310)

Lexical and parse errors are returned as data in the response. Every
request is recorded in the run history when it is enabled.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&serveGRPCPort, "grpc-port", 0, "gRPC port (overrides config)")
	serveCmd.Flags().IntVar(&serveHTTPPort, "http-port", 0, "HTTP port (overrides config)")
	serveCmd.Flags().IntVar(&serveMaxBytes, "max-source-bytes", 1<<20, "reject larger sources")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveGRPCPort > 0 {
		appConfig.Server.GRPCPort = serveGRPCPort
	}
	if serveHTTPPort > 0 {
		appConfig.Server.HTTPPort = serveHTTPPort
	}
	if err := appConfig.Validate(); err != nil {
		return err
	}

	engine, err := lox.New(engineOptions())
	if err != nil {
		return err
	}
	st := openStore()
	defer closeStore(st)

	f := server.NewFrontend(engine, st, logger)
	f.MaxSourceBytes = serveMaxBytes

	cfg := server.DefaultConfig()
	cfg.GRPCAddress = appConfig.GRPCAddress()
	cfg.HTTPAddress = appConfig.HTTPAddress()
	cfg.EnableReflection = appConfig.Server.EnableReflection
	cfg.ReadTimeout = appConfig.Server.ReadTimeout.Duration
	cfg.WriteTimeout = appConfig.Server.WriteTimeout.Duration

	logger.Info("starting lox front end", mdwlog.Fields{
		"grpc":    cfg.GRPCAddress,
		"http":    cfg.HTTPAddress,
		"history": st != nil,
	})
	fmt.Fprintf(cmd.OutOrStdout(), "lox serve: gRPC %s, HTTP %s (Ctrl+C stops)\n", cfg.GRPCAddress, cfg.HTTPAddress)

	return server.New(cfg, f).Run(ctx)
}

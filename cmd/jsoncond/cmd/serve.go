package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/solatis/jsoncond/internal/core/api"
	"github.com/solatis/jsoncond/internal/core/auth"
	"github.com/solatis/jsoncond/internal/core/server"
	"github.com/solatis/jsoncond/internal/sqlgen"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start gRPC condition service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := slog.Default()

	cfg, store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.DB().Close()

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}

	var authenticator *auth.Authenticator
	if cfg.APIKey != "" {
		authenticator, err = auth.NewAuthenticator(cfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create authenticator: %w", err)
		}
	} else {
		logger.Warn("no API key configured (set JC_SERVICE_API_KEY); serving unauthenticated")
	}

	service, err := api.NewConditionService(store, sqlgen.Compiler{DefaultArrayType: cfg.DefaultArrayType}, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg, service, authenticator, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting jsoncond condition service",
		slog.String("version", Version),
		slog.String("address", cfg.Address()),
		slog.String("driver", store.DB().DriverName()),
	)
	errChan := make(chan error, 1)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info("shutting down gracefully")
		return grpcServer.Shutdown(ctx)
	}
}

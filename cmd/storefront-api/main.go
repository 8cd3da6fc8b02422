package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aviravastra/storefront/internal/config"
	"github.com/aviravastra/storefront/internal/fakeapi"
	"github.com/aviravastra/storefront/internal/logger"
	"github.com/aviravastra/storefront/internal/version"
)

func main() {
	var envFile string

	cmd := &cobra.Command{
		Use:   "storefront-api",
		Short: "Development backend for the storefront client",
		Long:  `Serves an in-memory copy of the storefront REST API with a seeded catalog.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(envFile)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional file of environment variables")
	cmd.Version = version.Get().String()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg, err := config.NewAPIConfig()
	if err != nil {
		return err
	}

	log := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)
	log.Info("starting storefront api", slog.String("version", version.Get().Version))

	server, err := fakeapi.NewServer(cfg, log)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Error("server error", slog.String("error", err.Error()))
		return err
	}

	log.Info("storefront api shutdown complete")
	return nil
}

package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tb0hdan/httpx-mcp/pkg/config"
)

const (
	ServerName  = "httpx-mcp"
	ServiceName = "httpx Command Builder MCP Server"
)

//go:embed VERSION
var Version string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var printVersion bool

	rootCmd := &cobra.Command{
		Use:           ServerName,
		Short:         ServiceName,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Sanitize version
			version := strings.TrimSpace(Version)
			if printVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Version: %s\n", ServiceName, version)
				return nil
			}

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, version)
		},
	}

	config.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().BoolVar(&printVersion, "version", false, "print version and exit")
	cobra.CheckErr(config.BindFlags(v, rootCmd.Flags()))

	return rootCmd
}

func run(parent context.Context, cfg *config.Config, version string) error {
	if parent == nil {
		parent = context.Background()
	}
	signalCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger.Debug().Msg("debug mode enabled")
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	srv, router, err := newApp(cfg, version, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Bind,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.Info().Msgf("%s starting on address %s", ServiceName, cfg.Bind)
	logger.Info().Msgf("MCP endpoint available at: http://%s%s", cfg.Bind, cfg.Route)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s failed to start: %w", ServerName, err)
		}
		return nil
	case <-signalCtx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Msgf("%s HTTP shutdown error: %v", ServiceName, err)
	}
	// Shutdown MCP server
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Msgf("%s shutdown error: %v", ServiceName, err)
		return err
	}
	logger.Info().Msgf("%s shutdown complete", ServiceName)
	return nil
}

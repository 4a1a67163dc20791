package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/felixzheng98/cedarlink/internal/api"
	"github.com/felixzheng98/cedarlink/internal/audit"
	"github.com/felixzheng98/cedarlink/internal/config"
	"github.com/felixzheng98/cedarlink/internal/core"
	"github.com/felixzheng98/cedarlink/internal/logging"
	"github.com/felixzheng98/cedarlink/internal/source"
	"github.com/felixzheng98/cedarlink/internal/store"
	"github.com/felixzheng98/cedarlink/internal/tasks"
	"github.com/felixzheng98/cedarlink/internal/validation"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Cedarlink server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := f.LoadServiceConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		frontend := f.GetFrontend()

		log.Info().Msg("Validating configured policies...")
		records, err := validation.ValidatePolicies(frontend, cfg.Policies, cfg.Links)
		if err != nil {
			return fmt.Errorf("validating policies: %w", err)
		}

		policyStore := store.NewInMemoryPolicyStore()
		for _, rec := range records {
			if err := policyStore.Put(rec); err != nil {
				return fmt.Errorf("publishing policy '%s': %w", rec.ID, err)
			}
		}
		log.Info().Msgf("Published %d configured policies", len(records))

		auditor, err := buildAuditor(cfg)
		if err != nil {
			return fmt.Errorf("building auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close auditor")
			}
		}()

		fetcher, err := buildFetcher(cfg)
		if err != nil {
			return fmt.Errorf("building policy source: %w", err)
		}

		taskManager := tasks.NewManager()
		defer taskManager.Stop()

		srv := api.NewServer(frontend, policyStore, taskManager, auditor, fetcher)

		if fetcher != nil {
			svc := srv.PolicyService()

			syncTask := func(ctx context.Context, logger logging.InternalLogger) error {
				count, err := svc.SyncSource(ctx)
				if err != nil {
					return err
				}
				logger.Info("synced %d policies from source", count)
				return nil
			}
			taskManager.Register("source-sync", cfg.Source.Sync.Interval, syncTask)

			log.Info().Msg("Running initial policy source sync...")
			if count, err := svc.SyncSource(cmd.Context()); err != nil {
				log.Warn().Err(err).Msg("initial policy source sync failed")
			} else {
				log.Info().Msgf("Synced %d policies from source", count)
			}
		}

		if cfg.Auth.SigningKey == "" {
			log.Warn().Msg("no auth signing key configured, admin routes are disabled")
		}

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes([]byte(cfg.Auth.SigningKey)),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func buildAuditor(cfg *config.Config) (core.Auditor, error) {
	if !cfg.Audit.Enabled {
		return audit.NewNoopAuditor(), nil
	}
	return audit.Build(cfg.Audit.Type, cfg.Audit.Config)
}

func buildFetcher(cfg *config.Config) (source.Fetcher, error) {
	if cfg.Source == nil {
		return nil, nil
	}
	if cfg.Source.Filesystem != nil {
		return source.NewFilesystemFetcher(*cfg.Source.Filesystem)
	}
	return source.NewGitHubFetcher(*cfg.Source.GitHub)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
}

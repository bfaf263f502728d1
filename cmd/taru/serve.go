package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/susu3304/taru/internal/api"
	"github.com/susu3304/taru/internal/barrel"
	"github.com/susu3304/taru/internal/bot"
	"github.com/susu3304/taru/internal/commands"
	"github.com/susu3304/taru/internal/config"
	"github.com/susu3304/taru/internal/db"
	"golang.org/x/text/message"
)

var serveBind string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (and the Discord bot when configured)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveBind, "bind", "", "HTTP listen address (overrides WEB_BIND)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if serveBind != "" {
		cfg.WebBind = serveBind
	}

	logger := setupLogger(cfg)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("bind", cfg.WebBind).
		Bool("discord", cfg.DiscordEnabled()).
		Bool("archive", cfg.ArchiveEnabled()).
		Msg("Starting taru")

	opts := []barrel.Option{barrel.WithLogger(logger)}

	if cfg.ArchiveEnabled() {
		database, err := db.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.RunMigrations(context.Background()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		recent, err := database.ListSettlements(context.Background(), 1)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read settlement archive")
		} else if len(recent) > 0 {
			logger.Info().
				Str("label", recent[0].Label).
				Time("closed_at", recent[0].ClosedAt).
				Msg("Settlement archive ready")
		}
		opts = append(opts, barrel.WithArchiver(database), barrel.WithArchiveTimeout(cfg.ArchiveTimeout))
	}

	svc := barrel.NewService(opts...)

	if cfg.DiscordEnabled() {
		handler := commands.NewBarrelHandler(
			svc,
			commands.NewRegistry(),
			commands.NewFormatter(message.NewPrinter(cfg.LanguageTag())),
			logger,
		)
		discordBot, err := bot.New(cfg.DiscordToken, handler, logger)
		if err != nil {
			return err
		}
		if err := discordBot.Start(); err != nil {
			return err
		}
		defer func() {
			if err := discordBot.Stop(); err != nil {
				logger.Error().Err(err).Msg("Error stopping Discord bot")
			}
		}()
	}

	apiServer := api.New(cfg, svc, logger)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- apiServer.Start()
	}()

	logger.Info().Msgf("API: http://%s/api", cfg.WebBind)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("API server: %w", err)
		}
		return nil
	case <-sigChan:
	}

	logger.Info().Msg("Shutdown signal received, gracefully stopping...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Error stopping API server")
	}

	logger.Info().Msg("taru stopped")
	return nil
}

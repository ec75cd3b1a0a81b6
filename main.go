package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cheahjs/leangen/internal/api"
	"github.com/cheahjs/leangen/internal/config"
	"github.com/cheahjs/leangen/internal/imageapi"
	"github.com/cheahjs/leangen/internal/upload"
)

var (
	cfgFile  string
	port     string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "leangen",
	Short: "Web front end and relay for the OpenAI image API",
	Long: `LeanGen serves a single page for writing an image prompt, attaching
reference images and picking output options, and relays each submission to
the OpenAI image generate or edit endpoint.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if port != "" {
			cfg.Port = port
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := setupLogger(cfg); err != nil {
			return err
		}
		return serve(cfg)
	},
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "optional YAML config file")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT, default 3000)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func setupLogger(cfg *config.Config) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return nil
}

func serve(cfg *config.Config) error {
	spool, err := upload.NewSpool(cfg.UploadDir)
	if err != nil {
		return err
	}

	images := imageapi.New(cfg.APIKey,
		imageapi.WithBaseURL(cfg.BaseURL),
		imageapi.WithOrganization(cfg.Organization),
	)

	router := api.NewRouter(images, spool, api.Settings{
		Model:          cfg.Model,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	}, log.Logger)

	// No write timeout: generation can take minutes.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", "http://localhost:"+cfg.Port).
			Str("model", cfg.Model).
			Str("upload_dir", spool.Dir()).
			Msg("Server is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info().Msg("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	log.Info().Msg("Server exited")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("leangen failed")
	}
}

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Trivo121/side-projects/internal/metrics"
	"github.com/Trivo121/side-projects/internal/server"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default :8000)")
	serveCmd.Flags().String("sessions", "", "session backend: memory or redis")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
	viper.BindPFlag("sessions.backend", serveCmd.Flags().Lookup("sessions"))
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		return err
	}

	log.Info("starting ribbit", zap.String("version", resolveVersion()))

	m := metrics.New(true)

	recommender, err := newRecommender(ctx, config, log)
	if err != nil {
		return err
	}
	recommender.WithRecorder(m)

	store, closeStore, err := newSessionStore(ctx, config.Sessions, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("closing session store", zap.Error(err))
		}
	}()

	pipeline := newPipeline(recommender.Generator(), config, log).WithRecorder(m)

	srv := server.New(config.Server, server.Deps{
		Recommender: recommender,
		Pipeline:    pipeline,
		Sessions:    store,
		Metrics:     m,
		Logger:      log.Named("http"),
	})

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Listen()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := srv.Shutdown(shutdownTimeout); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return <-errs
}

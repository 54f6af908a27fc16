package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	grammy "github.com/gabelluardo/grammY"
	"github.com/gabelluardo/grammY/internal/adapters/httpapi"
	"github.com/gabelluardo/grammY/internal/cli"
	"github.com/gabelluardo/grammY/pkg/composer"
	"github.com/gabelluardo/grammY/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP update server",
	Long: `Starts the bot as an HTTP service. Updates are ingested on POST
/updates, sessions and scene trees are inspectable under /sessions and
/scenes, and Prometheus metrics are exposed on /metrics.

Replies are not part of the HTTP response; in server mode they go to the
log until a delivery transport is wired to the sink.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		storeFlag, _ := cmd.Flags().GetString("store")
		if err := cli.ApplyStoreFlag(&cfg, storeFlag); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if cmd.Flags().Changed("addr") {
			cfg.HTTP.Addr, _ = cmd.Flags().GetString("addr")
		}

		logger, err := cli.BuildLogger(&cfg)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		storage, err := cli.BuildStorage(&cfg, logger)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer storage.Close()

		metrics := observability.NewMetrics()
		logSink := composer.SinkFunc(func(_ context.Context, key, text string) error {
			logger.Info("reply", "key", key, "text", text)
			return nil
		})

		bot, err := cli.BuildBot(&cfg, logger, storage,
			grammy.WithMiddleware(metrics.Middleware()),
			grammy.WithHooks(metrics.Hooks()),
			grammy.WithSink(logSink),
		)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		handlerOpts := []httpapi.Option{httpapi.WithLogger(logger)}
		if cfg.HTTP.Metrics {
			handlerOpts = append(handlerOpts, httpapi.WithMetricsHandler(metrics.Handler()))
		}

		srv := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: httpapi.NewHandler(bot, handlerOpts...),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("http server listening", "addr", srv.Addr, "store", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("server close failed", "err", err)
				}
			}
			logger.Info("http server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("store", "", "Store backend: memory, sqlite:PATH or redis:ADDR")
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/tela/internal/cli"
	httpAdapter "github.com/aretw0/tela/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP translation server",
	Long: `Starts tela as an HTTP server exposing POST /translate, GET /events (construction
events as SSE) and GET /metrics (Prometheus).`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		file, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			file.Server.Addr, _ = cmd.Flags().GetString("addr")
		}
		cfg, err := cli.ConfigFromFlags(cmd, file.Translation)
		if err != nil {
			return err
		}

		streams := httpAdapter.NewStreamManager()
		stack, err := cli.NewStack(file, cfg, logger, streams.Observer())
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, stack.Translator.Close())
		}()

		handler := httpAdapter.NewHandler(stack.Translator,
			httpAdapter.WithBaseConfig(cfg),
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(stack.Registry, promhttp.HandlerOpts{})),
		)

		srv := &http.Server{
			Addr:              file.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting tela server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				return multierr.Combine(
					fmt.Errorf("graceful shutdown did not complete in %v: %w", 5*time.Second, err),
					srv.Close(),
				)
			}
			logger.Info("tela server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	cli.AddConfigFlags(serveCmd)
}

package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/loom-ui/loom/examples/counter"
	"github.com/loom-ui/loom/examples/todo"
	"github.com/loom-ui/loom/pkg/live"
	"github.com/loom-ui/loom/pkg/loom"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		app      string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo application",
		Long: `Serve one of the bundled demo apps over a live WebSocket session,
with Prometheus metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := buildLogger(logLevel)
			if err != nil {
				return err
			}
			factory, err := appFactory(app)
			if err != nil {
				return err
			}

			metrics := loom.NewMetrics()

			r := chi.NewRouter()
			r.Use(middleware.RequestID)
			r.Use(middleware.RealIP)
			r.Use(middleware.Logger)
			r.Use(middleware.Recoverer)

			r.Handle("/", live.Page("loom "+app, "/live"))
			r.Handle("/live", live.Handler(factory,
				live.WithLogger(logger),
				live.WithMetrics(metrics),
			))
			r.Handle("/metrics", promhttp.Handler())
			r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				fmt.Fprintln(w, "ok")
			})

			logger.Info("serving", "addr", addr, "app", app)
			return http.ListenAndServe(addr, r)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&app, "app", "counter", "Demo app to mount (counter, todo)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	return cmd
}

func appFactory(name string) (func() loom.Component, error) {
	switch name {
	case "counter":
		return func() loom.Component { return counter.New(0) }, nil
	case "todo":
		return func() loom.Component {
			return todo.New(
				todo.Item{Title: "try the input"},
				todo.Item{Title: "click an item to toggle it"},
			)
		}, nil
	default:
		return nil, fmt.Errorf("unknown app %q (want counter or todo)", name)
	}
}

func buildLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

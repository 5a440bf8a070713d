package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"choosec/pkg/compiler"
	"choosec/pkg/metrics"
	"choosec/pkg/watch"
)

var watchFlags struct {
	metricsAddress string
	debounce       time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Recompile a program whenever it changes",
	Long: `Compile a program, then recompile it every time the file is saved.

When a metrics address is configured, Prometheus metrics about every
compilation are served at /metrics.

Examples:
  choosec watch prog.my

  choosec watch prog.my --metrics-address 127.0.0.1:9464`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.metricsAddress, "metrics-address", "", "serve /metrics on this address")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 0, "override debounce interval")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if watchFlags.metricsAddress != "" {
		cfg.Metrics.ListenAddress = watchFlags.metricsAddress
	}
	if watchFlags.debounce > 0 {
		cfg.Watch.Debounce = watchFlags.debounce
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector(cfg.Metrics.Namespace, nil)
	c := compiler.New(compiler.WithLogger(logger), compiler.WithRecorder(collector))
	path := args[0]

	if addr := cfg.Metrics.ListenAddress; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			logger.Info("serving metrics", "address", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	recompile := func() error {
		_, err := buildFile(c, logger, cfg, path, "")
		return err
	}
	if err := recompile(); err != nil {
		return err
	}

	fw, err := watch.NewFileWatcher(watch.Config{Path: path, Debounce: cfg.Watch.Debounce}, logger)
	if err != nil {
		return err
	}
	if err := fw.Watch(ctx, recompile); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	return nil
}

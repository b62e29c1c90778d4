package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecgard/roster/internal/console"
	"github.com/alecgard/roster/internal/history"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive admin console",
	RunE:  runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	collector := history.NewCollector(
		history.NewFileLog(d.cfg.History.File),
		d.cfg.History.BatchSize,
		d.cfg.History.FlushInterval,
	)
	collector.SetGauge(d.metrics)
	go collector.Start(ctx)
	defer collector.Stop()

	if addr := d.cfg.Metrics.Addr; addr != "" {
		go func() {
			slog.Info("metrics listener starting", "addr", addr)
			if err := http.ListenAndServe(addr, d.metrics.Handler()); err != nil {
				slog.Error("metrics listener error", "error", err)
			}
		}()
	}

	c := console.New(console.Options{
		Input:          os.Stdin,
		Output:         os.Stdout,
		Session:        d.session,
		Client:         d.client,
		PageSize:       d.cfg.List.PageSize,
		LookupLimit:    d.cfg.Lookup.Limit,
		LookupDebounce: d.cfg.Lookup.Debounce,
		History:        collector,
		Metrics:        d.metrics,
	})

	if err := c.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

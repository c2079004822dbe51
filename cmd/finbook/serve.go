package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/akulov/finbook/internal/planfact"
	"github.com/akulov/finbook/internal/sync"
	"github.com/akulov/finbook/internal/web"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web API and the background sync scheduler",
		Long: `Start the HTTP JSON API and the PlanFact sync scheduler.

The scheduler wakes on a fixed interval and runs a sync cycle for every
registered credential that is due. Both keep running until the process
receives an interrupt.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen", ":8080", "HTTP listen address")
	cmd.Flags().Duration("sync-interval", sync.DefaultInterval, "how often the scheduler evaluates credentials")
	cmd.Flags().Int("page-limit", sync.DefaultPageLimit, "operations fetched per sync cycle")

	_ = viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("sync.interval", cmd.Flags().Lookup("sync-interval"))
	_ = viper.BindPFlag("sync.page_limit", cmd.Flags().Lookup("page-limit"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	feedOpts := []planfact.Option{}
	if baseURL := viper.GetString("planfact.base_url"); baseURL != "" {
		feedOpts = append(feedOpts, planfact.WithBaseURL(baseURL))
	}
	feed := planfact.NewClient(feedOpts...)

	importer := sync.NewImporter(store, feed, sync.Config{
		PageLimit: viper.GetInt("sync.page_limit"),
	})

	scheduler := sync.NewScheduler(store, importer, viper.GetDuration("sync.interval"))
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              viper.GetString("server.listen"),
		Handler:           web.NewServer(store, importer).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting web server", "listen", server.Addr)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

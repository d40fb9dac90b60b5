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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jdevries/crosslister/internal/dispatch"
	"github.com/jdevries/crosslister/pkg/listing"
	domain "github.com/jdevries/crosslister/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Post all listings on a schedule until interrupted",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in, err := loadInputs(cfg, log)
	if err != nil {
		return err
	}

	db, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	d := buildDispatcher(cfg, in, db, log)

	// The CSV is re-read before every run so edits between runs are picked
	// up without a restart.
	load := func() ([]*domain.ListingRecord, error) {
		return listing.LoadListings(cfg.Listings.CSVPath, cfg.Listings.ImagesDir, in.platforms)
	}

	scheduler, err := dispatch.NewScheduler(d, load, cfg.Schedule.Interval, log)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})

		metricsSrv = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("metrics server listening", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", "error", err)
			}
		}()
	}

	scheduler.Start()
	log.Info("watch mode started", "interval", cfg.Schedule.Interval.String())
	fmt.Fprintf(os.Stdout, "Watching: posting every %s. Ctrl-C to stop.\n", cfg.Schedule.Interval)

	<-ctx.Done()

	log.Info("shutting down")
	<-scheduler.Stop().Done()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down metrics server: %w", err)
		}
	}

	log.Info("stopped")
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jdevries/crosslister/internal/browser"
	"github.com/jdevries/crosslister/internal/config"
	"github.com/jdevries/crosslister/internal/dispatch"
	"github.com/jdevries/crosslister/internal/metrics"
	"github.com/jdevries/crosslister/internal/notify"
	"github.com/jdevries/crosslister/internal/store"
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post all listings from the CSV file once",
	RunE:  runPost,
}

func init() {
	rootCmd.AddCommand(postCmd)
}

func runPost(_ *cobra.Command, _ []string) error {
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
	if len(in.listings) == 0 {
		fmt.Println("No listings found.")
		return nil
	}

	db, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	d := buildDispatcher(cfg, in, db, log)
	results, err := d.Run(ctx, in.listings)
	if err != nil {
		return err
	}

	if err := results.WriteJSON(cfg.Output.ResultsPath); err != nil {
		return err
	}
	log.Info("results written", "path", cfg.Output.ResultsPath)

	fmt.Printf("Done: %d posted, %d failed. Results in %s\n",
		results.Successes(), results.Failures(), cfg.Output.ResultsPath)
	return nil
}

func buildDispatcher(
	cfg *config.Config,
	in *inputs,
	db store.Store,
	log *slog.Logger,
) *dispatch.Dispatcher {
	metrics.ListingsLoadedTotal.Add(float64(len(in.listings)))

	var notifier notify.Notifier = notify.NewNoOpNotifier(log)
	if cfg.Notify.DiscordWebhook != "" {
		notifier = notify.NewDiscordNotifier(cfg.Notify.DiscordWebhook)
	}

	post := dispatch.BrowserPostFunc(browser.Config{
		Headless:     cfg.Browser.Headless,
		UserAgent:    cfg.Browser.UserAgent,
		WindowWidth:  cfg.Browser.WindowWidth,
		WindowHeight: cfg.Browser.WindowHeight,
		Timeout:      cfg.Browser.Timeout,
	}, cfg.Browser.CookiesDir)

	return dispatch.NewDispatcher(
		in.platforms,
		in.creds,
		in.categories,
		post,
		dispatch.WithLogger(log),
		dispatch.WithStore(db),
		dispatch.WithOutput(os.Stdout),
		dispatch.WithMaxParallel(cfg.Dispatch.MaxParallel),
		dispatch.WithDelayRange(cfg.Dispatch.DelayMin, cfg.Dispatch.DelayMax),
		dispatch.WithRateLimit(cfg.Dispatch.RateLimit.PerMinute, cfg.Dispatch.RateLimit.Burst),
		dispatch.WithNotifier(notifier),
	)
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if !cfg.Store.Enabled {
		return store.NoopStore{}, nil
	}
	db, err := store.NewPostgresStore(ctx, cfg.Store.DSN(), cfg.Store.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("connecting to store: %w", err)
	}
	return db, nil
}

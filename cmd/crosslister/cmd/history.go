package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jdevries/crosslister/internal/store"
	domain "github.com/jdevries/crosslister/pkg/types"
)

var (
	historyIdentifier string
	historyPlatform   string
	historyOutcome    string
	historyLimit      int
	historyOffset     int
	historyJSON       bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past posting outcomes from the store",
	RunE:  runHistory,
}

var historyLastCmd = &cobra.Command{
	Use:   "last [identifier] [platform]",
	Short: "Show the most recent listing URL for a listing on a platform",
	Args:  cobra.ExactArgs(2),
	RunE:  runHistoryLast,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyLastCmd)

	historyCmd.Flags().StringVar(&historyIdentifier, "identifier", "", "filter by listing identifier")
	historyCmd.Flags().StringVar(&historyPlatform, "platform", "", "filter by platform")
	historyCmd.Flags().StringVar(&historyOutcome, "outcome", "", "filter by outcome (success, invalid, error)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "number of results")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "result offset")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
}

func runHistoryLast(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(cfg)

	if !cfg.Store.Enabled {
		return fmt.Errorf("store is disabled in config; history needs a database")
	}

	platform, ok := domain.ParsePlatform(args[1])
	if !ok {
		return fmt.Errorf("unknown platform %q", args[1])
	}

	ctx := context.Background()
	db, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	url, err := db.LastSuccessURL(ctx, args[0], platform)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Printf("No successful post found for %s on %s.\n", args[0], platform)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println(url)
	return nil
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogger(cfg)

	if !cfg.Store.Enabled {
		return fmt.Errorf("store is disabled in config; history needs a database")
	}

	ctx := context.Background()
	db, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	q := &store.OutcomeQuery{
		Limit:  historyLimit,
		Offset: historyOffset,
	}
	if historyIdentifier != "" {
		q.Identifier = &historyIdentifier
	}
	if historyPlatform != "" {
		platform, ok := domain.ParsePlatform(historyPlatform)
		if !ok {
			return fmt.Errorf("unknown platform %q", historyPlatform)
		}
		q.Platform = &platform
	}
	if historyOutcome != "" {
		q.Outcome = &historyOutcome
	}

	outcomes, err := db.ListOutcomes(ctx, q)
	if err != nil {
		return err
	}

	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	}

	if len(outcomes) == 0 {
		fmt.Println("No outcomes found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "POSTED\tIDENTIFIER\tPLATFORM\tOUTCOME\tURL/REASON")
	for _, o := range outcomes {
		detail := o.ListingURL
		if detail == "" {
			detail = o.Reason
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			o.PostedAt.Format("2006-01-02 15:04"),
			o.Identifier,
			o.Platform,
			o.Outcome,
			detail,
		)
	}
	return w.Flush()
}

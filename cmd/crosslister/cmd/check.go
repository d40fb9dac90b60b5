package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdevries/crosslister/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate all listings without posting anything",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := setupLogger(cfg)

	in, err := loadInputs(cfg, log)
	if err != nil {
		return err
	}
	if len(in.listings) == 0 {
		fmt.Println("No listings found.")
		return nil
	}

	// A dry run only prepares payloads, so the dispatcher gets a post func
	// that must never be reached.
	d := buildDispatcher(cfg, in, store.NoopStore{}, log)
	results := d.Check(in.listings)

	fmt.Printf("Checked %d listings: %d valid, %d invalid\n",
		len(in.listings), results.Successes(), results.Failures())
	if results.Failures() > 0 {
		return fmt.Errorf("%d listing/platform pairs failed validation", results.Failures())
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/NotHennadii/fogoctl/internal/provision"
	"github.com/NotHennadii/fogoctl/internal/python"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Upgrade the bot's dependencies",
	Long: "Upgrades pip and reinstalls every entry of requirements.txt inside the\n" +
		"existing virtual environment.\n\n" +
		"If the environment does not exist, update fails immediately without\n" +
		"performing any action: run 'fogoctl setup' first.",
	RunE: runUpdate,
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "3",
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	start := time.Now()

	ledger := openLedger(appConfig, appLogger)
	var rec provision.Recorder
	if ledger != nil {
		rec = ledger
	}

	p := provision.New(appConfig, python.NewRunner(), appLogger, rec)
	report, err := p.Update(cmd.Context())
	recordRun(ledger, "update", err == nil, report, time.Since(start))
	if err != nil {
		if errors.Is(err, python.ErrEnvMissing) {
			return fmt.Errorf("virtual environment %q not found, run 'fogoctl setup' first", appConfig.Python.VenvDir)
		}
		return err
	}

	if len(report.Warnings) > 0 {
		cmd.Printf("Update finished with %d warning(s):\n", len(report.Warnings))
		for _, w := range report.Warnings {
			cmd.Println("  - " + w)
		}
		return nil
	}
	cmd.Println("All dependencies upgraded.")
	return nil
}

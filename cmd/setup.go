package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/NotHennadii/fogoctl/internal/provision"
	"github.com/NotHennadii/fogoctl/internal/python"
	"github.com/NotHennadii/fogoctl/internal/scaffold"
	"github.com/NotHennadii/fogoctl/internal/state"
	"github.com/NotHennadii/fogoctl/pkg/logger"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision the bot's Python environment",
	Long: "Provisions everything the bot needs to run:\n" +
		"- creates the virtual environment if it does not exist yet\n" +
		"- installs the pinned dependencies from requirements.txt (written with\n" +
		"  defaults on first run)\n" +
		"- scaffolds the private_key.txt and proxy.txt templates\n" +
		"- (re)writes the run and update convenience scripts\n\n" +
		"Setup is idempotent: an existing environment is reused and user-edited\n" +
		"files are never overwritten. Only the two convenience scripts are\n" +
		"regenerated on every run.",
	RunE: runSetup,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "1",
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	start := time.Now()

	ledger := openLedger(appConfig, appLogger)
	var rec provision.Recorder
	if ledger != nil {
		rec = ledger
	}

	p := provision.New(appConfig, python.NewRunner(), appLogger, rec)
	report, err := p.Provision(cmd.Context())
	recordRun(ledger, "setup", err == nil, report, time.Since(start))
	if err != nil {
		return err
	}

	if len(report.Warnings) > 0 {
		cmd.Printf("\nSetup finished with %d warning(s):\n", len(report.Warnings))
		for _, w := range report.Warnings {
			cmd.Println("  - " + w)
		}
	} else {
		cmd.Println("\nSetup finished successfully.")
	}

	scripts := scaffold.ScriptPaths(".")
	cmd.Printf(
		"\nNext: put your wallet keys into %s (and proxies into %s if you use them),\n"+
			"then start the bot with 'fogoctl run' or %s.\n",
		appConfig.Bot.CredentialsPath, appConfig.Bot.ProxyPath, scripts.Run,
	)
	return nil
}

// recordRun appends a run record to the ledger, if one is available.
func recordRun(ledger *state.Ledger, command string, succeeded bool, report *provision.Report, dur time.Duration) {
	if ledger == nil {
		return
	}
	warnings := 0
	if report != nil {
		warnings = len(report.Warnings)
	}
	if err := ledger.RecordRun(command, succeeded, warnings, dur); err != nil {
		appLogger.Warn("failed to record run", logger.Field{Key: "error", Value: err})
	}
}

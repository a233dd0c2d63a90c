// Package cmd implements the fogoctl command line interface.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/NotHennadii/fogoctl/internal/config"
	"github.com/NotHennadii/fogoctl/internal/state"
	"github.com/NotHennadii/fogoctl/pkg/logger"
)

const version = "0.1.0"

const asciiArt = `
  ___ ___   ___  ___     _        _
 | __/ _ \ / __|/ _ \   | |__ ___| |_
 | _| (_) | (_ | (_) |  | '_ \/ _ \  _|
 |_| \___/ \___|\___/   |_.__/\___/\__|
`

type subCommandGroup string

const (
	subCommandGroupBasic    subCommandGroup = "basic"
	subCommandGroupAdvanced subCommandGroup = "advanced"
)

var (
	rootCmdConfigFilePath string
	rootCmdLogLevel       string

	// appConfig and appLogger are initialized before any subcommand runs.
	appConfig *config.Config
	appLogger logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fogoctl",
	Short: "Provision and launch the FOGO testnet swap bot",
	Long: "fogoctl prepares an isolated Python environment for the FOGO swap bot,\n" +
		"installs its pinned dependencies, scaffolds the wallet key and proxy list\n" +
		"templates, generates run/update convenience scripts and launches the bot.\n\n" +
		"Typical workflow:\n" +
		"    fogoctl setup     # one-time provisioning (safe to re-run)\n" +
		"    edit private_key.txt and, optionally, proxy.txt\n" +
		"    fogoctl run       # start the bot",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional, same as a missing config file.
		_ = godotenv.Load()

		cfg, err := config.Load(rootCmdConfigFilePath)
		if err != nil {
			return err
		}
		// The command line flag gets precedence over env var and config file.
		if rootCmdLogLevel != "" {
			cfg.LogLevel = rootCmdLogLevel
		}
		appConfig = cfg
		appLogger = logger.New(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&rootCmdConfigFilePath,
		"config",
		"",
		"Path to the fogoctl config file (default "+config.DefaultFileName+" in the working directory)",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootCmdLogLevel,
		"log-level",
		"",
		"Log level: debug, info, warn or error (overrides env var "+config.LogLevelEnvVar+")",
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openLedger opens the provisioning ledger. The ledger is informational, so
// failure to open it only logs a warning and disables recording.
func openLedger(cfg *config.Config, log logger.Logger) *state.Ledger {
	ledger, err := state.Open(cfg.StatePath)
	if err != nil {
		log.Warn("provisioning ledger unavailable", logger.Field{Key: "error", Value: err})
		return nil
	}
	return ledger
}

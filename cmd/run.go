package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NotHennadii/fogoctl/internal/api"
	"github.com/NotHennadii/fogoctl/internal/config"
	"github.com/NotHennadii/fogoctl/internal/launch"
	"github.com/NotHennadii/fogoctl/internal/python"
)

var (
	runCmdWatch      bool
	runCmdStatusAddr string
	runCmdNoPause    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch the bot inside the provisioned environment",
	Long: "Verifies the virtual environment exists and launches main.py inside it,\n" +
		"with VIRTUAL_ENV set and the environment's interpreter first on PATH.\n" +
		"After the bot exits, the terminal is held open until you press Enter\n" +
		"(interactive runs only; disable with --no-pause or 'launch.pause: false').\n\n" +
		"With --watch, fogoctl supervises the bot and restarts it whenever\n" +
		"private_key.txt, proxy.txt or requirements.txt change on disk. A change\n" +
		"to requirements.txt also reinstalls the dependencies before relaunch.\n\n" +
		"With --status-addr, a local HTTP endpoint serves /status (JSON) and\n" +
		"/metrics (Prometheus) for the current run.",
	RunE: runRun,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "2",
	},
}

func init() {
	runCmd.Flags().BoolVar(
		&runCmdWatch,
		"watch",
		false,
		"Supervise the bot and restart it when its input files change",
	)
	runCmd.Flags().StringVar(
		&runCmdStatusAddr,
		"status-addr",
		"",
		fmt.Sprintf("Bind address for the local status/metrics endpoint, e.g. 127.0.0.1:9090 (or env var %s)", config.StatusAddrEnvVar),
	)
	runCmd.Flags().BoolVar(
		&runCmdNoPause,
		"no-pause",
		false,
		"Do not hold the terminal open after the bot exits",
	)

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	env := python.NewEnv(appConfig.Python.VenvDir)
	if err := env.Validate(); err != nil {
		if python.IsEnvMissing(err) {
			return fmt.Errorf("virtual environment %q not found, run 'fogoctl setup' first", env.Root)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status := launch.NewStatus()

	statusAddr := runCmdStatusAddr
	if statusAddr == "" {
		statusAddr = appConfig.Launch.StatusAddr
	}
	if statusAddr != "" {
		server := api.NewServer(statusAddr, api.NewRouter(version, env, status), appLogger)
		server.Start()
		defer server.Shutdown()
	}

	cmd.Print(asciiArt)

	launcher := launch.NewLauncher(env, appConfig.Bot.Entrypoint, appLogger)

	exitCode := 0
	if runCmdWatch {
		supervisor := launch.NewSupervisor(launch.SupervisorConfig{
			Launcher:        launcher,
			Log:             appLogger,
			Status:          status,
			CredentialsPath: appConfig.Bot.CredentialsPath,
			ProxyPath:       appConfig.Bot.ProxyPath,
			ManifestPath:    appConfig.Bot.ManifestPath,
			Reinstall: func(ctx context.Context) error {
				pip := python.NewPip(env, python.NewRunner())
				return pip.InstallRequirements(ctx, appConfig.Bot.ManifestPath, true)
			},
		})
		err := supervisor.Run(ctx)
		var exitErr *launch.ExitCodeError
		switch {
		case errors.As(err, &exitErr):
			exitCode = exitErr.Code
		case err != nil:
			return err
		}
	} else {
		code, err := launcher.Run(ctx)
		if err != nil {
			return err
		}
		exitCode = code
	}

	if appConfig.Launch.Pause && !runCmdNoPause {
		launch.HoldOpen(os.Stdin, cmd.OutOrStdout(), exitCode)
	} else {
		cmd.Printf("\nBot finished with exit code %d.\n", exitCode)
	}

	if exitCode != 0 {
		return &launch.ExitCodeError{Code: exitCode}
	}
	return nil
}

// Package launch starts the bot inside the provisioned environment and
// optionally supervises it, restarting on input file changes.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/NotHennadii/fogoctl/internal/metrics"
	"github.com/NotHennadii/fogoctl/internal/python"
	"github.com/NotHennadii/fogoctl/pkg/logger"
)

// ExitCodeError carries the bot's exit code back to main so the invoking
// shell sees the same status the bot returned.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("bot exited with code %d", e.Code)
}

// Launcher runs the bot entrypoint with the environment's interpreter,
// with stdio inherited from the invoking terminal.
type Launcher struct {
	env        *python.Env
	entrypoint string
	log        logger.Logger
}

// NewLauncher returns a Launcher for the given environment and entrypoint.
func NewLauncher(env *python.Env, entrypoint string, log logger.Logger) *Launcher {
	return &Launcher{env: env, entrypoint: entrypoint, log: log}
}

// command builds the exec.Cmd that runs the bot.
func (l *Launcher) command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, l.env.Python(), l.entrypoint)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = l.environ()
	return cmd
}

// environ mirrors what venv activation would export: VIRTUAL_ENV set to the
// environment root and the environment's bin directory at the front of PATH.
func (l *Launcher) environ() []string {
	absRoot, err := filepath.Abs(l.env.Root)
	if err != nil {
		absRoot = l.env.Root
	}
	absBin, err := filepath.Abs(l.env.BinDir())
	if err != nil {
		absBin = l.env.BinDir()
	}

	out := make([]string, 0, len(os.Environ())+3)
	path := ""
	for _, kv := range os.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		switch {
		case strings.EqualFold(key, "PATH"):
			path = value
		case key == python.VirtualEnvVar:
			// replaced below
		default:
			out = append(out, kv)
		}
	}

	out = append(out, python.VirtualEnvVar+"="+absRoot)
	out = append(out, "PATH="+absBin+string(os.PathListSeparator)+path)
	if runtime.GOOS == "windows" {
		// The bot's aiohttp extensions misbehave on Windows event loops.
		out = append(out, "AIOHTTP_NO_EXTENSIONS=1")
	}
	return out
}

// Process is a started bot instance.
type Process struct {
	cmd     *exec.Cmd
	done    chan struct{}
	waitErr error
}

// Start launches the bot and begins waiting for it in the background.
func (l *Launcher) Start(ctx context.Context) (*Process, error) {
	cmd := l.command(ctx)
	l.log.Info("launching bot",
		logger.Field{Key: "python", Value: l.env.Python()},
		logger.Field{Key: "entrypoint", Value: l.entrypoint},
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", l.entrypoint, err)
	}
	metrics.LaunchesTotal.Inc()

	p := &Process{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

// Run launches the bot and blocks until it exits, returning its exit code.
func (l *Launcher) Run(ctx context.Context) (int, error) {
	proc, err := l.Start(ctx)
	if err != nil {
		return -1, err
	}
	<-proc.Done()
	return proc.ExitCode(), nil
}

// Done is closed once the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// PID returns the process id.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// ExitCode returns the process exit code. It must only be called after Done
// is closed.
func (p *Process) ExitCode() int {
	if p.waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(p.waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Stop asks the process to terminate and kills it after the grace period.
// Windows has no useful interrupt delivery for console children, so the
// process is killed outright there.
func (p *Process) Stop(grace time.Duration) {
	select {
	case <-p.done:
		return
	default:
	}

	if runtime.GOOS == "windows" {
		_ = p.cmd.Process.Kill()
		<-p.done
		return
	}

	_ = p.cmd.Process.Signal(os.Interrupt)
	select {
	case <-p.done:
	case <-time.After(grace):
		_ = p.cmd.Process.Kill()
		<-p.done
	}
}

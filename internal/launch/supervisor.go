package launch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/NotHennadii/fogoctl/internal/metrics"
	"github.com/NotHennadii/fogoctl/pkg/logger"
)

const (
	debounceWindow = 500 * time.Millisecond
	stopGrace      = 10 * time.Second
)

// Supervisor keeps the bot running and restarts it whenever one of its input
// files (keys, proxies, manifest) changes on disk. If the manifest changed,
// the reinstall hook runs before the relaunch. If the bot exits on its own,
// supervision ends and its exit status propagates.
type Supervisor struct {
	launcher *Launcher
	log      logger.Logger
	status   *Status

	// watched maps cleaned file paths to restart reasons.
	watched      map[string]string
	manifestPath string
	reinstall    func(ctx context.Context) error
}

// SupervisorConfig configures a Supervisor.
type SupervisorConfig struct {
	Launcher *Launcher
	Log      logger.Logger
	Status   *Status

	// CredentialsPath, ProxyPath and ManifestPath are the files whose changes
	// trigger a restart.
	CredentialsPath string
	ProxyPath       string
	ManifestPath    string

	// Reinstall is invoked before relaunching when the manifest changed.
	Reinstall func(ctx context.Context) error
}

// NewSupervisor builds a Supervisor.
func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	watched := map[string]string{
		filepath.Clean(cfg.CredentialsPath): "credentials",
		filepath.Clean(cfg.ProxyPath):       "proxies",
		filepath.Clean(cfg.ManifestPath):    "manifest",
	}
	return &Supervisor{
		launcher:     cfg.Launcher,
		log:          cfg.Log,
		status:       cfg.Status,
		watched:      watched,
		manifestPath: filepath.Clean(cfg.ManifestPath),
		reinstall:    cfg.Reinstall,
	}
}

// Run supervises the bot until the context is canceled or the bot exits on
// its own. The returned error is an *ExitCodeError when the bot exited
// non-zero.
func (s *Supervisor) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the parent directories: editors replace files via rename, which
	// drops per-file watches.
	dirs := map[string]struct{}{}
	for path := range s.watched {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	for {
		proc, err := s.launcher.Start(ctx)
		if err != nil {
			return err
		}
		s.status.setRunning(proc.PID())

		restart, runErr := s.waitForTrigger(ctx, watcher, proc)
		s.status.setStopped()
		if !restart {
			return runErr
		}
	}
}

// waitForTrigger blocks until the context is canceled, the bot exits, or a
// debounced file change requests a restart.
func (s *Supervisor) waitForTrigger(ctx context.Context, watcher *fsnotify.Watcher, proc *Process) (restart bool, err error) {
	var debounceTimer *time.Timer
	changed := map[string]string{}

	resetDebounce := func() {
		if debounceTimer == nil {
			debounceTimer = time.NewTimer(debounceWindow)
			return
		}
		if !debounceTimer.Stop() {
			select {
			case <-debounceTimer.C:
			default:
			}
		}
		debounceTimer.Reset(debounceWindow)
	}
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("shutting down, stopping bot")
			proc.Stop(stopGrace)
			return false, nil

		case <-proc.Done():
			code := proc.ExitCode()
			if code != 0 {
				return false, &ExitCodeError{Code: code}
			}
			return false, nil

		case event, ok := <-watcher.Events:
			if !ok {
				return false, fmt.Errorf("file watcher closed unexpectedly")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Clean(event.Name)
			reason, ok := s.watched[name]
			if !ok {
				continue
			}
			changed[name] = reason
			resetDebounce()

		case <-timerChan(debounceTimer):
			reason := "input"
			for path, r := range changed {
				s.log.Info("input file changed", logger.Field{Key: "path", Value: path})
				if r == "manifest" {
					reason = "manifest"
				}
			}
			proc.Stop(stopGrace)

			if _, manifestChanged := changed[s.manifestPath]; manifestChanged && s.reinstall != nil {
				s.log.Info("manifest changed, reinstalling dependencies")
				if err := s.reinstall(ctx); err != nil {
					s.log.Warn("dependency reinstall failed, relaunching anyway", logger.Field{Key: "error", Value: err})
				}
			}

			metrics.RestartsTotal.WithLabelValues(reason).Inc()
			s.status.incRestarts()
			return true, nil

		case werr, ok := <-watcher.Errors:
			if !ok {
				return false, fmt.Errorf("file watcher closed unexpectedly")
			}
			s.log.Warn("file watcher error", logger.Field{Key: "error", Value: werr})
		}
	}
}

// timerChan returns the timer's channel, or a nil channel (blocking forever)
// when no timer is armed yet.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// Package provision implements the environment provisioning workflow as an
// explicit result-returning pipeline of steps.
package provision

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/NotHennadii/fogoctl/internal/config"
	"github.com/NotHennadii/fogoctl/internal/manifest"
	"github.com/NotHennadii/fogoctl/internal/metrics"
	"github.com/NotHennadii/fogoctl/internal/python"
	"github.com/NotHennadii/fogoctl/internal/scaffold"
	"github.com/NotHennadii/fogoctl/internal/state"
	"github.com/NotHennadii/fogoctl/pkg/logger"
)

// Recorder receives ledger notifications from the provisioner.
// A nil Recorder disables recording; provisioning never depends on it.
type Recorder interface {
	TrackArtifact(path, kind string) error
	RecordInstall(name, spec string, pinned, succeeded bool) error
}

// Provisioner owns the state threaded through the pipeline steps: the
// discovered interpreter, the environment handle and the parsed manifest.
type Provisioner struct {
	cfg    *config.Config
	runner python.Runner
	log    logger.Logger
	rec    Recorder

	interpreter string
	env         *python.Env
	pip         *python.Pip
	reqs        []manifest.Requirement
}

// New builds a Provisioner. rec may be nil.
func New(cfg *config.Config, runner python.Runner, log logger.Logger, rec Recorder) *Provisioner {
	env := python.NewEnv(cfg.Python.VenvDir)
	return &Provisioner{
		cfg:    cfg,
		runner: runner,
		log:    log,
		rec:    rec,
		env:    env,
		pip:    python.NewPip(env, runner),
	}
}

// Env returns the environment handle.
func (p *Provisioner) Env() *python.Env {
	return p.env
}

// Steps returns the full provisioning pipeline in execution order.
func (p *Provisioner) Steps() []Step {
	return []Step{
		{Name: "check interpreter", Run: p.checkInterpreter},
		{Name: "check package manager", Run: p.checkPackageManager},
		{Name: "upgrade package manager", Run: p.upgradeSystemPip},
		{Name: "ensure environment", Run: p.ensureEnvironment},
		{Name: "activate environment", Run: p.activateEnvironment},
		{Name: "ensure manifest", Run: p.ensureManifest},
		{Name: "install dependencies", Run: p.installDependencies},
		{Name: "verify installation", Run: p.verifyInstallation},
		{Name: "ensure templates", Run: p.ensureTemplates},
		{Name: "write convenience scripts", Run: p.writeScripts},
	}
}

// Provision runs the full setup pipeline.
func (p *Provisioner) Provision(ctx context.Context) (*Report, error) {
	return NewPipeline(p.log, p.Steps()...).Run(ctx)
}

// Update upgrades pip and reinstalls every manifest entry in the existing
// environment. If the environment does not exist, it fails before performing
// any action at all.
func (p *Provisioner) Update(ctx context.Context) (*Report, error) {
	steps := []Step{
		{Name: "activate environment", Run: p.activateEnvironment},
		{Name: "upgrade package manager", Run: p.upgradeEnvPip},
		{Name: "upgrade dependencies", Run: p.upgradeDependencies},
	}
	return NewPipeline(p.log, steps...).Run(ctx)
}

func (p *Provisioner) checkInterpreter(ctx context.Context) Outcome {
	interpreter, err := python.FindInterpreter(ctx, p.runner, p.cfg.Python.Bin)
	if err != nil {
		return Fatal(err)
	}
	p.interpreter = interpreter
	return OK(interpreter)
}

// checkPackageManager gates on pip being usable with the system interpreter.
// If pip is missing it attempts a one-shot self-repair via ensurepip; only a
// failed repair is fatal.
func (p *Provisioner) checkPackageManager(ctx context.Context) Outcome {
	if _, err := p.runner.Run(ctx, p.interpreter, "-m", "pip", "--version"); err == nil {
		return OK("")
	}

	p.log.Warn("pip not available, attempting repair via ensurepip")
	if _, err := p.runner.Run(ctx, p.interpreter, "-m", "ensurepip", "--upgrade"); err != nil {
		return Fatal(fmt.Errorf("%w: ensurepip repair failed: %v", python.ErrPipMissing, err))
	}
	if _, err := p.runner.Run(ctx, p.interpreter, "-m", "pip", "--version"); err != nil {
		return Fatal(fmt.Errorf("%w: still unusable after ensurepip: %v", python.ErrPipMissing, err))
	}
	return OK("repaired via ensurepip")
}

func (p *Provisioner) upgradeSystemPip(ctx context.Context) Outcome {
	if _, err := p.runner.Run(ctx, p.interpreter, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return Warn(fmt.Errorf("pip self-upgrade failed: %w", err))
	}
	return OK("")
}

func (p *Provisioner) ensureEnvironment(ctx context.Context) Outcome {
	if p.env.Active() && p.env.Exists() {
		// The invoking shell already activated this environment.
		return OK("environment already active, skipping creation")
	}
	if p.env.Exists() {
		return OK("reusing existing environment")
	}
	if err := p.env.Create(ctx, p.runner, p.interpreter); err != nil {
		return Fatal(err)
	}
	return OK("created " + p.env.Root)
}

func (p *Provisioner) activateEnvironment(_ context.Context) Outcome {
	if err := p.env.Validate(); err != nil {
		return Fatal(err)
	}
	return OK("")
}

func (p *Provisioner) ensureManifest(_ context.Context) Outcome {
	path := p.cfg.Bot.ManifestPath

	created, err := manifest.Ensure(path)
	if err != nil {
		// Degraded: install from the in-memory defaults instead.
		p.reqs = manifest.Default()
		return Warn(fmt.Errorf("could not write default manifest, using built-in package set: %w", err))
	}
	p.trackArtifact(path, state.KindUserOwned)

	reqs, err := manifest.Load(path)
	if err != nil {
		p.reqs = manifest.Default()
		return Warn(fmt.Errorf("could not read manifest, using built-in package set: %w", err))
	}
	p.reqs = reqs

	if created {
		return OK("wrote default manifest")
	}
	return OK(fmt.Sprintf("%d requirements", len(reqs)))
}

// installDependencies installs each manifest entry, pinned version first.
// A failed pinned install retries unpinned (graceful degradation), except the
// critical dependency, which has no fallback and halts the workflow.
func (p *Provisioner) installDependencies(ctx context.Context) Outcome {
	start := time.Now()
	defer func() { metrics.InstallDuration.Observe(time.Since(start).Seconds()) }()

	var degraded []error

	if err := p.pip.UpgradeSelf(ctx); err != nil {
		degraded = append(degraded, err)
	}

	for _, req := range p.reqs {
		err := p.pip.Install(ctx, req.Spec())
		if err == nil {
			metrics.InstallsTotal.WithLabelValues("ok").Inc()
			p.recordInstall(req.Name, req.Spec(), req.Version != "", true)
			continue
		}

		if req.Critical() {
			metrics.InstallsTotal.WithLabelValues("fatal").Inc()
			p.recordInstall(req.Name, req.Spec(), req.Version != "", false)
			return Fatal(fmt.Errorf("%w: %s: %v", ErrCriticalDependency, req.Name, err))
		}

		if req.Version != "" {
			if retryErr := p.pip.Install(ctx, req.Name); retryErr == nil {
				metrics.InstallsTotal.WithLabelValues("unpinned").Inc()
				p.recordInstall(req.Name, req.Name, false, true)
				degraded = append(degraded, fmt.Errorf("installed %s without pin %s: %w", req.Name, req.Version, err))
				continue
			}
		}

		metrics.InstallsTotal.WithLabelValues("failed").Inc()
		p.recordInstall(req.Name, req.Spec(), req.Version != "", false)
		degraded = append(degraded, fmt.Errorf("failed to install %s: %w", req.Name, err))
	}

	if len(degraded) > 0 {
		return Warn(errors.Join(degraded...))
	}
	return OK(fmt.Sprintf("%d packages installed", len(p.reqs)))
}

func (p *Provisioner) verifyInstallation(ctx context.Context) Outcome {
	if err := p.pip.CheckImports(ctx, manifest.ImportNames(p.reqs)); err != nil {
		return Warn(err)
	}
	return OK("all imports loadable")
}

func (p *Provisioner) ensureTemplates(_ context.Context) Outcome {
	type tmpl struct {
		path   string
		ensure func(string) (bool, error)
	}
	templates := []tmpl{
		{p.cfg.Bot.CredentialsPath, scaffold.EnsureCredentialTemplate},
		{p.cfg.Bot.ProxyPath, scaffold.EnsureProxyTemplate},
	}

	var degraded []error
	createdCount := 0
	for _, t := range templates {
		created, err := t.ensure(t.path)
		if err != nil {
			degraded = append(degraded, err)
			continue
		}
		if created {
			createdCount++
			p.log.Info("created template", logger.Field{Key: "path", Value: t.path})
		}
		p.trackArtifact(t.path, state.KindUserOwned)
	}

	if len(degraded) > 0 {
		return Warn(errors.Join(degraded...))
	}
	if createdCount == 0 {
		return OK("templates already present")
	}
	return OK(fmt.Sprintf("created %d templates", createdCount))
}

func (p *Provisioner) writeScripts(_ context.Context) Outcome {
	set, err := scaffold.WriteScripts(".", p.env, p.cfg.Bot.Entrypoint, p.cfg.Bot.ManifestPath)
	if err != nil {
		return Warn(err)
	}
	p.trackArtifact(set.Run, state.KindManaged)
	p.trackArtifact(set.Update, state.KindManaged)
	return OK(fmt.Sprintf("%s, %s", set.Run, set.Update))
}

func (p *Provisioner) upgradeEnvPip(ctx context.Context) Outcome {
	if err := p.pip.UpgradeSelf(ctx); err != nil {
		return Warn(err)
	}
	return OK("")
}

func (p *Provisioner) upgradeDependencies(ctx context.Context) Outcome {
	path := p.cfg.Bot.ManifestPath
	if _, err := os.Stat(path); err != nil {
		return Fatal(fmt.Errorf("manifest %s not found, run 'fogoctl setup' first", path))
	}

	start := time.Now()
	defer func() { metrics.InstallDuration.Observe(time.Since(start).Seconds()) }()

	if err := p.pip.InstallRequirements(ctx, path, true); err != nil {
		metrics.InstallsTotal.WithLabelValues("failed").Inc()
		return Fatal(err)
	}
	metrics.InstallsTotal.WithLabelValues("ok").Inc()
	return OK("upgraded all manifest dependencies")
}

func (p *Provisioner) trackArtifact(path, kind string) {
	if p.rec == nil {
		return
	}
	if err := p.rec.TrackArtifact(path, kind); err != nil {
		p.log.Warn("failed to track artifact", logger.Field{Key: "path", Value: path}, logger.Field{Key: "error", Value: err})
	}
}

func (p *Provisioner) recordInstall(name, spec string, pinned, succeeded bool) {
	if p.rec == nil {
		return
	}
	if err := p.rec.RecordInstall(name, spec, pinned, succeeded); err != nil {
		p.log.Warn("failed to record install", logger.Field{Key: "package", Value: name}, logger.Field{Key: "error", Value: err})
	}
}

// internal/bootstrap/procedure.go
//
// The one-shot bootstrap procedure.
//
// Context
// -------
// Build phase, in strict order:
//
//  1. Secret gate    – abort before any expensive step when SECRET_KEY is
//     absent or empty (Aborted is reachable only from here).
//  2. Configure      – derive the immutable runtime environment.
//  3. Manifest prep  – place the dependency manifest into the run dir.
//  4. Install        – opaque external installer call, all-or-nothing.
//  5. Stage          – copy the application payload verbatim.
//  6. Freeze         – write the runtime environment into the image.
//
// Run phase: restore the frozen environment (or re-run the cheap gate when
// none exists), execute any enabled pre-launch steps, then block in the
// foreground server launch.  Every failure aborts the whole procedure
// immediately; nothing persistent is mutated before the gate, so there is
// no rollback and no retry at this level.
//
// Collaborators are exported fields so tests can substitute fakes; New
// wires the real ones from config.

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yanizio/stagehand/internal/config"
	"github.com/yanizio/stagehand/internal/installer"
	"github.com/yanizio/stagehand/internal/launch"
	"github.com/yanizio/stagehand/internal/payload"
	"github.com/yanizio/stagehand/internal/runtimeenv"
	"github.com/yanizio/stagehand/internal/secret"
)

// ErrMissingSecret is the fatal gate error.  Its text is the diagnostic
// shown to the operator, verbatim.
var ErrMissingSecret = errors.New("No secret key specified in build-arg")

//
// Collaborator contracts
//

// SecretResolver resolves a `vault:<path>#<key>` reference to its value.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Installer is the opaque external dependency installer.
type Installer interface {
	Run(ctx context.Context) error
}

// Server launches the application process and blocks until it exits.
type Server interface {
	Run(ctx context.Context, env runtimeenv.Env) error
}

// StageFunc copies the payload tree and reports the file count.
type StageFunc func(src, dst string) (int, error)

//
// Procedure
//

// Procedure executes the build and run phases.  It is single-use: one
// value advances through the state machine exactly once.
type Procedure struct {
	// Collaborators, pre-wired by New, overridable in tests.
	Secrets SecretResolver // nil: built lazily when a vault: ref appears
	Install Installer
	Stage   StageFunc
	Server  Server
	Steps   []launch.Step

	cfg   *config.Config
	state State

	secretKey string         // resolved, set by the gate
	env       runtimeenv.Env // set once Configured
}

// New wires a Procedure with the real collaborators.
func New(cfg *config.Config) *Procedure {
	return &Procedure{
		Install: installer.Installer{Command: cfg.Install.Command, Dir: cfg.Payload.RunDir},
		Stage:   payload.CopyTree,
		Server:  launch.Launcher{Command: cfg.Server.Command, Addr: cfg.Server.Addr, Dir: cfg.Payload.RunDir},
		Steps:   launch.BuiltinSteps(cfg.Steps),
		cfg:     cfg,
	}
}

// State reports how far the procedure has advanced.
func (p *Procedure) State() State { return p.state }

//
// Gate and configuration
//

// validate is the fail-fast secret gate.  It must run before dependency
// installation and payload copy; a missing or empty key moves the
// procedure to Aborted, the only transition into that state.
func (p *Procedure) validate(ctx context.Context) error {
	if p.state != StateUninitialized {
		return fmt.Errorf("validate called in state %s", p.state)
	}

	key := p.cfg.Build.SecretKey

	if secret.IsRef(key) {
		resolver := p.Secrets
		if resolver == nil {
			cli, err := secret.New(zap.S().Infof)
			if err != nil {
				p.state = StateAborted
				return fmt.Errorf("%w: %v", ErrMissingSecret, err)
			}
			resolver = cli
		}
		resolved, err := resolver.Resolve(ctx, key)
		if err != nil {
			p.state = StateAborted
			zap.S().Errorw("secret reference resolution failed", "err", err)
			return fmt.Errorf("%w: %v", ErrMissingSecret, err)
		}
		key = resolved
	}

	if key == "" {
		p.state = StateAborted
		zap.S().Error(ErrMissingSecret.Error())
		return ErrMissingSecret
	}

	p.secretKey = key
	p.state = StateValidated
	zap.S().Infow("secret gate passed")
	return nil
}

// configure derives the runtime environment.  Defaulting is total, so
// there is no failure mode beyond calling it out of order.
func (p *Procedure) configure() error {
	if p.state != StateValidated {
		return fmt.Errorf("configure called in state %s", p.state)
	}

	p.env = runtimeenv.Resolve(p.secretKey, p.cfg.Build.AllowedHosts)
	p.state = StateConfigured

	zap.S().Infow("runtime environment resolved",
		"allowed_hosts", p.env.Get(runtimeenv.KeyAllowedHosts),
		"timezone", p.env.Get(runtimeenv.KeyTimezone),
	)
	return nil
}

//
// Build phase
//

// Build runs the image-construction half of the procedure: gate,
// configure, manifest prep, install, stage, freeze.
func (p *Procedure) Build(ctx context.Context) error {
	if err := p.validate(ctx); err != nil {
		return err
	}
	if err := p.configure(); err != nil {
		return err
	}

	// The installer needs its manifest in place before the full payload
	// copy, mirroring the copy-manifest-install-copy-rest image layering.
	if err := p.placeManifest(); err != nil {
		return err
	}

	if err := p.Install.Run(ctx); err != nil {
		return err
	}

	if _, err := p.Stage(p.cfg.Payload.Source, p.cfg.Payload.RunDir); err != nil {
		return err
	}

	if err := p.env.Freeze(p.cfg.Payload.RunDir); err != nil {
		return err
	}

	zap.S().Infow("build complete", "run_dir", p.cfg.Payload.RunDir)
	return nil
}

// placeManifest copies the dependency manifest into the run directory.
// A payload without a manifest is fine: the installer decides whether
// that is fatal.
func (p *Procedure) placeManifest() error {
	src := filepath.Join(p.cfg.Payload.Source, p.cfg.Install.Manifest)
	if _, err := os.Stat(src); err != nil {
		zap.S().Debugw("no dependency manifest in payload", "manifest", src)
		return nil
	}

	if err := os.MkdirAll(p.cfg.Payload.RunDir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}
	return payload.CopyFile(src, filepath.Join(p.cfg.Payload.RunDir, p.cfg.Install.Manifest))
}

//
// Run phase
//

// Run restores the frozen environment (re-deriving it through the gate
// when the image carries none), executes the enabled pre-launch steps,
// and blocks in the server launch.  The returned error is the server's
// exit condition, or a step's own error kind.
func (p *Procedure) Run(ctx context.Context) error {
	switch p.state {
	case StateConfigured:
		// Build already ran in this process (`build --run`).
	case StateUninitialized:
		if env, err := runtimeenv.Restore(p.cfg.Payload.RunDir); err == nil {
			// The frozen environment is still subject to the gate.
			if env.Get(runtimeenv.KeySecretKey) == "" {
				p.state = StateAborted
				zap.S().Error(ErrMissingSecret.Error())
				return ErrMissingSecret
			}
			p.env = env
			p.state = StateConfigured
			zap.S().Infow("runtime environment restored", "run_dir", p.cfg.Payload.RunDir)
		} else {
			if err := p.validate(ctx); err != nil {
				return err
			}
			if err := p.configure(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("run called in state %s", p.state)
	}

	extraEnv := p.env.Environ()
	for _, step := range p.Steps {
		if err := step.Run(ctx, p.cfg.Payload.RunDir, extraEnv); err != nil {
			return err
		}
	}

	p.state = StateRunning
	return p.Server.Run(ctx, p.env)
}

// Execute runs the full build-then-launch cycle in one process.
func (p *Procedure) Execute(ctx context.Context) error {
	if err := p.Build(ctx); err != nil {
		return err
	}
	return p.Run(ctx)
}

// internal/launch/steps.go
//
// Optional pre-launch operations.
//
// Context
// -------
// Schema migration, fixture loading, and superuser creation are stateful,
// environment-dependent operations.  Running them during image build is a
// known anti-pattern, so they live here in the run phase, each modeled as
// an independent step with its own error kind and its own retry budget.
// A step that exhausts its budget aborts the run before the server starts.
//
// All steps are disabled by default; the Steps config section switches
// them on per deployment.

package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/stagehand/internal/config"
)

//
// Error kinds
//

// StepError carries the shared failure detail for a pre-launch step.  The
// concrete kinds below wrap it so callers can distinguish which operation
// failed with a plain errors.As.
type StepError struct {
	Step     string
	Attempts int
	Err      error
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %q failed after %d attempt(s): %v", e.Step, e.Attempts, e.Err)
}

func (e StepError) Unwrap() error { return e.Err }

// MigrateError reports a failed schema migration.
type MigrateError struct{ StepError }

// FixtureError reports a failed fixture load.
type FixtureError struct{ StepError }

// SuperuserError reports a failed superuser creation.
type SuperuserError struct{ StepError }

//
// Step
//

// Step is one named pre-launch command with a retry budget.  Retries is
// the number of attempts after the first; the wrap function converts the
// final StepError into the step's own error kind.
type Step struct {
	Name    string
	Command string
	Retries int

	wrap func(StepError) error
}

// Run executes the step in dir with extraEnv appended to the inherited
// environment, retrying on failure until the budget is exhausted.
func (s Step) Run(ctx context.Context, dir string, extraEnv []string) error {
	attempts := s.Retries + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		zap.S().Infow("running step", "step", s.Name, "attempt", attempt, "of", attempts)

		cmd := exec.CommandContext(ctx, "sh", "-c", s.Command)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(), extraEnv...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			lastErr = err
			zap.S().Warnw("step attempt failed", "step", s.Name, "attempt", attempt, "err", err)
			continue
		}

		zap.S().Infow("step complete", "step", s.Name)
		return nil
	}

	stepErr := StepError{Step: s.Name, Attempts: attempts, Err: lastErr}
	if s.wrap == nil {
		// Steps built from exported fields carry no kind of their own.
		return stepErr
	}
	return s.wrap(stepErr)
}

//
// Built-ins
//

// BuiltinSteps converts the Steps config section into the ordered list of
// enabled steps: migrate, then fixtures, then superuser.  Order matters:
// fixtures and superuser both assume a migrated schema.
func BuiltinSteps(cfg config.Steps) []Step {
	var steps []Step

	if cfg.Migrate.Enabled {
		steps = append(steps, Step{
			Name:    "migrate",
			Command: "python3 manage.py migrate --noinput",
			Retries: cfg.Migrate.Retries,
			wrap:    func(e StepError) error { return &MigrateError{e} },
		})
	}

	if cfg.LoadFixtures.Enabled {
		command := "python3 manage.py loaddata"
		if len(cfg.LoadFixtures.Args) > 0 {
			command += " " + strings.Join(cfg.LoadFixtures.Args, " ")
		}
		steps = append(steps, Step{
			Name:    "load-fixtures",
			Command: command,
			Retries: cfg.LoadFixtures.Retries,
			wrap:    func(e StepError) error { return &FixtureError{e} },
		})
	}

	if cfg.CreateSuperuser.Enabled {
		steps = append(steps, Step{
			Name:    "create-superuser",
			Command: "python3 manage.py createsuperuser --noinput",
			Retries: cfg.CreateSuperuser.Retries,
			wrap:    func(e StepError) error { return &SuperuserError{e} },
		})
	}

	return steps
}

// AsStepError extracts the shared StepError detail from any step error
// kind, including a bare kind-less StepError, reporting false for
// unrelated errors.
func AsStepError(err error) (StepError, bool) {
	var me *MigrateError
	if errors.As(err, &me) {
		return me.StepError, true
	}
	var fe *FixtureError
	if errors.As(err, &fe) {
		return fe.StepError, true
	}
	var se *SuperuserError
	if errors.As(err, &se) {
		return se.StepError, true
	}
	var plain StepError
	if errors.As(err, &plain) {
		return plain, true
	}
	return StepError{}, false
}

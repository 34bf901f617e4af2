// internal/config/model.go
//
// Typed configuration model for Stagehand.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                             – dotenv values,
//   • optional `conf/stagehand.yaml`              – static file,
//   • `STAGEHAND_`-prefixed environment overrides – highest precedence,
//
// plus the two conventional build-arg variables, `SECRET_KEY` and
// `ALLOWED_HOSTS`, which map straight onto the Build section.
//
// The build section's secret key may be a literal value or a
// `vault:<path>#<key>` reference; the reference is resolved by the
// bootstrap gate, never stored resolved in this model.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • `Build.AllowedHosts` is presence-aware (see option.go) and filled by
//     the loader, so YAML must not try to set it directly.
//   • The `Paths` block is filled at runtime; YAML must not set it either.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// Build section
//

// Build holds the image-construction inputs.  SecretKey has no default and
// no `required` tag: the bootstrap secret gate owns that check so it can
// emit the canonical diagnostic before any expensive step runs.
type Build struct {
	SecretKey    string   `koanf:"secret_key"`
	AllowedHosts Optional `koanf:"-"` // presence-aware, filled by the loader
}

//
// Install section
//

// Install describes the opaque external dependency installer.  The manifest
// path is relative to the run directory; its format is the installer's
// business, not ours.
type Install struct {
	Command  string `koanf:"command"  validate:"required"`
	Manifest string `koanf:"manifest" validate:"required"`
}

//
// Payload section
//

// Payload names the application source tree and the location it is copied
// to inside the image.
type Payload struct {
	Source string `koanf:"source"  validate:"required"`
	RunDir string `koanf:"run_dir" validate:"required"`
}

//
// Server section
//

// Server describes the external application server entrypoint.  Addr is the
// fixed listen endpoint appended to the command at launch.
type Server struct {
	Command string `koanf:"command" validate:"required"`
	Addr    string `koanf:"addr"    validate:"required,hostname_port"`
}

//
// Steps section (run phase only)
//

// StepConfig tunes one optional pre-launch step.  Every step is disabled
// unless switched on here; Retries is the number of additional attempts
// after the first failure.
type StepConfig struct {
	Enabled bool     `koanf:"enabled"`
	Retries int      `koanf:"retries" validate:"gte=0"`
	Args    []string `koanf:"args"`
}

// Steps groups the built-in pre-launch operations.  They execute at
// container start, never at image build.
type Steps struct {
	Migrate         StepConfig `koanf:"migrate"`
	LoadFixtures    StepConfig `koanf:"load_fixtures"`
	CreateSuperuser StepConfig `koanf:"create_superuser"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (STAGEHAND_ROOT override or climbed project root) so
// later code can build absolute file paths.
type Paths struct {
	Root string // STAGEHAND_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads for the procedure's lifetime.
type Config struct {
	Build   Build   `koanf:"build"`
	Install Install `koanf:"install"`
	Payload Payload `koanf:"payload"`
	Server  Server  `koanf:"server"`
	Steps   Steps   `koanf:"steps"`
	Paths   Paths   `koanf:"-"` // not loaded from config files
}

//
// Defaults
//

// Default values applied for any section the overlays leave unset.  The
// server address is the fixed endpoint the launched process binds to.
const (
	DefaultInstallCommand  = "pip3 install -r requirements.txt"
	DefaultInstallManifest = "requirements.txt"
	DefaultPayloadSource   = "."
	DefaultRunDir          = "/app"
	DefaultServerCommand   = "python3 manage.py runserver"
	DefaultServerAddr      = "0.0.0.0:8000"
)

// applyDefaults fills every unset optional field so that, after Load, all
// fields except Build.SecretKey always resolve to a value.
func (c *Config) applyDefaults() {
	if c.Install.Command == "" {
		c.Install.Command = DefaultInstallCommand
	}
	if c.Install.Manifest == "" {
		c.Install.Manifest = DefaultInstallManifest
	}
	if c.Payload.Source == "" {
		c.Payload.Source = DefaultPayloadSource
	}
	if c.Payload.RunDir == "" {
		c.Payload.RunDir = DefaultRunDir
	}
	if c.Server.Command == "" {
		c.Server.Command = DefaultServerCommand
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
}

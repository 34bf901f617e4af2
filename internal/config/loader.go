// internal/config/loader.go
//
// Configuration loader for the bootstrap procedure.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` — `<root>/conf/.env`, then cwd fallback.
  2. Optional `conf/stagehand.yaml`.
  3. Environment variables prefixed `STAGEHAND_`, where `__` maps to “.”
     (e.g., `STAGEHAND_SERVER__ADDR → server.addr`).

On top of the merged tree, the two conventional build-arg variables are
read presence-aware: `SECRET_KEY` fills `Build.SecretKey`, and
`ALLOWED_HOSTS` fills `Build.AllowedHosts` as an Optional so that an unset
argument and an explicitly empty one stay distinguishable downstream.

After merging, the tree is unmarshalled into strongly-typed structs,
defaulted, validated, enriched with the runtime root path, and cached in
an `atomic.Pointer` for lock-free reads.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  — final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  • Unlike the YAML layer, the build-arg layer never errors: an absent
    variable simply leaves the field unset for the gate to judge.
  • `rootDir()` climbs the cwd tree until it finds `conf/stagehand.yaml`;
    this lets `go run ./cmd/stagehand` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// Build-arg variable names, fixed by the image-construction convention.
const (
	EnvSecretKey    = "SECRET_KEY"
	EnvAllowedHosts = "ALLOWED_HOSTS"
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves STAGEHAND_ROOT or climbs directories until
// conf/stagehand.yaml is found.  Falls back to executable heuristic for
// production layout.
func rootDir() string {
	if r := os.Getenv("STAGEHAND_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "stagehand.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, and build args, then defaults,
// validates, and caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	// YAML is optional here: a bare image build configures everything
	// through build args and defaults.
	yamlPath := filepath.Join(root, "conf", "stagehand.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			return nil, err
		}
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	}

	// Env overrides: STAGEHAND_SERVER__ADDR → server.addr
	if err := k.Load(env.Provider("STAGEHAND_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "STAGEHAND_")
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	// Build args: presence-aware, highest precedence for the Build section.
	if v, ok := os.LookupEnv(EnvSecretKey); ok {
		cfg.Build.SecretKey = v
	}
	if v, ok := os.LookupEnv(EnvAllowedHosts); ok {
		cfg.Build.AllowedHosts = Some(v)
	} else if k.Exists("build.allowed_hosts") {
		cfg.Build.AllowedHosts = Some(k.String("build.allowed_hosts"))
	}

	cfg.applyDefaults()
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"server_addr", cfg.Server.Addr,
		"run_dir", cfg.Payload.RunDir,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

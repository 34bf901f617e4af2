// internal/runtimeenv/runtimeenv.go
//
// Resolved runtime environment for the launched application.
//
// Context
// -------
// The runtime environment is derived exactly once from the validated build
// parameters and is immutable afterwards.  Two of its four variables are
// constants by design: the source material hard-codes DEBUG=True with no
// evidence of an intended toggle, and that literal behavior is preserved
// here rather than second-guessed.
//
// `Freeze` writes the environment to `<runDir>/.stagehand.env` in dotenv
// form so the run phase can restore exactly what the build phase resolved;
// `Restore` reads it back.  The file is part of the image, not a runtime
// mutation channel.

package runtimeenv

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"

	"github.com/yanizio/stagehand/internal/config"
)

// Variable names visible to the launched process.
const (
	KeySecretKey    = "SECRET_KEY"
	KeyDebug        = "DEBUG"
	KeyTimezone     = "TIMEZONE"
	KeyAllowedHosts = "ALLOWED_HOSTS"
)

// Fixed values and defaults.
const (
	DebugValue          = "True"
	TimezoneValue       = "UTC"
	DefaultAllowedHosts = "127.0.0.1,localhost"

	// FileName is the frozen environment file inside the run directory.
	FileName = ".stagehand.env"
)

// Env is the frozen set of variables handed to the launched process.  It
// is constructed by Resolve or Restore and never mutated afterwards.
type Env struct {
	vars map[string]string
}

// Resolve derives the runtime environment from validated build parameters.
// Defaulting is total: there is no failure mode.  The allowed-hosts default
// substitutes only when the argument was never supplied; an explicitly
// empty override passes through untouched.
func Resolve(secretKey string, allowedHosts config.Optional) Env {
	return Env{vars: map[string]string{
		KeySecretKey:    secretKey,
		KeyDebug:        DebugValue,
		KeyTimezone:     TimezoneValue,
		KeyAllowedHosts: allowedHosts.ValueOr(DefaultAllowedHosts),
	}}
}

// Get returns the value of one variable, or "" when absent.
func (e Env) Get(key string) string { return e.vars[key] }

// Environ renders the environment as sorted KEY=value pairs suitable for
// appending to an os/exec Cmd environment.
func (e Env) Environ() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e.vars[k])
	}
	return out
}

// Freeze writes the environment into runDir as a dotenv file.
func (e Env) Freeze(runDir string) error {
	path := filepath.Join(runDir, FileName)
	if err := godotenv.Write(e.vars, path); err != nil {
		return fmt.Errorf("freeze runtime env: %w", err)
	}
	return nil
}

// Restore reads a previously frozen environment from runDir.
func Restore(runDir string) (Env, error) {
	vars, err := godotenv.Read(filepath.Join(runDir, FileName))
	if err != nil {
		return Env{}, fmt.Errorf("restore runtime env: %w", err)
	}
	return Env{vars: vars}, nil
}

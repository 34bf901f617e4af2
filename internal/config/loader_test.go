// internal/config/loader_test.go
//
// Loader tests: overlay precedence, build-arg presence handling, and
// defaulting.  Each test pins STAGEHAND_ROOT to an isolated temp dir so
// the climbing root discovery never escapes into the host project.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate pins the config root to a temp dir and clears the build-arg
// variables so each test starts from a truly unset environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STAGEHAND_ROOT", dir)

	for _, key := range []string{EnvSecretKey, EnvAllowedHosts} {
		t.Setenv(key, "") // registers restore
		os.Unsetenv(key)
	}
	return dir
}

func writeYAML(t *testing.T, root, body string) {
	t.Helper()
	confDir := filepath.Join(root, "conf")
	require.NoError(t, os.MkdirAll(confDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, "stagehand.yaml"), []byte(body), 0o644))
}

func TestLoad_DefaultsWithoutYAML(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultInstallCommand, cfg.Install.Command)
	assert.Equal(t, DefaultInstallManifest, cfg.Install.Manifest)
	assert.Equal(t, DefaultPayloadSource, cfg.Payload.Source)
	assert.Equal(t, DefaultRunDir, cfg.Payload.RunDir)
	assert.Equal(t, DefaultServerCommand, cfg.Server.Command)
	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)

	assert.Empty(t, cfg.Build.SecretKey)
	assert.False(t, cfg.Build.AllowedHosts.IsSet(), "unset build arg must stay unset")
}

func TestLoad_BuildArgsFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(EnvSecretKey, "abc123")
	t.Setenv(EnvAllowedHosts, "example.com,example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.Build.SecretKey)
	v, ok := cfg.Build.AllowedHosts.Value()
	require.True(t, ok)
	assert.Equal(t, "example.com,example.org", v)
}

func TestLoad_ExplicitlyEmptyAllowedHostsIsSet(t *testing.T) {
	isolate(t)
	t.Setenv(EnvSecretKey, "abc123")
	t.Setenv(EnvAllowedHosts, "")

	cfg, err := Load()
	require.NoError(t, err)

	v, ok := cfg.Build.AllowedHosts.Value()
	assert.True(t, ok, "deliberately empty override must count as set")
	assert.Empty(t, v)
}

func TestLoad_YAMLAndEnvOverlay(t *testing.T) {
	root := isolate(t)
	writeYAML(t, root, `
server:
  command: "gunicorn app.wsgi"
  addr: "0.0.0.0:8000"
payload:
  run_dir: "/srv/app"
`)
	t.Setenv("STAGEHAND_SERVER__ADDR", "127.0.0.1:9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gunicorn app.wsgi", cfg.Server.Command)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr, "env overlay beats YAML")
	assert.Equal(t, "/srv/app", cfg.Payload.RunDir)
	assert.Equal(t, root, cfg.Paths.Root)
}

func TestLoad_AllowedHostsFromYAML(t *testing.T) {
	root := isolate(t)
	writeYAML(t, root, `
build:
  allowed_hosts: "internal.example"
`)

	cfg, err := Load()
	require.NoError(t, err)

	v, ok := cfg.Build.AllowedHosts.Value()
	require.True(t, ok)
	assert.Equal(t, "internal.example", v)
}

func TestLoad_RejectsMalformedAddr(t *testing.T) {
	isolate(t)
	t.Setenv("STAGEHAND_SERVER__ADDR", "not-an-endpoint")

	_, err := Load()
	require.Error(t, err)
}

func TestGet_ReturnsCachedConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, Get())
}

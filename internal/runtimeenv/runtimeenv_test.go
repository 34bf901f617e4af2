// internal/runtimeenv/runtimeenv_test.go
//
// Resolution tests: the two constant variables, default substitution for a
// truly unset allowed-hosts argument, exact passthrough of a supplied one,
// and the freeze/restore trip that carries the environment from the build
// phase into the run phase.

package runtimeenv

import (
	"testing"

	"github.com/yanizio/stagehand/internal/config"
)

func TestResolve_ConstantsAreFixed(t *testing.T) {
	// DEBUG and TIMEZONE must not depend on any input.
	for _, hosts := range []config.Optional{config.None(), config.Some("anything")} {
		env := Resolve("whatever", hosts)
		if got := env.Get(KeyDebug); got != "True" {
			t.Fatalf("DEBUG = %q, want %q", got, "True")
		}
		if got := env.Get(KeyTimezone); got != "UTC" {
			t.Fatalf("TIMEZONE = %q, want %q", got, "UTC")
		}
	}
}

func TestResolve_AllowedHostsDefault(t *testing.T) {
	env := Resolve("abc123", config.None())
	if got := env.Get(KeyAllowedHosts); got != "127.0.0.1,localhost" {
		t.Fatalf("ALLOWED_HOSTS = %q, want default %q", got, "127.0.0.1,localhost")
	}
}

func TestResolve_AllowedHostsPassthrough(t *testing.T) {
	cases := []string{"example.com,example.org", "single.host", ""}
	for _, v := range cases {
		env := Resolve("abc123", config.Some(v))
		if got := env.Get(KeyAllowedHosts); got != v {
			t.Fatalf("ALLOWED_HOSTS = %q, want exact passthrough %q", got, v)
		}
	}
}

func TestResolve_SecretKeyCopied(t *testing.T) {
	env := Resolve("abc123", config.None())
	if got := env.Get(KeySecretKey); got != "abc123" {
		t.Fatalf("SECRET_KEY = %q, want %q", got, "abc123")
	}
}

func TestEnviron_SortedPairs(t *testing.T) {
	env := Resolve("k", config.Some("h"))
	pairs := env.Environ()
	if len(pairs) != 4 {
		t.Fatalf("Environ returned %d pairs, want 4", len(pairs))
	}
	// Sorted order: ALLOWED_HOSTS, DEBUG, SECRET_KEY, TIMEZONE.
	want := []string{"ALLOWED_HOSTS=h", "DEBUG=True", "SECRET_KEY=k", "TIMEZONE=UTC"}
	for i, w := range want {
		if pairs[i] != w {
			t.Fatalf("Environ[%d] = %q, want %q", i, pairs[i], w)
		}
	}
}

func TestFreezeRestore(t *testing.T) {
	runDir := t.TempDir()

	built := Resolve("xyz", config.Some("example.com,example.org"))
	if err := built.Freeze(runDir); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	restored, err := Restore(runDir)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	for _, key := range []string{KeySecretKey, KeyDebug, KeyTimezone, KeyAllowedHosts} {
		if restored.Get(key) != built.Get(key) {
			t.Fatalf("%s round-tripped as %q, want %q", key, restored.Get(key), built.Get(key))
		}
	}
}

func TestRestore_MissingFile(t *testing.T) {
	if _, err := Restore(t.TempDir()); err == nil {
		t.Fatal("restore from an empty run dir must fail")
	}
}

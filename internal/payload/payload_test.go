// internal/payload/payload_test.go
//
// CopyTree tests: verbatim content, nested directories, permission bits,
// symlink re-creation, and the two exclusions (.git, destination inside
// source).

package payload

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, path, body string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), perm); err != nil {
		t.Fatal(err)
	}
}

func TestCopyTree_Verbatim(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	write(t, filepath.Join(src, "manage.py"), "#!/usr/bin/env python3\n", 0o755)
	write(t, filepath.Join(src, "polls", "views.py"), "# views\n", 0o644)

	n, err := CopyTree(src, dst)
	if err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	if n != 2 {
		t.Fatalf("copied %d files, want 2", n)
	}

	got, err := os.ReadFile(filepath.Join(dst, "polls", "views.py"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "# views\n" {
		t.Fatalf("content = %q, want %q", got, "# views\n")
	}

	info, err := os.Stat(filepath.Join(dst, "manage.py"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("perm = %o, want 755", info.Mode().Perm())
	}
}

func TestCopyTree_SkipsGit(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	write(t, filepath.Join(src, ".git", "HEAD"), "ref: refs/heads/main\n", 0o644)
	write(t, filepath.Join(src, "app.py"), "", 0o644)

	if _, err := CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, ".git")); !os.IsNotExist(err) {
		t.Fatal(".git must not be copied")
	}
}

func TestCopyTree_Symlink(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	write(t, filepath.Join(src, "settings.py"), "", 0o644)
	if err := os.Symlink("settings.py", filepath.Join(src, "settings_link.py")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree: %v", err)
	}

	link, err := os.Readlink(filepath.Join(dst, "settings_link.py"))
	if err != nil {
		t.Fatalf("copied entry is not a symlink: %v", err)
	}
	if link != "settings.py" {
		t.Fatalf("link target = %q, want %q", link, "settings.py")
	}
}

func TestCopyTree_DestinationInsideSource(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(src, "run")
	write(t, filepath.Join(src, "app.py"), "x", 0o644)

	if _, err := CopyTree(src, dst); err != nil {
		t.Fatalf("CopyTree: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dst, "app.py")); err != nil {
		t.Fatalf("payload file missing: %v", err)
	}
	// The run dir must not recurse into itself.
	if _, err := os.Stat(filepath.Join(dst, "run")); !os.IsNotExist(err) {
		t.Fatal("destination was copied into itself")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "requirements.txt")
	dst := filepath.Join(dir, "out.txt")
	write(t, src, "Django==4.2\n", 0o600)

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm = %o, want 600", info.Mode().Perm())
	}
}

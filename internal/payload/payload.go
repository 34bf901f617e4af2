// internal/payload/payload.go
//
// Application payload placement.
//
// Context
// -------
// CopyTree copies the application source tree verbatim into the run
// location: regular files with their permission bits, directories, and
// symlinks re-created as symlinks.  The payload's internal structure is
// none of our business; nothing is rewritten, filtered, or templated
// beyond two exclusions that would otherwise corrupt the copy:
//
//   • `.git` — repository metadata is not part of the payload,
//   • the run directory itself, when it happens to live inside the source
//     tree (copying a directory into itself never terminates).
//
// Filesystem errors propagate immediately; a partial copy aborts the build
// the same way any other step failure does.

package payload

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// CopyTree copies src into dst, creating dst if needed.  dst must not be a
// file.  Returns the number of regular files copied.
func CopyTree(src, dst string) (int, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return 0, err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(absDst, 0o755); err != nil {
		return 0, fmt.Errorf("create run dir: %w", err)
	}

	copied := 0
	err = filepath.WalkDir(absSrc, func(path string, d fs.DirEntry, err error) error {
		if err != nil { // propagate filesystem errors immediately
			return err
		}

		rel, err := filepath.Rel(absSrc, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		// Exclusions: VCS metadata and the destination itself.
		if d.Name() == ".git" && d.IsDir() {
			return filepath.SkipDir
		}
		if samePath(path, absDst) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(absDst, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)

		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())

		default:
			if err := CopyFile(path, target); err != nil {
				return err
			}
			copied++
			return nil
		}
	})
	if err != nil {
		return copied, fmt.Errorf("copy payload: %w", err)
	}

	zap.S().Infow("payload staged", "source", absSrc, "run_dir", absDst, "files", copied)
	return copied, nil
}

// CopyFile copies one regular file preserving its permission bits.  The
// bootstrap uses it directly to place the dependency manifest ahead of the
// full tree copy.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// samePath compares two absolute paths ignoring a trailing separator.
func samePath(a, b string) bool {
	return strings.TrimSuffix(a, string(os.PathSeparator)) ==
		strings.TrimSuffix(b, string(os.PathSeparator))
}

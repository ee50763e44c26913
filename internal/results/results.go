package results

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Suffix of compressed result files.
const compressedSuffix = ".xz"

// Moves finished measurement output from the scratch directory into the
// collected results directory.
type Store struct {
	ScratchDir string // Directory where netperfmeter writes its output.
	FinalDir   string // Directory collected by the testbed.
	Compress   bool   // Whether to xz-compress files before installing.
}

// Delivers all pending result files for a measurement instance.
//
// Files matching netperfmeter_<instance>_* in the scratch directory are
// optionally compressed, then installed atomically into the final
// directory. Returns the number of files installed. Delivery stops at the
// first error, leaving the remaining files in the scratch directory for
// the next cycle. A retried file that was already compressed before its
// install failed is delivered as-is.
func (s *Store) Deliver(instance int) (int, error) {
	pattern := filepath.Join(s.ScratchDir, fmt.Sprintf("netperfmeter_%d_*", instance))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDeliver, err)
	}

	installed := 0
	for _, file := range files {
		if s.Compress && !strings.HasSuffix(file, compressedSuffix) {
			if file, err = compressFile(file); err != nil {
				return installed, err
			}
		}
		if err := installFile(file, s.FinalDir); err != nil {
			return installed, err
		}
		installed++
	}

	if installed > 0 {
		slog.Debug("results delivered", "instance", instance, "files", installed)
	}
	return installed, nil
}

// Compresses a file with xz, removing the source.
//
// Returns the path of the compressed file (the source path with an .xz
// suffix).
func compressFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompress, err)
	}
	defer src.Close()

	dstPath := path + compressedSuffix
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCompress, err)
	}

	w, err := xz.NewWriter(dst)
	if err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("%w: %w", ErrCompress, err)
	}

	if _, err := io.Copy(w, src); err != nil {
		w.Close()
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("%w: %s: %w", ErrCompress, path, err)
	}

	if err := w.Close(); err != nil {
		dst.Close()
		os.Remove(dstPath)
		return "", fmt.Errorf("%w: %s: %w", ErrCompress, path, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("%w: %s: %w", ErrCompress, path, err)
	}

	os.Remove(path)
	return dstPath, nil
}

// Installs a file into a directory without exposing partial content.
//
// The file is copied to "<name>.tmp" in the destination first and renamed
// into place once complete, so the collector never picks up a half-written
// file. The source is removed after a successful install.
func installFile(path, dir string) error {
	name := filepath.Base(path)
	tmpPath := filepath.Join(dir, name+".tmp")
	finalPath := filepath.Join(dir, name)

	if err := copyFile(path, tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %w", ErrDeliver, path, err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %w", ErrDeliver, path, err)
	}

	os.Remove(path)
	return nil
}

// Copies a file's contents and permission bits.
func copyFile(src, dst string) error {
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

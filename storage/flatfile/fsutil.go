package flatfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/LukasKalbertodt/grakawa/storage"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// ensureDir makes sure path is a directory, creating it if it doesn't exist.
// created reports whether this call created it.
func ensureDir(path string, all bool) (created bool, err error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return false, fmt.Errorf("%w: %s exists but is not a directory", storage.ErrNotDirectory, path)
		}
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		mkdir := os.Mkdir
		if all {
			mkdir = os.MkdirAll
		}
		if err := mkdir(path, dirPerm); err != nil {
			return false, fmt.Errorf("create directory %s: %w", path, err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// writeFileAtomic replaces path with the output of write.
// The data goes to a temporary file in the same directory which is synced
// and renamed over path, so readers see either the old or the new content.
func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary file for %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

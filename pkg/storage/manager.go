package storage

import (
	"io"
	"os"
	"path/filepath"

	apperrors "boorudl/pkg/errors"
)

// Manager owns the rating-partitioned output tree under one root. The
// tree is the only shared mutable resource of a run; all operations are
// safe to call from concurrent workers because directory creation is
// idempotent and no two posts ever resolve to the same path.
type Manager struct {
	root string
}

// NewManager creates a storage manager rooted at dir, creating the
// directory if needed.
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.New(apperrors.ErrorTypeFilesystem, 0, "failed to create output directory %s: %v", dir, err)
	}
	return &Manager{root: dir}, nil
}

// Root returns the output root directory.
func (m *Manager) Root() string {
	return m.root
}

// Path resolves the destination path for a file in a rating subfolder.
func (m *Manager) Path(subfolder, filename string) string {
	return filepath.Join(m.root, subfolder, filename)
}

// Exists reports whether the destination file is already present. This
// is the dedup mechanism: path-based, not content-based.
func (m *Manager) Exists(subfolder, filename string) bool {
	_, err := os.Stat(m.Path(subfolder, filename))
	return err == nil
}

// Save streams r into the destination file. The data is written to a
// temp file in the same directory and renamed into place only after the
// full transfer succeeds, so a failure mid-stream never leaves a
// truncated file the dedup check would mistake for complete.
func (m *Manager) Save(r io.Reader, subfolder, filename string) error {
	dir := filepath.Join(m.root, subfolder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.New(apperrors.ErrorTypeFilesystem, 0, "failed to create rating directory %s: %v", dir, err)
	}

	dest := filepath.Join(dir, filename)

	tmp, err := os.CreateTemp(dir, filename+".*.tmp")
	if err != nil {
		return apperrors.New(apperrors.ErrorTypeFilesystem, 0, "failed to create temporary file: %v", err)
	}

	_, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()

	if copyErr != nil {
		os.Remove(tmp.Name())
		return apperrors.New(apperrors.ErrorTypeFilesystem, 0, "failed to write %s: %v", dest, copyErr)
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return apperrors.New(apperrors.ErrorTypeFilesystem, 0, "failed to close temporary file: %v", closeErr)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return apperrors.New(apperrors.ErrorTypeFilesystem, 0, "failed to rename temporary file: %v", err)
	}

	return nil
}

// CountFiles returns the number of regular files under the root,
// spanning all rating subfolders.
func (m *Manager) CountFiles() (int, error) {
	count := 0
	err := filepath.WalkDir(m.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.New(apperrors.ErrorTypeFilesystem, 0, "failed to walk output directory: %v", err)
	}
	return count, nil
}

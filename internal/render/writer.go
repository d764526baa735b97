package render

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Writer persists rendered documents below a root directory.
type Writer struct {
	fs   afero.Fs
	root string
}

// NewWriter returns a writer on fs rooted at dir. A nil fs means the OS filesystem.
func NewWriter(fs afero.Fs, dir string) *Writer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		dir = "."
	}
	return &Writer{fs: fs, root: dir}
}

// Write replaces root/name with data. The content goes to a temp file in the same directory first and is
// renamed into place, so readers never observe a partially written document.
func (w *Writer) Write(name string, data []byte) (string, error) {
	target := filepath.Join(w.root, filepath.FromSlash(name))
	dir := filepath.Dir(target)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := afero.TempFile(w.fs, dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	cleanup := func() { _ = w.fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := w.fs.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := w.fs.Rename(tmpName, target); err != nil {
		cleanup()
		return "", fmt.Errorf("replace %s: %w", name, err)
	}
	return target, nil
}

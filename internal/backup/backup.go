// Package backup copies files into a mirror tree before they are modified.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Manager copies files under a root into a backup directory, preserving
// the root-relative layout plus the file mode and modification time.
type Manager struct {
	backupDir string
	root      string
}

// New constructs a backup manager for one run. Root scopes the relative
// layout inside the backup directory; files outside the root fall back to
// their full path.
func New(backupDir, root string) *Manager {
	return &Manager{backupDir: backupDir, root: root}
}

// Backup copies one file and returns the backup location.
func (m *Manager) Backup(path string) (string, error) {
	rel := m.relativePath(path)
	dest := filepath.Join(m.backupDir, rel)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("copy to backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("close backup: %w", err)
	}

	// Preserve the original mtime so a restored backup does not wreck
	// mtime-based inference on a later scan.
	if err := os.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
		return "", fmt.Errorf("preserve backup mtime: %w", err)
	}
	return dest, nil
}

func (m *Manager) relativePath(path string) string {
	if m.root != "" {
		if rel, err := filepath.Rel(m.root, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return strings.TrimPrefix(filepath.Clean(path), string(filepath.Separator))
}

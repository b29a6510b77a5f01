package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// backupStemFallback names backups of files whose stem is empty.
const backupStemFallback = "settings"

// BackupPath computes the next free backup path for the file at path:
// <stem>.<YYMMDD>-<n>.backup.json, with n starting at 0 and incrementing
// past names already taken. Existing backups are never overwritten.
func BackupPath(path string, now time.Time) (string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = backupStemFallback
	}

	tag := now.Format("060102")

	for n := 0; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s.%s-%d.backup.json", stem, tag, n))
		_, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("probing backup path %s: %w", candidate, err)
		}
	}
}

// Commit replaces the file at path with data, backing up the existing file
// first. The backup must land before the target is touched: if it fails, the
// target is left exactly as it was. Returns the backup path, empty when the
// target did not exist.
func Commit(path string, data []byte) (string, error) {
	backupPath := ""

	info, err := os.Stat(path)
	switch {
	case err == nil:
		backupPath, err = BackupPath(path, time.Now())
		if err != nil {
			return "", err
		}
		if err := copyFile(path, backupPath, info); err != nil {
			return "", fmt.Errorf("backing up %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Fresh target; make sure its directory exists.
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("creating settings dir: %w", err)
		}
	default:
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return backupPath, fmt.Errorf("writing %s: %w", path, err)
	}
	return backupPath, nil
}

// copyFile copies content plus the mode and modification time of the source.
func copyFile(src, dst string, info os.FileInfo) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return err
	}
	// Timestamp preservation is best effort.
	_ = os.Chtimes(dst, time.Now(), info.ModTime())
	return nil
}

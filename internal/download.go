package weverse

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/cavaliergopher/grab/v3"

	"github.com/halcyoned/weverse/internal/fs"
)

// DefaultDownloadClient performs attachment downloads.
var DefaultDownloadClient = grab.NewClient()

// MinRequiredDiskSpace is the floor checked before a download whose size is
// unknown up front.
const MinRequiredDiskSpace uint64 = 50 * 1024 * 1024

// FileSHA256 calculates the SHA256 hash of a file on disk.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "error closing file: %v\n", err)
		}
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to copy file to hasher: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// EnsureDiskSpace verifies the target directory can hold required bytes
// (MinRequiredDiskSpace when required is zero). Returns ErrDiskSpace wrapped
// with the observed numbers when it cannot.
func EnsureDiskSpace(dir string, required uint64) error {
	if required == 0 {
		required = MinRequiredDiskSpace
	}
	available, err := fs.Available(dir)
	if err != nil {
		return fmt.Errorf("could not check disk space for %s: %w", dir, err)
	}
	if available < required {
		return fmt.Errorf("%w: %d bytes available in %s, requires at least %d bytes", ErrDiskSpace, available, dir, required)
	}
	return nil
}

// DownloadAndHash downloads a URL to fullPath and returns the SHA256 of the
// written file. A failed hash removes the partial download.
func DownloadAndHash(url, fullPath string) (string, error) {
	req, err := grab.NewRequest(fullPath, url)
	if err != nil {
		return "", err
	}
	if resp := DefaultDownloadClient.Do(req); resp.Err() != nil {
		return "", resp.Err()
	}
	hash, err := FileSHA256(fullPath)
	if err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to hash downloaded file %s: %w", fullPath, err)
	}
	return hash, nil
}

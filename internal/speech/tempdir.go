package speech

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const voicePrefix = "voice-"

// TempDir holds downloaded voice messages until they are transcribed.
type TempDir struct {
	dir string
}

func NewTempDir(dir string) (*TempDir, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create temp dir %q: %w", dir, err)
	}
	return &TempDir{dir: dir}, nil
}

// Create opens a fresh, uniquely named file for a voice payload.
func (d *TempDir) Create(ext string) (*os.File, error) {
	name := voicePrefix + uuid.New().String() + ext
	f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create voice file: %w", err)
	}
	return f, nil
}

// Sweep removes voice files older than maxAge, e.g. left behind by a crash
// between download and cleanup. It returns how many files were removed.
func (d *TempDir) Sweep(maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return 0, fmt.Errorf("read temp dir: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), voicePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(d.dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

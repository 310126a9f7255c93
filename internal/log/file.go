package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	dayLayout  = "2006-01-02"
	fileSuffix = ".jsonl"
	latestLink = "latest"
)

// FileWriter appends to <dir>/<date>.jsonl, switching files when the day
// changes, and keeps <dir>/latest pointing at the current one.
type FileWriter struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	file *os.File
	day  string
}

// NewFileWriter opens today's file in dir, creating dir if needed.
func NewFileWriter(dir string) (*FileWriter, error) {
	return newFileWriter(dir, time.Now)
}

func newFileWriter(dir string, now func() time.Time) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating debug log dir: %w", err)
	}
	fw := &FileWriter{dir: dir, now: now}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if err := fw.open(fw.now().Format(dayLayout)); err != nil {
		return nil, err
	}
	return fw, nil
}

func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if day := fw.now().Format(dayLayout); day != fw.day {
		if err := fw.open(day); err != nil {
			return 0, err
		}
	}
	return fw.file.Write(p)
}

func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.file == nil {
		return nil
	}
	err := fw.file.Close()
	fw.file = nil
	return err
}

// open must be called with mu held.
func (fw *FileWriter) open(day string) error {
	name := day + fileSuffix
	f, err := os.OpenFile(filepath.Join(fw.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening debug log: %w", err)
	}
	if fw.file != nil {
		_ = fw.file.Close()
	}
	fw.file = f
	fw.day = day
	fw.link(name)
	return nil
}

// link is best effort; a missing symlink only affects convenience.
func (fw *FileWriter) link(target string) {
	path := filepath.Join(fw.dir, latestLink)
	tmp := path + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return
	}
	_ = os.Rename(tmp, path)
}

// Cleanup removes debug files in dir dated more than retentionDays ago.
// Files not named <date>.jsonl are left alone.
func Cleanup(dir string, retentionDays int) {
	cleanup(dir, retentionDays, time.Now())
}

func cleanup(dir string, retentionDays int, now time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		day, err := time.ParseInLocation(dayLayout, strings.TrimSuffix(name, fileSuffix), now.Location())
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}

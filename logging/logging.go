package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

const (
	defaultMaxSize = 8 * 1024 * 1024 // 8MB per file
	defaultBackups = 2
)

// RotatingWriter appends to a log file and rotates it through numbered
// backups (file.1, file.2, ...) once it grows past maxSize.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
	backups int
}

// New opens path for appending with the given rotation parameters.
func New(path string, maxSize int64, backups int) (*RotatingWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	size := int64(0)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	w := &RotatingWriter{
		file:    f,
		path:    path,
		size:    size,
		maxSize: maxSize,
		backups: backups,
	}
	// A file already over the limit rotates immediately instead of being
	// truncated, so nothing written before a restart is lost.
	if w.size > w.maxSize {
		w.rotate()
	}
	return w, nil
}

// Setup opens the default rotating writer for logPath and points the
// standard logger at it, mirrored to stdout.
func Setup(logPath string) (*RotatingWriter, error) {
	w, err := New(logPath, defaultMaxSize, defaultBackups)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, w))
	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}
	return n, err
}

// rotate shifts backups up one slot (file.1 -> file.2, ...) and starts a
// fresh file. The oldest backup falls off the end.
func (w *RotatingWriter) rotate() {
	w.file.Close()

	for i := w.backups; i > 1; i-- {
		os.Rename(backupName(w.path, i-1), backupName(w.path, i))
	}
	if w.backups > 0 {
		os.Rename(w.path, backupName(w.path, 1))
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}
	w.file = f
	w.size = 0
}

func backupName(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// FileExtension is the conventional extension of link event log files.
const FileExtension = ".llog"

// FileLogger appends link events to a log file. Safe for concurrent use.
type FileLogger struct {
	path string

	mu      sync.Mutex
	file    *os.File
	enc     *cbor.Encoder
	dropped int
	closed  bool
}

// NewFileLogger opens path for appending, creating it and any missing
// parent directories. A new file starts with a log header; an existing one
// must already be a link event log.
func NewFileLogger(path string) (*FileLogger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	enc := encMode.NewEncoder(f)
	if info.Size() == 0 {
		if err := writeHeader(enc, time.Now()); err != nil {
			f.Close()
			return nil, fmt.Errorf("write log header: %w", err)
		}
	} else if _, err := readHeader(decMode.NewDecoder(f)); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &FileLogger{path: path, file: f, enc: enc}, nil
}

// Path returns the path of the log file.
func (l *FileLogger) Path() string {
	return l.path
}

// Log appends an event. Write errors are counted, not returned; see Dropped.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.enc.Encode(event); err != nil {
		l.dropped++
	}
}

// Dropped returns how many events could not be written.
func (l *FileLogger) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// Close closes the file. Later calls to Log are ignored and later calls to
// Close return nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)

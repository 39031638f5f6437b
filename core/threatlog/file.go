package threatlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Separator is the line written after every JSON entry.
const Separator = "---"

// DefaultPath is where the threat log lives unless configured otherwise.
const DefaultPath = "logs/waf_threats.log"

const (
	dirMode  os.FileMode = 0o750
	fileMode os.FileMode = 0o640
)

// FileSink appends pretty-printed JSON records to a file. Every append
// holds an exclusive flock, so several processes may share one log.
type FileSink struct {
	path string
	mu   sync.Mutex
}

// NewFileSink returns a sink writing to path. The file and its directory
// are created on first write.
func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultPath
	}
	return &FileSink{path: path}
}

// Path returns the log file location.
func (s *FileSink) Path() string { return s.path }

// Write appends r followed by a separator line.
func (s *FileSink) Write(_ context.Context, r Record) error {
	entry, err := encodeEntry(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("threatlog: create directory: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileMode)
	if err != nil {
		return fmt.Errorf("threatlog: open file: %w", err)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return fmt.Errorf("threatlog: lock file: %w", err)
	}
	defer func() { _ = unlockFile(f) }()

	if _, err := f.Write(entry); err != nil {
		return fmt.Errorf("threatlog: write entry: %w", err)
	}
	return nil
}

func encodeEntry(r Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("threatlog: marshal entry: %w", err)
	}
	buf.WriteString(Separator)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ReadFile parses a threat log written by FileSink.
// A missing file yields no records and no error.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("threatlog: open file: %w", err)
	}
	defer f.Close()

	var (
		records []Record
		chunk   strings.Builder
	)
	flush := func() error {
		if strings.TrimSpace(chunk.String()) == "" {
			chunk.Reset()
			return nil
		}
		var r Record
		if err := json.Unmarshal([]byte(chunk.String()), &r); err != nil {
			return fmt.Errorf("threatlog: decode entry %d: %w", len(records)+1, err)
		}
		records = append(records, r)
		chunk.Reset()
		return nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == Separator {
			if err := flush(); err != nil {
				return records, err
			}
			continue
		}
		chunk.WriteString(line)
		chunk.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("threatlog: scan file: %w", err)
	}
	// A trailing entry without separator is a write cut short; skip it.
	return records, nil
}

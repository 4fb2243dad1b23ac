package errlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the log file name inside the data directory.
const FileName = "error.log"

// maxLineBytes bounds a single record line when scanning.
const maxLineBytes = 1024 * 1024

// Log is the error telemetry log stored at Path. It holds no open file
// handle; each Append opens, appends one line and closes, so concurrent
// writers from different adapters never interleave within a record.
type Log struct {
	Path string
}

// Open returns the log stored in dataDir.
func Open(dataDir string) *Log {
	return &Log{Path: filepath.Join(dataDir, FileName)}
}

// Stats summarizes the failures recorded for one platform.
type Stats struct {
	TotalErrors   int            `json:"total_errors" yaml:"total_errors"`
	ErrorTypes    map[string]int `json:"error_types" yaml:"error_types"`
	LastErrorTime string         `json:"last_error_time,omitempty" yaml:"last_error_time,omitempty"`
}

// Append writes rec as a single JSON line.
func (l *Log) Append(rec Record) error {
	if l == nil || l.Path == "" {
		return nil
	}
	if rec.Metadata == nil {
		rec.Metadata = map[string]string{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal error record: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(l.Path), 0o750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(l.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 - path from data directory
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("append error log: %w", err)
	}
	return f.Close()
}

// scan calls fn for every parsable record in file order. Malformed lines
// are skipped. A missing file yields no records.
func (l *Log) scan(fn func(Record)) error {
	f, err := os.Open(l.Path) // #nosec G304 - path from data directory
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		fn(rec)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read error log: %w", err)
	}
	return nil
}

// ReadRecent returns up to limit records, most recent first. When platform
// is non-empty only records with that platform id are returned.
func (l *Log) ReadRecent(limit int, platform string) ([]Record, error) {
	var records []Record
	err := l.scan(func(rec Record) {
		if platform != "" && rec.PlatformID != platform {
			return
		}
		records = append(records, rec)
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	if limit >= 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Stats aggregates the whole log per platform id in a single pass.
func (l *Log) Stats() (map[string]*Stats, error) {
	stats := make(map[string]*Stats)
	err := l.scan(func(rec Record) {
		s, ok := stats[rec.PlatformID]
		if !ok {
			s = &Stats{ErrorTypes: make(map[string]int)}
			stats[rec.PlatformID] = s
		}
		s.TotalErrors++
		s.ErrorTypes[rec.ErrorType]++
		s.LastErrorTime = rec.Timestamp
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Clear deletes the log file. A missing file is not an error.
func (l *Log) Clear() error {
	err := os.Remove(l.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove error log: %w", err)
	}
	return nil
}

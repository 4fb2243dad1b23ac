package errlog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Follow calls fn for every record appended to the log after Follow starts,
// until ctx is done. Clearing the log while following restarts from the
// beginning of the recreated file.
func (l *Log) Follow(ctx context.Context, fn func(Record)) error {
	dir := filepath.Dir(l.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so creation after Clear is seen.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	offset, err := fileSize(l.Path)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(l.Path) {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				offset = 0
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				offset, err = l.readFrom(offset, fn)
				if err != nil {
					return err
				}
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error log: %w", werr)
		}
	}
}

// readFrom parses complete lines starting at offset and returns the offset
// just past the last complete line consumed.
func (l *Log) readFrom(offset int64, fn func(Record)) (int64, error) {
	f, err := os.Open(l.Path) // #nosec G304 - path from data directory
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return offset, fmt.Errorf("open error log: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat error log: %w", err)
	}
	// File was truncated or replaced by a shorter one.
	if info.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek error log: %w", err)
	}

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			// Partial line; pick it up on the next write.
			return offset, nil
		}
		if err != nil {
			return offset, fmt.Errorf("read error log: %w", err)
		}
		offset += int64(len(line))
		var rec Record
		if json.Unmarshal(line, &rec) == nil {
			fn(rec)
		}
	}
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat error log: %w", err)
	}
	return info.Size(), nil
}

// Package ledger keeps append-only text files of completed work, one entry
// per line, so interrupted runs can resume where they left off.
package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Ledger is an append-only set of lines backed by a file.
type Ledger struct {
	mu    sync.Mutex
	path  string
	lines []string
	seen  map[string]bool
}

// Open loads the ledger at path. A missing file is an empty ledger; it is
// created on the first Append.
func Open(path string) (*Ledger, error) {
	l := &Ledger{path: path, seen: make(map[string]bool)}
	lines, err := ReadLines(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for _, line := range lines {
		l.add(line)
	}
	return l, nil
}

// ReadLines returns the non-blank lines of path with line endings removed.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	return lines, nil
}

func (l *Ledger) add(line string) {
	if !l.seen[line] {
		l.seen[line] = true
		l.lines = append(l.lines, line)
	}
}

// Path returns the backing file.
func (l *Ledger) Path() string { return l.path }

// Contains reports whether line has been recorded.
func (l *Ledger) Contains(line string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen[line]
}

// Lines returns the recorded lines in the order they were first seen.
func (l *Ledger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Len returns the number of distinct lines.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// Append records line and writes it to the file immediately. Lines already
// present are not written again.
func (l *Ledger) Append(line string) error {
	line = strings.TrimRight(line, "\r\n")
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.seen[line] {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append to ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	l.add(line)
	return nil
}

package remote

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"
)

// LineTable is a MacroTable over lines already held in memory.
type LineTable []string

// Line implements MacroTable.
func (t LineTable) Line(_ context.Context, n int) (string, bool, error) {
	if n < 1 || n > len(t) {
		return "", false, nil
	}
	return t[n-1], true, nil
}

// FileTable is a MacroTable backed by a local include file. The file is
// read once, on first access, and a read error is returned on every later
// access. It is safe for concurrent use.
type FileTable struct {
	Path string

	once  sync.Once
	lines LineTable
	err   error
}

// NewFileTable returns a FileTable for path.
func NewFileTable(path string) *FileTable {
	return &FileTable{Path: path}
}

// Line implements MacroTable.
func (t *FileTable) Line(ctx context.Context, n int) (string, bool, error) {
	t.once.Do(func() {
		t.lines, t.err = readLines(t.Path)
	})
	if t.err != nil {
		return "", false, t.err
	}
	return t.lines.Line(ctx, n)
}

func readLines(path string) (LineTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open macro table '%s': %w", path, err)
	}
	defer f.Close()

	var lines LineTable
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read macro table '%s': %w", path, err)
	}
	return lines, nil
}

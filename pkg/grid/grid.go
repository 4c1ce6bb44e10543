package grid

import (
	"strings"
	"sync"
)

// GetGridCoords converts a linear cell index into column and row.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Buffer is a scrolling text screen of Cols by Rows cells. Writes append
// text, wrapping at Cols and dropping the oldest rows once Rows is
// exceeded. It is safe for one writer and concurrent readers.
type Buffer struct {
	Cols, Rows int

	mu      sync.Mutex
	lines   []string
	partial []rune
	wrapped bool // the last row ended at Cols rather than at a newline
}

func NewBuffer(cols, rows int) *Buffer {
	return &Buffer{Cols: cols, Rows: rows}
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range string(p) {
		switch r {
		case '\n':
			if !b.wrapped {
				b.flush()
			}
			b.wrapped = false
		case '\r':
		default:
			b.partial = append(b.partial, r)
			b.wrapped = false
			if len(b.partial) == b.Cols {
				b.flush()
				b.wrapped = true
			}
		}
	}
	return len(p), nil
}

func (b *Buffer) flush() {
	b.lines = append(b.lines, string(b.partial))
	b.partial = b.partial[:0]
	if extra := len(b.lines) - b.Rows; extra > 0 {
		b.lines = append(b.lines[:0], b.lines[extra:]...)
	}
}

// Lines returns the completed rows, oldest first, followed by the row
// being written when it is not empty. At most Rows lines are returned.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := append([]string(nil), b.lines...)
	if len(b.partial) > 0 {
		out = append(out, string(b.partial))
	}
	if extra := len(out) - b.Rows; extra > 0 {
		out = out[extra:]
	}
	return out
}

// Cells lays the visible rows out as Cols*Rows runes, row by row. Empty
// cells are 0.
func (b *Buffer) Cells() []rune {
	cells := make([]rune, b.Cols*b.Rows)
	for y, line := range b.Lines() {
		x := 0
		for _, r := range line {
			cells[y*b.Cols+x] = r
			x++
		}
	}
	return cells
}

// Cell returns the rune shown at a linear cell index, or 0 for an empty
// cell.
func (b *Buffer) Cell(index int) rune {
	cells := b.Cells()
	if index < 0 || index >= len(cells) {
		return 0
	}
	return cells[index]
}

// String renders the visible rows separated by newlines.
func (b *Buffer) String() string {
	return strings.Join(b.Lines(), "\n")
}

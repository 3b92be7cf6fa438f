// Package source defines append-only input buffers used by lexer.
package source

import (
	"bytes"
	"unicode/utf8"
)

// Buffer holds named input text. Content is append-only: batch callers
// create a complete buffer with New, interactive callers start with
// NewIncremental, extend it with Append, and mark it complete with End.
// Consumed content is never discarded, any earlier position may be
// revisited by a backtracking parser.
type Buffer struct {
	name          string
	content       []byte
	lineStarts    []int
	prevLineIndex int
	ended         bool
}

// New creates a complete buffer holding the whole input.
func New(name string, content []byte) *Buffer {
	b := NewIncremental(name)
	b.Append(content)
	b.ended = true
	return b
}

// NewIncremental creates an empty buffer expecting Append calls.
func NewIncremental(name string) *Buffer {
	return &Buffer{name: name, lineStarts: []int{0}, prevLineIndex: -1}
}

// Append extends buffer content. Has no effect on a complete buffer.
func (b *Buffer) Append(chunk []byte) *Buffer {
	if b.ended {
		return b
	}

	base := len(b.content)
	b.content = append(b.content, chunk...)
	for i, c := range chunk {
		if c == '\n' {
			b.lineStarts = append(b.lineStarts, base+i+1)
		}
	}
	return b
}

// End marks the buffer complete: no more content will be appended.
func (b *Buffer) End() {
	b.ended = true
}

// Ended reports whether the buffer is complete.
func (b *Buffer) Ended() bool {
	return b.ended
}

func (b *Buffer) Name() string {
	return b.name
}

func (b *Buffer) Content() []byte {
	return b.content
}

func (b *Buffer) Len() int {
	return len(b.content)
}

// LineCol converts byte offset to 1-based line and column numbers.
// Column is counted in runes. Out of range offsets are clamped.
func (b *Buffer) LineCol(pos int) (line, col int) {
	var lineIndex int
	if pos < 0 {
		pos = 0
		lineIndex = 0
	} else if pos >= len(b.content) {
		pos = len(b.content)
		lineIndex = len(b.lineStarts) - 1
	} else {
		lineIndex = b.findLineIndex(pos)
	}

	lineStart := b.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCount(b.content[lineStart:pos]) + 1
}

// Line returns the text of the line containing pos, without the trailing
// line break. Used for error rendering.
func (b *Buffer) Line(pos int) string {
	if pos < 0 {
		pos = 0
	}

	var start int
	if pos >= len(b.content) {
		start = b.lineStarts[len(b.lineStarts)-1]
	} else {
		start = b.lineStarts[b.findLineIndex(pos)]
	}

	end := bytes.IndexByte(b.content[start:], '\n')
	if end < 0 {
		return string(b.content[start:])
	}
	return string(b.content[start : start+end])
}

func (b *Buffer) findLineIndex(pos int) int {
	if b.prevLineIndex >= 0 && b.lineStarts[b.prevLineIndex] <= pos {
		lineIndex := b.prevLineIndex
		last := len(b.lineStarts) - 1
		for lineIndex <= last && b.lineStarts[lineIndex] <= pos {
			lineIndex++
		}
		lineIndex--
		b.prevLineIndex = lineIndex
		return lineIndex
	}

	leftIndex := 0
	rightIndex := len(b.lineStarts) - 1
	index := 0
	if b.prevLineIndex >= 0 {
		rightIndex = b.prevLineIndex
	}
	for leftIndex < rightIndex {
		index = (leftIndex + rightIndex + 1) >> 1
		lineStart := b.lineStarts[index]
		if lineStart == pos {
			return index
		}

		if lineStart < pos {
			leftIndex = index
		} else {
			rightIndex = index - 1
			index = rightIndex
		}
	}
	b.prevLineIndex = index
	return index
}

// Pos is a value type pinning a position in a buffer.
type Pos struct {
	buf            *Buffer
	pos, line, col int
}

// NewPos creates a Pos for the given byte offset.
func NewPos(b *Buffer, pos int) Pos {
	line, col := b.LineCol(pos)
	return Pos{b, pos, line, col}
}

func (p Pos) Buffer() *Buffer {
	return p.buf
}

func (p Pos) Offset() int {
	return p.pos
}

func (p Pos) Line() int {
	return p.line
}

func (p Pos) Col() int {
	return p.col
}

func (p Pos) SourceName() string {
	if p.buf == nil {
		return ""
	}
	return p.buf.Name()
}

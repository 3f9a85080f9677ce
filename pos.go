package c99js

import (
	"fmt"
	"sort"
)

// Location is a (line, column) pair within a named source file, plus
// the byte cursor it was derived from so spans can be widened cheaply.
type Location struct {
	File   string
	Line   int32
	Column int32
	Cursor int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Range is a pair of byte offsets into a single preprocessed text
// buffer, the unit every token and AST node carries for diagnostics.
type Range struct{ Start, End int }

func NewRange(start, end int) Range { return Range{Start: start, End: end} }

func (r Range) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Span pairs a Range with the human-facing locations at its ends. It's
// what diagnostics carry; tokens and AST nodes carry only a Range,
// which LineIndex.Span turns into one.
type Span struct {
	Start Location
	End   Location
}

func (s Span) String() string {
	if s.Start.File == s.End.File && s.Start.Line == s.End.Line {
		if s.Start.Column == s.End.Column {
			return fmt.Sprintf("%s:%d:%d", s.Start.File, s.Start.Line, s.Start.Column)
		}
		return fmt.Sprintf("%s:%d:%d..%d", s.Start.File, s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s:%d:%d..%s:%d:%d",
		s.Start.File, s.Start.Line, s.Start.Column,
		s.End.File, s.End.Line, s.End.Column)
}

// lineMarker is a `# <line> "<file>"` record emitted by the preprocessor
// at every file boundary (entering/leaving an #include, or a #line
// directive). The lexer and LineIndex consult these to translate a raw
// cursor in the expanded text back into true source coordinates.
type lineMarker struct {
	// atCursor is the byte offset in the expanded text where this
	// marker's effect begins.
	atCursor int
	// file is the filename to report from atCursor onwards.
	file string
	// line is the source line number of the first line after the
	// marker.
	line int32
}

// LineIndex maps byte cursors in a single preprocessed text buffer to
// (file, line, column) triples, honoring embedded line markers so
// diagnostics point at the original source, not the expanded one.
//
// Construction is O(n) over the input; lookups are O(log n) via binary
// search over both the newline table and the marker table.
type LineIndex struct {
	input     []byte
	lineStart []int
	markers   []lineMarker
}

func NewLineIndex(input []byte, markers []lineMarker) *LineIndex {
	lineStart := make([]int, 1, 64)
	lineStart[0] = 0
	for i, b := range input {
		if b == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].atCursor < markers[j].atCursor })
	return &LineIndex{input: input, lineStart: lineStart, markers: markers}
}

func (li *LineIndex) Span(r Range) Span {
	return Span{Start: li.LocationAt(r.Start), End: li.LocationAt(r.End)}
}

func (li *LineIndex) LocationAt(cursor int) Location {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(li.input) {
		cursor = len(li.input)
	}

	lineIdx := sort.Search(len(li.lineStart), func(i int) bool {
		return li.lineStart[i] > cursor
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	lineStart := li.lineStart[lineIdx]
	rawLine := int32(lineIdx + 1)
	col := int32(cursor-lineStart) + 1

	file, baseLine, baseRawLine := "<input>", int32(1), int32(1)
	mi := sort.Search(len(li.markers), func(i int) bool {
		return li.markers[i].atCursor > cursor
	}) - 1
	if mi >= 0 {
		m := li.markers[mi]
		file = m.file
		baseLine = m.line
		// rawLine of the marker's own line in the expanded text:
		baseRawLine = int32(sort.Search(len(li.lineStart), func(i int) bool {
			return li.lineStart[i] > m.atCursor
		}))
	}

	line := rawLine
	if mi >= 0 {
		line = baseLine + (rawLine - baseRawLine)
	}
	return Location{File: file, Line: line, Column: col, Cursor: cursor}
}

package xmledit

import "strings"

// Point is a zero-indexed (row, column) position in a buffer, mirroring
// the teacher's own Point type used for line-oriented diagnostics.
type Point struct {
	Row    int
	Column int
}

// Bias says which side of an edit an Anchor should stick to when text
// is inserted exactly at its offset.
type Bias int

const (
	// Before anchors stay put when text is inserted at their offset.
	Before Bias = iota
	// After anchors move forward when text is inserted at their offset.
	After
)

// Anchor is a position in a BufferSnapshot that survives edits made
// after it was taken, consulted only via the snapshot it was created
// from. EditResolver anchors the edit ranges it returns with Bias After
// at the start and Before at the end, so concurrent edits elsewhere in
// the buffer cannot widen a hunk's range (spec.md §4.6).
type Anchor struct {
	Offset int
	Bias   Bias
}

// MaxAnchor is a sentinel meaning "the end of the buffer", used to
// build an open-ended context range.
var MaxAnchor = Anchor{Offset: -1, Bias: After}

// AnchorRange is a Range[Anchor], the unit EditResolver both consumes
// (as search context) and produces (as edit location).
type AnchorRange struct {
	Start, End Anchor
}

// BufferSnapshot is the read-only view of a buffer's text and line
// structure that EditResolver and FuzzyRangeMatcher operate against.
// Implementations are expected to be immutable once constructed, the
// same contract the teacher's own snapshot types carry.
type BufferSnapshot interface {
	Text() string
	TextForRange(start, end int) string
	Len() int
	LineCount() int
	LineLen(row int) int
	PointToOffset(p Point) int
	OffsetToPoint(offset int) Point
	AnchorAfter(offset int) Anchor
	AnchorBefore(offset int) Anchor
	ToOffset(a Anchor) int
}

// StringBuffer is a reference BufferSnapshot backed by a plain string,
// for use in tests and cmd/applyedits where no richer rope-based buffer
// is available.
type StringBuffer struct {
	text       string
	lineStarts []int
}

// NewStringBuffer builds a StringBuffer and indexes its line starts
// once, up front.
func NewStringBuffer(text string) *StringBuffer {
	lineStarts := []int{0}
	for i, r := range text {
		if r == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}
	return &StringBuffer{text: text, lineStarts: lineStarts}
}

func (b *StringBuffer) Text() string { return b.text }

func (b *StringBuffer) TextForRange(start, end int) string {
	return b.text[start:end]
}

func (b *StringBuffer) Len() int { return len(b.text) }

func (b *StringBuffer) LineCount() int { return len(b.lineStarts) }

func (b *StringBuffer) LineLen(row int) int {
	start := b.lineStarts[row]
	var end int
	if row+1 < len(b.lineStarts) {
		end = b.lineStarts[row+1] - 1 // exclude the newline itself
	} else {
		end = len(b.text)
	}
	if end < start {
		end = start
	}
	return end - start
}

func (b *StringBuffer) PointToOffset(p Point) int {
	return b.lineStarts[p.Row] + p.Column
}

func (b *StringBuffer) OffsetToPoint(offset int) Point {
	row := sortSearchLineStarts(b.lineStarts, offset)
	return Point{Row: row, Column: offset - b.lineStarts[row]}
}

func sortSearchLineStarts(lineStarts []int, offset int) int {
	lo, hi := 0, len(lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (b *StringBuffer) AnchorAfter(offset int) Anchor {
	return Anchor{Offset: offset, Bias: After}
}

func (b *StringBuffer) AnchorBefore(offset int) Anchor {
	return Anchor{Offset: offset, Bias: Before}
}

func (b *StringBuffer) ToOffset(a Anchor) int {
	if a.Offset < 0 {
		return len(b.text)
	}
	return a.Offset
}

// Lines splits s on "\n" the way the teacher's line-oriented tooling
// does, without a trailing empty element for a final newline.
func lines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

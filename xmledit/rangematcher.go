package xmledit

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	replacementCost uint32 = 1
	insertionCost   uint32 = 3
	deletionCost    uint32 = 10

	matchedRatioThreshold = 0.8
	fuzzyEqThreshold      = 0.8
)

// searchDirection records which cell a SearchMatrix entry's cost was
// derived from, for traceback.
type searchDirection int

const (
	dirUp searchDirection = iota
	dirLeft
	dirDiagonal
)

type searchState struct {
	cost      uint32
	direction searchDirection
}

// searchMatrix is the edit-distance DP table for FuzzyRangeMatcher,
// reused across calls the way pathscore.Scratch reuses its buffers.
type searchMatrix struct {
	rows, cols int
	data       []searchState
}

func (m *searchMatrix) reset(rows, cols int) {
	m.rows, m.cols = rows, cols
	n := rows * cols
	if cap(m.data) >= n {
		m.data = m.data[:n]
	} else {
		m.data = make([]searchState, n)
	}
	for i := range m.data {
		m.data[i] = searchState{}
	}
}

func (m *searchMatrix) get(row, col int) searchState {
	return m.data[row*m.cols+col]
}

func (m *searchMatrix) set(row, col int, s searchState) {
	m.data[row*m.cols+col] = s
}

func saturatingAdd(a, b uint32) uint32 {
	sum := a + b
	if sum < a {
		return ^uint32(0)
	}
	return sum
}

func minState(a, b searchState) searchState {
	if a.cost <= b.cost {
		return a
	}
	return b
}

// FuzzyRangeMatcher locates the best-matching run of lines for a block
// of query text within one or more candidate buffer ranges, using a
// line-granularity edit-distance DP (spec.md §4.5). A single matcher
// instance amortizes its scratch matrix across the ranges it is asked
// to try.
type FuzzyRangeMatcher struct {
	buffer     BufferSnapshot
	queryLines []string
	matrix     searchMatrix
}

// NewFuzzyRangeMatcher prepares a matcher for one old_text block
// against buffer.
func NewFuzzyRangeMatcher(buffer BufferSnapshot, oldText string) *FuzzyRangeMatcher {
	return &FuzzyRangeMatcher{buffer: buffer, queryLines: lines(oldText)}
}

// MatchRange scores the query against the lines spanned by
// [start,end) in the buffer, returning the lowest-cost contiguous run
// of buffer lines and its cost. ok is false if no candidate run meets
// the matchedRatioThreshold.
func (m *FuzzyRangeMatcher) MatchRange(start, end int) (cost uint32, matchStart, matchEnd int, ok bool) {
	pointStart := m.buffer.OffsetToPoint(start)
	pointEnd := m.buffer.OffsetToPoint(end)
	bufferLineCount := pointEnd.Row - pointStart.Row + 1

	m.matrix.reset(len(m.queryLines)+1, bufferLineCount+1)
	queryLineCount := len(m.queryLines)

	bufferLines := lines(m.buffer.TextForRange(start, end))
	// A range may end mid-line with no trailing newline captured by
	// TextForRange; pad so column indexing below always has a row.
	for len(bufferLines) < bufferLineCount {
		bufferLines = append(bufferLines, "")
	}

	for row := 0; row < queryLineCount; row++ {
		queryLine := strings.TrimSpace(m.queryLines[row])
		leadingDeletionCost := uint32(row+1) * deletionCost
		m.matrix.set(row+1, 0, searchState{cost: leadingDeletionCost, direction: dirUp})

		for col := 0; col < bufferLineCount; col++ {
			bufferLine := strings.TrimSpace(bufferLines[col])

			up := searchState{cost: saturatingAdd(m.matrix.get(row, col+1).cost, deletionCost), direction: dirUp}
			left := searchState{cost: saturatingAdd(m.matrix.get(row+1, col).cost, insertionCost), direction: dirLeft}

			var diagCost uint32
			switch {
			case queryLine == bufferLine:
				diagCost = m.matrix.get(row, col).cost
			case fuzzyEq(queryLine, bufferLine):
				diagCost = m.matrix.get(row, col).cost + replacementCost
			default:
				diagCost = saturatingAdd(m.matrix.get(row, col).cost, deletionCost+insertionCost)
			}
			diagonal := searchState{cost: diagCost, direction: dirDiagonal}

			m.matrix.set(row+1, col+1, minState(minState(up, left), diagonal))
		}
	}

	bestCost := ^uint32(0)
	var candidates []int
	for col := 1; col <= bufferLineCount; col++ {
		c := m.matrix.get(queryLineCount, col).cost
		switch {
		case c < bestCost:
			bestCost = c
			candidates = candidates[:0]
			candidates = append(candidates, col)
		case c == bestCost:
			candidates = append(candidates, col)
		}
	}

	for _, matchEndCol := range candidates {
		matchedLines := 0
		queryRow := queryLineCount
		matchStartCol := matchEndCol
		for queryRow > 0 && matchStartCol > 0 {
			cur := m.matrix.get(queryRow, matchStartCol)
			switch cur.direction {
			case dirDiagonal:
				queryRow--
				matchStartCol--
				matchedLines++
			case dirUp:
				queryRow--
			case dirLeft:
				matchStartCol--
			}
		}

		bufferRowStart := matchStartCol + pointStart.Row
		bufferRowEnd := matchEndCol + pointStart.Row

		matchedBufferRowCount := bufferRowEnd - bufferRowStart
		denom := matchedBufferRowCount
		if queryLineCount > denom {
			denom = queryLineCount
		}
		matchedRatio := 0.0
		if denom > 0 {
			matchedRatio = float64(matchedLines) / float64(denom)
		}

		if matchedRatio >= matchedRatioThreshold {
			bufferStartIx := m.buffer.PointToOffset(Point{Row: bufferRowStart, Column: 0})
			lastLine := bufferRowEnd - 1
			bufferEndIx := m.buffer.PointToOffset(Point{Row: lastLine, Column: m.buffer.LineLen(lastLine)})
			return bestCost, bufferStartIx, bufferEndIx, true
		}
	}

	return 0, 0, 0, false
}

// fuzzyEq reports whether left and right are close enough to treat as
// "the same line" in the DP's diagonal transition: a cheap length-based
// prefilter, then normalized Levenshtein distance (spec.md §4.5).
func fuzzyEq(left, right string) bool {
	if left == right {
		return true
	}

	maxLen := len(left)
	if len(right) > maxLen {
		maxLen = len(right)
	}
	if maxLen == 0 {
		return true
	}

	minLevenshtein := len(left) - len(right)
	if minLevenshtein < 0 {
		minLevenshtein = -minLevenshtein
	}
	minNormalized := 1.0 - float64(minLevenshtein)/float64(maxLen)
	if minNormalized < fuzzyEqThreshold {
		return false
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(left, right, false)
	distance := dmp.DiffLevenshtein(diffs)
	normalized := 1.0 - float64(distance)/float64(maxLen)
	return normalized >= fuzzyEqThreshold
}

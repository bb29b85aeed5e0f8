// Package pathscore implements the single-candidate recursive, memoized
// DP scorer described by spec.md §4.2. It is the algorithmic core of the
// fuzzy path matcher: everything in package pathmatch is sharding and
// top-K bookkeeping around a call to Score.
package pathscore

import "github.com/sourcegraph/fuzzymatch/charbag"

// Scoring constants, bit-exact per spec.md §6 ("part of the public
// contract because they determine ranking").
const (
	BaseDistancePenalty       = 0.60
	AdditionalDistancePenalty = 0.05
	MinDistancePenalty        = 0.20
	SmartCaseMismatchFactor   = 0.001
)

// unreachableMarker distinguishes "computed, but pruned below min_score"
// (spec.md §4.2: "a score of exactly 0.0 must be stored as a tiny
// positive value") from "not yet computed" in the memo table.
const unreachableMarker = 1e-18

// Scratch holds the buffers reused across candidates within one worker.
// Score calls Reset at the start of each call; Scratch owns no data
// that outlives a single worker's lifetime.
type Scratch struct {
	lastPositions      []int
	scoreMatrix        []float64
	scoreComputed      []bool
	bestPositionMatrix []int
	matchPositions     []int
}

// Reset resizes the scratch buffers for a query of length queryLen and a
// prefix+path of length totalLen, clearing them for a fresh candidate.
// Capacity is reused across calls whenever it already fits, per spec.md
// §9 ("resized, never reallocated when the new capacity fits").
func (s *Scratch) Reset(queryLen, totalLen int) {
	s.lastPositions = growInts(s.lastPositions, queryLen)
	s.matchPositions = growInts(s.matchPositions, queryLen)

	matrixLen := queryLen * totalLen
	s.scoreMatrix = growFloats(s.scoreMatrix, matrixLen)
	s.scoreComputed = growBools(s.scoreComputed, matrixLen)
	s.bestPositionMatrix = growInts(s.bestPositionMatrix, matrixLen)

	for i := range s.scoreComputed[:matrixLen] {
		s.scoreComputed[i] = false
	}
	for i := range s.bestPositionMatrix[:matrixLen] {
		s.bestPositionMatrix[i] = 0
	}
}

func growInts(buf []int, n int) []int {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]int, n)
}

func growFloats(buf []float64, n int) []float64 {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}

func growBools(buf []bool, n int) []bool {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]bool, n)
}

// MatchPositions returns the byte offsets computed by the most recent
// successful Score call, valid until the next call to Score or Reset.
func (s *Scratch) MatchPositions() []int {
	return s.matchPositions
}

// Input bundles a single candidate's data for Score. Query and Path
// fields carry both the original-case and lowercased rune slices, as
// required by the smart-case comparison in spec.md §4.2 step 3.
type Input struct {
	Query          []rune
	QueryLower     []rune
	QueryChars     charbag.CharBag
	Path           []rune
	PathLower      []rune
	Prefix         []rune
	PrefixLower    []rune
	CandidateChars charbag.CharBag
	SmartCase      bool
}

// Score runs the full spec.md §4.2 algorithm for one candidate:
// superset filter, last-positions prefilter, memoized recursive DP, and
// position reconstruction. It returns 0 when the candidate cannot match
// (or the query is empty), and a value in [0, len(Query)] otherwise. On
// a non-zero return, scratch.MatchPositions() holds len(Query) strictly
// increasing byte offsets into the conceptual concatenation
// Prefix++Path.
//
// minScore is the caller's current top-K cutoff (0 if the heap is not
// yet full); it strictly bounds how much of the search space the
// recursion needs to explore.
func Score(in Input, scratch *Scratch, minScore float64) float64 {
	queryLen := len(in.Query)
	if queryLen == 0 {
		return 0
	}

	// Step 1: superset filter.
	if !in.CandidateChars.IsSuperset(in.QueryChars) {
		return 0
	}

	totalLen := len(in.Prefix) + len(in.Path)
	scratch.Reset(queryLen, totalLen)

	// Step 2: last-positions prefilter.
	if !findLastPositions(scratch.lastPositions, in.PrefixLower, in.PathLower, in.QueryLower) {
		return 0
	}

	d := &dp{
		query:         in.Query,
		queryLower:    in.QueryLower,
		path:          in.Path,
		pathLower:     in.PathLower,
		prefix:        in.Prefix,
		prefixLower:   in.PrefixLower,
		smartCase:     in.SmartCase,
		lastPositions: scratch.lastPositions,
		scoreMatrix:   scratch.scoreMatrix,
		scoreComputed: scratch.scoreComputed,
		bestPosition:  scratch.bestPositionMatrix,
		totalLen:      totalLen,
	}

	score := d.recursiveScore(minScore, 0, 0, float64(queryLen)) * float64(queryLen)
	if score <= 0 {
		return 0
	}

	reconstructPositions(d, scratch.matchPositions)
	return score
}

// findLastPositions walks the query right-to-left; for each query
// character it finds the rightmost occurrence in path (searching from
// the current right cursor), falling back to prefix. lastPositions[i]
// is the maximum index (in the Prefix++Path index space) at which
// query[i] may be matched given that later query characters must
// follow it. Returns false if any query character cannot be placed.
func findLastPositions(lastPositions []int, prefixLower, pathLower, queryLower []rune) bool {
	pathCursor := len(pathLower)
	prefixCursor := len(prefixLower)

	for i := len(queryLower) - 1; i >= 0; i-- {
		c := queryLower[i]
		if pathCursor > 0 {
			if j := rLastIndex(pathLower[:pathCursor], c); j >= 0 {
				lastPositions[i] = j + len(prefixLower)
				pathCursor = j
				continue
			}
			// Mirrors the Rust DoubleEndedIterator: once a search over
			// the path fails, the iterator is exhausted and every
			// subsequent (earlier) query character falls back to the
			// prefix only.
			pathCursor = 0
		}
		if j := rLastIndex(prefixLower[:prefixCursor], c); j >= 0 {
			lastPositions[i] = j
			prefixCursor = j
			continue
		}
		return false
	}
	return true
}

// rLastIndex returns the index of the last rune in runes that query
// character c can match, or -1. As in recursiveScore, a '_' or '\\' in
// the query also matches a '/' or '\\' path separator.
func rLastIndex(runes []rune, c rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		r := runes[i]
		if r == c || ((r == '/' || r == '\\') && (c == '_' || c == '\\')) {
			return i
		}
	}
	return -1
}

type dp struct {
	query, queryLower   []rune
	path, pathLower     []rune
	prefix, prefixLower []rune
	smartCase           bool
	lastPositions       []int
	scoreMatrix         []float64
	scoreComputed       []bool
	bestPosition        []int
	totalLen            int
}

func (d *dp) charAt(j int) rune {
	if j < len(d.prefix) {
		return d.prefix[j]
	}
	return d.path[j-len(d.prefix)]
}

func (d *dp) lowerAt(j int) rune {
	if j < len(d.prefixLower) {
		return d.prefixLower[j]
	}
	return d.pathLower[j-len(d.prefixLower)]
}

// recursiveScore implements spec.md §4.2 step 3: memoized recursive DP
// keyed by (queryIdx, pathIdx), returning a score in [0,1] that the
// caller scales by query length.
func (d *dp) recursiveScore(minScore float64, queryIdx, pathIdx int, curScore float64) float64 {
	queryLen := len(d.query)
	if queryIdx == queryLen {
		return 1.0
	}

	cell := queryIdx*d.totalLen + pathIdx
	if d.scoreComputed[cell] {
		return d.scoreMatrix[cell]
	}

	var score float64
	bestPosition := 0

	queryChar := d.queryLower[queryIdx]
	limit := d.lastPositions[queryIdx]

	lastSlash := 0
	for j := pathIdx; j <= limit; j++ {
		pathChar := d.lowerAt(j)
		isPathSep := pathChar == '/' || pathChar == '\\'

		if queryIdx == 0 && isPathSep {
			lastSlash = j
		}

		if !(queryChar == pathChar || (isPathSep && (queryChar == '_' || queryChar == '\\'))) {
			continue
		}

		curr := d.charAt(j)
		charScore := 1.0
		if j > pathIdx {
			last := d.charAt(j - 1)
			switch {
			case last == '/':
				charScore = 0.9
			case last == '-' || last == '_' || last == ' ' || isDigit(last):
				charScore = 0.8
			case isLower(last) && isUpper(curr):
				charScore = 0.8
			case last == '.':
				charScore = 0.7
			case queryIdx == 0:
				charScore = BaseDistancePenalty
			default:
				penalty := BaseDistancePenalty - float64(j-pathIdx-1)*AdditionalDistancePenalty
				if penalty < MinDistancePenalty {
					penalty = MinDistancePenalty
				}
				charScore = penalty
			}
		}

		// Smart-case penalty: exact-case matches always outrank
		// case-insensitive ones, but the latter remain reachable
		// (spec.md §9, "Smart-case semantics").
		if (d.smartCase || curr == '/') && d.query[queryIdx] != curr {
			charScore *= SmartCaseMismatchFactor
		}

		multiplier := charScore
		if queryIdx == 0 {
			multiplier /= float64(d.totalLen - lastSlash)
		}

		nextScore := 1.0
		if minScore > 0 {
			nextScore = curScore * multiplier
			if nextScore < minScore {
				if score == 0 {
					score = unreachableMarker
				}
				continue
			}
		}

		newScore := d.recursiveScore(minScore, queryIdx+1, j+1, nextScore) * multiplier
		if newScore > score {
			score = newScore
			bestPosition = j
			if newScore == 1.0 {
				break
			}
		}
	}

	if bestPosition != 0 {
		d.bestPosition[cell] = bestPosition
	}
	d.scoreComputed[cell] = true
	d.scoreMatrix[cell] = score
	return score
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// reconstructPositions walks bestPositionMatrix from (0,0), translating
// char indices into UTF-8 byte offsets by incremental accumulation over
// prefix++path (spec.md §4.2 step 4).
func reconstructPositions(d *dp, matchPositions []int) {
	curStart := 0
	byteIx := 0
	charIx := 0
	for i := range d.query {
		matchCharIx := d.bestPosition[i*d.totalLen+curStart]
		for charIx < matchCharIx {
			byteIx += runeLen(d.charAt(charIx))
			charIx++
		}
		curStart = matchCharIx + 1
		matchPositions[i] = byteIx
	}
}

func runeLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

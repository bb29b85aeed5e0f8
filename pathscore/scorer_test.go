package pathscore

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sourcegraph/fuzzymatch/charbag"
)

func TestFindLastPositions(t *testing.T) {
	cases := []struct {
		name    string
		prefix  []rune
		path    []rune
		query   []rune
		want    []int
		wantOK  bool
	}{
		{
			name:   "unmatchable",
			prefix: []rune("abc"),
			path:   []rune("bdef"),
			query:  []rune("dc"),
			wantOK: false,
		},
		{
			name:   "path then prefix fallback",
			prefix: []rune("abc"),
			path:   []rune("bdef"),
			query:  []rune("cd"),
			want:   []int{2, 4},
			wantOK: true,
		},
		{
			name:   "mixed prefix and path",
			prefix: []rune("zed/"),
			path:   []rune("zed/f"),
			query:  []rune("z/zf"),
			want:   []int{0, 3, 4, 8},
			wantOK: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := make([]int, len(tc.query))
			ok := findLastPositions(got, tc.prefix, tc.path, tc.query)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if tc.wantOK {
				if diff := cmp.Diff(tc.want, got); diff != "" {
					t.Fatalf("last positions mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

type scoredPath struct {
	path string
	pos  []int
}

func matchAll(query string, smartCase bool, paths []string) []scoredPath {
	lowerQuery := []rune(lowercase(query))
	queryRunes := []rune(query)
	queryChars := charbag.FromString(lowercase(query))

	var out []scoredPath
	var scratch Scratch
	for _, p := range paths {
		pathRunes := []rune(p)
		pathLower := []rune(lowercase(p))
		candidateChars := charbag.FromString(lowercase(p))

		score := Score(Input{
			Query:          queryRunes,
			QueryLower:     lowerQuery,
			QueryChars:     queryChars,
			Path:           pathRunes,
			PathLower:      pathLower,
			CandidateChars: candidateChars,
			SmartCase:      smartCase,
		}, &scratch, 0)

		if score > 0 {
			positions := append([]int(nil), scratch.MatchPositions()...)
			out = append(out, scoredPath{path: p, pos: positions})
		}
	}
	return out
}

func lowercase(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func TestScenarioS2CamelCaseOutranksDefault(t *testing.T) {
	var scratch Scratch
	paths := []string{"alphabravocharlie", "AlphaBravoCharlie"}
	query := "abc"
	lowerQuery := []rune(lowercase(query))
	queryRunes := []rune(query)
	queryChars := charbag.FromString(lowercase(query))

	scoreOf := func(p string) float64 {
		return Score(Input{
			Query:          queryRunes,
			QueryLower:     lowerQuery,
			QueryChars:     queryChars,
			Path:           []rune(p),
			PathLower:      []rune(lowercase(p)),
			CandidateChars: charbag.FromString(lowercase(p)),
		}, &scratch, 0)
	}

	lower := scoreOf(paths[0])
	camel := scoreOf(paths[1])
	if !(camel > lower) {
		t.Fatalf("expected camelCase match to score higher: camel=%v lower=%v", camel, lower)
	}
}

func TestPositionsAreStrictlyIncreasingAndCaseFold(t *testing.T) {
	query := "d"
	paths := []string{"a1", "a2", "a3", "dir1", "dir2", "dir2/c", "dir2/d1"}
	results := matchAll(query, false, paths)

	for _, r := range results {
		last := -1
		for i, pos := range r.pos {
			if pos <= last {
				t.Fatalf("positions not strictly increasing for %q: %v", r.path, r.pos)
			}
			last = pos
			gotChar := []rune(r.path)[byteOffsetToRuneIndex(r.path, pos)]
			wantChar := []rune(lowercase(query))[i]
			if lowercase(string(gotChar)) != string(wantChar) {
				t.Fatalf("position %d in %q does not match query char %q", pos, r.path, wantChar)
			}
		}
	}
}

func byteOffsetToRuneIndex(s string, byteOffset int) int {
	count := 0
	for i := range s {
		if i == byteOffset {
			return count
		}
		count++
	}
	return count
}

func TestSupersetFilterSoundness(t *testing.T) {
	query := "xyz"
	paths := []string{"abc", "xab", "xyb"}
	results := matchAll(query, false, paths)
	if len(results) != 0 {
		t.Fatalf("expected no matches when superset filter rejects all candidates, got %v", results)
	}
}

func TestUnderscoreMatchesPathSeparator(t *testing.T) {
	var scratch Scratch
	query := "a_b"
	path := "a/b"
	score := Score(Input{
		Query:          []rune(query),
		QueryLower:     []rune(query),
		QueryChars:     charbag.FromString(query),
		Path:           []rune(path),
		PathLower:      []rune(path),
		CandidateChars: charbag.FromString(path),
	}, &scratch, 0)
	if score <= 0 {
		t.Fatalf("expected '_' in query to match '/' in path, got score %v", score)
	}
}

package pathmatch

import (
	"context"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/facebookgo/clock"

	"github.com/sourcegraph/fuzzymatch/cancel"
	"github.com/sourcegraph/fuzzymatch/snapshot"
)

func TestMatchRanksExactOverFuzzy(t *testing.T) {
	snap := snapshot.NewInMemory(1, "root", []string{
		"src/foo.go",
		"src/bar/foo_bar.go",
		"src/unrelated/thing.go",
	})

	results := Match(context.Background(), []snapshot.Snapshot{snap}, "foo", Options{MaxResults: 10})
	if len(results) == 0 {
		t.Fatal("expected at least one match")
	}
	if results[0].Path != "src/foo.go" {
		t.Fatalf("expected src/foo.go to rank first, got %q", results[0].Path)
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].Score < results[i].Score {
			t.Fatalf("results not sorted by descending score at index %d: %+v", i, results)
		}
	}
}

func TestMatchEmptyQueryReturnsNothing(t *testing.T) {
	snap := snapshot.NewInMemory(1, "root", []string{"a.go"})
	if got := Match(context.Background(), []snapshot.Snapshot{snap}, "", Options{MaxResults: 10}); got != nil {
		t.Fatalf("expected nil for empty query, got %v", got)
	}
}

func TestMatchRespectsMaxResults(t *testing.T) {
	paths := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		paths = append(paths, "dir/file_match.go")
	}
	snap := snapshot.NewInMemory(1, "root", paths)

	results := Match(context.Background(), []snapshot.Snapshot{snap}, "match", Options{MaxResults: 5})
	if len(results) != 5 {
		t.Fatalf("expected exactly 5 results, got %d", len(results))
	}
}

func TestMatchCancelledTokenReturnsNothing(t *testing.T) {
	snap := snapshot.NewInMemory(1, "root", []string{"src/foo.go"})
	token := cancel.New()
	token.Cancel()

	results := Match(context.Background(), []snapshot.Snapshot{snap}, "foo", Options{MaxResults: 10, Cancel: token})
	if results != nil {
		t.Fatalf("expected nil results for pre-cancelled token, got %v", results)
	}
}

func TestMatchIsDeterministicAcrossMultipleTrees(t *testing.T) {
	treeA := snapshot.NewInMemory(1, "a", []string{"src/foo.go", "src/bar.go", "src/baz/qux.go"})
	treeB := snapshot.NewInMemory(2, "b", []string{"lib/foo.go", "lib/food.go"})

	first := Match(context.Background(), []snapshot.Snapshot{treeA, treeB}, "foo", Options{MaxResults: 10})
	second := Match(context.Background(), []snapshot.Snapshot{treeA, treeB}, "foo", Options{MaxResults: 10})

	if len(first) != len(second) {
		t.Fatalf("result count differs across runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Path != second[i].Path || first[i].TreeID != second[i].TreeID || first[i].Score != second[i].Score {
			t.Fatalf("result %d differs across runs:\nfirst:\n%s\nsecond:\n%s",
				i, spew.Sdump(first), spew.Sdump(second))
		}
	}
}

func TestArmAfterCancelsOnFakeClock(t *testing.T) {
	mock := clock.NewMock()
	token := cancel.NewWithClock(mock)
	token.ArmAfter(5 * time.Second)

	if token.Cancelled() {
		t.Fatal("token cancelled before the timer fired")
	}
	mock.Add(5 * time.Second)
	if !token.Cancelled() {
		t.Fatal("expected token to be cancelled once the armed duration elapsed")
	}
}

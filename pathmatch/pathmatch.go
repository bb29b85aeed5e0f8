// Package pathmatch implements the parallel fuzzy path search described
// by spec.md §4.3: given a query and a collection of Snapshots, it
// shards candidates across a worker pool, scores each with package
// pathscore, and merges per-worker top-K results into a single
// deterministic, ordered result set.
package pathmatch

import (
	"context"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	otlog "github.com/opentracing/opentracing-go/log"
	"golang.org/x/sync/errgroup"

	_ "go.uber.org/automaxprocs" // sets GOMAXPROCS from the cgroup quota before workerCount() reads it

	"github.com/sourcegraph/fuzzymatch/cancel"
	"github.com/sourcegraph/fuzzymatch/charbag"
	"github.com/sourcegraph/fuzzymatch/internal/obs"
	"github.com/sourcegraph/fuzzymatch/pathscore"
	"github.com/sourcegraph/fuzzymatch/snapshot"
)

// PathMatch is the result record for a single matched path.
type PathMatch struct {
	Score           float64
	Positions       []int
	TreeID          uint64
	Path            string
	IncludeRootName bool
}

// Less implements the total order from spec.md §3: descending by
// score, tie-break by TreeID ascending, then by a stable tiebreaker
// over the path string (standing in for the Rust original's pointer
// identity, which Go strings do not expose) so that ties between
// distinct paths in the same tree still resolve deterministically.
func Less(a, b PathMatch) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.TreeID != b.TreeID {
		return a.TreeID < b.TreeID
	}
	return a.Path < b.Path
}

// Options configures a call to Match.
type Options struct {
	IncludeRootName bool
	IncludeIgnored  bool
	SmartCase       bool
	MaxResults      int
	Cancel          *cancel.Token

	// Tracer, if set, receives an opentracing span for the call the way
	// the teacher's concurrentFind instruments ConcurrentFind. Nil uses
	// opentracing.GlobalTracer().
	Tracer opentracing.Tracer

	// Metrics, if set, records latency/candidate counters. Nil is a
	// valid no-op.
	Metrics *Metrics

	// Logger, if set, emits debug-level tracing of shard sizing and
	// result counts. Nil disables logging entirely.
	Logger *obs.Logger
}

// Match runs a fuzzy path search over snapshots for query, returning the
// top Options.MaxResults matches in the order defined by Less. Matching
// is deterministic for a fixed snapshot iteration order and query,
// regardless of GOMAXPROCS (spec.md §4.3, "Parallel determinism").
//
// An empty query, a non-positive MaxResults, or a cancelled token all
// yield an empty result — path search never returns an error.
func Match(ctx context.Context, snapshots []snapshot.Snapshot, query string, opts Options) []PathMatch {
	if opts.MaxResults <= 0 || query == "" {
		return nil
	}

	start := time.Now()

	tracer := opts.Tracer
	if tracer == nil {
		tracer = opentracing.GlobalTracer()
	}
	span := tracer.StartSpan("pathmatch.Match")
	ext.Component.Set(span, "pathmatch")
	span.SetTag("query", query)
	defer span.Finish()

	token := opts.Cancel
	if token == nil {
		token = cancel.New()
	}
	if token.Cancelled() {
		return nil
	}

	queryRunes := []rune(query)
	lowerQuery := []rune(strings.ToLower(query))
	queryChars := charbag.FromChars(lowerQuery)

	pathCount := 0
	for _, s := range snapshots {
		if opts.IncludeIgnored {
			pathCount += s.FileCount()
		} else {
			pathCount += s.VisibleFileCount()
		}
	}
	span.LogFields(otlog.Int("pathCount", pathCount))

	cpus := workerCount()
	if cpus < 1 {
		cpus = 1
	}
	segmentSize := (pathCount + cpus - 1) / cpus
	if segmentSize < 1 {
		segmentSize = 1
	}
	opts.Logger.Debug("sharding candidates", "pathCount", pathCount, "workers", cpus, "segmentSize", segmentSize)

	segmentResults := make([][]PathMatch, cpus)
	var scored, pruned int64

	g, gctx := errgroup.WithContext(ctx)
	for k := 0; k < cpus; k++ {
		k := k
		g.Go(func() error {
			segStart := k * segmentSize
			segEnd := segStart + segmentSize
			segmentResults[k] = matchSegment(gctx, snapshots, segStart, segEnd, matchConfig{
				query:           queryRunes,
				lowerQuery:      lowerQuery,
				queryChars:      queryChars,
				includeRootName: opts.IncludeRootName,
				includeIgnored:  opts.IncludeIgnored,
				smartCase:       opts.SmartCase,
				maxResults:      opts.MaxResults,
				cancel:          token,
				scored:          &scored,
				pruned:          &pruned,
			})
			return nil
		})
	}
	_ = g.Wait() // matchSegment never returns an error; only panics propagate.

	if token.Cancelled() {
		ext.Error.Set(span, false)
		span.LogFields(otlog.String("event", "cancelled"))
		return nil
	}

	results := mergeSorted(segmentResults, opts.MaxResults)
	if opts.Metrics != nil {
		opts.Metrics.observe(time.Since(start), atomic.LoadInt64(&scored), atomic.LoadInt64(&pruned))
	}
	opts.Logger.Debug("match complete", "query", query, "results", len(results))
	return results
}

// workerCount sizes the worker pool to GOMAXPROCS, which automaxprocs
// has already corrected to reflect the container's CPU quota (spec.md
// §4.3: "parallel threads via a worker pool sized to CPU count").
func workerCount() int {
	return runtime.GOMAXPROCS(0)
}

type matchConfig struct {
	query, lowerQuery []rune
	queryChars        charbag.CharBag
	includeRootName   bool
	includeIgnored    bool
	smartCase         bool
	maxResults        int
	cancel            *cancel.Token
	scored, pruned    *int64
}

// matchSegment scores the global candidate range [segStart, segEnd)
// across all snapshots, translating the global range into a per-
// snapshot (start, end) slice as spec.md §4.3 describes.
func matchSegment(ctx context.Context, snapshots []snapshot.Snapshot, segStart, segEnd int, cfg matchConfig) []PathMatch {
	var scratch pathscore.Scratch
	heap := newTopK(cfg.maxResults)

	treeStart := 0
	for _, snap := range snapshots {
		treeCount := snap.VisibleFileCount()
		if cfg.includeIgnored {
			treeCount = snap.FileCount()
		}
		treeEnd := treeStart + treeCount

		includeRootName := cfg.includeRootName
		if treeStart < segEnd && segStart < treeEnd {
			start := max(treeStart, segStart) - treeStart
			end := min(treeEnd, segEnd) - treeStart

			prefix, prefixLower := rootPrefix(snap, includeRootName)

			var it snapshot.FileIterator
			if cfg.includeIgnored {
				it = snap.Files(start)
			} else {
				it = snap.VisibleFiles(start)
			}

			n := 0
			for n < end-start && it.Next() {
				n++
				if cfg.cancel.Cancelled() {
					return heap.sorted()
				}
				scoreOne(snap.ID(), it.Entry(), includeRootName, prefix, prefixLower, cfg, &scratch, heap)
			}
		}

		if treeEnd >= segEnd {
			break
		}
		treeStart = treeEnd
	}

	return heap.sorted()
}

func rootPrefix(snap snapshot.Snapshot, includeRootName bool) (prefix, prefixLower []rune) {
	if !includeRootName {
		return nil, nil
	}
	prefix = []rune(snap.RootName())
	prefixLower = []rune(strings.ToLower(snap.RootName()))
	return prefix, prefixLower
}

func scoreOne(treeID uint64, entry snapshot.FileEntry, includeRootName bool, prefix, prefixLower []rune, cfg matchConfig, scratch *pathscore.Scratch, heap *topK) {
	if !entry.CharBag.IsSuperset(cfg.queryChars) {
		if cfg.pruned != nil {
			atomic.AddInt64(cfg.pruned, 1)
		}
		return
	}
	if cfg.scored != nil {
		atomic.AddInt64(cfg.scored, 1)
	}

	pathRunes := []rune(entry.Path)
	pathLower := []rune(strings.ToLower(entry.Path))
	if len(pathLower) != len(pathRunes) {
		// A Unicode case fold changed the rune count (rare); fall back to
		// an ASCII-only fold so indices stay aligned with pathRunes.
		pathLower = make([]rune, len(pathRunes))
		for i, r := range pathRunes {
			pathLower[i] = toLowerASCII(r)
		}
	}

	score := pathscore.Score(pathscore.Input{
		Query:          cfg.query,
		QueryLower:     cfg.lowerQuery,
		QueryChars:     cfg.queryChars,
		Path:           pathRunes,
		PathLower:      pathLower,
		Prefix:         prefix,
		PrefixLower:    prefixLower,
		CandidateChars: entry.CharBag,
		SmartCase:      cfg.smartCase,
	}, scratch, heap.minScore())

	if score > 0 {
		heap.insert(PathMatch{
			Score:           score,
			Positions:       append([]int(nil), scratch.MatchPositions()...),
			TreeID:          treeID,
			Path:            entry.Path,
			IncludeRootName: includeRootName,
		})
	}
}

func toLowerASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// mergeSorted merges per-worker sorted top-K slices into a single
// bounded, sorted slice, exactly as the teacher original's
// util::extend_sorted does for match_paths.
func mergeSorted(segments [][]PathMatch, maxResults int) []PathMatch {
	var merged []PathMatch
	for _, seg := range segments {
		merged = extendSorted(merged, seg, maxResults)
	}
	return merged
}

// extendSorted merges new into acc (both already sorted by Less),
// keeping only the best maxResults entries overall.
func extendSorted(acc, new []PathMatch, maxResults int) []PathMatch {
	if len(acc) == 0 {
		if len(new) > maxResults {
			new = new[:maxResults]
		}
		return append([]PathMatch(nil), new...)
	}

	merged := make([]PathMatch, 0, min(len(acc)+len(new), maxResults))
	i, j := 0, 0
	for len(merged) < maxResults && (i < len(acc) || j < len(new)) {
		switch {
		case i >= len(acc):
			merged = append(merged, new[j])
			j++
		case j >= len(new):
			merged = append(merged, acc[i])
			i++
		case Less(acc[i], new[j]):
			merged = append(merged, acc[i])
			i++
		default:
			merged = append(merged, new[j])
			j++
		}
	}
	return merged
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

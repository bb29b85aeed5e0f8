// Package xmledit resolves the <edits path="..."> XML-like blocks an
// LLM emits into concrete buffer edits: it parses the block
// tolerantly, fuzzily locates each old_text within the caller-supplied
// search context, diffs it against new_text, and anchors the resulting
// hunks so they stay valid across later buffer mutations (spec.md §4.4
// - §4.6).
package xmledit

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/sourcegraph/fuzzymatch/cancel"
	"github.com/sourcegraph/fuzzymatch/internal/obs"
)

// logger is shared across every call in this package; callers that
// need resolution traced wire it up once via SetLogger rather than
// threading a logger through every function signature, since
// ResolveXMLEdits is typically called many times per user keystroke.
var logger *obs.Logger

// SetLogger installs the package-wide debug logger. Passing nil
// disables logging.
func SetLogger(l *obs.Logger) {
	logger = l
}

// Edit is a single resolved replacement: the text at Range should be
// replaced with Text.
type Edit struct {
	Range AnchorRange
	Text  string
}

// BufferLookup resolves a file path named by an <edits> tag to the
// buffer it refers to and the ranges within it that are in-context (and
// therefore eligible for fuzzy matching). ok is false if the resolver
// has no buffer open for that path.
type BufferLookup func(path string) (buffer BufferSnapshot, contextRanges []AnchorRange, ok bool)

// ResolveXMLEdits parses a single <edits> block out of input and
// resolves each old_text/new_text pair into anchored Edits against the
// buffer getBuffer returns for the block's path attribute.
//
// Resolution stops and returns an error on the first old_text block
// that cannot be fuzzily matched, is ambiguous, or names a path with no
// open buffer - spec.md §4.6 does not ask for best-effort partial
// application.
func ResolveXMLEdits(ctx context.Context, input string, getBuffer BufferLookup) (BufferSnapshot, []Edit, error) {
	return resolveXMLEdits(ctx, input, getBuffer, nil)
}

// ResolveXMLEditsCancellable is ResolveXMLEdits with a cooperative
// cancel.Token checked before each old_text block and before each
// context range is searched, for callers resolving a large batch under
// a deadline.
func ResolveXMLEditsCancellable(ctx context.Context, input string, getBuffer BufferLookup, token *cancel.Token) (BufferSnapshot, []Edit, error) {
	return resolveXMLEdits(ctx, input, getBuffer, token)
}

func resolveXMLEdits(ctx context.Context, input string, getBuffer BufferLookup, token *cancel.Token) (BufferSnapshot, []Edit, error) {
	parsed, err := ExtractXMLReplacements(input)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to parse XML edits:\n%s", input)
	}

	buffer, contextRanges, ok := getBuffer(parsed.FilePath)
	if !ok {
		return nil, nil, &NoBufferFoundError{Path: parsed.FilePath}
	}

	logger.Debug("resolving xml edits", "path", parsed.FilePath, "replacements", len(parsed.Replacements))

	var allEdits []Edit
	for _, r := range parsed.Replacements {
		if token != nil && token.Cancelled() {
			return nil, nil, ErrCancelled
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		matchStart, matchEnd, err := fuzzyMatchInRanges(r.OldText, buffer, contextRanges, token)
		if err == ErrCancelled {
			return nil, nil, ErrCancelled
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to resolve old_text against %s", parsed.FilePath)
		}

		matchedOldText := buffer.TextForRange(matchStart, matchEnd)
		for _, hunk := range textDiff(matchedOldText, r.NewText) {
			allEdits = append(allEdits, Edit{
				Range: AnchorRange{
					Start: buffer.AnchorAfter(matchStart + hunk.Start),
					End:   buffer.AnchorBefore(matchStart + hunk.End),
				},
				Text: hunk.Text,
			})
		}
	}

	return buffer, allEdits, nil
}

// fuzzyMatchInRanges tries old_text against every context range with a
// fresh FuzzyRangeMatcher, keeping the lowest-cost match across all of
// them. A tie between the best two ranges is an ambiguity error rather
// than an arbitrary pick (spec.md §4.5, "Ambiguity").
func fuzzyMatchInRanges(oldText string, buffer BufferSnapshot, contextRanges []AnchorRange, token *cancel.Token) (start, end int, err error) {
	matcher := NewFuzzyRangeMatcher(buffer, oldText)

	var haveBest bool
	var bestCost uint32
	var bestStart, bestEnd int
	var haveTie bool
	var tieStart, tieEnd int

	for _, r := range contextRanges {
		if token != nil && token.Cancelled() {
			return 0, 0, ErrCancelled
		}
		rangeStart := buffer.ToOffset(r.Start)
		rangeEnd := buffer.ToOffset(r.End)
		if rangeEnd > buffer.Len() || rangeEnd < 0 {
			rangeEnd = buffer.Len()
		}
		if rangeStart >= rangeEnd {
			continue
		}

		cost, ms, me, ok := matcher.MatchRange(rangeStart, rangeEnd)
		if !ok {
			continue
		}

		switch {
		case !haveBest:
			haveBest, bestCost, bestStart, bestEnd = true, cost, ms, me
		case cost == bestCost:
			haveTie, tieStart, tieEnd = true, ms, me
		case cost < bestCost:
			haveTie = false
			bestCost, bestStart, bestEnd = cost, ms, me
		}
	}

	if !haveBest {
		return 0, 0, &NoMatchError{OldText: oldText}
	}
	if haveTie {
		return 0, 0, &AmbiguousMatchError{Ranges: [2]AnchorRange{
			{Start: buffer.AnchorAfter(bestStart), End: buffer.AnchorBefore(bestEnd)},
			{Start: buffer.AnchorAfter(tieStart), End: buffer.AnchorBefore(tieEnd)},
		}}
	}
	return bestStart, bestEnd, nil
}

// Document names one model response to resolve, for ResolveAllXMLEdits.
type Document struct {
	Name  string // used only to label errors in the aggregate
	Input string
}

// Result pairs a Document's resolved edits with the buffer they apply
// to.
type Result struct {
	Name   string
	Buffer BufferSnapshot
	Edits  []Edit
}

// ResolveAllXMLEdits resolves a batch of independent <edits> documents,
// continuing past individual failures and returning every error
// together via go-multierror rather than stopping at the first one -
// useful for a caller applying edits from several files parsed out of
// one long model turn (SPEC_FULL.md §5: an addition beyond the
// original, which resolves one <edits> block per call).
func ResolveAllXMLEdits(ctx context.Context, docs []Document, getBuffer BufferLookup) ([]Result, error) {
	var results []Result
	var errs *multierror.Error

	for _, doc := range docs {
		buffer, edits, err := ResolveXMLEdits(ctx, doc.Input, getBuffer)
		if err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "document %s", doc.Name))
			continue
		}
		results = append(results, Result{Name: doc.Name, Buffer: buffer, Edits: edits})
	}

	return results, errs.ErrorOrNil()
}

package xmledit

import "github.com/sergi/go-diff/diffmatchpatch"

// Hunk is a single inner edit found by textDiff, expressed as a
// half-open byte range into the OLD text being replaced by Text.
type Hunk struct {
	Start, End int
	Text       string
}

// textDiff computes the minimal set of hunks turning oldText into
// newText, via a Myers diff (spec.md §4.6, "text_diff"). Adjacent
// delete+insert pairs - the common case when only a few words on a
// line changed - are merged into a single replace hunk so EditResolver
// emits one anchor range per logical change rather than two.
func textDiff(oldText, newText string) []Hunk {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldText, newText, false)

	var hunks []Hunk
	pos := 0
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += len(d.Text)
		case diffmatchpatch.DiffDelete:
			start := pos
			pos += len(d.Text)
			end := pos
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				hunks = append(hunks, Hunk{Start: start, End: end, Text: diffs[i+1].Text})
				i++
			} else {
				hunks = append(hunks, Hunk{Start: start, End: end, Text: ""})
			}
		case diffmatchpatch.DiffInsert:
			hunks = append(hunks, Hunk{Start: pos, End: pos, Text: d.Text})
		}
	}
	return hunks
}

package xmledit

import (
	"context"
	"errors"
	"testing"
)

func TestResolveXMLEdits(t *testing.T) {
	bufferText := "one two three four\n" +
		"five six seven eight\n" +
		"nine ten eleven twelve\n" +
		"thirteen fourteen fifteen\n" +
		"sixteen seventeen eighteen\n"
	buffer := NewStringBuffer(bufferText)

	edits := "<edits path=\"root/file1\">\n" +
		"<old_text>\n" +
		"nine ten eleven twelve\n" +
		"</old_text>\n" +
		"<new_text>\n" +
		"nine TEN eleven twelve!\n" +
		"</new_text>\n" +
		"</edits>\n"

	lineTwoStart := buffer.PointToOffset(Point{Row: 1, Column: 0})
	contextRanges := []AnchorRange{
		{Start: buffer.AnchorBefore(lineTwoStart), End: MaxAnchor},
	}

	resultBuffer, resolved, err := ResolveXMLEdits(context.Background(), edits, func(path string) (BufferSnapshot, []AnchorRange, bool) {
		return buffer, contextRanges, true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resultBuffer != buffer {
		t.Fatal("expected the returned buffer to be the one supplied by getBuffer")
	}
	if len(resolved) != 2 {
		t.Fatalf("expected 2 hunks, got %d: %+v", len(resolved), resolved)
	}

	wantTexts := []string{"TEN", "!"}
	for i, e := range resolved {
		if e.Text != wantTexts[i] {
			t.Fatalf("hunk %d text = %q, want %q", i, e.Text, wantTexts[i])
		}
	}
}

func TestResolveXMLEditsNoBuffer(t *testing.T) {
	edits := "<edits path=\"missing.rs\">\n<old_text>\nx\n</old_text>\n<new_text>\ny\n</new_text>\n</edits>\n"

	_, _, err := ResolveXMLEdits(context.Background(), edits, func(path string) (BufferSnapshot, []AnchorRange, bool) {
		return nil, nil, false
	})
	if err == nil {
		t.Fatal("expected an error when no buffer is found for the path")
	}
}

func TestResolveXMLEditsAmbiguousMatch(t *testing.T) {
	bufferText := "alpha\nbeta\nalpha\nbeta\n"
	buffer := NewStringBuffer(bufferText)

	edits := "<edits path=\"f\">\n<old_text>\nalpha\nbeta\n</old_text>\n<new_text>\nx\n</new_text>\n</edits>\n"

	contextRanges := []AnchorRange{
		{Start: buffer.AnchorBefore(0), End: buffer.AnchorBefore(buffer.PointToOffset(Point{Row: 2, Column: 0}))},
		{Start: buffer.AnchorBefore(buffer.PointToOffset(Point{Row: 2, Column: 0})), End: MaxAnchor},
	}

	_, _, err := ResolveXMLEdits(context.Background(), edits, func(path string) (BufferSnapshot, []AnchorRange, bool) {
		return buffer, contextRanges, true
	})
	if err == nil {
		t.Fatal("expected an ambiguous-match error for two identical candidate ranges")
	}

	var ambiguous *AmbiguousMatchError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected *AmbiguousMatchError, got %T: %v", err, err)
	}
	for i, r := range ambiguous.Ranges {
		if r.Start == (Anchor{}) && r.End == (Anchor{}) {
			t.Fatalf("candidate range %d is unpopulated", i)
		}
	}
	if ambiguous.Ranges[0] == ambiguous.Ranges[1] {
		t.Fatal("expected the two candidate ranges to be distinct")
	}
}

func TestResolveAllXMLEditsAggregatesErrors(t *testing.T) {
	good := "<edits path=\"f\">\n<old_text>\nhello\n</old_text>\n<new_text>\nworld\n</new_text>\n</edits>\n"
	bad := "not xml at all"

	buffer := NewStringBuffer("hello\n")
	contextRanges := []AnchorRange{{Start: buffer.AnchorBefore(0), End: MaxAnchor}}

	results, err := ResolveAllXMLEdits(context.Background(),
		[]Document{{Name: "good", Input: good}, {Name: "bad", Input: bad}},
		func(path string) (BufferSnapshot, []AnchorRange, bool) { return buffer, contextRanges, true },
	)
	if err == nil {
		t.Fatal("expected an aggregate error for the malformed document")
	}
	if len(results) != 1 || results[0].Name != "good" {
		t.Fatalf("expected one successful result for 'good', got %+v", results)
	}
}

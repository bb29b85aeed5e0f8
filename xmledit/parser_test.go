package xmledit

import (
	"errors"
	"testing"
)

func TestExtractXMLEdits(t *testing.T) {
	input := "<edits path=\"test.rs\">\n<old_text>\nold content\n</old_text>\n<new_text>\nnew content\n</new_text>\n</edits>\n"

	result, err := ExtractXMLReplacements(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FilePath != "test.rs" {
		t.Fatalf("file path = %q, want %q", result.FilePath, "test.rs")
	}
	if len(result.Replacements) != 1 {
		t.Fatalf("expected 1 replacement, got %d", len(result.Replacements))
	}
	if result.Replacements[0].OldText != "old content" || result.Replacements[0].NewText != "new content" {
		t.Fatalf("unexpected replacement: %+v", result.Replacements[0])
	}
}

func TestExtractXMLEditsWithWrongClosingTags(t *testing.T) {
	input := "<edits path=\"test.rs\">\n<old_text>\nold content\n</new_text>\n<new_text>\nnew content\n</old_text>\n</ edits >\n"

	result, err := ExtractXMLReplacements(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FilePath != "test.rs" {
		t.Fatalf("file path = %q, want %q", result.FilePath, "test.rs")
	}
	if len(result.Replacements) != 1 {
		t.Fatalf("expected 1 replacement, got %d", len(result.Replacements))
	}
	if result.Replacements[0].OldText != "old content" || result.Replacements[0].NewText != "new content" {
		t.Fatalf("unexpected replacement: %+v", result.Replacements[0])
	}
}

func TestExtractXMLEditsWithXMLLikeContent(t *testing.T) {
	input := "<edits path=\"component.tsx\">\n<old_text>\n<foo><bar></bar></foo>\n</old_text>\n<new_text>\n<foo><bar><baz></baz></bar></foo>\n</new_text>\n</edits>\n"

	result, err := ExtractXMLReplacements(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Replacements[0].OldText != "<foo><bar></bar></foo>" {
		t.Fatalf("old text = %q", result.Replacements[0].OldText)
	}
	if result.Replacements[0].NewText != "<foo><bar><baz></baz></bar></foo>" {
		t.Fatalf("new text = %q", result.Replacements[0].NewText)
	}
}

func TestExtractXMLEditsWithConflictingContent(t *testing.T) {
	input := "<edits path=\"component.tsx\">\n<old_text>\n<new_text></new_text>\n</old_text>\n<new_text>\n<old_text></old_text>\n</new_text>\n</edits>\n"

	result, err := ExtractXMLReplacements(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Replacements[0].OldText != "<new_text></new_text>" {
		t.Fatalf("old text = %q", result.Replacements[0].OldText)
	}
	if result.Replacements[0].NewText != "<old_text></old_text>" {
		t.Fatalf("new text = %q", result.Replacements[0].NewText)
	}
}

func TestExtractXMLEditsMultiplePairs(t *testing.T) {
	input := "Some reasoning before edits. Lots of thinking going on here\n\n" +
		"<edits path=\"test.rs\">\n" +
		"<old_text>\nfirst old\n</old_text>\n" +
		"<new_text>\nfirst new\n</new_text>\n" +
		"<old_text>\nsecond old\n</edits>\n" +
		"<new_text>\nsecond new\n</old_text>\n" +
		"</edits>\n"

	result, err := ExtractXMLReplacements(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FilePath != "test.rs" {
		t.Fatalf("file path = %q", result.FilePath)
	}
	if len(result.Replacements) != 2 {
		t.Fatalf("expected 2 replacements, got %d: %+v", len(result.Replacements), result.Replacements)
	}
	if result.Replacements[0] != (Replacement{OldText: "first old", NewText: "first new"}) {
		t.Fatalf("first replacement = %+v", result.Replacements[0])
	}
	if result.Replacements[1] != (Replacement{OldText: "second old", NewText: "second new"}) {
		t.Fatalf("second replacement = %+v", result.Replacements[1])
	}
}

func TestExtractXMLEditsUnexpectedEOF(t *testing.T) {
	input := "<edits path=\"test.rs\">\n<old_text>\nfirst old\n</\n"

	_, err := ExtractXMLReplacements(input)
	if err == nil {
		t.Fatal("expected an error for unterminated input")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if parseErr.Offset <= 0 {
		t.Fatalf("expected a positive byte offset into input, got %d", parseErr.Offset)
	}
}

func TestExtractXMLEditsMissingEditsTag(t *testing.T) {
	_, err := ExtractXMLReplacements("no tags here at all")
	if err == nil {
		t.Fatal("expected an error for missing edits tag")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if parseErr.Offset != 0 {
		t.Fatalf("expected offset 0 for a tag missing from the start, got %d", parseErr.Offset)
	}
}

func TestExtractXMLEditsMissingPathAttribute(t *testing.T) {
	input := "<edits>\n<old_text>\nx\n</old_text>\n<new_text>\ny\n</new_text>\n</edits>\n"
	_, err := ExtractXMLReplacements(input)
	if err == nil {
		t.Fatal("expected an error for missing path attribute")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if parseErr.Offset != 0 {
		t.Fatalf("expected offset to point at the <edits> tag, got %d", parseErr.Offset)
	}
}

package xmledit

import "fmt"

// ErrCancelled is returned when the caller's cancel.Token fires
// mid-resolution. It carries no per-call data, so it stays a plain
// sentinel.
var ErrCancelled = fmt.Errorf("resolution cancelled")

// ParseError reports a malformed <edits> block: which tag was expected
// or malformed, and the byte offset into the input where the parser
// detected the problem (spec.md §7).
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("xmledit: parse error at offset %d: %s", e.Offset, e.Message)
}

func missingEditsTagError(offset int) error {
	return &ParseError{Offset: offset, Message: "no edits tag found"}
}

func missingPathAttributeError(offset int) error {
	return &ParseError{Offset: offset, Message: "no path attribute on edits tag"}
}

func unterminatedTagError(offset int, tag string) error {
	if tag == "" {
		return &ParseError{Offset: offset, Message: "no closing tag found"}
	}
	return &ParseError{Offset: offset, Message: fmt.Sprintf("no closing tag found for <%s>", tag)}
}

func newTextWithoutOldTextError(offset int) error {
	return &ParseError{Offset: offset, Message: "no new_text tag following old_text"}
}

// NoBufferFoundError is returned when the caller-supplied lookup has no
// open buffer for an <edits> tag's path attribute.
type NoBufferFoundError struct {
	Path string
}

func (e *NoBufferFoundError) Error() string {
	return fmt.Sprintf("xmledit: no buffer found for path %q", e.Path)
}

// NoMatchError is returned when an old_text block cannot be fuzzily
// located in any of the supplied context ranges.
type NoMatchError struct {
	OldText string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("xmledit: no fuzzy match for old_text:\n%s", e.OldText)
}

// AmbiguousMatchError is returned when two or more candidate ranges tie
// for the lowest edit-distance cost against an old_text block.
type AmbiguousMatchError struct {
	Ranges [2]AnchorRange
}

func (e *AmbiguousMatchError) Error() string {
	return "xmledit: ambiguous match between two candidate ranges"
}

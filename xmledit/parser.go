package xmledit

import (
	"strings"
)

const (
	editsTagName   = "edits"
	oldTextTagName = "old_text"
	newTextTagName = "new_text"
)

var xmlTags = [...]string{editsTagName, oldTextTagName, newTextTagName}

func isRecognizedTag(name string) bool {
	for _, t := range xmlTags {
		if t == name {
			return true
		}
	}
	return false
}

// Replacement is one <old_text>/<new_text> pair extracted from an
// <edits> block.
type Replacement struct {
	OldText string
	NewText string
}

// ParsedEdits is the result of extracting an <edits path="..."> block
// from a model response, per spec.md §4.4.
type ParsedEdits struct {
	FilePath     string
	Replacements []Replacement
}

// ExtractXMLReplacements scans input for a single <edits path="...">
// block and the old_text/new_text pairs it contains. The parser is
// deliberately tolerant of malformed XML (spec.md §4.4): a closing tag
// is recognized by depth alone, not by whether its name matches the
// tag that opened the current depth level, so that a model swapping
// </old_text> and </new_text> still parses correctly.
func ExtractXMLReplacements(input string) (ParsedEdits, error) {
	cursor := 0

	editsTagStart, editsBodyStart, editsAttrs, found, err := findTagOpen(input, cursor, editsTagName)
	if err != nil {
		return ParsedEdits{}, err
	}
	if !found {
		return ParsedEdits{}, missingEditsTagError(cursor)
	}

	filePath, err := extractPathAttribute(editsAttrs, editsTagStart)
	if err != nil {
		return ParsedEdits{}, err
	}

	cursor = editsBodyStart
	var replacements []Replacement

	for {
		_, oldBodyStart, _, found, err := findTagOpen(input, cursor, oldTextTagName)
		if err != nil {
			return ParsedEdits{}, err
		}
		if !found {
			break
		}

		oldBodyEnd, next, err := findTagClose(input, oldBodyStart)
		if err != nil {
			return ParsedEdits{}, err
		}
		cursor = next
		oldText := trimSurroundingNewlines(input[oldBodyStart:oldBodyEnd])

		_, newBodyStart, _, found, err := findTagOpen(input, cursor, newTextTagName)
		if err != nil {
			return ParsedEdits{}, err
		}
		if !found {
			return ParsedEdits{}, newTextWithoutOldTextError(cursor)
		}

		newBodyEnd, next, err := findTagClose(input, newBodyStart)
		if err != nil {
			return ParsedEdits{}, err
		}
		cursor = next
		newText := trimSurroundingNewlines(input[newBodyStart:newBodyEnd])

		replacements = append(replacements, Replacement{OldText: oldText, NewText: newText})
	}

	return ParsedEdits{FilePath: filePath, Replacements: replacements}, nil
}

func extractPathAttribute(attrs string, tagOffset int) (string, error) {
	rest := strings.TrimLeft(attrs, " \t\r\n")
	rest = strings.TrimPrefix(rest, "path")
	if len(rest) == len(strings.TrimLeft(attrs, " \t\r\n")) {
		return "", missingPathAttributeError(tagOffset)
	}
	rest = strings.TrimRight(rest, " \t\r\n")
	if !strings.HasPrefix(rest, "=") {
		return "", missingPathAttributeError(tagOffset)
	}
	rest = strings.TrimPrefix(rest, "=")
	rest = strings.TrimSpace(rest)
	rest = strings.Trim(rest, `"`)
	return rest, nil
}

// trimSurroundingNewlines trims a single leading and trailing newline,
// the whitespace a model's own formatting puts around a text block.
func trimSurroundingNewlines(s string) string {
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")
	return s
}

// findTagOpen scans input from cursor for the next "<"+expectedTag,
// returning the tag's own start offset, the offset just past its
// closing ">", and the raw attribute text between the tag name and
// that bracket. found is false (with a nil error) if expectedTag never
// opens before the input ends.
func findTagOpen(input string, cursor int, expectedTag string) (tagStart, bodyStart int, attrs string, found bool, err error) {
	searchPos := cursor

	for searchPos < len(input) {
		rel := strings.IndexByte(input[searchPos:], '<')
		if rel < 0 {
			break
		}
		tagStart := searchPos + rel

		if !strings.HasPrefix(input[tagStart+1:], expectedTag) {
			searchPos = tagStart + 1
			continue
		}

		afterTagName := tagStart + len(expectedTag) + 1
		closeRel := strings.IndexByte(input[afterTagName:], '>')
		if closeRel < 0 {
			return 0, 0, "", false, unterminatedTagError(tagStart, expectedTag)
		}
		attrsEnd := afterTagName + closeRel
		body := attrsEnd + 1

		return tagStart, body, strings.TrimSpace(input[afterTagName:attrsEnd]), true, nil
	}

	return 0, 0, "", false, nil
}

// findTagClose scans forward from cursor for the closing tag matching
// the one most recently opened, tracking depth across ANY recognized
// tag in xmlTags regardless of its name — the tolerance that lets a
// model close <old_text> with </new_text> (or vice versa) and still
// have the block delimited correctly (spec.md §4.4, "Tolerant
// parsing"). Returns the offset of the opening "<" of the matching
// close tag, and the cursor position just past it.
func findTagClose(input string, cursor int) (bodyEnd, next int, err error) {
	depth := 1
	searchPos := cursor

	for searchPos < len(input) && depth > 0 {
		rel := strings.IndexByte(input[searchPos:], '<')
		if rel < 0 {
			break
		}
		bracketPos := searchPos + rel

		if strings.HasPrefix(input[bracketPos:], "</") {
			closeRel := strings.IndexByte(input[bracketPos+2:], '>')
			if closeRel < 0 {
				searchPos = bracketPos + 1
				continue
			}
			closeStart := bracketPos + 2
			tagName := strings.TrimSpace(input[closeStart : closeStart+closeRel])

			if isRecognizedTag(tagName) {
				depth--
				if depth == 0 {
					return bracketPos, closeStart + closeRel + 1, nil
				}
			}
			searchPos = closeStart + closeRel + 1
			continue
		}

		closeRel := strings.IndexByte(input[bracketPos:], '>')
		if closeRel >= 0 {
			tagName := strings.TrimSpace(input[bracketPos+1 : bracketPos+closeRel])
			if isRecognizedTag(tagName) {
				depth++
			}
		}

		searchPos = bracketPos + 1
	}

	return 0, 0, unterminatedTagError(cursor, "")
}

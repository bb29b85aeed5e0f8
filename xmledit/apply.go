package xmledit

import "sort"

// Apply splices edits into buffer's text and returns the result. Edits
// must not overlap; Apply panics if two ranges overlap, since that
// indicates a bug in how they were resolved rather than recoverable
// input.
func Apply(buffer BufferSnapshot, edits []Edit) string {
	sorted := append([]Edit(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool {
		return buffer.ToOffset(sorted[i].Range.Start) < buffer.ToOffset(sorted[j].Range.Start)
	})

	text := buffer.Text()
	var out []byte
	cursor := 0
	for _, e := range sorted {
		start := buffer.ToOffset(e.Range.Start)
		end := buffer.ToOffset(e.Range.End)
		if start < cursor {
			panic("xmledit: overlapping edits")
		}
		out = append(out, text[cursor:start]...)
		out = append(out, e.Text...)
		cursor = end
	}
	out = append(out, text[cursor:]...)
	return string(out)
}

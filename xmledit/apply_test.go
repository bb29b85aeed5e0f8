package xmledit

import "testing"

func TestApplySplicesEditsInOrder(t *testing.T) {
	buffer := NewStringBuffer("nine ten eleven twelve")
	edits := []Edit{
		{Range: AnchorRange{Start: buffer.AnchorAfter(5), End: buffer.AnchorBefore(8)}, Text: "TEN"},
		{Range: AnchorRange{Start: buffer.AnchorAfter(22), End: buffer.AnchorBefore(22)}, Text: "!"},
	}

	got := Apply(buffer, edits)
	want := "nine TEN eleven twelve!"
	if got != want {
		t.Fatalf("Apply() = %q, want %q", got, want)
	}
}

func TestApplyOverlappingEditsPanics(t *testing.T) {
	buffer := NewStringBuffer("abcdef")
	edits := []Edit{
		{Range: AnchorRange{Start: buffer.AnchorAfter(0), End: buffer.AnchorBefore(3)}, Text: "x"},
		{Range: AnchorRange{Start: buffer.AnchorAfter(1), End: buffer.AnchorBefore(4)}, Text: "y"},
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for overlapping edits")
		}
	}()
	Apply(buffer, edits)
}

package mdhtml

import (
	"strings"
	"testing"
)

func TestIntoHTMLAllocations(t *testing.T) {
	events := []Event{
		Start(Header(1)), Text("Title"), End(Header(1)),
		Start(Paragraph()), Text("body"), End(Paragraph()),
	}
	var buf strings.Builder
	buf.Grow(256)
	allocs := testing.AllocsPerRun(100, func() {
		buf.Reset()
		buf.Grow(256)
		_ = IntoHTML(NewContent(Events(events...)), &buf)
	})
	if allocs > 64 {
		t.Fatalf("too many allocations per IntoHTML: got %.2f", allocs)
	}
}

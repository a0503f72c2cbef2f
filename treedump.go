package mdhtml

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/truncate"
)

const dumpIndent = 2

// DumpOptions configures DumpTree.
type DumpOptions struct {
	// Width truncates each line to this many columns. Zero disables truncation.
	Width int
	// Color enables ANSI colors.
	Color bool
	// MaxDepth stops the dump with ErrNestingTooDeep when a block sits at
	// this depth. Zero disables the limit.
	MaxDepth int
}

type dumpPalette struct {
	block func(a ...any) string
	text  func(a ...any) string
	bad   func(a ...any) string
}

func newDumpPalette(enabled bool) dumpPalette {
	block := color.New(color.FgCyan, color.Bold)
	text := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)
	for _, c := range []*color.Color{block, text, bad} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return dumpPalette{
		block: block.SprintFunc(),
		text:  text.SprintFunc(),
		bad:   bad.SprintFunc(),
	}
}

// DumpTree writes an outline of content to w, one node per line, with
// children indented under their block. Leaves that IntoHTML would reject are
// highlighted but do not stop the dump. content is consumed by the call.
func DumpTree(w io.Writer, content *Content, opts DumpOptions) error {
	bw := bufio.NewWriter(w)
	d := &treeDumper{
		w:        bw,
		width:    opts.Width,
		maxDepth: opts.MaxDepth,
		palette:  newDumpPalette(opts.Color),
	}
	d.dump(content, 0)
	if d.err != nil {
		return fmt.Errorf("dump tree: %w", d.err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("dump tree: %w", err)
	}
	return nil
}

type treeDumper struct {
	w        *bufio.Writer
	width    int
	maxDepth int
	palette  dumpPalette
	err      error
}

func (d *treeDumper) dump(content *Content, depth int) {
	for node := range content.All() {
		if d.err != nil {
			return
		}
		switch n := node.(type) {
		case Block:
			if d.maxDepth > 0 && depth >= d.maxDepth {
				d.err = fmt.Errorf("%w: limit %d", ErrNestingTooDeep, d.maxDepth)
				return
			}
			d.line(depth, d.palette.block(n.Tag.String()))
			d.dump(n.Content, depth+1)
		case Item:
			if n.Event.Kind == EventText {
				d.line(depth, d.palette.text(strconv.Quote(n.Event.Text)))
			} else {
				d.line(depth, d.palette.bad("!"+n.Event.String()))
			}
		}
	}
}

func (d *treeDumper) line(depth int, s string) {
	if d.err != nil {
		return
	}
	s = indent.String(s, uint(depth*dumpIndent))
	if d.width > 0 {
		s = truncate.StringWithTail(s, uint(d.width), "…")
	}
	if _, err := d.w.WriteString(s); err != nil {
		d.err = err
		return
	}
	d.err = d.w.WriteByte('\n')
}

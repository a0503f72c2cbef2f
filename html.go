package mdhtml

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedTree reports a node the walker cannot render, such as a
	// non-text event at a leaf position.
	ErrMalformedTree = errors.New("malformed node tree")
	// ErrLeakedMarker reports a Start or End event that reached a leaf
	// position instead of being grouped into a Block.
	ErrLeakedMarker = errors.New("structural marker at leaf position")
	// ErrNestingTooDeep reports blocks nested beyond the configured limit.
	ErrNestingTooDeep = errors.New("block nesting too deep")
)

// MalformedNodeError describes the leaf that stopped a render. It matches
// ErrMalformedTree with errors.Is, and also ErrLeakedMarker when the event
// is a Start or End marker.
type MalformedNodeError struct {
	Event Event
	Depth int
}

func (e *MalformedNodeError) Error() string {
	if e.Event.isMarker() {
		return fmt.Sprintf("%s: %s at depth %d", ErrLeakedMarker, e.Event, e.Depth)
	}
	return fmt.Sprintf("%s: unexpected %s at depth %d", ErrMalformedTree, e.Event, e.Depth)
}

func (e *MalformedNodeError) Is(target error) bool {
	switch target {
	case ErrMalformedTree:
		return true
	case ErrLeakedMarker:
		return e.Event.isMarker()
	}
	return false
}

// renderContext is the transient state of one IntoHTML call.
type renderContext struct {
	mode     tagMode
	depth    int
	maxDepth int
}

// IntoHTML renders every node of content, in order, by appending to buf.
// Paragraph and header blocks become <p> and <hN> elements, each followed by
// a newline; other block kinds render only their content and the newline.
// Text is appended verbatim.
//
// A leaf holding anything other than text stops the render at once with a
// *MalformedNodeError. Output appended before that point stays in buf.
// content is consumed by the call.
func IntoHTML(content *Content, buf *strings.Builder, opts ...RenderOption) error {
	cfg := newRenderConfig(opts)
	ctx := &renderContext{maxDepth: cfg.maxDepth}
	return ctx.renderContent(content, buf)
}

// MustIntoHTML is like IntoHTML but panics on a malformed tree.
func MustIntoHTML(content *Content, buf *strings.Builder, opts ...RenderOption) {
	if err := IntoHTML(content, buf, opts...); err != nil {
		panic(err)
	}
}

func (ctx *renderContext) renderContent(content *Content, buf *strings.Builder) error {
	for node := range content.All() {
		if err := ctx.renderNode(node, buf); err != nil {
			return err
		}
	}
	return nil
}

func (ctx *renderContext) renderNode(node Node, buf *strings.Builder) error {
	switch n := node.(type) {
	case Block:
		return ctx.renderBlock(n, buf)
	case Item:
		return ctx.renderItem(n.Event, buf)
	default:
		return fmt.Errorf("%w: nil node at depth %d", ErrMalformedTree, ctx.depth)
	}
}

func (ctx *renderContext) renderBlock(b Block, buf *strings.Builder) error {
	if ctx.maxDepth > 0 && ctx.depth >= ctx.maxDepth {
		return fmt.Errorf("%w: limit %d", ErrNestingTooDeep, ctx.maxDepth)
	}
	ctx.mode = modeOpening
	renderBlockTag(buf, b.Tag, ctx.mode)

	ctx.mode = modeNeutral
	ctx.depth++
	err := ctx.renderContent(b.Content, buf)
	ctx.depth--
	if err != nil {
		return err
	}

	ctx.mode = modeClosing
	renderBlockTag(buf, b.Tag, ctx.mode)
	buf.WriteByte('\n')
	ctx.mode = modeNeutral
	return nil
}

func (ctx *renderContext) renderItem(ev Event, buf *strings.Builder) error {
	if ctx.mode != modeNeutral {
		panic(fmt.Sprintf("mdhtml: leaf rendered in %s mode", ctx.mode))
	}
	switch ev.Kind {
	case EventText:
		buf.WriteString(ev.Text)
		return nil
	default:
		// Markers and every other inline kind are upstream bugs; never skip them.
		return &MalformedNodeError{Event: ev, Depth: ctx.depth}
	}
}

package mdhtml

import "iter"

// Node is one element of the document tree. It is either a Block or an Item;
// no other implementations exist.
type Node interface {
	isNode()
}

// Block is a block-level element with a tag and ordered child content.
// A nil Content is an empty block.
type Block struct {
	Tag     Tag
	Content *Content
}

// Item is a leaf carrying a single inline event.
type Item struct {
	Event Event
}

func (Block) isNode() {}
func (Item) isNode()  {}

// Content is a lazy, single-pass sequence of nodes. Once exhausted it stays
// exhausted; to walk a document again, build a new Content from its events.
type Content struct {
	next func() (Node, bool)
	done bool
}

// Next returns the next node, or false once the sequence is exhausted.
func (c *Content) Next() (Node, bool) {
	if c == nil || c.done || c.next == nil {
		return nil, false
	}
	n, ok := c.next()
	if !ok {
		c.done = true
		c.next = nil
	}
	return n, ok
}

// All returns an iterator over the remaining nodes.
func (c *Content) All() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for {
			n, ok := c.Next()
			if !ok || !yield(n) {
				return
			}
		}
	}
}

func (c *Content) drain() {
	for {
		if _, ok := c.Next(); !ok {
			return
		}
	}
}

// Nodes returns a Content yielding the given nodes in order.
func Nodes(nodes ...Node) *Content {
	i := 0
	return &Content{next: func() (Node, bool) {
		if i >= len(nodes) {
			return nil, false
		}
		n := nodes[i]
		i++
		return n, true
	}}
}

// NewContent groups a flat event stream into nodes. A Start event opens a
// Block whose Content runs up to the matching End; an End that does not close
// the enclosing block is passed through as an Item, as is every non-marker
// event. Child content left unread is skipped when the parent advances.
func NewContent(src EventSource) *Content {
	b := &builder{src: src}
	return b.content(nil)
}

type builder struct {
	src EventSource
}

func (b *builder) content(end *Tag) *Content {
	var open *Content
	return &Content{next: func() (Node, bool) {
		if open != nil {
			open.drain()
			open = nil
		}
		ev, ok := b.src.Next()
		if !ok {
			return nil, false
		}
		switch ev.Kind {
		case EventStart:
			tag := ev.Tag
			open = b.content(&tag)
			return Block{Tag: tag, Content: open}, true
		case EventEnd:
			if end != nil && ev.Tag == *end {
				return nil, false
			}
		}
		return Item{Event: ev}, true
	}}
}

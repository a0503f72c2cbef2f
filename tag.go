package mdhtml

import (
	"strconv"
	"strings"
)

// tagMode records whether the walker is emitting an opening tag, a closing
// tag, or neither.
type tagMode uint8

const (
	modeNeutral tagMode = iota
	modeOpening
	modeClosing
)

func (m tagMode) String() string {
	switch m {
	case modeOpening:
		return "opening"
	case modeClosing:
		return "closing"
	default:
		return "neutral"
	}
}

var headerNames = [...]string{"h0", "h1", "h2", "h3", "h4", "h5", "h6"}

// tagName maps a block tag to its HTML element name. Header levels are not
// range checked: Header(9) becomes "h9" and Header(-1) becomes "h-1".
// Kinds without an HTML element report false.
func tagName(tag Tag) (string, bool) {
	switch tag.Kind {
	case TagParagraph:
		return "p", true
	case TagHeader:
		if tag.Level >= 0 && tag.Level < len(headerNames) {
			return headerNames[tag.Level], true
		}
		return "h" + strconv.Itoa(tag.Level), true
	default:
		return "", false
	}
}

// renderTag appends <name> or </name> to buf. Any mode other than closing
// renders the opening form.
func renderTag(buf *strings.Builder, name string, mode tagMode) {
	buf.WriteByte('<')
	if mode == modeClosing {
		buf.WriteByte('/')
	}
	buf.WriteString(name)
	buf.WriteByte('>')
}

// renderBlockTag renders tag in the given mode. Unknown kinds emit nothing.
func renderBlockTag(buf *strings.Builder, tag Tag, mode tagMode) {
	name, ok := tagName(tag)
	if !ok {
		return
	}
	renderTag(buf, name, mode)
}

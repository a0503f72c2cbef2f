package mdhtml

import (
	"fmt"
	"strconv"
)

// TagKind identifies the semantic kind of a block or span.
type TagKind uint8

const (
	// TagParagraph is a paragraph block.
	TagParagraph TagKind = iota
	// TagHeader is a header block; Tag.Level carries its level.
	TagHeader
	// TagBlockQuote is a block quote.
	TagBlockQuote
	// TagCodeBlock is a fenced or indented code block; Tag.Info carries the info string.
	TagCodeBlock
	// TagList is an ordered or unordered list.
	TagList
	// TagItem is a list item.
	TagItem
	// TagEmphasis is an emphasis span.
	TagEmphasis
	// TagStrong is a strong emphasis span.
	TagStrong
	// TagLink is a link span.
	TagLink
	// TagImage is an image span.
	TagImage
	// TagTable is a table.
	TagTable
)

var tagKindNames = [...]string{
	TagParagraph:  "Paragraph",
	TagHeader:     "Header",
	TagBlockQuote: "BlockQuote",
	TagCodeBlock:  "CodeBlock",
	TagList:       "List",
	TagItem:       "Item",
	TagEmphasis:   "Emphasis",
	TagStrong:     "Strong",
	TagLink:       "Link",
	TagImage:      "Image",
	TagTable:      "Table",
}

func (k TagKind) String() string {
	if int(k) < len(tagKindNames) {
		return tagKindNames[k]
	}
	return "TagKind(" + strconv.Itoa(int(k)) + ")"
}

// Tag is the identity of a block. Two tags are equal when all fields match.
type Tag struct {
	Kind  TagKind
	Level int
	Info  string
}

// Paragraph returns the paragraph tag.
func Paragraph() Tag { return Tag{Kind: TagParagraph} }

// Header returns a header tag of the given level. The level is not validated.
func Header(level int) Tag { return Tag{Kind: TagHeader, Level: level} }

// BlockQuote returns the block quote tag.
func BlockQuote() Tag { return Tag{Kind: TagBlockQuote} }

// CodeBlock returns a code block tag with an optional info string.
func CodeBlock(info string) Tag { return Tag{Kind: TagCodeBlock, Info: info} }

func (t Tag) String() string {
	switch t.Kind {
	case TagHeader:
		return "Header(" + strconv.Itoa(t.Level) + ")"
	case TagCodeBlock:
		if t.Info != "" {
			return "CodeBlock(" + strconv.Quote(t.Info) + ")"
		}
	}
	return t.Kind.String()
}

// EventKind identifies the kind of an Event.
type EventKind uint8

const (
	// EventStart opens a tag.
	EventStart EventKind = iota
	// EventEnd closes a tag.
	EventEnd
	// EventText is literal text.
	EventText
	// EventCode is an inline code span.
	EventCode
	// EventHTML is raw inline or block HTML.
	EventHTML
	// EventSoftBreak is a soft line break.
	EventSoftBreak
	// EventHardBreak is a hard line break.
	EventHardBreak
	// EventRule is a thematic break.
	EventRule
	// EventFootnoteReference references a footnote by label.
	EventFootnoteReference
)

var eventKindNames = [...]string{
	EventStart:             "Start",
	EventEnd:               "End",
	EventText:              "Text",
	EventCode:              "Code",
	EventHTML:              "HTML",
	EventSoftBreak:         "SoftBreak",
	EventHardBreak:         "HardBreak",
	EventRule:              "Rule",
	EventFootnoteReference: "FootnoteReference",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "EventKind(" + strconv.Itoa(int(k)) + ")"
}

// Event is one unit of the flat markup stream produced by a markdown front end.
// Tag is set for Start and End; Text is set for Text, Code, HTML and
// FootnoteReference.
type Event struct {
	Kind EventKind
	Tag  Tag
	Text string
}

// Start returns an event opening tag.
func Start(tag Tag) Event { return Event{Kind: EventStart, Tag: tag} }

// End returns an event closing tag.
func End(tag Tag) Event { return Event{Kind: EventEnd, Tag: tag} }

// Text returns a literal text event.
func Text(s string) Event { return Event{Kind: EventText, Text: s} }

// Code returns an inline code event.
func Code(s string) Event { return Event{Kind: EventCode, Text: s} }

// HTML returns a raw HTML event.
func HTML(s string) Event { return Event{Kind: EventHTML, Text: s} }

// SoftBreak returns a soft break event.
func SoftBreak() Event { return Event{Kind: EventSoftBreak} }

// HardBreak returns a hard break event.
func HardBreak() Event { return Event{Kind: EventHardBreak} }

// Rule returns a thematic break event.
func Rule() Event { return Event{Kind: EventRule} }

func (e Event) String() string {
	switch e.Kind {
	case EventStart, EventEnd:
		return e.Kind.String() + "(" + e.Tag.String() + ")"
	case EventText, EventCode, EventHTML, EventFootnoteReference:
		return fmt.Sprintf("%s(%q)", e.Kind, e.Text)
	default:
		return e.Kind.String()
	}
}

// isMarker reports whether the event is a structural Start or End marker.
func (e Event) isMarker() bool {
	return e.Kind == EventStart || e.Kind == EventEnd
}

// EventSource yields events in document order. Next returns false once the
// source is exhausted.
type EventSource interface {
	Next() (Event, bool)
}

type sliceSource struct {
	events []Event
	pos    int
}

func (s *sliceSource) Next() (Event, bool) {
	if s.pos >= len(s.events) {
		return Event{}, false
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, true
}

// Events returns an EventSource over a fixed event list.
func Events(events ...Event) EventSource {
	return &sliceSource{events: events}
}

// Package posttext extracts plain-text post bodies from forum page markup.
//
// A Filter consumes markup events in document order and writes the text of
// post bodies to a sink. Quotes, citations, attachments, strikethrough,
// spoilers, code boxes and code labels are dropped or kept according to
// Options. Line breaks become newlines and emoticon images become their alt
// text surrounded by spaces, so the output tokenizes cleanly for word-level
// statistics.
package posttext

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// noDepth marks a region that is not active.
const noDepth = math.MinInt

// placeholderAlt is the alt text forums put on posted pictures, as opposed to emoticons.
const placeholderAlt = "Image"

// Options selects which optional regions contribute text.
type Options struct {
	IncludeQuotes        bool
	IncludeStrikethrough bool
	IncludeSpoilers      bool
	IncludeCode          bool
	IncludeSmileys       bool
}

// DefaultOptions keeps spoilers and smileys and drops quotes, strikethrough and code.
func DefaultOptions() Options {
	return Options{
		IncludeSpoilers: true,
		IncludeSmileys:  true,
	}
}

// Filter tracks the regions of one page of markup. Each region field holds
// the depth at which the region opened, or noDepth. A Filter must not be
// reused across pages.
type Filter struct {
	w    io.Writer
	opts Options

	depth          int
	content        int
	cite           int
	quote          int
	attachment     int
	strike         int
	spoilerHeader  int
	spoilerBody    int
	definitionTerm int
	codeBox        int
}

// New creates a filter writing post text to w.
func New(w io.Writer, opts Options) *Filter {
	return &Filter{
		w:              w,
		opts:           opts,
		content:        noDepth,
		cite:           noDepth,
		quote:          noDepth,
		attachment:     noDepth,
		strike:         noDepth,
		spoilerHeader:  noDepth,
		spoilerBody:    noDepth,
		definitionTerm: noDepth,
		codeBox:        noDepth,
	}
}

// Depth returns the current nesting depth.
func (f *Filter) Depth() int {
	return f.depth
}

// Emitting reports whether text at the current position is written.
func (f *Filter) Emitting() bool {
	return f.content != noDepth &&
		f.cite == noDepth &&
		(f.quote == noDepth || f.opts.IncludeQuotes) &&
		f.attachment == noDepth &&
		(f.strike == noDepth || f.opts.IncludeStrikethrough) &&
		f.spoilerHeader == noDepth &&
		(f.spoilerBody == noDepth || f.opts.IncludeSpoilers) &&
		f.definitionTerm == noDepth &&
		(f.codeBox == noDepth || f.opts.IncludeCode)
}

// Process feeds events to the filter in order and stops at the first error.
func (f *Filter) Process(events []Event) error {
	for i, ev := range events {
		if err := f.Handle(ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", i, ev.Type, err)
		}
	}
	return nil
}

// Handle dispatches a single event.
func (f *Filter) Handle(ev Event) error {
	switch ev.Type {
	case EventOpen:
		return f.Open(ev.Tag, ev.Attrs)
	case EventClose:
		return f.Close(ev.Tag)
	case EventText:
		return f.Text(ev.Data)
	case EventEntityRef:
		return f.EntityRef(ev.Data)
	case EventCharRef:
		return f.CharRef(ev.Data)
	default:
		return fmt.Errorf("unknown event type %d", ev.Type)
	}
}

// Open handles an open tag. Tag names are expected in lower case.
func (f *Filter) Open(tag string, attrs []Attr) error {
	f.depth++
	class, _ := lookupAttr(attrs, "class")

	if f.content == noDepth {
		if hasClass(class, "content") {
			f.content = f.depth
		}
		return nil
	}

	switch {
	case tag == "blockquote":
		if f.Emitting() {
			if err := f.write("\n"); err != nil {
				return err
			}
		}
		if f.quote == noDepth {
			f.quote = f.depth
		}
	case tag == "cite":
		f.cite = f.depth
	case tag == "sup" || tag == "sub":
		// keeps super/subscripts from gluing onto the neighbouring word
		return f.writeIfEmitting(" ")
	case tag == "br":
		return f.writeIfEmitting("\n")
	case tag == "dt":
		f.definitionTerm = f.depth
	case tag == "s" || tag == "strike":
		if f.strike == noDepth {
			f.strike = f.depth
		}
	case strings.Contains(class, "inline-attachment"):
		f.attachment = f.depth
	case strings.Contains(class, "quotetitle"):
		f.spoilerHeader = f.depth
	case strings.Contains(class, "quotecontent"):
		f.spoilerBody = f.depth
	case strings.Contains(class, "codebox"):
		f.codeBox = f.depth
	case tag == "img":
		return f.image(tag, attrs)
	}
	return nil
}

// image replaces an image with its alt text when it is an emoticon and with
// a single space otherwise.
func (f *Filter) image(tag string, attrs []Attr) error {
	if !f.Emitting() {
		return nil
	}
	alt, ok := lookupAttr(attrs, "alt")
	if !ok {
		return &MissingAttrError{Tag: tag, Attr: "alt"}
	}
	if alt != placeholderAlt && f.opts.IncludeSmileys {
		return f.write(" " + alt + " ")
	}
	return f.write(" ")
}

// Close handles a close tag.
func (f *Filter) Close(tag string) error {
	if tag == "sup" || tag == "sub" {
		if err := f.writeIfEmitting(" "); err != nil {
			return err
		}
	}

	if f.content == f.depth {
		if !f.Emitting() {
			return fmt.Errorf("%w at depth %d", ErrUnbalancedPost, f.depth)
		}
		if err := f.write("\n"); err != nil {
			return err
		}
		f.content = noDepth
	}

	for _, region := range []*int{
		&f.cite,
		&f.quote,
		&f.attachment,
		&f.strike,
		&f.spoilerHeader,
		&f.spoilerBody,
		&f.definitionTerm,
		&f.codeBox,
	} {
		if *region == f.depth {
			*region = noDepth
		}
	}

	f.depth--
	return nil
}

// Text handles a run of character data.
func (f *Filter) Text(data string) error {
	return f.writeIfEmitting(data)
}

// EntityRef handles a named entity reference such as "amp" or "eacute".
func (f *Filter) EntityRef(name string) error {
	if !f.Emitting() {
		return nil
	}
	s, err := resolveEntity(name)
	if err != nil {
		return err
	}
	return f.write(s)
}

// CharRef handles a numeric character reference. ref is the part between
// "&#" and ";", either decimal ("233") or hex with an x prefix ("xE9").
func (f *Filter) CharRef(ref string) error {
	if !f.Emitting() {
		return nil
	}
	r, err := parseCharRef(ref)
	if err != nil {
		return err
	}
	return f.write(string(r))
}

func (f *Filter) writeIfEmitting(s string) error {
	if !f.Emitting() {
		return nil
	}
	return f.write(s)
}

func (f *Filter) write(s string) error {
	_, err := io.WriteString(f.w, s)
	return err
}

// hasClass reports whether the space separated class list contains name.
func hasClass(class, name string) bool {
	for _, c := range strings.Fields(class) {
		if c == name {
			return true
		}
	}
	return false
}

// resolveEntity maps an entity name to its text using the HTML5 entity table.
func resolveEntity(name string) (string, error) {
	if name == "" {
		return "", &UnknownEntityError{Name: name}
	}
	ref := "&" + name + ";"
	s := html.UnescapeString(ref)
	// A partial match ("&ampx;" -> "&x;") leaves the tail of the name behind,
	// so anything longer than the two runes of the widest entity is a miss.
	if s == ref || utf8.RuneCountInString(s) > 2 {
		return "", &UnknownEntityError{Name: name}
	}
	return s, nil
}

func parseCharRef(ref string) (rune, error) {
	var (
		n   int64
		err error
	)
	if len(ref) > 0 && (ref[0] == 'x' || ref[0] == 'X') {
		n, err = strconv.ParseInt(ref[1:], 16, 32)
	} else {
		n, err = strconv.ParseInt(ref, 10, 32)
	}
	if err != nil {
		return 0, &CharRefError{Ref: ref, Err: err}
	}
	r := rune(n)
	if !utf8.ValidRune(r) {
		return 0, &CharRefError{Ref: ref, Err: fmt.Errorf("code point %d out of range", n)}
	}
	return r, nil
}

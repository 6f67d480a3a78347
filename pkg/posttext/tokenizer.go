// tokenizer.go turns HTML into filter events with the x/net/html tokenizer.
package posttext

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"golang.org/x/net/html"
)

// refPattern matches character references inside raw text. Numeric references
// may omit the semicolon as browsers allow; named ones must carry it so that a
// bare ampersand ("AT&T") stays plain text.
var refPattern = regexp.MustCompile(`&(?:#([0-9]+|[xX][0-9a-fA-F]+);?|([a-zA-Z][a-zA-Z0-9]*);)`)

// voidElements never have content. Their start tags are closed immediately
// and stray end tags for them are ignored, so "<br>" and "<br/>" nest alike.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Stream tokenizes r and feeds every event to f as soon as it is read.
// Tokenizer errors other than io.EOF and filter errors stop the stream; the
// returned error carries the byte offset of the offending token.
func Stream(r io.Reader, f *Filter) error {
	return scan(r, f.Handle)
}

// Tokenize reads all of r and returns its events.
func Tokenize(r io.Reader) ([]Event, error) {
	var events []Event
	err := scan(r, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Extract filters the HTML page read from r and writes the post text to w.
func Extract(r io.Reader, w io.Writer, opts Options) error {
	return Stream(r, New(w, opts))
}

func scan(r io.Reader, emit func(Event) error) error {
	z := html.NewTokenizer(r)
	offset := 0

	for {
		tt := z.Next()
		raw := z.Raw()
		pos := offset
		offset += len(raw)

		var err error
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return nil
			}
			return fmt.Errorf("tokenize at offset %d: %w", pos, z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			var attrs []Attr
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				attrs = append(attrs, Attr{Key: string(key), Val: string(val)})
			}
			err = emit(Open(tag, attrs...))
			if err == nil && (tt == html.SelfClosingTagToken || voidElements[tag]) {
				err = emit(Close(tag))
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if voidElements[tag] {
				continue
			}
			err = emit(Close(tag))

		case html.TextToken:
			err = splitText(string(raw), emit)

		default:
			// comments and doctypes carry no post text
		}

		if err != nil {
			return fmt.Errorf("offset %d: %w", pos, err)
		}
	}
}

// splitText emits the text runs and character references of raw in order.
func splitText(raw string, emit func(Event) error) error {
	last := 0
	for _, m := range refPattern.FindAllStringSubmatchIndex(raw, -1) {
		if m[0] > last {
			if err := emit(Text(raw[last:m[0]])); err != nil {
				return err
			}
		}

		var ev Event
		if m[2] >= 0 {
			ev = CharRef(raw[m[2]:m[3]])
		} else {
			ev = EntityRef(raw[m[4]:m[5]])
		}
		if err := emit(ev); err != nil {
			return err
		}
		last = m[1]
	}

	if last < len(raw) {
		return emit(Text(raw[last:]))
	}
	return nil
}

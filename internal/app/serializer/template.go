package serializer

import (
	"fmt"
	"strings"

	"streamtiff/internal/domain"
)

// prefixTemplate is a parsed file-prefix template. Recognized
// placeholders: {start[key]}, {descriptor[key]}, {event[key]},
// {stream_name} and {field}. Parsing happens at construction so a
// malformed template fails before any document is consumed; resolution
// happens at first use, once the referenced documents exist.
type prefixTemplate struct {
	raw  string
	segs []segment
}

type segment struct {
	lit  string // literal text, empty for placeholders
	name string // placeholder name
	key  string // subscript, empty for {stream_name}/{field}
}

func parsePrefix(raw string) (*prefixTemplate, error) {
	t := &prefixTemplate{raw: raw}
	rest := raw
	for len(rest) > 0 {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			t.segs = append(t.segs, segment{lit: rest})
			break
		}
		if open > 0 {
			t.segs = append(t.segs, segment{lit: rest[:open]})
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return nil, fmt.Errorf("%w: unclosed placeholder in %q", ErrBadTemplate, raw)
		}
		body := rest[open+1 : open+closing]
		seg, err := parsePlaceholder(body, raw)
		if err != nil {
			return nil, err
		}
		t.segs = append(t.segs, seg)
		rest = rest[open+closing+1:]
	}
	return t, nil
}

func parsePlaceholder(body, raw string) (segment, error) {
	name, key := body, ""
	if i := strings.IndexByte(body, '['); i >= 0 {
		if !strings.HasSuffix(body, "]") {
			return segment{}, fmt.Errorf("%w: malformed subscript in %q", ErrBadTemplate, raw)
		}
		name, key = body[:i], body[i+1:len(body)-1]
	}
	switch name {
	case "start", "descriptor", "event":
		if key == "" {
			return segment{}, fmt.Errorf("%w: %q requires a subscript, as in {%s[uid]}", ErrBadTemplate, name, name)
		}
	case "stream_name", "field":
		if key != "" {
			return segment{}, fmt.Errorf("%w: %q takes no subscript", ErrBadTemplate, name)
		}
	default:
		return segment{}, fmt.Errorf("%w: unknown placeholder %q", ErrBadTemplate, name)
	}
	return segment{name: name, key: key}, nil
}

// templateContext carries the documents a placeholder may reference at
// the moment an artifact is named.
type templateContext struct {
	start      *domain.RunStart
	descriptor *domain.Descriptor
	event      *domain.Event
	stream     string
	field      string
}

func (t *prefixTemplate) render(ctx templateContext) (string, error) {
	var b strings.Builder
	for _, seg := range t.segs {
		if seg.name == "" {
			b.WriteString(seg.lit)
			continue
		}
		v, err := resolve(seg, ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

func resolve(seg segment, ctx templateContext) (string, error) {
	switch seg.name {
	case "start":
		if ctx.start != nil {
			if v, ok := ctx.start.Field(seg.key); ok {
				return v, nil
			}
		}
	case "descriptor":
		if ctx.descriptor != nil {
			if v, ok := ctx.descriptor.Field(seg.key); ok {
				return v, nil
			}
		}
	case "event":
		if ctx.event != nil {
			if v, ok := ctx.event.Field(seg.key); ok {
				return v, nil
			}
		}
	case "stream_name":
		if ctx.stream != "" {
			return ctx.stream, nil
		}
	case "field":
		if ctx.field != "" {
			return ctx.field, nil
		}
	}
	if seg.key != "" {
		return "", fmt.Errorf("%w: cannot resolve {%s[%s]}", ErrBadTemplate, seg.name, seg.key)
	}
	return "", fmt.Errorf("%w: cannot resolve {%s}", ErrBadTemplate, seg.name)
}

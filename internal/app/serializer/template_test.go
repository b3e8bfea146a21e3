package serializer

import (
	"errors"
	"testing"

	"streamtiff/internal/domain"
)

func TestParsePrefixAndRender(t *testing.T) {
	tpl, err := parsePrefix("{start[plan_name]}-{stream_name}-{field}-")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got, err := tpl.render(templateContext{
		start:  &domain.RunStart{Extra: map[string]any{"plan_name": "scan"}},
		stream: "primary",
		field:  "img",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "scan-primary-img-" {
		t.Fatalf("rendered %q", got)
	}
}

func TestRenderDescriptorAndEvent(t *testing.T) {
	tpl, err := parsePrefix("{descriptor[name]}_{event[seq_num]}_")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got, err := tpl.render(templateContext{
		descriptor: &domain.Descriptor{Name: "baseline"},
		event:      &domain.Event{SeqNum: 4},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "baseline_4_" {
		t.Fatalf("rendered %q", got)
	}
}

func TestParsePrefixErrors(t *testing.T) {
	cases := []string{
		"{start[uid]",      // unclosed
		"{start}",          // missing subscript
		"{stream_name[x]}", // unexpected subscript
		"{wibble}",         // unknown placeholder
		"{start[uid}",      // malformed subscript
	}
	for _, raw := range cases {
		if _, err := parsePrefix(raw); !errors.Is(err, ErrBadTemplate) {
			t.Fatalf("parsePrefix(%q) = %v, want ErrBadTemplate", raw, err)
		}
	}
}

func TestRenderUnresolvable(t *testing.T) {
	tpl, err := parsePrefix("{start[missing]}-")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = tpl.render(templateContext{start: &domain.RunStart{UID: "u"}})
	if !errors.Is(err, ErrBadTemplate) {
		t.Fatalf("expected ErrBadTemplate, got %v", err)
	}

	tpl, err = parsePrefix("{stream_name}-")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := tpl.render(templateContext{start: &domain.RunStart{}}); !errors.Is(err, ErrBadTemplate) {
		t.Fatalf("expected ErrBadTemplate for missing stream, got %v", err)
	}
}

func TestLiteralOnlyPrefix(t *testing.T) {
	tpl, err := parsePrefix("fixed-")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := tpl.render(templateContext{})
	if err != nil || got != "fixed-" {
		t.Fatalf("render = %q, %v", got, err)
	}
}

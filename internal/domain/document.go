// Package domain holds the document model for one experiment run: the
// start/stop envelope, per-stream descriptors, and the event forms that
// carry sensor readings. Documents arrive as JSON mappings; each type
// keeps unrecognized top-level keys in an Extra map so that file-prefix
// templating and the metadata sidecar see the full document.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind classifies a document within a run's stream.
type Kind string

const (
	KindStart      Kind = "start"
	KindDescriptor Kind = "descriptor"
	KindEvent      Kind = "event"
	KindEventPage  Kind = "event_page"
	KindBulkEvent  Kind = "bulk_event"
	KindStop       Kind = "stop"
)

// ParseKind converts the wire name of a document kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindStart, KindDescriptor, KindEvent, KindEventPage, KindBulkEvent, KindStop:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown document kind %q", s)
}

func (k Kind) String() string { return string(k) }

// RunStart opens a run. UID identifies the run; all other fields are
// free-form and retained for templating and the sidecar.
type RunStart struct {
	UID   string
	Time  float64
	Extra map[string]any
}

// RunStop closes a run.
type RunStop struct {
	UID        string
	Time       float64
	RunStart   string
	ExitStatus string
	Extra      map[string]any
}

// DataKey declares the shape and type of one field within a stream.
// Only dtype "array" with a 2- or 3-dimensional shape is image data.
type DataKey struct {
	Dtype  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Source string `json:"source,omitempty"`
}

// Descriptor declares a stream: its human-readable name and the fields
// events of this stream will carry. A stream may be described by more
// than one descriptor over the lifetime of a run.
type Descriptor struct {
	UID      string
	Name     string
	RunStart string
	DataKeys map[string]DataKey
	Extra    map[string]any
}

// Event is one timestamped sample for a stream.
type Event struct {
	Descriptor string              `json:"descriptor"`
	SeqNum     int                 `json:"seq_num"`
	Time       float64             `json:"time"`
	UID        string              `json:"uid"`
	Data       map[string]*NDArray `json:"data"`
	Timestamps map[string]float64  `json:"timestamps"`
}

// EventPage is the batched form of Event: parallel per-event slices.
// It is the canonical shape all event forms are normalized into.
type EventPage struct {
	Descriptor string                `json:"descriptor"`
	SeqNum     []int                 `json:"seq_num"`
	Time       []float64             `json:"time"`
	UID        []string              `json:"uid"`
	Data       map[string][]*NDArray `json:"data"`
	Timestamps map[string][]float64  `json:"timestamps"`
}

// BulkEvent is the deprecated batched form, keyed by stream name rather
// than descriptor uid.
type BulkEvent map[string][]*Event

// Tagged pairs a document with its kind. It is the unit a router
// consumes and the record format of the document journal.
type Tagged struct {
	Kind Kind
	Doc  any
}

type taggedWire struct {
	Name string          `json:"name"`
	Doc  json.RawMessage `json:"doc"`
}

// UnmarshalJSON decodes the envelope and the kind-specific document.
func (t *Tagged) UnmarshalJSON(b []byte) error {
	var w taggedWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	kind, err := ParseKind(w.Name)
	if err != nil {
		return err
	}
	t.Kind = kind
	switch kind {
	case KindStart:
		doc := &RunStart{}
		err = json.Unmarshal(w.Doc, doc)
		t.Doc = doc
	case KindDescriptor:
		doc := &Descriptor{}
		err = json.Unmarshal(w.Doc, doc)
		t.Doc = doc
	case KindEvent:
		doc := &Event{}
		err = json.Unmarshal(w.Doc, doc)
		t.Doc = doc
	case KindEventPage:
		doc := &EventPage{}
		err = json.Unmarshal(w.Doc, doc)
		t.Doc = doc
	case KindBulkEvent:
		doc := BulkEvent{}
		err = json.Unmarshal(w.Doc, &doc)
		t.Doc = doc
	case KindStop:
		doc := &RunStop{}
		err = json.Unmarshal(w.Doc, doc)
		t.Doc = doc
	}
	return err
}

// MarshalJSON encodes the envelope with the wire kind name.
func (t Tagged) MarshalJSON() ([]byte, error) {
	doc, err := json.Marshal(t.Doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taggedWire{Name: string(t.Kind), Doc: doc})
}

// Field resolves a start-document key for templating. Returns the
// rendered value and whether the key exists.
func (d *RunStart) Field(key string) (string, bool) {
	switch key {
	case "uid":
		return d.UID, true
	case "time":
		return formatValue(d.Time), true
	}
	v, ok := d.Extra[key]
	if !ok {
		return "", false
	}
	return formatValue(v), true
}

// Field resolves a descriptor key for templating.
func (d *Descriptor) Field(key string) (string, bool) {
	switch key {
	case "uid":
		return d.UID, true
	case "name":
		return d.Name, true
	}
	v, ok := d.Extra[key]
	if !ok {
		return "", false
	}
	return formatValue(v), true
}

// Field resolves an event key for templating.
func (e *Event) Field(key string) (string, bool) {
	switch key {
	case "uid":
		return e.UID, true
	case "seq_num":
		return strconv.Itoa(e.SeqNum), true
	case "time":
		return formatValue(e.Time), true
	}
	return "", false
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func (d *RunStart) UnmarshalJSON(b []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.UID, _ = raw["uid"].(string)
	d.Time, _ = raw["time"].(float64)
	delete(raw, "uid")
	delete(raw, "time")
	d.Extra = raw
	return nil
}

func (d RunStart) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+2)
	for k, v := range d.Extra {
		out[k] = v
	}
	out["uid"] = d.UID
	out["time"] = d.Time
	return json.Marshal(out)
}

func (d *RunStop) UnmarshalJSON(b []byte) error {
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.UID, _ = raw["uid"].(string)
	d.Time, _ = raw["time"].(float64)
	d.RunStart, _ = raw["run_start"].(string)
	d.ExitStatus, _ = raw["exit_status"].(string)
	delete(raw, "uid")
	delete(raw, "time")
	delete(raw, "run_start")
	delete(raw, "exit_status")
	d.Extra = raw
	return nil
}

func (d RunStop) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+4)
	for k, v := range d.Extra {
		out[k] = v
	}
	out["uid"] = d.UID
	out["time"] = d.Time
	out["run_start"] = d.RunStart
	out["exit_status"] = d.ExitStatus
	return json.Marshal(out)
}

func (d *Descriptor) UnmarshalJSON(b []byte) error {
	var known struct {
		UID      string             `json:"uid"`
		Name     string             `json:"name"`
		RunStart string             `json:"run_start"`
		DataKeys map[string]DataKey `json:"data_keys"`
	}
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	raw := map[string]any{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	d.UID = known.UID
	d.Name = known.Name
	d.RunStart = known.RunStart
	d.DataKeys = known.DataKeys
	delete(raw, "uid")
	delete(raw, "name")
	delete(raw, "run_start")
	delete(raw, "data_keys")
	d.Extra = raw
	return nil
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+4)
	for k, v := range d.Extra {
		out[k] = v
	}
	out["uid"] = d.UID
	out["name"] = d.Name
	out["run_start"] = d.RunStart
	out["data_keys"] = d.DataKeys
	return json.Marshal(out)
}

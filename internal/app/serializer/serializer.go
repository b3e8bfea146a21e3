// Package serializer routes a run's document stream into TIFF
// artifacts plus a JSON metadata sidecar.
//
// The serializer is a single-run state machine: it is idle until the
// start document arrives, consumes descriptors and event documents
// while running, and becomes terminal at the stop document. File names
// are templated against documents seen at runtime, so no artifact is
// ever created before the start document.
//
// Fields whose declared shape is not 2- or 3-dimensional are skipped,
// never written and never fatal; the drop is surfaced through the
// observability port.
package serializer

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"streamtiff/internal/adapters/observability"
	"streamtiff/internal/domain"
	"streamtiff/internal/ports"
)

// Mode selects the output file layout.
type Mode int

const (
	// ModeStacked writes one multi-page TIFF per (stream, field).
	ModeStacked Mode = iota
	// ModeSeries writes one single-page TIFF per frame, with a
	// zero-padded per-(stream, field) counter in the name.
	ModeSeries
)

// ParseMode converts a layout mode name from configuration.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "stacked":
		return ModeStacked, nil
	case "series":
		return ModeSeries, nil
	}
	return 0, fmt.Errorf("unknown layout mode %q", s)
}

func (m Mode) String() string {
	if m == ModeSeries {
		return "series"
	}
	return "stacked"
}

// DefaultFilePrefix is guaranteed to resolve and to be unique per run.
const DefaultFilePrefix = "{start[uid]}-"

// Artifact labels reported to callers.
const (
	LabelStreamData  = "stream_data"
	LabelRunMetadata = "run_metadata"
)

type state int

const (
	stateInit state = iota
	stateRunning
	stateTerminal
)

// Config wires a Serializer. Manager and Codec are required; Obs
// defaults to a no-op implementation and FilePrefix to
// DefaultFilePrefix.
type Config struct {
	Manager    ports.ArtifactManager
	Codec      ports.Codec
	Obs        ports.Observability
	FilePrefix string
	Mode       Mode
}

// Serializer consumes one run's (kind, document) sequence in arrival
// order and writes image data as it comes. It is not safe for
// concurrent use; the caller drives it from a single goroutine.
type Serializer struct {
	mode   Mode
	prefix *prefixTemplate
	mgr    ports.ArtifactManager
	codec  ports.Codec
	obs    ports.Observability

	state       state
	start       *domain.RunStart
	descriptors map[string]*domain.Descriptor // uid → descriptor
	streamUID   map[string]string             // stream name → latest descriptor uid
	meta        *runMeta

	writers     map[string]ports.FrameEncoder
	writerOrder []string
	counters    map[string]int // (stream, field) → next series index
	closed      bool
}

func New(cfg Config) (*Serializer, error) {
	if cfg.Manager == nil {
		return nil, fmt.Errorf("artifact manager is required")
	}
	if cfg.Codec == nil {
		return nil, fmt.Errorf("codec is required")
	}
	if cfg.Obs == nil {
		cfg.Obs = observability.Nop{}
	}
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = DefaultFilePrefix
	}
	prefix, err := parsePrefix(cfg.FilePrefix)
	if err != nil {
		return nil, err
	}
	return &Serializer{
		mode:        cfg.Mode,
		prefix:      prefix,
		mgr:         cfg.Manager,
		codec:       cfg.Codec,
		obs:         cfg.Obs,
		descriptors: map[string]*domain.Descriptor{},
		streamUID:   map[string]string{},
		meta:        newRunMeta(),
		writers:     map[string]ports.FrameEncoder{},
		counters:    map[string]int{},
	}, nil
}

// Route dispatches one tagged document to its kind handler. Unknown
// kinds are counted and ignored; the input contract is validated
// upstream and new kinds must not break old exporters.
func (s *Serializer) Route(doc domain.Tagged) error {
	switch d := doc.Doc.(type) {
	case *domain.RunStart:
		return s.Start(d)
	case *domain.Descriptor:
		return s.Descriptor(d)
	case *domain.Event:
		return s.Event(d)
	case *domain.EventPage:
		return s.EventPage(d)
	case domain.BulkEvent:
		return s.BulkEvent(d)
	case *domain.RunStop:
		return s.Stop(d)
	}
	s.obs.IncCounter("streamtiff_documents_ignored_total", 1)
	return nil
}

// Start records the run-start document that all templated names resolve
// against. A second start document is fatal.
func (s *Serializer) Start(doc *domain.RunStart) error {
	if s.start != nil {
		return fmt.Errorf("%w: second start document %q", ErrMultipleRuns, doc.UID)
	}
	if s.state == stateTerminal {
		return ErrRunClosed
	}
	s.start = doc
	s.meta.Metadata.Start = doc
	s.state = stateRunning
	s.obs.IncCounter("streamtiff_documents_routed_total", 1)
	s.obs.LogInfo("run started", ports.Field{Key: "run", Value: doc.UID})
	return nil
}

// Descriptor registers a stream's field declarations for later lookup.
// It opens no files; naming is deferred until image data arrives.
func (s *Serializer) Descriptor(doc *domain.Descriptor) error {
	if err := s.requireRunning(domain.KindDescriptor); err != nil {
		return err
	}
	s.descriptors[doc.UID] = doc
	s.streamUID[doc.Name] = doc.UID
	s.meta.addDescriptor(doc)
	s.obs.IncCounter("streamtiff_documents_routed_total", 1)
	return nil
}

// Event normalizes the singular form into an event page.
func (s *Serializer) Event(doc *domain.Event) error {
	return s.EventPage(doc.Page())
}

// BulkEvent normalizes the deprecated keyed-by-stream batch form into
// one event page per stream.
func (s *Serializer) BulkEvent(doc domain.BulkEvent) error {
	if err := s.requireRunning(domain.KindBulkEvent); err != nil {
		return err
	}
	streams := make([]string, 0, len(doc))
	for name := range doc {
		streams = append(streams, name)
	}
	sort.Strings(streams)

	for _, name := range streams {
		uid, ok := s.streamUID[name]
		if !ok {
			return fmt.Errorf("%w: bulk event for stream %q", ErrUnknownDescriptor, name)
		}
		if err := s.EventPage(domain.PackEvents(uid, doc[name])); err != nil {
			return err
		}
	}
	return nil
}

// EventPage is the canonical entry point for event data. For every
// declared image field it coerces each sample into 2-D frames and
// appends them to the writer for that (stream, field) key, opening the
// artifact on first use.
func (s *Serializer) EventPage(doc *domain.EventPage) error {
	if err := s.requireRunning(domain.KindEventPage); err != nil {
		return err
	}
	began := time.Now()

	desc, ok := s.descriptors[doc.Descriptor]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDescriptor, doc.Descriptor)
	}
	stream := desc.Name
	events := doc.Events()

	fields := make([]string, 0, len(doc.Data))
	for field := range doc.Data {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		key, declared := desc.DataKeys[field]
		if !declared {
			s.obs.LogWarn("field not declared in descriptor",
				ports.Field{Key: "stream", Value: stream},
				ports.Field{Key: "field", Value: field})
			continue
		}
		if key.Dtype != "array" || len(key.Shape) < 2 || len(key.Shape) > 3 {
			s.obs.RecordSkippedField(stream, field, len(key.Shape))
			continue
		}
		for i, arr := range doc.Data[field] {
			if err := s.writeSample(stream, field, key, desc, events, i, arr); err != nil {
				return err
			}
		}
	}

	s.meta.addPage(stream, doc)
	s.obs.IncCounter("streamtiff_documents_routed_total", 1)
	s.obs.ObserveLatency("streamtiff_event_page_seconds", time.Since(began).Seconds())
	return nil
}

func (s *Serializer) writeSample(stream, field string, key domain.DataKey, desc *domain.Descriptor, events []*domain.Event, i int, arr *domain.NDArray) error {
	if arr.NDim() != len(key.Shape) {
		// Recoverable: trust the data over the declaration.
		s.obs.LogWarn("array shape differs from declaration",
			ports.Field{Key: "stream", Value: stream},
			ports.Field{Key: "field", Value: field},
			ports.Field{Key: "declared_ndim", Value: len(key.Shape)},
			ports.Field{Key: "actual_ndim", Value: arr.NDim()})
	}
	frames, ok := arr.Frames()
	if !ok {
		s.obs.LogWarn("array is not frame-decomposable, sample dropped",
			ports.Field{Key: "stream", Value: stream},
			ports.Field{Key: "field", Value: field},
			ports.Field{Key: "ndim", Value: arr.NDim()})
		return nil
	}

	var event *domain.Event
	if i < len(events) {
		event = events[i]
	}
	ctx := templateContext{
		start:      s.start,
		descriptor: desc,
		event:      event,
		stream:     stream,
		field:      field,
	}

	for _, frame := range frames {
		enc, err := s.writerFor(stream, field, ctx)
		if err != nil {
			return err
		}
		if err := enc.WriteFrame(frame); err != nil {
			return fmt.Errorf("write frame %s/%s: %w", stream, field, err)
		}
		s.obs.IncCounter("streamtiff_frames_written_total", 1)
	}
	return nil
}

// writerFor returns the encoder bound to (stream, field), or to
// (stream, field, running index) in series mode, where every frame
// opens a fresh artifact.
func (s *Serializer) writerFor(stream, field string, ctx templateContext) (ports.FrameEncoder, error) {
	sf := stream + "\x00" + field

	var key, name string
	switch s.mode {
	case ModeSeries:
		n := s.counters[sf]
		s.counters[sf] = n + 1
		key = fmt.Sprintf("%s\x00%05d", sf, n)
		prefix, err := s.prefix.render(ctx)
		if err != nil {
			return nil, err
		}
		name = fmt.Sprintf("%s%s-%s-%05d.tiff", prefix, stream, field, n)
	default:
		key = sf
		if enc, ok := s.writers[key]; ok {
			return enc, nil
		}
		prefix, err := s.prefix.render(ctx)
		if err != nil {
			return nil, err
		}
		name = fmt.Sprintf("%s%s-%s.tiff", prefix, stream, field)
	}

	w, err := s.mgr.Open(LabelStreamData, name)
	if err != nil {
		return nil, err
	}
	enc, err := s.codec.NewEncoder(w)
	if err != nil {
		return nil, err
	}
	s.writers[key] = enc
	s.writerOrder = append(s.writerOrder, key)
	s.obs.SetGauge("streamtiff_open_writers", float64(len(s.writers)))
	return enc, nil
}

// Stop finalizes the run: it writes the metadata sidecar and closes
// every writer. No documents are accepted afterwards.
func (s *Serializer) Stop(doc *domain.RunStop) error {
	if err := s.requireRunning(domain.KindStop); err != nil {
		return err
	}
	s.meta.Metadata.Stop = doc
	s.state = stateTerminal
	s.obs.IncCounter("streamtiff_documents_routed_total", 1)

	if err := s.writeSidecar(); err != nil {
		s.Close()
		return err
	}
	return s.Close()
}

func (s *Serializer) writeSidecar() error {
	// The sidecar is a run-level file: only start-document placeholders
	// can name it.
	prefix, err := s.prefix.render(templateContext{start: s.start})
	if err != nil {
		return err
	}
	w, err := s.mgr.Open(LabelRunMetadata, prefix+"meta.json")
	if err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(s.meta); err != nil {
		w.Close()
		return fmt.Errorf("encode run metadata: %w", err)
	}
	return w.Close()
}

// Close flushes and closes every open writer, then lets the manager
// release any remaining artifacts. Idempotent: safe to call multiple
// times and after partial failure.
func (s *Serializer) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.state = stateTerminal

	var firstErr error
	for _, key := range s.writerOrder {
		if err := s.writers[key].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.obs.SetGauge("streamtiff_open_writers", 0)

	if err := s.mgr.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Artifacts maps artifact labels ("stream_data", "run_metadata") to the
// artifacts written so far.
func (s *Serializer) Artifacts() map[string][]string {
	return s.mgr.Artifacts()
}

func (s *Serializer) requireRunning(kind domain.Kind) error {
	switch s.state {
	case stateInit:
		return fmt.Errorf("%w: %s", ErrNoRunStart, kind)
	case stateTerminal:
		return fmt.Errorf("%w: %s", ErrRunClosed, kind)
	}
	return nil
}

// Package streamtiff serializes a stream of scientific-run documents
// (start, descriptors, events, stop) into TIFF image files plus a JSON
// metadata sidecar.
package streamtiff

import (
	"context"

	base "streamtiff/pkg/streamtiff"
)

// Re-exported errors for convenience.
var (
	ErrMultipleRuns      = base.ErrMultipleRuns
	ErrNoRunStart        = base.ErrNoRunStart
	ErrRunClosed         = base.ErrRunClosed
	ErrUnknownDescriptor = base.ErrUnknownDescriptor
	ErrBadTemplate       = base.ErrBadTemplate
	ErrArtifactExists    = base.ErrArtifactExists
)

// Type aliases so consumers can import the module root directly.
type (
	Kind             = base.Kind
	Tagged           = base.Tagged
	RunStart         = base.RunStart
	RunStop          = base.RunStop
	Descriptor       = base.Descriptor
	DataKey          = base.DataKey
	Event            = base.Event
	EventPage        = base.EventPage
	BulkEvent        = base.BulkEvent
	NDArray          = base.NDArray
	Serializer       = base.Serializer
	Mode             = base.Mode
	DType            = base.DType
	ContainerOptions = base.ContainerOptions
	Option           = base.Option
	ArtifactManager  = base.ArtifactManager
	Codec            = base.Codec
	FrameEncoder     = base.FrameEncoder
	Observability    = base.Observability
	Field            = base.Field
	Config           = base.Config
)

// Document kinds.
const (
	KindStart      = base.KindStart
	KindDescriptor = base.KindDescriptor
	KindEvent      = base.KindEvent
	KindEventPage  = base.KindEventPage
	KindBulkEvent  = base.KindBulkEvent
	KindStop       = base.KindStop
)

// Layout modes and dtypes.
const (
	ModeStacked = base.ModeStacked
	ModeSeries  = base.ModeSeries
	DTypeUint8  = base.DTypeUint8
	DTypeUint16 = base.DTypeUint16
)

// Artifact labels.
const (
	LabelStreamData  = base.LabelStreamData
	LabelRunMetadata = base.LabelRunMetadata
)

// DefaultFilePrefix is the naming template used when none is given.
const DefaultFilePrefix = base.DefaultFilePrefix

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func FromConfig(cfg *Config, opts ...Option) ([]Option, error) {
	return base.FromConfig(cfg, opts...)
}

// MemoryBuffer is an in-memory ArtifactManager.
type MemoryBuffer = base.MemoryBuffer

// NewMemoryBuffer returns an in-memory artifact manager for use with
// WithManager.
func NewMemoryBuffer() *MemoryBuffer {
	return base.NewMemoryBuffer()
}

// Serializer construction and export drivers.
func NewSerializer(opts ...Option) (*Serializer, error) {
	return base.NewSerializer(opts...)
}

func Export(ctx context.Context, docs <-chan Tagged, opts ...Option) (map[string][]string, error) {
	return base.Export(ctx, docs, opts...)
}

func ExportSlice(docs []Tagged, opts ...Option) (map[string][]string, error) {
	return base.ExportSlice(docs, opts...)
}

// Options.
func WithDirectory(dir string) Option      { return base.WithDirectory(dir) }
func WithManager(m ArtifactManager) Option { return base.WithManager(m) }
func WithCodec(c Codec) Option             { return base.WithCodec(c) }
func WithObservability(obs Observability) Option {
	return base.WithObservability(obs)
}
func WithFilePrefix(template string) Option     { return base.WithFilePrefix(template) }
func WithMode(m Mode) Option                    { return base.WithMode(m) }
func WithDType(d DType) Option                  { return base.WithDType(d) }
func WithTIFFOptions(o ContainerOptions) Option { return base.WithTIFFOptions(o) }

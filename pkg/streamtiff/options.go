package streamtiff

import (
	"fmt"

	"streamtiff/internal/adapters/filemanager"
	"streamtiff/internal/adapters/tiffcodec"
	"streamtiff/internal/app/serializer"
	"streamtiff/internal/ports"
)

// Option customizes a Serializer before construction.
type Option func(*builder)

type builder struct {
	dir      string
	manager  ports.ArtifactManager
	codec    ports.Codec
	obs      ports.Observability
	prefix   string
	mode     Mode
	dtype    DType
	tiffOpts ContainerOptions
}

// WithDirectory writes artifacts as files under dir. Ignored when a
// custom manager is supplied.
func WithDirectory(dir string) Option {
	return func(b *builder) { b.dir = dir }
}

// WithManager directs output to a caller-provided artifact manager
// (memory buffers, test doubles, remote stores).
func WithManager(m ArtifactManager) Option {
	return func(b *builder) { b.manager = m }
}

// WithCodec replaces the TIFF codec with a custom frame encoder.
func WithCodec(c Codec) Option {
	return func(b *builder) { b.codec = c }
}

// WithObservability installs a metrics/logging backend.
func WithObservability(obs Observability) Option {
	return func(b *builder) { b.obs = obs }
}

// WithFilePrefix sets the templated file-name prefix. Recognized
// placeholders: {start[...]}, {descriptor[...]}, {event[...]},
// {stream_name}, {field}.
func WithFilePrefix(template string) Option {
	return func(b *builder) { b.prefix = template }
}

// WithMode selects the stacked or series output layout.
func WithMode(m Mode) Option {
	return func(b *builder) { b.mode = m }
}

// WithDType sets the numeric output type (default uint16).
func WithDType(d DType) Option {
	return func(b *builder) { b.dtype = d }
}

// WithTIFFOptions sets container flags for the built-in codec.
func WithTIFFOptions(opts ContainerOptions) Option {
	return func(b *builder) { b.tiffOpts = opts }
}

// NewSerializer builds a Serializer for one run. Callers must either
// point it at an output directory or inject an artifact manager, and
// must Close it on every exit path.
func NewSerializer(opts ...Option) (*Serializer, error) {
	b := &builder{}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	manager := b.manager
	if manager == nil {
		if b.dir == "" {
			return nil, fmt.Errorf("an output directory or an artifact manager is required")
		}
		manager = filemanager.NewMultiFile(b.dir)
	}

	codec := b.codec
	if codec == nil {
		c, err := tiffcodec.New(b.dtype, b.tiffOpts)
		if err != nil {
			return nil, err
		}
		codec = c
	}

	return serializer.New(serializer.Config{
		Manager:    manager,
		Codec:      codec,
		Obs:        b.obs,
		FilePrefix: b.prefix,
		Mode:       b.mode,
	})
}

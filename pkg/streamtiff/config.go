package streamtiff

import (
	"streamtiff/internal/adapters/tiffcodec"
	"streamtiff/internal/app/config"
	"streamtiff/internal/app/serializer"
)

// Config re-exports the root configuration struct so downstream
// projects can construct or modify it programmatically.
type Config = config.Config

type (
	OutputConfig  = config.OutputConfig
	NamingConfig  = config.NamingConfig
	TIFFConfig    = config.TIFFConfig
	MetricsConfig = config.MetricsConfig
	JournalConfig = config.JournalConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// FromConfig turns a validated configuration into serializer options.
// Later options override what the configuration set.
func FromConfig(cfg *Config, opts ...Option) ([]Option, error) {
	mode, err := serializer.ParseMode(cfg.Naming.Mode)
	if err != nil {
		return nil, err
	}
	dtype, err := tiffcodec.ParseDType(cfg.TIFF.DType)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithDirectory(cfg.Output.Dir),
		WithFilePrefix(cfg.Naming.FilePrefix),
		WithMode(mode),
		WithDType(dtype),
		WithTIFFOptions(ContainerOptions{
			BigTIFF:   cfg.TIFF.BigTIFF,
			ByteOrder: cfg.TIFF.ByteOrder,
			ImageJ:    cfg.TIFF.ImageJ,
		}),
	}
	return append(base, opts...), nil
}

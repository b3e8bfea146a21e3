package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"streamtiff/internal/adapters/tiffcodec"
	"streamtiff/internal/app/serializer"
)

type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Naming  NamingConfig  `yaml:"naming"`
	TIFF    TIFFConfig    `yaml:"tiff"`
	Metrics MetricsConfig `yaml:"metrics"`
	Journal JournalConfig `yaml:"journal"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type NamingConfig struct {
	FilePrefix string `yaml:"file_prefix"`
	Mode       string `yaml:"mode"` // "stacked" or "series"
}

type TIFFConfig struct {
	DType     string `yaml:"dtype"`
	BigTIFF   bool   `yaml:"bigtiff"`
	ByteOrder string `yaml:"byteorder"`
	ImageJ    bool   `yaml:"imagej"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type JournalConfig struct {
	// RecordPath, when set, makes the exporter record every consumed
	// document to a replayable JSON-lines journal.
	RecordPath string `yaml:"record_path"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Naming.FilePrefix == "" {
		c.Naming.FilePrefix = serializer.DefaultFilePrefix
	}
	if c.Naming.Mode == "" {
		c.Naming.Mode = serializer.ModeStacked.String()
	}
	if c.TIFF.DType == "" {
		c.TIFF.DType = string(tiffcodec.DTypeUint16)
	}
}

func (c *Config) validate() error {
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if _, err := serializer.ParseMode(c.Naming.Mode); err != nil {
		return fmt.Errorf("naming.mode: %w", err)
	}
	if _, err := tiffcodec.ParseDType(c.TIFF.DType); err != nil {
		return fmt.Errorf("tiff.dtype: %w", err)
	}
	return nil
}

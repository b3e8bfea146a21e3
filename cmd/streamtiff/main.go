package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"streamtiff/internal/adapters/journal"
	"streamtiff/internal/adapters/observability"
	base "streamtiff/pkg/streamtiff"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "export":
		err = exportCommand(os.Args[2:])
	case "demo":
		err = demoCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "streamtiff %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func exportCommand(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.yaml", "Path to exporter configuration file")
	input := fs.String("input", "", "Path to a JSON-lines document journal (required)")
	outDir := fs.String("output", "", "Override the configured output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("-input is required")
	}

	cfg, err := base.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	log := newLogger()
	obs := observability.NewPromObs(log, nil)
	if cfg.Metrics.Addr != "" {
		go serveMetrics(log, cfg.Metrics.Addr)
	}

	opts, err := base.FromConfig(cfg, base.WithObservability(obs))
	if err != nil {
		return err
	}
	s, err := base.NewSerializer(opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	var record *journal.Writer
	if cfg.Journal.RecordPath != "" {
		record, err = journal.NewWriter(cfg.Journal.RecordPath)
		if err != nil {
			return fmt.Errorf("open recording journal: %w", err)
		}
		defer record.Close()
	}

	err = journal.Iterate(*input, func(doc base.Tagged) error {
		if record != nil {
			if rerr := record.Append(doc); rerr != nil {
				return rerr
			}
		}
		return s.Route(doc)
	})
	if err != nil {
		return err
	}
	if err := s.Close(); err != nil {
		return err
	}

	reportArtifacts(s.Artifacts())
	return nil
}

func demoCommand(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	outDir := fs.String("output", "./demo-out", "Output directory")
	mode := fs.String("mode", "stacked", "Layout mode: stacked or series")
	streams := fs.Int("streams", 1, "Number of event streams")
	events := fs.Int("events", 5, "Events per stream")
	size := fs.Int("size", 32, "Image edge length in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}

	layout := base.ModeStacked
	if *mode == "series" {
		layout = base.ModeSeries
	} else if *mode != "stacked" {
		return fmt.Errorf("unknown layout mode %q", *mode)
	}

	docs := syntheticRun(*streams, *events, *size)
	artifacts, err := base.ExportSlice(docs,
		base.WithDirectory(*outDir),
		base.WithMode(layout),
	)
	if err != nil {
		return err
	}

	reportArtifacts(artifacts)
	return nil
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := base.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func serveMetrics(log zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		prometheus.DefaultGatherer, promhttp.HandlerOpts{},
	))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
	}
}

func reportArtifacts(artifacts map[string][]string) {
	for _, label := range []string{base.LabelStreamData, base.LabelRunMetadata} {
		for _, name := range artifacts[label] {
			fmt.Printf("%s\t%s\n", label, name)
		}
	}
}

func printUsage() {
	fmt.Printf(`streamtiff CLI

Usage:
  streamtiff <command> [flags]

Commands:
  export     Serialize a recorded document journal to TIFF files
  demo       Generate a synthetic run and export it
  validate   Load and validate a config file without exporting

Examples:
  streamtiff export -config ./config.yaml -input ./run.jsonl -output ./out
  streamtiff demo -output ./demo-out -mode series -events 10
  streamtiff validate -config ./config.yaml
`)
}

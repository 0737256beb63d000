package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/dustin/go-wikietym"
	"github.com/dustin/go-wikietym/sink"
)

// Config is everything etymdump needs for a run. It may come from a
// YAML file; command line flags override it.
type Config struct {
	// Input is the dump: a pages-articles XML file, bzip2 compressed
	// if its name ends in .bz2, or the data file of a multistream dump.
	Input string `yaml:"input"`
	// Index is the multistream index. Empty means Input is read as a
	// single stream.
	Index string `yaml:"index"`

	Output      string       `yaml:"output"`
	Sink        string       `yaml:"sink"`
	SinkOptions sink.Options `yaml:"sink_options"`

	Workers     int   `yaml:"workers"`
	CPUs        int   `yaml:"cpus"`
	ReportEvery int64 `yaml:"report_every"`
}

var errNoInput = errors.New("no input dump given")

// DefaultConfig returns the settings used for anything not configured.
func DefaultConfig() Config {
	return Config{
		Output:      "etymology.csv.gz",
		Sink:        sink.CSV,
		Workers:     runtime.NumCPU(),
		CPUs:        runtime.GOMAXPROCS(0),
		ReportEvery: wikietym.DefaultReportEvery,
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %v: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if c.Input == "" {
		return errNoInput
	}
	if !sink.Known(c.Sink) {
		return fmt.Errorf("%w %q", sink.ErrUnknownKind, c.Sink)
	}
	switch c.Sink {
	case sink.CSV, sink.SQLite:
		if c.Output == "" {
			return fmt.Errorf("the %v sink needs an output file", c.Sink)
		}
	default:
		if c.SinkOptions.URL == "" {
			return fmt.Errorf("the %v sink needs a url", c.Sink)
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("need at least one worker, got %v", c.Workers)
	}
	if c.CPUs < 1 {
		return fmt.Errorf("need at least one cpu, got %v", c.CPUs)
	}
	return nil
}

// parseFlags builds the run's Config from a config file, then the flags
// that were set, then positional arguments: either a dump, or a
// multistream index and its dump.
func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	def := DefaultConfig()
	configPath := fs.String("config", "", "YAML config file")
	input := fs.String("input", "", "Dump to read")
	index := fs.String("index", "", "Multistream index of the dump")
	output := fs.String("output", def.Output, "Output file of the csv and sqlite sinks")
	kind := fs.String("sink", def.Sink, "Where records go: one of csv, sqlite, couchdb, couchbase, elasticsearch, mongo")
	url := fs.String("url", "", "Database url of the couchdb, couchbase, elasticsearch and mongo sinks")
	workers := fs.Int("workers", def.Workers, "Number of extraction workers")
	cpus := fs.Int("cpus", def.CPUs, "Number of CPUS to utilize")
	report := fs.Int64("report", def.ReportEvery, "Records between progress updates")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "index":
			cfg.Index = *index
		case "output":
			cfg.Output = *output
		case "sink":
			cfg.Sink = *kind
		case "url":
			cfg.SinkOptions.URL = *url
		case "workers":
			cfg.Workers = *workers
		case "cpus":
			cfg.CPUs = *cpus
		case "report":
			cfg.ReportEvery = *report
		}
	})

	switch fs.NArg() {
	case 0:
	case 1:
		cfg.Input = fs.Arg(0)
	case 2:
		cfg.Index, cfg.Input = fs.Arg(0), fs.Arg(1)
	default:
		return cfg, fmt.Errorf("need either a single stream dump, or index and multi-stream")
	}
	return cfg, cfg.Validate()
}

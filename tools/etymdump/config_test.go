package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustin/go-wikietym/sink"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("etymdump", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "etymdump.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(body), 0644))
	return fn
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, sink.CSV, cfg.Sink)
}

func TestLoadConfig(t *testing.T) {
	fn := writeConfig(t, `
input: enwiktionary-pages-articles.xml.bz2
sink: mongo
workers: 3
sink_options:
  url: localhost
  database: wikt
`)
	cfg, err := LoadConfig(fn)
	require.NoError(t, err)
	assert.Equal(t, "enwiktionary-pages-articles.xml.bz2", cfg.Input)
	assert.Equal(t, sink.Mongo, cfg.Sink)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "wikt", cfg.SinkOptions.Database)
	assert.Equal(t, DefaultConfig().Output, cfg.Output, "unset fields keep their defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "workers: [1, 2"))
	assert.Error(t, err)
}

func TestFlagsOverrideConfig(t *testing.T) {
	fn := writeConfig(t, "input: a.xml.bz2\nworkers: 3\nsink: sqlite\noutput: a.db\n")
	cfg, err := parseFlags(newFlagSet(), []string{"-config", fn, "-workers", "5", "-report", "10"})
	require.NoError(t, err)

	assert.Equal(t, "a.xml.bz2", cfg.Input)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, int64(10), cfg.ReportEvery)
	assert.Equal(t, sink.SQLite, cfg.Sink)
	assert.Equal(t, "a.db", cfg.Output)
}

func TestPositionalArgs(t *testing.T) {
	cfg, err := parseFlags(newFlagSet(), []string{"dump.xml.bz2"})
	require.NoError(t, err)
	assert.Equal(t, "dump.xml.bz2", cfg.Input)
	assert.Empty(t, cfg.Index)

	cfg, err = parseFlags(newFlagSet(), []string{"index.txt.bz2", "multistream.xml.bz2"})
	require.NoError(t, err)
	assert.Equal(t, "index.txt.bz2", cfg.Index)
	assert.Equal(t, "multistream.xml.bz2", cfg.Input)

	_, err = parseFlags(newFlagSet(), []string{"a", "b", "c"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		change func(*Config)
		ok     bool
	}{
		{"defaults with input", func(c *Config) {}, true},
		{"no input", func(c *Config) { c.Input = "" }, false},
		{"unknown sink", func(c *Config) { c.Sink = "tape" }, false},
		{"csv without output", func(c *Config) { c.Output = "" }, false},
		{"couchdb without url", func(c *Config) { c.Sink = sink.CouchDB }, false},
		{"couchdb with url", func(c *Config) {
			c.Sink = sink.CouchDB
			c.SinkOptions.URL = "http://localhost:5984/etym"
		}, true},
		{"no workers", func(c *Config) { c.Workers = 0 }, false},
		{"no cpus", func(c *Config) { c.CPUs = 0 }, false},
	}

	for _, test := range tests {
		cfg := DefaultConfig()
		cfg.Input = "dump.xml.bz2"
		test.change(&cfg)
		err := cfg.Validate()
		if test.ok {
			assert.NoError(t, err, test.name)
		} else {
			assert.Error(t, err, test.name)
		}
	}

	cfg := DefaultConfig()
	assert.True(t, errors.Is(cfg.Validate(), errNoInput))
}

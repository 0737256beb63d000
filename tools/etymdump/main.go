// Extract etymological relations from a Wiktionary dump.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/dustin/go-wikietym"
	"github.com/dustin/go-wikietym/etym"
	"github.com/dustin/go-wikietym/sink"
)

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] wiktionary.xml.bz2\n  %s [opts] wiktionary.index.bz2 wiktionary-multistream.xml.bz2\n",
		os.Args[0], os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func openDump(ctx context.Context, cfg Config) (wikietym.Parser, io.Closer, error) {
	if cfg.Index == "" {
		return wikietym.OpenParser(cfg.Input)
	}
	p, err := wikietym.NewIndexedParser(ctx, cfg.Index, cfg.Input, cfg.CPUs)
	if err != nil {
		return nil, nil, err
	}
	return p, io.NopCloser(nil), nil
}

func run(ctx context.Context, cfg Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p, dump, err := openDump(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening dump: %w", err)
	}
	defer dump.Close()
	si := p.SiteInfo()
	log.Printf("Reading %v (%v)", si.SiteName, si.Generator)

	out, err := sink.Open(ctx, cfg.Sink, cfg.Output, cfg.SinkOptions)
	if err != nil {
		return fmt.Errorf("opening %v sink: %w", cfg.Sink, err)
	}

	src := wikietym.NewContentReader(p)
	a := &wikietym.Aggregator{
		Workers:     cfg.Workers,
		Resolver:    etym.NewRegistry(),
		Sink:        out,
		Progress:    os.Stderr,
		ReportEvery: cfg.ReportEvery,
	}
	stats, err := a.Run(ctx, src)
	fmt.Fprintln(os.Stderr)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing %v sink: %w", cfg.Sink, cerr)
	}

	log.Printf("Ended after %v: %s articles, %s records, %s failed, %s pages outside the main namespace",
		stats.Elapsed, humanize.Comma(stats.Articles), humanize.Comma(stats.Records),
		humanize.Comma(stats.Failed), humanize.Comma(src.Skipped))
	if len(stats.Unknown) > 0 {
		log.Printf("Templates without a strategy:")
		for _, nc := range stats.Unknown.Sorted() {
			log.Printf("  %10s  %v", humanize.Comma(int64(nc.Count)), nc.Name)
		}
	}
	return err
}

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		flag.Usage()
		log.Fatalf("Error configuring: %v", err)
	}

	runtime.GOMAXPROCS(cfg.CPUs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Fatalf("Error extracting etymologies: %v", err)
	}
}

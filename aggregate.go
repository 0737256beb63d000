package wikietym

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/dustin/go-wikietym/etym"
)

// DefaultReportEvery is how many records pass between progress lines.
const DefaultReportEvery = 100

// A RecordSource yields dump records until io.EOF. *ContentReader is
// one.
type RecordSource interface {
	Next() (DumpRecord, error)
}

// A RecordWriter receives the records of each article as it completes.
type RecordWriter interface {
	WriteRecords(recs []etym.Record) error
}

// A DiagnosticsWriter keeps the unknown-template counts of a finished
// run. Sinks implementing it receive them when Run succeeds.
type DiagnosticsWriter interface {
	WriteDiagnostics(counts map[string]int) error
}

// An Aggregator extracts records from every article of a source on a
// pool of workers and writes them to Sink as they complete.
type Aggregator struct {
	// Workers is the number of concurrent extractions. Zero means
	// GOMAXPROCS.
	Workers  int
	Resolver Resolver
	Sink     RecordWriter

	// Progress receives an overwriting status line every ReportEvery
	// records. Nil disables it.
	Progress    io.Writer
	ReportEvery int64

	// Log receives skipped-article messages. Nil means log.Default().
	Log *log.Logger
}

// Stats summarises a run.
type Stats struct {
	Articles int64
	Records  int64
	Failed   int64
	Unknown  Diagnostics
	Elapsed  time.Duration
}

// Run consumes src to the end. Only the coordinating goroutine touches
// Sink, Progress and the merged diagnostics.
//
// A failed article is logged and skipped. A read or write error stops
// the run; records written before it remain in Sink.
func (a *Aggregator) Run(ctx context.Context, src RecordSource) (Stats, error) {
	workers := a.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	every := a.ReportEvery
	if every <= 0 {
		every = DefaultReportEvery
	}
	logger := a.Log
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	jobs := make(chan DumpRecord, workers)
	results := make(chan Result, workers)

	g.Go(func() error {
		defer close(jobs)
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := src.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case jobs <- rec:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			defer wg.Done()
			for rec := range jobs {
				res := Dispatch(rec.Title, rec.Text, a.Resolver)
				select {
				case results <- res:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	stats := Stats{Unknown: Diagnostics{}}
	start := time.Now()
	var writeErr error
	for res := range results {
		if writeErr != nil {
			continue
		}
		stats.Articles++
		stats.Unknown.Merge(res.Unknown)
		if res.Err != nil {
			stats.Failed++
			logger.Printf("Skipping %v", res.Err)
			continue
		}
		if len(res.Records) == 0 {
			continue
		}
		if err := a.Sink.WriteRecords(res.Records); err != nil {
			writeErr = fmt.Errorf("writing records of %q: %w", res.Title, err)
			cancel()
			continue
		}
		before := stats.Records
		stats.Records += int64(len(res.Records))
		if a.Progress != nil && before/every != stats.Records/every {
			reportProgress(a.Progress, stats.Records, time.Since(start))
		}
	}
	stats.Elapsed = time.Since(start)

	err := g.Wait()
	if writeErr != nil {
		return stats, writeErr
	}
	if err != nil {
		return stats, err
	}
	if dw, ok := a.Sink.(DiagnosticsWriter); ok && len(stats.Unknown) > 0 {
		if err := dw.WriteDiagnostics(stats.Unknown); err != nil {
			return stats, fmt.Errorf("writing diagnostics: %w", err)
		}
	}
	return stats, nil
}

func reportProgress(w io.Writer, n int64, elapsed time.Duration) {
	if elapsed > time.Second {
		elapsed = elapsed.Truncate(time.Second)
	}
	rate := int64(0)
	if s := elapsed.Seconds(); s > 0 {
		rate = int64(float64(n) / s)
	}
	fmt.Fprintf(w, "\rEntries parsed: %s Time elapsed: %v Entries per second: %s%s",
		humanize.Comma(n), elapsed, humanize.Comma(rate), strings.Repeat(" ", 10))
}

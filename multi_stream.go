package wikietym

import (
	"compress/bzip2"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sync"
)

type pageOrErr struct {
	page *Page
	err  error
}

type multiStreamParser struct {
	siteInfo SiteInfo

	workerch chan IndexChunk
	entries  chan pageOrErr
}

// NewIndexedParser reads a multistream dump, decompressing its streams
// on numWorkers goroutines. Pages arrive in no particular order.
//
// The workers stop when ctx is done or the dump is exhausted.
func NewIndexedParser(ctx context.Context, indexfn, datafn string, numWorkers int) (Parser, error) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	si, err := readSiteInfo(datafn)
	if err != nil {
		return nil, err
	}

	rv := &multiStreamParser{
		siteInfo: si,
		workerch: make(chan IndexChunk, numWorkers),
		entries:  make(chan pageOrErr, 100*numWorkers),
	}

	wg := sync.WaitGroup{}
	wg.Add(numWorkers + 1)
	go func() {
		defer wg.Done()
		rv.indexWorker(ctx, indexfn)
	}()
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			rv.streamWorker(ctx, datafn)
		}()
	}
	go func() {
		wg.Wait()
		close(rv.entries)
	}()

	return rv, nil
}

func readSiteInfo(datafn string) (SiteInfo, error) {
	r, err := os.Open(datafn)
	if err != nil {
		return SiteInfo{}, err
	}
	defer r.Close()

	p, err := NewParser(bzip2.NewReader(r))
	if err != nil {
		return SiteInfo{}, fmt.Errorf("reading site info from %v: %w", datafn, err)
	}
	return p.SiteInfo(), nil
}

func (p *multiStreamParser) fail(ctx context.Context, err error) {
	select {
	case p.entries <- pageOrErr{err: err}:
	case <-ctx.Done():
	}
}

func (p *multiStreamParser) indexWorker(ctx context.Context, indexfn string) {
	defer close(p.workerch)

	r, err := os.Open(indexfn)
	if err != nil {
		p.fail(ctx, err)
		return
	}
	defer r.Close()

	isr, err := NewIndexSummaryReader(bzip2.NewReader(r))
	if err != nil {
		p.fail(ctx, fmt.Errorf("reading index %v: %w", indexfn, err))
		return
	}
	for {
		chunk, err := isr.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			p.fail(ctx, fmt.Errorf("reading index %v: %w", indexfn, err))
			return
		}
		select {
		case p.workerch <- chunk:
		case <-ctx.Done():
			return
		}
	}
}

func (p *multiStreamParser) streamWorker(ctx context.Context, datafn string) {
	r, err := os.Open(datafn)
	if err != nil {
		p.fail(ctx, err)
		return
	}
	defer r.Close()

	for chunk := range p.workerch {
		if _, err := r.Seek(chunk.Offset, io.SeekStart); err != nil {
			p.fail(ctx, fmt.Errorf("seeking to %v: %w", chunk.Offset, err))
			return
		}
		d := xml.NewDecoder(bzip2.NewReader(r))

		for i := 0; i < chunk.Count; i++ {
			page := new(Page)
			err := d.Decode(page)
			if err == io.EOF {
				break
			}
			if err != nil {
				p.fail(ctx, fmt.Errorf("stream at %v: %w", chunk.Offset, malformed(err)))
				return
			}
			select {
			case p.entries <- pageOrErr{page: page}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *multiStreamParser) Next() (*Page, error) {
	e, ok := <-p.entries
	if !ok {
		return nil, io.EOF
	}
	return e.page, e.err
}

func (p *multiStreamParser) SiteInfo() SiteInfo {
	return p.siteInfo
}

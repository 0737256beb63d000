package wikietym

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrBadIndexLine is returned for index lines not shaped offset:id:title.
var ErrBadIndexLine = errors.New("bad index line")

// An IndexEntry locates one page in a multistream dump.
type IndexEntry struct {
	StreamOffset int64
	PageID       uint64
	Title        string
}

func (i IndexEntry) String() string {
	return fmt.Sprintf("%v:%v:%v", i.StreamOffset, i.PageID, i.Title)
}

// An IndexReader reads a multistream index, one entry per line.
type IndexReader struct {
	s          *bufio.Scanner
	base       int64
	prevOffset int64
}

// NewIndexReader reads index lines from r (already decompressed).
func NewIndexReader(r io.Reader) *IndexReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	return &IndexReader{s: s}
}

// Next gets the next entry from the index stream.
//
// Some index generators wrapped offsets at 32 bits, so an offset
// smaller than its predecessor is taken to have wrapped.
func (ir *IndexReader) Next() (IndexEntry, error) {
	if !ir.s.Scan() {
		if err := ir.s.Err(); err != nil {
			return IndexEntry{}, err
		}
		return IndexEntry{}, io.EOF
	}
	line := ir.s.Text()
	parts := strings.SplitN(line, ":", 3)
	if len(parts) != 3 {
		return IndexEntry{}, fmt.Errorf("%w: %q", ErrBadIndexLine, line)
	}
	offset, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("%w: %q: %v", ErrBadIndexLine, line, err)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return IndexEntry{}, fmt.Errorf("%w: %q: %v", ErrBadIndexLine, line, err)
	}
	if offset < ir.prevOffset {
		ir.base += 1 << 32
	}
	ir.prevOffset = offset

	return IndexEntry{StreamOffset: offset + ir.base, PageID: id, Title: parts[2]}, nil
}

// An IndexChunk is one compressed stream of a multistream dump and the
// number of pages it holds.
type IndexChunk struct {
	Offset int64
	Count  int
}

// IndexSummaryReader groups index entries by stream.
type IndexSummaryReader struct {
	index *IndexReader
	cur   IndexChunk
	done  bool
}

// NewIndexSummaryReader gets a summary reader over the given index
// lines. An empty index is an error.
func NewIndexSummaryReader(r io.Reader) (*IndexSummaryReader, error) {
	rv := &IndexSummaryReader{index: NewIndexReader(r)}
	first, err := rv.index.Next()
	if err != nil {
		return nil, err
	}
	rv.cur = IndexChunk{Offset: first.StreamOffset, Count: 1}
	return rv, nil
}

// Next returns the next stream and its page count, or io.EOF once
// every stream has been returned.
func (isr *IndexSummaryReader) Next() (IndexChunk, error) {
	if isr.done {
		return IndexChunk{}, io.EOF
	}
	for {
		e, err := isr.index.Next()
		if err == io.EOF {
			isr.done = true
			return isr.cur, nil
		}
		if err != nil {
			return IndexChunk{}, err
		}
		if e.StreamOffset != isr.cur.Offset {
			rv := isr.cur
			isr.cur = IndexChunk{Offset: e.StreamOffset, Count: 1}
			return rv, nil
		}
		isr.cur.Count++
	}
}

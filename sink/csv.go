package sink

import (
	"compress/gzip"
	"encoding/csv"
	"os"

	"github.com/dustin/go-wikietym/etym"
)

// A CSVFile writes records as gzipped CSV rows after a header row.
type CSVFile struct {
	f *os.File
	z *gzip.Writer
	w *csv.Writer
}

// OpenCSV creates (or truncates) path and writes the header.
func OpenCSV(path string) (*CSVFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	z := gzip.NewWriter(f)
	rv := &CSVFile{f: f, z: z, w: csv.NewWriter(z)}
	if err := rv.w.Write(etym.Header()); err != nil {
		f.Close()
		return nil, err
	}
	return rv, nil
}

// WriteRecords appends one row per record and flushes them to the
// compressor.
func (c *CSVFile) WriteRecords(recs []etym.Record) error {
	for _, r := range recs {
		if err := c.w.Write(r.Row()); err != nil {
			return err
		}
	}
	c.w.Flush()
	return c.w.Error()
}

// Close finishes the gzip stream and the file.
func (c *CSVFile) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if zerr := c.z.Close(); err == nil {
		err = zerr
	}
	if ferr := c.f.Close(); err == nil {
		err = ferr
	}
	return err
}

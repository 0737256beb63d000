// Print the entries of a multistream dump index with offsets fixed up
// past 4GB, or with -summary one line per stream.
package main

import (
	"compress/bzip2"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dustin/go-wikietym"
)

func main() {
	summary := flag.Bool("summary", false, "Print stream offsets and page counts")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("Usage: %s [-summary] wiktionary-multistream-index.txt.bz2", os.Args[0])
	}
	fn := flag.Arg(0)

	r, err := os.Open(fn)
	if err != nil {
		log.Fatalf("Error opening %v: %v", fn, err)
	}
	defer r.Close()

	var in io.Reader = r
	if strings.HasSuffix(fn, ".bz2") {
		in = bzip2.NewReader(r)
	}

	if *summary {
		summarize(in)
		return
	}

	ir := wikietym.NewIndexReader(in)
	for {
		e, err := ir.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Error reading stream:  %v", err)
		}

		fmt.Println(e.String())
	}
}

func summarize(in io.Reader) {
	isr, err := wikietym.NewIndexSummaryReader(in)
	if err != nil {
		log.Fatalf("Error reading index: %v", err)
	}
	streams, pages := int64(0), int64(0)
	for {
		chunk, err := isr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Error reading stream:  %v", err)
		}
		fmt.Printf("%d\t%d\n", chunk.Offset, chunk.Count)
		streams++
		pages += int64(chunk.Count)
	}
	log.Printf("%s streams, %s pages", humanize.Comma(streams), humanize.Comma(pages))
}

package wikietym

import (
	"compress/bzip2"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// ContentNamespace is the namespace id of main-content articles.
const ContentNamespace = "0"

// The toplevel site info describing basic dump properties.
type SiteInfo struct {
	SiteName   string `xml:"sitename"`
	Base       string `xml:"base"`
	Generator  string `xml:"generator"`
	Case       string `xml:"case"`
	Namespaces []struct {
		Key   string `xml:"key,attr"`
		Case  string `xml:"case,attr"`
		Value string `xml:",chardata"`
	} `xml:"namespaces>namespace"`
}

// A revision to a page.
type Revision struct {
	ID        uint64 `xml:"id"`
	Timestamp string `xml:"timestamp"`
	Text      string `xml:"text"`
}

// A wiki page.
type Page struct {
	Title     string     `xml:"title"`
	Namespace string     `xml:"ns"`
	ID        uint64     `xml:"id"`
	Revisions []Revision `xml:"revision"`
}

// Text returns the markup of the page's latest revision. Only the last
// revision is used; the earlier ones found in history dumps are ignored.
func (p *Page) Text() string {
	if len(p.Revisions) == 0 {
		return ""
	}
	return p.Revisions[len(p.Revisions)-1].Text
}

// That which emits wiki pages.
type Parser interface {
	// Next returns the next page, or io.EOF after the last one.
	Next() (*Page, error)
	SiteInfo() SiteInfo
}

type singleStreamParser struct {
	siteInfo SiteInfo
	x        *xml.Decoder
	pending  *xml.StartElement
}

// NewParser gets a dump parser reading uncompressed XML from r.
//
// Pages are decoded one at a time; nothing but the current page is
// held in memory.
func NewParser(r io.Reader) (Parser, error) {
	p := &singleStreamParser{x: xml.NewDecoder(r)}
	for {
		se, err := p.nextStart()
		if err == io.EOF {
			return p, nil
		}
		if err != nil {
			return nil, err
		}
		switch se.Name.Local {
		case "siteinfo":
			if err := p.x.DecodeElement(&p.siteInfo, &se); err != nil {
				return nil, malformed(err)
			}
			return p, nil
		case "page":
			p.pending = &se
			return p, nil
		}
	}
}

// OpenParser opens a dump file, decompressing it if its name ends in
// .bz2. The returned Closer releases the file.
func OpenParser(fn string) (Parser, io.Closer, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, nil, err
	}
	var r io.Reader = f
	if strings.HasSuffix(fn, ".bz2") {
		r = bzip2.NewReader(f)
	}
	p, err := NewParser(r)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("reading %v: %w", fn, err)
	}
	return p, f, nil
}

func (p *singleStreamParser) nextStart() (xml.StartElement, error) {
	for {
		t, err := p.x.Token()
		if err == io.EOF {
			return xml.StartElement{}, io.EOF
		}
		if err != nil {
			return xml.StartElement{}, malformed(err)
		}
		if se, ok := t.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func (p *singleStreamParser) Next() (*Page, error) {
	for {
		var se xml.StartElement
		if p.pending != nil {
			se, p.pending = *p.pending, nil
		} else {
			var err error
			if se, err = p.nextStart(); err != nil {
				return nil, err
			}
		}
		if se.Name.Local != "page" {
			continue
		}
		rv := new(Page)
		if err := p.x.DecodeElement(rv, &se); err != nil {
			return nil, malformed(err)
		}
		return rv, nil
	}
}

func (p *singleStreamParser) SiteInfo() SiteInfo {
	return p.siteInfo
}

// A DumpRecord is the title and markup of one content page.
type DumpRecord struct {
	Title     string
	Namespace string
	Text      string
}

// A ContentReader filters a Parser down to content-namespace pages.
type ContentReader struct {
	p Parser

	// Skipped counts pages dropped for being outside the content
	// namespace.
	Skipped int64
}

// NewContentReader wraps p.
func NewContentReader(p Parser) *ContentReader {
	return &ContentReader{p: p}
}

// Next returns the next content page, or io.EOF.
func (r *ContentReader) Next() (DumpRecord, error) {
	for {
		page, err := r.p.Next()
		if err != nil {
			return DumpRecord{}, err
		}
		if page.Namespace != ContentNamespace {
			r.Skipped++
			continue
		}
		return DumpRecord{
			Title:     page.Title,
			Namespace: page.Namespace,
			Text:      page.Text(),
		}, nil
	}
}

package wikietym

import (
	"fmt"
	"regexp"

	"github.com/dustin/go-wikietym/etym"
	"github.com/dustin/go-wikietym/wikitext"
)

// Language sections are level 2; etymology sections are found beneath
// them by heading title.
const languageLevel = 2

var etymologyRE = regexp.MustCompile(`(?i)etymology`)

// A Resolver turns one template into relation records. ok is false if
// the template name is not known. *etym.Registry is a Resolver.
type Resolver interface {
	Resolve(name, term, lang string, n *wikitext.Node) (recs []etym.Record, ok bool)
}

// A Result is everything extracted from one article.
type Result struct {
	Title   string
	Records []etym.Record
	// Unknown counts templates this article used that r could not
	// resolve.
	Unknown Diagnostics
	// Err is set if extraction failed; Records is then empty.
	Err error
}

// Dispatch extracts the valid etymology records of one article.
//
// Dispatch shares nothing between calls and may run concurrently. A
// panic while processing the article is returned as an *ArticleError.
func Dispatch(term, text string, r Resolver) (res Result) {
	res.Title = term
	defer func() {
		if x := recover(); x != nil {
			res.Records = nil
			res.Unknown = nil
			res.Err = &ArticleError{Title: term, Cause: fmt.Errorf("panic: %v", x)}
		}
	}()

	wc := wikitext.Parse(text)
	for _, lang := range wc.Sections(languageLevel) {
		language := lang.Title()
		body := wikitext.Wikicode{Nodes: lang.Nodes[1:]}
		for _, sec := range body.FlatSections(etymologyRE) {
			Normalize(&sec.Wikicode)
			for _, n := range sec.Templates() {
				recs, ok := r.Resolve(n.Name(), term, language, n)
				if !ok {
					res.Unknown.Add(n.Name())
					continue
				}
				for _, rec := range recs {
					if rec.Valid() {
						res.Records = append(res.Records, rec)
					}
				}
			}
		}
	}
	return res
}

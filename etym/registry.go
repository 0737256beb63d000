package etym

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/dustin/go-wikietym/wikitext"
)

// A Context carries what a strategy knows about the term being
// described.
type Context struct {
	Term string
	Lang string

	reg *Registry
}

// A Strategy produces records for one template invocation.
type Strategy func(c Context, n *wikitext.Node) []Record

// A Registry maps template names to strategies.
//
// Registration must finish before Resolve is called; Resolve itself is
// safe for concurrent use.
type Registry struct {
	strategies map[string]Strategy

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewRegistry returns a Registry holding the built-in strategies.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	registerDefaults(r)
	return r
}

// NewEmptyRegistry returns a Registry with no strategies.
func NewEmptyRegistry() *Registry {
	return &Registry{
		strategies: map[string]Strategy{},
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}
}

// Register installs s under each of the given template names.
func (r *Registry) Register(s Strategy, names ...string) {
	for _, name := range names {
		r.strategies[name] = s
	}
}

// Known reports whether a strategy exists for name.
func (r *Registry) Known(name string) bool {
	_, ok := r.strategies[name]
	return ok
}

// Resolve runs the strategy for the named template. The second return
// value is false when no strategy is registered for name.
func (r *Registry) Resolve(name, term, lang string, n *wikitext.Node) ([]Record, bool) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, false
	}
	recs := s(Context{Term: term, Lang: lang, reg: r}, n)
	for i := range recs {
		fillIDs(&recs[i])
	}
	return recs, true
}

func (r *Registry) newTag() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Now(), r.entropy).String()
}

func fillIDs(rec *Record) {
	if rec.TermID == "" && rec.Term != "" {
		rec.TermID = TermID(rec.Lang, rec.Term)
	}
	if rec.RelatedTermID == "" && rec.RelatedTerm != "" {
		rec.RelatedTermID = TermID(rec.RelatedLang, rec.RelatedTerm)
	}
}

// record starts a record about the context's term.
func (c Context) record(reltype, relatedLang, relatedTerm string) Record {
	return Record{
		Term:        c.Term,
		Lang:        c.Lang,
		Reltype:     reltype,
		RelatedLang: relatedLang,
		RelatedTerm: relatedTerm,
	}
}

// resolve runs a nested template through the same registry.
func (c Context) resolve(n *wikitext.Node) []Record {
	if n.Kind != wikitext.Template {
		return nil
	}
	recs, _ := c.reg.Resolve(n.Name(), c.Term, c.Lang, n)
	return recs
}

// stamp places records in a group. Records already belonging to an
// inner group are attached to the outer one through their parent.
func stamp(recs []Record, tag string, pos int) {
	for i := range recs {
		switch {
		case recs[i].GroupTag == "":
			recs[i].GroupTag = tag
			recs[i].Position = pos
		case recs[i].ParentTag == "":
			recs[i].ParentTag = tag
			recs[i].ParentPosition = pos
		}
	}
}

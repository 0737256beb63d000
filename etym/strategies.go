package etym

import (
	"github.com/dustin/go-wikietym/wikitext"
)

// Relation types.
const (
	InheritedFrom         = "inherited_from"
	DerivedFrom           = "derived_from"
	BorrowedFrom          = "borrowed_from"
	LearnedBorrowingFrom  = "learned_borrowing_from"
	SemiLearnedBorrowing  = "semi_learned_borrowing_from"
	CalqueOf              = "calque_of"
	SemanticLoanOf        = "semantic_loan_of"
	CognateOf             = "cognate_of"
	EtymologicallyRelated = "etymologically_related_to"
	HasAffix              = "has_affix"
	HasPrefix             = "has_prefix"
	HasSuffix             = "has_suffix"
	HasConfix             = "has_confix"
	CompoundOf            = "compound_of"
	BlendOf               = "blend_of"
)

// mentionNames are the templates that merely mention a term.
var mentionNames = []string{"m", "mention", "m+", "langname-mention", "l", "link"}

func registerDefaults(r *Registry) {
	r.Register(sourced(InheritedFrom), "inh", "inherited", "inh+")
	r.Register(sourced(DerivedFrom), "der", "derived", "der+", "derived-parsed")
	r.Register(sourced(BorrowedFrom), "bor", "borrowed", "bor+")
	r.Register(sourced(LearnedBorrowingFrom), "lbor", "learned borrowing")
	r.Register(sourced(SemiLearnedBorrowing), "slbor", "semi-learned borrowing")
	r.Register(sourced(CalqueOf), "calque", "cal", "clq")
	r.Register(sourced(SemanticLoanOf), "semantic loan", "sl")

	r.Register(mentioned(CognateOf), "cog", "cognate", "ncog", "noncognate")
	r.Register(mentioned(EtymologicallyRelated), mentionNames...)

	r.Register(affixes(HasAffix), "affix", "af")
	r.Register(affixes(HasPrefix), "prefix", "pre")
	r.Register(affixes(HasSuffix), "suffix", "suf")
	r.Register(affixes(HasConfix), "confix", "con")
	r.Register(affixes(CompoundOf), "compound", "com")
	r.Register(affixes(BlendOf), "blend")

	r.Register(parsedAffix, "affix-parsed")
	r.Register(grouped, "related-parsed", "from-parsed")
}

// sourced handles {{inh|lang|source-lang|term}} style templates.
func sourced(reltype string) Strategy {
	return func(c Context, n *wikitext.Node) []Record {
		return []Record{c.record(reltype, n.Arg(2), n.Arg(3))}
	}
}

// mentioned handles {{cog|lang|term}} style templates.
func mentioned(reltype string) Strategy {
	return func(c Context, n *wikitext.Node) []Record {
		return []Record{c.record(reltype, n.Arg(1), n.Arg(2))}
	}
}

// affixes handles {{affix|lang|part|part...}}; one record per part.
func affixes(reltype string) Strategy {
	return func(c Context, n *wikitext.Node) []Record {
		lang := n.Arg(1)
		params := n.Positionals()
		if len(params) < 2 {
			return nil
		}
		tag := c.reg.newTag()
		var rv []Record
		for i := 2; i <= len(params); i++ {
			rec := c.record(reltype, lang, n.Arg(i))
			rec.GroupTag = tag
			rec.Position = i - 2
			rv = append(rv, rec)
		}
		return rv
	}
}

// parsedAffix handles the affix chains folded out of "a + b" text.
// Its parameters are the original templates.
func parsedAffix(c Context, n *wikitext.Node) []Record {
	tag := c.reg.newTag()
	var rv []Record
	for i, member := range members(n) {
		lang, term := mentionOf(member)
		rec := c.record(HasAffix, lang, term)
		rec.GroupTag = tag
		rec.Position = i
		rv = append(rv, rec)
	}
	return rv
}

// grouped handles folded comma lists and "from" lineages: each member
// is resolved on its own and the results are tied into one group.
func grouped(c Context, n *wikitext.Node) []Record {
	tag := c.reg.newTag()
	var rv []Record
	for i, member := range members(n) {
		recs := c.resolve(member)
		stamp(recs, tag, i)
		rv = append(rv, recs...)
	}
	return rv
}

// members returns the template nodes held by a folded template.
func members(n *wikitext.Node) []*wikitext.Node {
	var rv []*wikitext.Node
	for _, p := range n.Positionals() {
		for _, m := range p.Value.Nodes {
			if m.Kind == wikitext.Template {
				rv = append(rv, m)
			}
		}
	}
	return rv
}

// mentionOf finds the language and term a template points at.
func mentionOf(n *wikitext.Node) (lang, term string) {
	switch {
	case n.Is(mentionNames...), n.Is("cog", "cognate", "ncog", "noncognate"):
		return n.Arg(1), n.Arg(2)
	case n.Is("affix", "af", "prefix", "pre", "suffix", "suf", "confix", "con", "compound", "com", "blend"):
		return "", ""
	default:
		return n.Arg(2), n.Arg(3)
	}
}

// Package etym turns etymology templates into flat relation records.
//
// A Registry maps template names to strategies. Each strategy looks at
// one template invocation found in a term's etymology section and
// produces zero or more Records describing how the term relates to
// other terms.
package etym

import (
	"strconv"

	"github.com/google/uuid"
)

// termSpace namespaces the name-based term ids.
var termSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://en.wiktionary.org/wiki/"))

// A Record is one etymological relation between two terms.
type Record struct {
	TermID        string
	Lang          string
	Term          string
	Reltype       string
	RelatedTermID string
	RelatedLang   string
	RelatedTerm   string

	// Records produced from one combined template share a GroupTag
	// and are ordered by Position.
	Position int
	GroupTag string

	// When a group is itself a member of an enclosing group, ParentTag
	// and ParentPosition locate it there.
	ParentTag      string
	ParentPosition int
}

var header = []string{
	"term_id", "lang", "term", "reltype",
	"related_term_id", "related_lang", "related_term",
	"position", "group_tag", "parent_tag", "parent_position",
}

// Header returns the column names matching Row.
func Header() []string {
	rv := make([]string, len(header))
	copy(rv, header)
	return rv
}

// TermID computes the stable id of a term in a language.
func TermID(lang, term string) string {
	return uuid.NewSHA1(termSpace, []byte(lang+":"+term)).String()
}

// Row serializes the record in Header order.
func (r Record) Row() []string {
	parentPos := ""
	if r.ParentTag != "" {
		parentPos = strconv.Itoa(r.ParentPosition)
	}
	return []string{
		r.TermID, r.Lang, r.Term, r.Reltype,
		r.RelatedTermID, r.RelatedLang, r.RelatedTerm,
		strconv.Itoa(r.Position), r.GroupTag, r.ParentTag, parentPos,
	}
}

// Valid reports whether the record names both ends of the relation.
func (r Record) Valid() bool {
	return r.Term != "" && r.Lang != "" && r.Reltype != "" &&
		r.RelatedLang != "" && r.RelatedTerm != "" && r.RelatedTerm != "-"
}

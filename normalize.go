package wikietym

import (
	"regexp"
	"strings"

	"github.com/dustin/go-wikietym/wikitext"
)

// Names of the templates synthesized by Normalize.
const (
	DerivedParsed = "derived-parsed"
	AffixParsed   = "affix-parsed"
	RelatedParsed = "related-parsed"
	FromParsed    = "from-parsed"
)

// DefaultLanguage is assumed by an etyl template with no target language.
const DefaultLanguage = "en"

const etylName = "etyl"

var (
	mentionNames = []string{"m", "mention", "m+", "langname-mention", "l", "link"}
	nonLetterRE  = regexp.MustCompile(`[^a-z]+`)
)

// Normalize rewrites one etymology section in place so that each
// etymological statement is a single top-level template.
//
// The order of the passes matters: "+" binds tighter than ",", which
// binds tighter than "from".
func Normalize(wc *wikitext.Wikicode) {
	prune(wc)
	MergeEtyl(wc)
	CombineChains(wc, isPlus, AffixParsed)
	CombineChains(wc, isComma, RelatedParsed)
	CombineChains(wc, isFrom, FromParsed)
	DerefLinks(wc)
}

func isPlus(n *wikitext.Node) bool {
	return n.Kind == wikitext.Text && strings.TrimSpace(n.Value) == "+"
}

func isComma(n *wikitext.Node) bool {
	return n.Kind == wikitext.Text && strings.TrimSpace(n.Value) == ","
}

func isFrom(n *wikitext.Node) bool {
	if n.Kind != wikitext.Text {
		return false
	}
	return strings.TrimSpace(n.Value) == "<" ||
		nonLetterRE.ReplaceAllString(strings.ToLower(n.Value), "") == "from"
}

// prune keeps only non-blank text, links and templates.
func prune(wc *wikitext.Wikicode) {
	kept := make([]*wikitext.Node, 0, len(wc.Nodes))
	for _, n := range wc.Nodes {
		switch n.Kind {
		case wikitext.Text:
			if strings.TrimSpace(n.Value) != "" {
				kept = append(kept, n)
			}
		case wikitext.Link, wikitext.Template:
			kept = append(kept, n)
		case wikitext.Heading, wikitext.Comment, wikitext.Tag,
			wikitext.ExternalLink, wikitext.Entity, wikitext.Argument:
		}
	}
	wc.Nodes = kept
}

// MergeEtyl replaces each deprecated {{etyl}} template with a
// derived-parsed template built from it and the word that follows. An
// etyl that cannot be paired with a word is dropped.
func MergeEtyl(wc *wikitext.Wikicode) {
	nodes := wc.Nodes
	replace := map[int]*wikitext.Node{}
	remove := map[int]bool{}
	for i, n := range nodes {
		if !n.Is(etylName) || i == len(nodes)-1 {
			continue
		}
		merged, consumed := foldEtyl(n, nodes[i+1])
		if merged == nil {
			remove[i] = true
			continue
		}
		replace[i] = merged
		if consumed {
			remove[i+1] = true
		}
	}
	if len(replace) == 0 && len(remove) == 0 {
		return
	}

	rv := make([]*wikitext.Node, 0, len(nodes))
	for i, n := range nodes {
		switch {
		case replace[i] != nil:
			rv = append(rv, replace[i])
		case !remove[i]:
			rv = append(rv, n)
		}
	}
	wc.Nodes = rv
}

// foldEtyl pairs an etyl template with its successor. consumed reports
// whether the successor was absorbed and must go.
func foldEtyl(etyl, next *wikitext.Node) (merged *wikitext.Node, consumed bool) {
	if len(etyl.Positionals()) == 0 {
		return nil, false
	}
	related := etyl.Arg(1)
	lang := DefaultLanguage
	if len(etyl.Positionals()) >= 2 {
		lang = etyl.Arg(2)
	}

	var value string
	switch next.Kind {
	case wikitext.Text:
		value = firstWord(next.Value)
	case wikitext.Link:
		value = firstWord(next.LinkText())
	case wikitext.Template:
		if next.Is(mentionNames...) && len(next.Positionals()) > 0 {
			related = next.Arg(1)
			if len(next.Positionals()) > 1 {
				value = next.Arg(2)
				consumed = true
			}
		}
	case wikitext.Heading, wikitext.Comment, wikitext.Tag,
		wikitext.ExternalLink, wikitext.Entity, wikitext.Argument:
	}
	if value == "" {
		return nil, false
	}
	return wikitext.NewTemplate(DerivedParsed, wikitext.PositionalStrings(lang, related, value)...), consumed
}

func firstWord(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(words) == 0 {
		return ""
	}
	return strings.TrimSpace(words[0])
}

// DerefLinks replaces every link, including those nested in template
// parameters, with a text node holding its visible text.
func DerefLinks(wc *wikitext.Wikicode) {
	for i, n := range wc.Nodes {
		switch n.Kind {
		case wikitext.Link:
			wc.Nodes[i] = wikitext.NewText(n.LinkText())
		case wikitext.Template:
			for j := range n.Params {
				DerefLinks(&n.Params[j].Value)
			}
		case wikitext.Heading:
			DerefLinks(&n.Title)
		case wikitext.Text, wikitext.Comment, wikitext.Tag,
			wikitext.ExternalLink, wikitext.Entity, wikitext.Argument:
		}
	}
}

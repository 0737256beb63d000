package wikitext

import (
	"html"
	"strconv"
	"strings"
)

// Kind identifies which variant a Node holds.
type Kind int

const (
	// Text is a run of plain characters.
	Text Kind = iota
	// Link is an internal [[target|display]] link.
	Link
	// Template is a {{name|params}} invocation.
	Template
	// Heading is a == title == line.
	Heading
	// Comment is an <!-- html comment -->.
	Comment
	// Tag is an html-ish tag such as <ref>...</ref> or <br/>.
	Tag
	// ExternalLink is a [http://... label] link.
	ExternalLink
	// Entity is an html character entity such as &nbsp;.
	Entity
	// Argument is a {{{parameter}}} reference.
	Argument
)

var kindNames = [...]string{
	Text:         "Text",
	Link:         "Link",
	Template:     "Template",
	Heading:      "Heading",
	Comment:      "Comment",
	Tag:          "Tag",
	ExternalLink: "ExternalLink",
	Entity:       "Entity",
	Argument:     "Argument",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(?)"
	}
	return kindNames[k]
}

// A Node is one element of parsed wikitext.
//
// Which fields are meaningful depends on Kind:
//
//	Text          Value
//	Link          Value (target), Display, HasDisplay
//	Template      Value (name), Params
//	Heading       Title, Level
//	Comment, Tag, ExternalLink, Entity, Argument
//	              Value (the raw source)
type Node struct {
	Kind       Kind
	Value      string
	Display    string
	HasDisplay bool
	Params     []Param
	Title      Wikicode
	Level      int
}

// A Param is a single template parameter.
type Param struct {
	// Name is the explicit key, or the positional index ("1", "2", ...).
	Name  string
	Value Wikicode
	// Showkey is true when the key was written out as name=value.
	Showkey bool
}

// String renders the parameter value.
func (p Param) String() string {
	return p.Value.String()
}

// NewText makes a Text node.
func NewText(s string) *Node {
	return &Node{Kind: Text, Value: s}
}

// NewLink makes a Link node. An empty display means no display text.
func NewLink(target, display string) *Node {
	return &Node{Kind: Link, Value: target, Display: display, HasDisplay: display != ""}
}

// NewTemplate makes a Template node with the given parameters.
func NewTemplate(name string, params ...Param) *Node {
	return &Node{Kind: Template, Value: name, Params: params}
}

// Positional builds positional parameters 1..n, one per value.
func Positional(values ...Wikicode) []Param {
	rv := make([]Param, 0, len(values))
	for i, v := range values {
		rv = append(rv, Param{Name: strconv.Itoa(i + 1), Value: v})
	}
	return rv
}

// PositionalStrings is Positional for plain text values.
func PositionalStrings(values ...string) []Param {
	wcs := make([]Wikicode, 0, len(values))
	for _, v := range values {
		wcs = append(wcs, Wikicode{Nodes: []*Node{NewText(v)}})
	}
	return Positional(wcs...)
}

// Name returns the template name.
func (n *Node) Name() string {
	return n.Value
}

// Is reports whether n is a template with one of the given names.
func (n *Node) Is(names ...string) bool {
	if n.Kind != Template {
		return false
	}
	for _, name := range names {
		if n.Value == name {
			return true
		}
	}
	return false
}

// Arg returns the visible text of the i'th positional parameter
// (1-based), trimmed, or "" if there is none.
func (n *Node) Arg(i int) string {
	p, ok := n.Get(strconv.Itoa(i))
	if !ok {
		return ""
	}
	return strings.TrimSpace(p.Value.StripCode())
}

// Positionals returns the positional parameters in order.
func (n *Node) Positionals() []Param {
	var rv []Param
	for _, p := range n.Params {
		if !p.Showkey {
			rv = append(rv, p)
		}
	}
	return rv
}

// Get finds a parameter by name. Later duplicates win, as in MediaWiki.
func (n *Node) Get(name string) (Param, bool) {
	for i := len(n.Params) - 1; i >= 0; i-- {
		if n.Params[i].Name == name {
			return n.Params[i], true
		}
	}
	return Param{}, false
}

// LinkText is the display text of a link, or its target if it has none.
func (n *Node) LinkText() string {
	if n.HasDisplay && n.Display != "" {
		return n.Display
	}
	return n.Value
}

func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	switch n.Kind {
	case Text, Comment, Tag, ExternalLink, Entity, Argument:
		b.WriteString(n.Value)
	case Link:
		b.WriteString("[[")
		b.WriteString(n.Value)
		if n.HasDisplay {
			b.WriteByte('|')
			b.WriteString(n.Display)
		}
		b.WriteString("]]")
	case Template:
		b.WriteString("{{")
		b.WriteString(n.Value)
		for _, p := range n.Params {
			b.WriteByte('|')
			if p.Showkey {
				b.WriteString(p.Name)
				b.WriteByte('=')
			}
			p.Value.write(b)
		}
		b.WriteString("}}")
	case Heading:
		eq := strings.Repeat("=", n.Level)
		b.WriteString(eq)
		n.Title.write(b)
		b.WriteString(eq)
	default:
		panic("wikitext: unknown node kind " + n.Kind.String())
	}
}

// Wikicode is an ordered sequence of nodes in document order.
type Wikicode struct {
	Nodes []*Node
}

func (w Wikicode) String() string {
	var b strings.Builder
	w.write(&b)
	return b.String()
}

func (w Wikicode) write(b *strings.Builder) {
	for _, n := range w.Nodes {
		n.write(b)
	}
}

// Templates returns the top-level template nodes.
func (w Wikicode) Templates() []*Node {
	var rv []*Node
	for _, n := range w.Nodes {
		if n.Kind == Template {
			rv = append(rv, n)
		}
	}
	return rv
}

// StripCode renders the human-visible text: plain text, link labels
// and entities; templates, comments and tags are dropped.
func (w Wikicode) StripCode() string {
	var b strings.Builder
	for _, n := range w.Nodes {
		switch n.Kind {
		case Text:
			b.WriteString(n.Value)
		case Link:
			b.WriteString(n.LinkText())
		case Entity:
			b.WriteString(html.UnescapeString(n.Value))
		case Template, Heading, Comment, Tag, ExternalLink, Argument:
		}
	}
	return b.String()
}

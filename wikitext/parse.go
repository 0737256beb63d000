package wikitext

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	externalLinkRE = regexp.MustCompile(`^\[(?:https?:|ftp:)?//[^\]\n]*\]`)
	tagRE          = regexp.MustCompile(`^<(/?)([a-zA-Z][a-zA-Z0-9]*)(?:\s[^<>]*?)?\s*(/?)>`)
	entityRE       = regexp.MustCompile(`^&(?:#[0-9]+|#[xX][0-9a-fA-F]+|[a-zA-Z][a-zA-Z0-9]*);`)
)

// context says which closing tokens end the current run of nodes.
type context int

const (
	ctxTop context = iota
	ctxInline
	ctxTemplate
	ctxArgument
)

type parser struct {
	s   string
	pos int

	// bad remembers constructs that failed to close. Whether one closes
	// depends only on the input from its start, so it is never retried.
	bad map[route]bool
}

type route struct {
	pos  int
	kind Kind
}

func (p *parser) failed(pos int, k Kind) bool {
	return p.bad[route{pos, k}]
}

func (p *parser) fail(pos int, k Kind) {
	if p.bad == nil {
		p.bad = map[route]bool{}
	}
	p.bad[route{pos, k}] = true
}

// Parse turns wikitext into a flat sequence of top-level nodes.
//
// Parsing never fails: anything that does not form a well-closed
// construct is kept as plain text.
func Parse(s string) Wikicode {
	p := &parser{s: s}
	nodes, _ := p.parse(ctxTop)
	return Wikicode{Nodes: nodes}
}

func parseInline(s string) Wikicode {
	p := &parser{s: s}
	nodes, _ := p.parse(ctxInline)
	return Wikicode{Nodes: nodes}
}

// parse consumes nodes until a closing token of ctx, which is
// consumed and returned, or the end of input, where "" is returned.
func (p *parser) parse(ctx context) ([]*Node, string) {
	var nodes []*Node
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, NewText(text.String()))
			text.Reset()
		}
	}
	emit := func(n *Node) {
		flush()
		nodes = append(nodes, n)
	}

	for p.pos < len(p.s) {
		rest := p.s[p.pos:]
		switch ctx {
		case ctxTemplate:
			if rest[0] == '|' {
				flush()
				p.pos++
				return nodes, "|"
			}
			if strings.HasPrefix(rest, "}}") {
				flush()
				p.pos += 2
				return nodes, "}}"
			}
		case ctxArgument:
			if strings.HasPrefix(rest, "}}}") {
				flush()
				p.pos += 3
				return nodes, "}}}"
			}
		}

		var n *Node
		switch rest[0] {
		case '{':
			n = p.braces()
		case '[':
			if strings.HasPrefix(rest, "[[") {
				n = p.link()
			} else {
				n = p.externalLink()
			}
		case '<':
			if strings.HasPrefix(rest, "<!--") {
				n = p.comment()
			} else {
				n = p.tag()
			}
		case '&':
			n = p.entity()
		case '=':
			if ctx == ctxTop && (p.pos == 0 || p.s[p.pos-1] == '\n') {
				n = p.heading()
			}
		}
		if n != nil {
			emit(n)
			continue
		}
		text.WriteByte(rest[0])
		p.pos++
	}
	flush()
	return nodes, ""
}

func (p *parser) braces() *Node {
	start := p.pos
	if strings.HasPrefix(p.s[start:], "{{{") && !p.failed(start, Argument) {
		p.pos += 3
		if _, stop := p.parse(ctxArgument); stop == "}}}" {
			return &Node{Kind: Argument, Value: p.s[start:p.pos]}
		}
		p.fail(start, Argument)
		p.pos = start
	}
	if !strings.HasPrefix(p.s[start:], "{{") || p.failed(start, Template) {
		return nil
	}
	if n := p.template(); n != nil {
		return n
	}
	p.fail(start, Template)
	p.pos = start
	return nil
}

func (p *parser) template() *Node {
	p.pos += 2
	nameNodes, stop := p.parse(ctxTemplate)
	if stop == "" {
		return nil
	}
	name := strings.TrimSpace(Wikicode{Nodes: nameNodes}.String())
	if name == "" {
		return nil
	}

	n := &Node{Kind: Template, Value: name}
	positional := 0
	for stop == "|" {
		var value []*Node
		value, stop = p.parse(ctxTemplate)
		if stop == "" {
			return nil
		}
		if key, rest, ok := splitKey(value); ok {
			n.Params = append(n.Params, Param{Name: key, Value: Wikicode{Nodes: rest}, Showkey: true})
			continue
		}
		positional++
		n.Params = append(n.Params, Param{Name: strconv.Itoa(positional), Value: Wikicode{Nodes: value}})
	}
	return n
}

// splitKey finds a name= prefix in the leading text nodes of a
// parameter value.
func splitKey(value []*Node) (string, []*Node, bool) {
	var key strings.Builder
	for i, n := range value {
		if n.Kind != Text {
			return "", nil, false
		}
		eq := strings.IndexByte(n.Value, '=')
		if eq < 0 {
			key.WriteString(n.Value)
			continue
		}
		key.WriteString(n.Value[:eq])
		var rest []*Node
		if tail := n.Value[eq+1:]; tail != "" {
			rest = append(rest, NewText(tail))
		}
		rest = append(rest, value[i+1:]...)
		return strings.TrimSpace(key.String()), rest, true
	}
	return "", nil, false
}

func (p *parser) link() *Node {
	if p.failed(p.pos, Link) {
		return nil
	}
	n := p.scanLink()
	if n == nil {
		p.fail(p.pos, Link)
	}
	return n
}

func (p *parser) scanLink() *Node {
	start := p.pos + 2
	i := start
	for ; i < len(p.s); i++ {
		if p.s[i] == '|' || strings.HasPrefix(p.s[i:], "]]") {
			break
		}
		if p.s[i] == '\n' || strings.HasPrefix(p.s[i:], "[[") {
			return nil
		}
	}
	if i >= len(p.s) {
		return nil
	}
	target := strings.TrimSpace(p.s[start:i])
	if target == "" {
		return nil
	}
	if p.s[i] == ']' {
		p.pos = i + 2
		return &Node{Kind: Link, Value: target}
	}

	dstart := i + 1
	depth := 1
	for j := dstart; j < len(p.s)-1; j++ {
		switch {
		case strings.HasPrefix(p.s[j:], "[["):
			depth++
			j++
		case strings.HasPrefix(p.s[j:], "]]"):
			depth--
			if depth == 0 {
				p.pos = j + 2
				return &Node{Kind: Link, Value: target, Display: p.s[dstart:j], HasDisplay: true}
			}
			j++
		}
	}
	return nil
}

func (p *parser) externalLink() *Node {
	m := externalLinkRE.FindString(p.s[p.pos:])
	if m == "" {
		return nil
	}
	p.pos += len(m)
	return &Node{Kind: ExternalLink, Value: m}
}

func (p *parser) comment() *Node {
	rest := p.s[p.pos:]
	end := strings.Index(rest[4:], "-->")
	if end < 0 {
		p.pos = len(p.s)
		return &Node{Kind: Comment, Value: rest}
	}
	raw := rest[:4+end+3]
	p.pos += len(raw)
	return &Node{Kind: Comment, Value: raw}
}

func (p *parser) tag() *Node {
	rest := p.s[p.pos:]
	m := tagRE.FindStringSubmatch(rest)
	if m == nil {
		return nil
	}
	raw := m[0]
	closing, name, selfClosing := m[1] != "", m[2], m[3] != ""
	if !closing && !selfClosing {
		if end := findClose(rest[len(raw):], name); end >= 0 {
			raw = rest[:len(raw)+end]
		}
	}
	p.pos += len(raw)
	return &Node{Kind: Tag, Value: raw}
}

// findClose returns the offset just past the </name> that closes a
// tag, or -1.
func findClose(s, name string) int {
	off := 0
	for {
		i := strings.Index(s[off:], "</")
		if i < 0 {
			return -1
		}
		i += off
		j := i + 2 + len(name)
		if j <= len(s) && strings.EqualFold(s[i+2:j], name) {
			k := j
			for k < len(s) && (s[k] == ' ' || s[k] == '\t') {
				k++
			}
			if k < len(s) && s[k] == '>' {
				return k + 1
			}
		}
		off = i + 2
	}
}

func (p *parser) entity() *Node {
	m := entityRE.FindString(p.s[p.pos:])
	if m == "" {
		return nil
	}
	p.pos += len(m)
	return &Node{Kind: Entity, Value: m}
}

func (p *parser) heading() *Node {
	rest := p.s[p.pos:]
	line := rest
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		line = rest[:nl]
	}
	trimmed := strings.TrimRight(line, " \t\r")

	left := 0
	for left < len(trimmed) && trimmed[left] == '=' {
		left++
	}
	right := 0
	for right < len(trimmed)-left && trimmed[len(trimmed)-1-right] == '=' {
		right++
	}
	level := min(left, right, 6)
	if level == 0 || len(trimmed) <= 2*level {
		return nil
	}

	p.pos += len(line)
	return &Node{
		Kind:  Heading,
		Level: level,
		Title: parseInline(trimmed[level : len(trimmed)-level]),
	}
}

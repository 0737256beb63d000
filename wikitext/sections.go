package wikitext

import (
	"regexp"
	"strings"
)

// A Section is a heading and the nodes that follow it.
//
// Nodes[0] is always the heading itself.
type Section struct {
	Wikicode
}

// Heading returns the heading node that opens the section.
func (s Section) Heading() *Node {
	return s.Nodes[0]
}

// Title returns the visible text of the section heading, trimmed.
func (s Section) Title() string {
	return strings.TrimSpace(s.Heading().Title.StripCode())
}

// Level returns the heading level of the section.
func (s Section) Level() int {
	return s.Heading().Level
}

// Sections returns every section opened by a heading of exactly the
// given level. Each includes its subsections, running until the next
// heading of the same or a shallower level.
func (w Wikicode) Sections(level int) []Section {
	var rv []Section
	start := -1
	for i, n := range w.Nodes {
		if n.Kind != Heading || n.Level > level {
			continue
		}
		if start >= 0 {
			rv = append(rv, Section{Wikicode{Nodes: w.Nodes[start:i]}})
			start = -1
		}
		if n.Level == level {
			start = i
		}
	}
	if start >= 0 {
		rv = append(rv, Section{Wikicode{Nodes: w.Nodes[start:]}})
	}
	return rv
}

// FlatSections returns the sections whose heading title matches re.
// Each stops at the next heading of any level. Headings nested below a
// matching heading are skipped rather than matched themselves.
//
// The returned sections own their node slices, so they may be rewritten
// without disturbing w.
func (w Wikicode) FlatSections(re *regexp.Regexp) []Section {
	var rv []Section
	skipBelow := 0
	for i, n := range w.Nodes {
		if n.Kind != Heading {
			continue
		}
		if skipBelow > 0 && n.Level > skipBelow {
			continue
		}
		skipBelow = 0
		if !re.MatchString(n.Title.StripCode()) {
			continue
		}
		skipBelow = n.Level
		end := len(w.Nodes)
		for j := i + 1; j < len(w.Nodes); j++ {
			if w.Nodes[j].Kind == Heading {
				end = j
				break
			}
		}
		nodes := make([]*Node, end-i)
		copy(nodes, w.Nodes[i:end])
		rv = append(rv, Section{Wikicode{Nodes: nodes}})
	}
	return rv
}

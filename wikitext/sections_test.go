package wikitext

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoLanguages = `==English==
===Etymology 1===
From {{inh|en|enm|x}}.
====Etymology notes====
{{bor|en|fr|ignored}}
===Pronunciation===
* {{IPA|en|/x/}}
===Etymology 2===
{{bor|en|fr|y}}
==French==
===Etymology===
{{inh|fr|la|z}}
`

var etymologyRE = regexp.MustCompile(`(?i)etymology`)

func TestSections(t *testing.T) {
	wc := Parse(twoLanguages)
	langs := wc.Sections(2)
	require.Len(t, langs, 2)
	assert.Equal(t, "English", langs[0].Title())
	assert.Equal(t, "French", langs[1].Title())
	assert.Equal(t, 2, langs[0].Level())

	// The English section holds all of its subsections.
	assert.Len(t, langs[0].Templates(), 4)
	heads := 0
	for _, n := range langs[0].Nodes {
		if n.Kind == Heading {
			heads++
		}
	}
	assert.Equal(t, 5, heads)
}

func TestFlatSections(t *testing.T) {
	wc := Parse(twoLanguages)
	en := wc.Sections(2)[0]

	etys := Wikicode{Nodes: en.Nodes[1:]}.FlatSections(etymologyRE)
	require.Len(t, etys, 2)
	assert.Equal(t, "Etymology 1", etys[0].Title())
	assert.Equal(t, "Etymology 2", etys[1].Title())

	first := etys[0].Templates()
	require.Len(t, first, 1)
	assert.Equal(t, "x", first[0].Arg(3))

	second := etys[1].Templates()
	require.Len(t, second, 1)
	assert.Equal(t, "y", second[0].Arg(3))
}

func TestFlatSectionsOwnTheirNodes(t *testing.T) {
	wc := Parse(twoLanguages)
	etys := wc.FlatSections(etymologyRE)
	require.NotEmpty(t, etys)

	etys[0].Nodes[0] = NewText("replaced")
	assert.Equal(t, Heading, wc.Nodes[2].Kind)
}

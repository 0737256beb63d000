package wikietym

import (
	"testing"

	"github.com/dustin/go-wikietym/wikitext"
)

func tpl(name string, args ...string) *wikitext.Node {
	return wikitext.NewTemplate(name, wikitext.PositionalStrings(args...)...)
}

func txt(s string) *wikitext.Node {
	return wikitext.NewText(s)
}

// shape describes nodes compactly: template names, or the quoted text.
func shape(nodes []*wikitext.Node) []string {
	var rv []string
	for _, n := range nodes {
		switch n.Kind {
		case wikitext.Template:
			rv = append(rv, n.Name())
		default:
			rv = append(rv, "'"+n.String()+"'")
		}
	}
	return rv
}

func sameShape(t *testing.T, got []*wikitext.Node, want ...string) {
	t.Helper()
	s := shape(got)
	if len(s) != len(want) {
		t.Fatalf("Expected %q, got %q", want, s)
	}
	for i := range s {
		if s[i] != want[i] {
			t.Fatalf("Expected %q, got %q", want, s)
		}
	}
}

func members(t *testing.T, n *wikitext.Node) []*wikitext.Node {
	t.Helper()
	var rv []*wikitext.Node
	for _, p := range n.Params {
		if len(p.Value.Nodes) != 1 {
			t.Fatalf("Expected one node per parameter, got %v", p.Value.Nodes)
		}
		rv = append(rv, p.Value.Nodes[0])
	}
	return rv
}

func TestCombineTwo(t *testing.T) {
	a, b := tpl("A"), tpl("B")
	wc := wikitext.Wikicode{Nodes: []*wikitext.Node{a, txt(" + "), b}}
	CombineChains(&wc, isPlus, AffixParsed)

	sameShape(t, wc.Nodes, AffixParsed, "' + '")
	m := members(t, wc.Nodes[0])
	if len(m) != 2 || m[0] != a || m[1] != b {
		t.Fatalf("Expected members A and B, got %v", m)
	}
	if p := wc.Nodes[0].Params; p[0].Name != "1" || p[1].Name != "2" || p[0].Showkey {
		t.Errorf("Expected positional parameters, got %+v", p)
	}
}

func TestCombineChains(t *testing.T) {
	tests := []struct {
		name string
		in   []*wikitext.Node
		want []string
	}{
		{"lone template",
			[]*wikitext.Node{tpl("A"), txt("and")},
			[]string{"A", "'and'"}},
		{"separator without partner",
			[]*wikitext.Node{tpl("A"), txt("+"), txt("x")},
			[]string{"A", "'+'", "'x'"}},
		{"three members",
			[]*wikitext.Node{tpl("A"), txt("+"), tpl("B"), txt("+"), tpl("C")},
			[]string{AffixParsed, "'+'", "'+'"}},
		{"two independent chains",
			[]*wikitext.Node{tpl("A"), txt("+"), tpl("B"), txt("and"), tpl("C"), txt("+"), tpl("D")},
			[]string{AffixParsed, "'+'", "'and'", AffixParsed, "'+'"}},
		{"chain carried over other text",
			[]*wikitext.Node{tpl("A"), txt("+"), txt("x"), tpl("C"), txt("+"), tpl("D")},
			[]string{AffixParsed, "'+'", "'x'", "'+'"}},
		{"adjacent templates",
			[]*wikitext.Node{tpl("A"), tpl("B"), txt("+"), tpl("C")},
			[]string{"A", AffixParsed, "'+'"}},
		{"trailing separator",
			[]*wikitext.Node{tpl("A"), txt("+"), tpl("B"), txt("+")},
			[]string{AffixParsed, "'+'", "'+'"}},
		{"empty", nil, nil},
	}

	for _, test := range tests {
		wc := wikitext.Wikicode{Nodes: test.in}
		CombineChains(&wc, isPlus, AffixParsed)
		got := shape(wc.Nodes)
		if len(got) != len(test.want) {
			t.Errorf("%v: expected %q, got %q", test.name, test.want, got)
			continue
		}
		for i := range got {
			if got[i] != test.want[i] {
				t.Errorf("%v: expected %q, got %q", test.name, test.want, got)
				break
			}
		}
	}
}

func TestCombineKeepsMembersInOrder(t *testing.T) {
	a, b, c, d := tpl("A"), tpl("B"), tpl("C"), tpl("D")
	wc := wikitext.Wikicode{Nodes: []*wikitext.Node{
		txt("From"), a, txt(","), b, txt(","), c, txt("."), d, txt(","),
	}}
	CombineChains(&wc, isComma, RelatedParsed)

	sameShape(t, wc.Nodes, "'From'", RelatedParsed, "','", "','", "'.'", "D", "','")
	m := members(t, wc.Nodes[1])
	if len(m) != 3 || m[0] != a || m[1] != b || m[2] != c {
		t.Fatalf("Expected A, B, C; got %v", shape(m))
	}
}

func TestChainsAreMinimumTwo(t *testing.T) {
	nodes := []*wikitext.Node{tpl("A"), txt("+"), txt("y"), tpl("B")}
	if chains := findChains(nodes, isPlus); len(chains) != 0 {
		t.Fatalf("Expected no chains, got %v", chains)
	}
}

func TestChainOnlyExtendsOverOneSeparator(t *testing.T) {
	nodes := []*wikitext.Node{
		tpl("A"), txt("+"), txt("y"), tpl("B"), txt("+"), txt("z"), tpl("C"),
	}
	chains := findChains(nodes, isPlus)
	if len(chains) != 1 || len(chains[0]) != 2 || chains[0][0] != 0 || chains[0][1] != 3 {
		t.Fatalf("Expected [[0 3]], got %v", chains)
	}
}

func TestChainCarriedOverText(t *testing.T) {
	a, c, d := tpl("A"), tpl("C"), tpl("D")
	nodes := []*wikitext.Node{a, txt("+"), txt("x"), c, txt("+"), d}
	chains := findChains(nodes, isPlus)
	if len(chains) != 1 || len(chains[0]) != 3 ||
		chains[0][0] != 0 || chains[0][1] != 3 || chains[0][2] != 5 {
		t.Fatalf("Expected [[0 3 5]], got %v", chains)
	}

	wc := wikitext.Wikicode{Nodes: nodes}
	CombineChains(&wc, isPlus, AffixParsed)
	sameShape(t, wc.Nodes, AffixParsed, "'+'", "'x'", "'+'")
	m := members(t, wc.Nodes[0])
	if len(m) != 3 || m[0] != a || m[1] != c || m[2] != d {
		t.Fatalf("Expected A, C, D; got %v", shape(m))
	}
}

package wikietym

import (
	"github.com/dustin/go-wikietym/wikitext"
)

// CombineChains folds runs of templates separated by single separator
// nodes into one template called name, whose positional parameters are
// the original templates in order.
//
// The new template takes the place of the first member. The separators
// themselves stay where they were.
func CombineChains(wc *wikitext.Wikicode, isSeparator func(*wikitext.Node) bool, name string) {
	chains := findChains(wc.Nodes, isSeparator)
	if len(chains) == 0 {
		return
	}
	wc.Nodes = applyChains(wc.Nodes, chains, name)
}

// findChains plans every chain from the unmodified node list. Each
// chain is the ascending node indices of its members. A template joins
// the chain when a separator follows it, or when the chain's last member
// sits two nodes back and was itself followed by a separator.
func findChains(nodes []*wikitext.Node, isSeparator func(*wikitext.Node) bool) [][]int {
	var chains [][]int
	var chain []int
	flush := func() {
		if len(chain) > 1 {
			chains = append(chains, chain)
		}
		chain = nil
	}

	continuing := false
	for i, n := range nodes {
		if n.Kind != wikitext.Template {
			continue
		}
		starts := i+1 < len(nodes) && isSeparator(nodes[i+1])
		extends := continuing && len(chain) > 0 && chain[len(chain)-1] == i-2
		if starts || extends {
			chain = append(chain, i)
		}
		continuing = starts
		if !continuing {
			flush()
		}
	}
	flush()
	return chains
}

func applyChains(nodes []*wikitext.Node, chains [][]int, name string) []*wikitext.Node {
	heads := make(map[int]*wikitext.Node, len(chains))
	members := map[int]bool{}
	for _, chain := range chains {
		values := make([]wikitext.Wikicode, 0, len(chain))
		for _, i := range chain {
			values = append(values, wikitext.Wikicode{Nodes: []*wikitext.Node{nodes[i]}})
			members[i] = true
		}
		heads[chain[0]] = wikitext.NewTemplate(name, wikitext.Positional(values...)...)
	}

	rv := make([]*wikitext.Node, 0, len(nodes))
	for i, n := range nodes {
		if head, ok := heads[i]; ok {
			rv = append(rv, head)
		}
		if !members[i] {
			rv = append(rv, n)
		}
	}
	return rv
}

package wikietym

import (
	"sort"
)

// Diagnostics counts template names that had no extraction strategy.
//
// Each worker fills its own; the coordinator merges them.
type Diagnostics map[string]int

// Add counts one occurrence of name.
func (d *Diagnostics) Add(name string) {
	if *d == nil {
		*d = Diagnostics{}
	}
	(*d)[name]++
}

// Merge folds o into d.
func (d *Diagnostics) Merge(o Diagnostics) {
	if len(o) == 0 {
		return
	}
	if *d == nil {
		*d = Diagnostics{}
	}
	for k, v := range o {
		(*d)[k] += v
	}
}

// A NameCount is a template name and how often it was seen.
type NameCount struct {
	Name  string
	Count int
}

// Sorted lists the counts, most frequent first, ties by name.
func (d Diagnostics) Sorted() []NameCount {
	rv := make([]NameCount, 0, len(d))
	for k, v := range d {
		rv = append(rv, NameCount{k, v})
	}
	sort.Slice(rv, func(i, j int) bool {
		if rv[i].Count != rv[j].Count {
			return rv[i].Count > rv[j].Count
		}
		return rv[i].Name < rv[j].Name
	})
	return rv
}

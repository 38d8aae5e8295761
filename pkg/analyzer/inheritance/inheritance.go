// Package inheritance resolves base types by name and computes depth of
// inheritance and number of children over the resulting forest.
package inheritance

import (
	"sort"

	"github.com/panbanda/ooscan/pkg/analyzer/structure"
	"github.com/panbanda/ooscan/pkg/models"
)

// SymbolTable maps declaration names to their first occurrence. Later
// occurrences of a name are kept in the declaration list but never returned by
// Lookup; they are reported by Duplicates.
type SymbolTable struct {
	byName map[string]*models.TypeDeclaration
	counts map[string]int
	decls  []*models.TypeDeclaration
}

// NewSymbolTable indexes decls in order.
func NewSymbolTable(decls []*models.TypeDeclaration) *SymbolTable {
	st := &SymbolTable{
		byName: make(map[string]*models.TypeDeclaration, len(decls)),
		counts: make(map[string]int, len(decls)),
		decls:  decls,
	}
	for _, d := range decls {
		st.counts[d.Name]++
		if _, ok := st.byName[d.Name]; !ok {
			st.byName[d.Name] = d
		}
	}
	return st
}

// Lookup returns the first declaration named name.
func (st *SymbolTable) Lookup(name string) (*models.TypeDeclaration, bool) {
	d, ok := st.byName[name]
	return d, ok
}

// Has reports whether any declaration is named name.
func (st *SymbolTable) Has(name string) bool {
	_, ok := st.byName[name]
	return ok
}

// Len returns the number of distinct names.
func (st *SymbolTable) Len() int {
	return len(st.byName)
}

// Declarations returns every indexed declaration, duplicates included.
func (st *SymbolTable) Declarations() []*models.TypeDeclaration {
	return st.decls
}

// Duplicates returns the names declared more than once, sorted.
func (st *SymbolTable) Duplicates() []string {
	var dups []string
	for name, n := range st.counts {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}

// Resolve assigns BaseClass and Interfaces for every declaration. The first
// base-list entry naming a known declaration becomes the base; every other
// entry is an interface. With no match all entries are interfaces.
func (st *SymbolTable) Resolve() {
	for _, d := range st.decls {
		d.BaseClass = ""
		d.Interfaces = []string{}
		base := -1
		for i, entry := range d.BasesRaw {
			if st.Has(structure.BaseName(entry)) {
				base = i
				break
			}
		}
		for i, entry := range d.BasesRaw {
			if i == base {
				d.BaseClass = structure.BaseName(entry)
				continue
			}
			d.Interfaces = append(d.Interfaces, entry)
		}
	}
}

// DIT returns the depth of inheritance of the declaration named name. The walk
// follows resolved bases and stops at a missing declaration, a self base or a
// name already on the chain, so cycles yield a finite depth.
func (st *SymbolTable) DIT(name string) int {
	visited := make(map[string]bool)
	depth := 0
	for {
		d, ok := st.Lookup(name)
		if !ok {
			return depth
		}
		visited[name] = true
		if d.BaseClass == "" || d.BaseClass == d.Name || visited[d.BaseClass] {
			return depth
		}
		depth++
		name = d.BaseClass
	}
}

// Children returns, per base name, the distinct names of declarations whose
// resolved base it is. A declaration naming itself as base counts as its own
// child.
func (st *SymbolTable) Children() map[string]map[string]struct{} {
	children := make(map[string]map[string]struct{})
	for _, d := range st.decls {
		if d.BaseClass == "" {
			continue
		}
		set, ok := children[d.BaseClass]
		if !ok {
			set = make(map[string]struct{})
			children[d.BaseClass] = set
		}
		set[d.Name] = struct{}{}
	}
	return children
}

// NOC returns the number of distinct declarations directly inheriting from
// name.
func (st *SymbolTable) NOC(name string) int {
	return len(st.Children()[name])
}

// Apply resolves bases and writes DIT and NOC into every declaration.
func (st *SymbolTable) Apply() {
	st.Resolve()
	children := st.Children()
	for _, d := range st.decls {
		d.Metrics.DIT = st.DIT(d.Name)
		d.Metrics.NOC = len(children[d.Name])
	}
}

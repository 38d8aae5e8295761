package cohesion

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/panbanda/ooscan/pkg/analyzer/inheritance"
	"github.com/panbanda/ooscan/pkg/analyzer/structure"
	"github.com/panbanda/ooscan/pkg/models"
)

// FileResult is the per-file output of the worker pool.
type FileResult struct {
	Model *structure.FileModel
	Stats models.FileStats
}

// Aggregate merges per-file results into one repository model. Results are
// ordered by path first, so the same set of files always yields the same
// declarations and metrics regardless of the order workers finished in.
func Aggregate(results []*FileResult) *Analysis {
	ordered := make([]*FileResult, 0, len(results))
	for _, r := range results {
		if r != nil && r.Model != nil {
			ordered = append(ordered, r)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Model.Unit.Path < ordered[j].Model.Unit.Path
	})

	a := &Analysis{
		GeneratedAt:  time.Now().UTC(),
		Declarations: []*models.TypeDeclaration{},
		Methods:      []*models.MethodSpan{},
		Files:        make([]models.FileStats, 0, len(ordered)),
	}
	for _, r := range ordered {
		a.Declarations = append(a.Declarations, r.Model.Declarations...)
		a.Methods = append(a.Methods, r.Model.Methods...)
		a.FreeFunctions = append(a.FreeFunctions, r.Model.FreeFunctions...)
		a.Files = append(a.Files, r.Stats)
	}

	st := inheritance.NewSymbolTable(a.Declarations)
	st.Apply()

	for _, d := range a.Declarations {
		applyLocal(d)
		d.CoupledTo = CouplingSet(d.Identifiers, d.Name, st.Has)
		d.Metrics.CBO = len(d.CoupledTo)
		d.Metrics.FanIn = 0
	}

	g := couplingGraph(a.Declarations, st)
	for i, d := range a.Declarations {
		d.Metrics.FanIn = g.To(int64(i)).Len()
	}

	a.CalculateSummary()
	a.Summary.DuplicateNames = st.Duplicates()
	a.Summary.CouplingCycles = couplingCycles(g, a.Declarations)
	return a
}

// couplingGraph has one node per declaration occurrence, keyed by its index,
// and an edge from each declaration to the first occurrence of every name it
// couples to.
func couplingGraph(decls []*models.TypeDeclaration, st *inheritance.SymbolTable) *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	first := make(map[*models.TypeDeclaration]int64, len(decls))
	for i, d := range decls {
		g.AddNode(simple.Node(int64(i)))
		first[d] = int64(i)
	}
	for i, d := range decls {
		for _, name := range d.CoupledTo {
			target, ok := st.Lookup(name)
			if !ok {
				continue
			}
			to := first[target]
			if to == int64(i) {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(int64(i)), simple.Node(to)))
		}
	}
	return g
}

// couplingCycles returns the strongly connected components with more than
// one declaration, as sorted name lists in sorted order.
func couplingCycles(g *simple.DirectedGraph, decls []*models.TypeDeclaration) [][]string {
	var cycles [][]string
	for _, component := range topo.TarjanSCC(g) {
		if len(component) < 2 {
			continue
		}
		names := make([]string, 0, len(component))
		for _, n := range component {
			names = append(names, decls[n.ID()].Name)
		}
		sort.Strings(names)
		cycles = append(cycles, names)
	}
	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles
}

package cohesion

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/panbanda/ooscan/pkg/models"
)

// WMC is the sum of the attached methods' complexity.
func WMC(methods []*models.MethodSpan) int {
	total := 0
	for _, m := range methods {
		total += m.Complexity
	}
	return total
}

// RFC is the method count plus the number of distinct call tokens across all
// methods.
func RFC(methods []*models.MethodSpan) int {
	calls := make(map[string]struct{})
	for _, m := range methods {
		for _, c := range m.Calls {
			calls[c] = struct{}{}
		}
	}
	return len(methods) + len(calls)
}

// LCOM compares every unordered pair of methods: pairs with disjoint field
// usage count against pairs sharing at least one field. The result is
// disjoint minus sharing, clamped at zero; zero or one method gives 0.
func LCOM(methods []*models.MethodSpan, fields models.FieldSet) int {
	if len(methods) <= 1 {
		return 0
	}

	index := make(map[string]uint32, len(fields))
	for i, name := range fields.Sorted() {
		index[name] = uint32(i)
	}

	usage := make([]*roaring.Bitmap, len(methods))
	for i, m := range methods {
		bm := roaring.New()
		for _, f := range m.FieldUsage {
			if id, ok := index[f]; ok {
				bm.Add(id)
			}
		}
		usage[i] = bm
	}

	disjoint, shared := 0, 0
	for i := 0; i < len(usage); i++ {
		for j := i + 1; j < len(usage); j++ {
			if usage[i].Intersects(usage[j]) {
				shared++
			} else {
				disjoint++
			}
		}
	}
	return max(disjoint-shared, 0)
}

// CouplingSet returns the known declaration names, other than self, among the
// identifiers of a declaration's text.
func CouplingSet(identifiers map[string]struct{}, self string, known func(string) bool) []string {
	var coupled []string
	for _, id := range models.SortedKeys(identifiers) {
		if id != self && known(id) {
			coupled = append(coupled, id)
		}
	}
	return coupled
}

// applyLocal computes the metrics that depend only on one declaration.
func applyLocal(d *models.TypeDeclaration) {
	d.Metrics.WMC = WMC(d.Methods)
	d.Metrics.RFC = RFC(d.Methods)
	d.Metrics.LCOM = LCOM(d.Methods, d.Fields)
}

package models

import "sort"

// Kind is the declared kind of a type declaration.
type Kind string

const (
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindRecord    Kind = "record"
)

// ParseKind maps a kind keyword to a Kind. The second result is false for
// anything outside the closed set.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindClass, KindStruct, KindInterface, KindRecord:
		return Kind(s), true
	default:
		return "", false
	}
}

// Metrics holds the OO metrics of one declaration. All values are non-negative
// and stay zero until computed.
type Metrics struct {
	// Depth of inheritance along resolved base links
	DIT int `json:"dit"`
	// Declarations whose resolved base is this one
	NOC int `json:"noc"`
	// Sum of attached method complexity
	WMC int `json:"wmc"`
	// Method count plus distinct call tokens
	RFC int `json:"rfc"`
	// Disjoint method pairs minus sharing pairs, clamped at zero
	LCOM int `json:"lcom"`
	// Other known declarations mentioned in the body
	CBO int `json:"cbo"`
	// Other declarations that mention this one
	FanIn int `json:"fan_in"`
}

// FieldSet is the set of simple field names owned by one declaration.
type FieldSet map[string]struct{}

// NewFieldSet creates a FieldSet holding names.
func NewFieldSet(names ...string) FieldSet {
	fs := make(FieldSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}
	return fs
}

// Add inserts name.
func (f FieldSet) Add(name string) {
	f[name] = struct{}{}
}

// Has reports whether name is in the set.
func (f FieldSet) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Sorted returns the names in lexical order.
func (f FieldSet) Sorted() []string {
	return SortedKeys(f)
}

// TypeDeclaration is one recovered class, struct, interface or record.
type TypeDeclaration struct {
	Name      string   `json:"name"`
	Kind      Kind     `json:"kind"`
	Path      string   `json:"file_path"`
	StartLine int      `json:"start_line"`
	EndLine   int      `json:"end_line"`
	Namespace string   `json:"namespace,omitempty"`
	BasesRaw  []string `json:"bases_raw"`

	// Set by the inheritance resolver
	BaseClass  string   `json:"base_class,omitempty"`
	Interfaces []string `json:"interfaces"`

	Fields  FieldSet      `json:"-"`
	Methods []*MethodSpan `json:"-"`
	Metrics Metrics       `json:"metrics"`

	// Identifiers seen in the normalized declaration text, attributes
	// included. Narrowed to known declaration
	// names by the aggregator, which turns it into CoupledTo.
	Identifiers map[string]struct{} `json:"-"`
	CoupledTo   []string            `json:"-"`
}

// MethodNames returns the names of the attached methods in attachment order.
func (d *TypeDeclaration) MethodNames() []string {
	names := make([]string, len(d.Methods))
	for i, m := range d.Methods {
		names[i] = m.Name
	}
	return names
}

// SortedKeys returns the keys of a string set in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

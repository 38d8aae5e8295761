package inheritance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/ooscan/pkg/models"
)

func decl(name string, bases ...string) *models.TypeDeclaration {
	return &models.TypeDeclaration{Name: name, Kind: models.KindClass, BasesRaw: bases}
}

func TestResolve_BaseAndInterfaces(t *testing.T) {
	a := decl("A", "B", "IFoo")
	b := decl("B")
	st := NewSymbolTable([]*models.TypeDeclaration{a, b})
	st.Apply()

	assert.Equal(t, "B", a.BaseClass)
	assert.Equal(t, []string{"IFoo"}, a.Interfaces)
	assert.Equal(t, 1, a.Metrics.DIT)
	assert.Equal(t, 0, b.Metrics.DIT)
	assert.Equal(t, 1, b.Metrics.NOC)
	assert.Equal(t, 0, a.Metrics.NOC)
}

func TestResolve_NoKnownBase(t *testing.T) {
	p := decl("Player", "MonoBehaviour", "IDamageable")
	st := NewSymbolTable([]*models.TypeDeclaration{p})
	st.Resolve()

	assert.Empty(t, p.BaseClass)
	assert.Equal(t, []string{"MonoBehaviour", "IDamageable"}, p.Interfaces)
}

func TestResolve_FirstMatchingEntryWins(t *testing.T) {
	c := decl("C", "IExternal", "Base<int>", "Other")
	base := decl("Base")
	other := decl("Other")
	st := NewSymbolTable([]*models.TypeDeclaration{c, base, other})
	st.Resolve()

	assert.Equal(t, "Base", c.BaseClass)
	assert.Equal(t, []string{"IExternal", "Other"}, c.Interfaces)
}

func TestResolve_QualifiedBase(t *testing.T) {
	c := decl("Enemy", "Game.Core.Entity")
	st := NewSymbolTable([]*models.TypeDeclaration{c, decl("Entity")})
	st.Resolve()
	assert.Equal(t, "Entity", c.BaseClass)
	assert.Empty(t, c.Interfaces)
}

func TestDIT_Chain(t *testing.T) {
	decls := []*models.TypeDeclaration{decl("D", "C"), decl("C", "B"), decl("B", "A"), decl("A")}
	st := NewSymbolTable(decls)
	st.Apply()

	assert.Equal(t, 3, decls[0].Metrics.DIT)
	assert.Equal(t, 2, decls[1].Metrics.DIT)
	assert.Equal(t, 1, decls[2].Metrics.DIT)
	assert.Equal(t, 0, decls[4].Metrics.DIT)
}

func TestDIT_CycleSafety(t *testing.T) {
	tests := []struct {
		name  string
		decls []*models.TypeDeclaration
		want  map[string]int
	}{
		{
			name:  "self base",
			decls: []*models.TypeDeclaration{decl("A", "A")},
			want:  map[string]int{"A": 0},
		},
		{
			name:  "two cycle",
			decls: []*models.TypeDeclaration{decl("A", "B"), decl("B", "A")},
			want:  map[string]int{"A": 1, "B": 1},
		},
		{
			name:  "three cycle with tail",
			decls: []*models.TypeDeclaration{decl("A", "B"), decl("B", "C"), decl("C", "A"), decl("T", "A")},
			want:  map[string]int{"A": 2, "B": 2, "C": 2, "T": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewSymbolTable(tt.decls)
			st.Apply()
			for _, d := range tt.decls {
				assert.Equal(t, tt.want[d.Name], d.Metrics.DIT, d.Name)
				assert.GreaterOrEqual(t, d.Metrics.NOC, 0)
			}
		})
	}
}

func TestNOC_DistinctNames(t *testing.T) {
	decls := []*models.TypeDeclaration{
		decl("Base"),
		decl("Left", "Base"),
		decl("Right", "Base"),
		decl("Left", "Base"),
		decl("Self", "Self"),
	}
	st := NewSymbolTable(decls)
	st.Apply()

	assert.Equal(t, 2, st.NOC("Base"))
	assert.Equal(t, 2, decls[0].Metrics.NOC)
	assert.Equal(t, 1, st.NOC("Self"))
	assert.Equal(t, "Self", decls[4].BaseClass)
	assert.Equal(t, 0, decls[4].Metrics.DIT)
	assert.Equal(t, 1, decls[4].Metrics.NOC)
}

func TestSymbolTable_FirstOccurrenceWins(t *testing.T) {
	first := decl("Dup")
	first.Path = "a.cs"
	second := decl("Dup", "Base")
	second.Path = "b.cs"
	st := NewSymbolTable([]*models.TypeDeclaration{first, second, decl("Base")})

	got, ok := st.Lookup("Dup")
	require.True(t, ok)
	assert.Equal(t, "a.cs", got.Path)
	assert.Equal(t, []string{"Dup"}, st.Duplicates())
	assert.Equal(t, 2, st.Len())
	assert.Len(t, st.Declarations(), 3)

	// Only the first occurrence is consulted when walking by name.
	st.Apply()
	assert.Equal(t, 0, first.Metrics.DIT)
	assert.Equal(t, 0, second.Metrics.DIT)
	assert.Equal(t, "Base", second.BaseClass)
}

func TestSymbolTable_Missing(t *testing.T) {
	st := NewSymbolTable(nil)
	_, ok := st.Lookup("Nope")
	assert.False(t, ok)
	assert.Equal(t, 0, st.DIT("Nope"))
	assert.Equal(t, 0, st.NOC("Nope"))
	assert.Empty(t, st.Duplicates())
}

package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/ooscan/internal/testutil"
)

func TestFocusClass(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, fixture)

	svc := newService()
	scan, err := svc.Scan(dir, "")
	require.NoError(t, err)

	result, err := svc.FocusClass(context.Background(), scan, FocusOptions{Name: "Actor"})
	require.NoError(t, err)
	require.NotNil(t, result.Class)
	assert.Equal(t, "Scripts/Actor.cs", result.Class.Path)
	assert.Equal(t, []string{"Player"}, result.Subclasses)
	assert.Equal(t, []string{"Player"}, result.CoupledFrom)
	assert.Empty(t, result.RelatedTest)

	result, err = svc.FocusClass(context.Background(), scan, FocusOptions{Name: "Player"})
	require.NoError(t, err)
	assert.Len(t, result.Methods, 2)
	assert.Equal(t, []string{"PlayerTests"}, result.CoupledFrom)
	assert.Equal(t, "Tests/PlayerTests.cs", result.RelatedTest)
}

func TestFocusClass_NotFound(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, fixture)

	svc := newService()
	scan, err := svc.Scan(dir, "")
	require.NoError(t, err)

	_, err = svc.FocusClass(context.Background(), scan, FocusOptions{Name: "Missing"})
	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestFocusClass_Ambiguous(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateFileTree(t, dir, map[string]string{
		"A/Item.cs": "class Item { }\n",
		"B/Item.cs": "class Item { int count; }\n",
	})

	svc := newService()
	scan, err := svc.Scan(dir, "")
	require.NoError(t, err)

	result, err := svc.FocusClass(context.Background(), scan, FocusOptions{Name: "Item"})
	assert.ErrorIs(t, err, ErrAmbiguousClass)
	require.NotNil(t, result)
	assert.Len(t, result.Candidates, 2)

	result, err = svc.FocusClass(context.Background(), scan, FocusOptions{Name: "Item", Path: "B/Item.cs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"count"}, result.Class.Fields)
}

func TestFindRelatedTest(t *testing.T) {
	candidates := []string{
		"Scripts/Enemy.cs",
		"Scripts/EnemyTest.cs",
		"Scripts/Player.cs",
		"Tests/Combat/PlayerTests.cs",
		"Tests/Other/PlayerTests.cs",
		"Scripts/Boss.cs",
	}
	tests := []struct {
		source string
		want   string
	}{
		{"Scripts/Enemy.cs", "Scripts/EnemyTest.cs"},
		{"Scripts/Player.cs", "Tests/Combat/PlayerTests.cs"},
		{"Scripts/Boss.cs", ""},
		{"Scripts/readme.txt", ""},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, FindRelatedTest(tt.source, candidates))
		})
	}
}

package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(items []*RustdocItem) []ID {
	out := make([]ID, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestSearchItems_Ranking(t *testing.T) {
	t.Parallel()
	crate := demoCrate()

	got, total := SearchItems(crate, "DE", 0)
	assert.Equal(t, 10, total)
	assert.Equal(t, []ID{
		1,             // exact: de
		14, 0, 7, 25,  // prefix: deep, demo, demo_macro, describe
		10, 20, 22,    // prefix: deserialize x3, by id
		70, 3,         // substring: hidden, mode
	}, ids(got))
}

func TestSearchItems_Limit(t *testing.T) {
	t.Parallel()
	crate := demoCrate()

	got, total := SearchItems(crate, "de", 3)
	assert.Equal(t, 10, total)
	assert.Equal(t, []ID{1, 14, 0}, ids(got))
}

func TestSearchItems_LimitCapped(t *testing.T) {
	t.Parallel()
	b := newCrateBuilder()
	for i := range 150 {
		b.add(ID(i), "item", "", Function{}, "")
	}

	got, total := SearchItems(b.crate, "item", 500)
	assert.Equal(t, 150, total)
	assert.Len(t, got, MaxSearchLimit)

	got, _ = SearchItems(b.crate, "item", -1)
	assert.Len(t, got, DefaultSearchLimit)
	assert.Equal(t, ID(0), got[0].ID)
}

func TestSearchItems_SkipsExternalAndUnnamed(t *testing.T) {
	t.Parallel()
	crate := demoCrate()

	got, total := SearchItems(crate, "hidden", 10)
	assert.Equal(t, 1, total)
	assert.Equal(t, []ID{70}, ids(got))

	// Impl blocks have no name.
	got, _ = SearchItems(crate, "", 100)
	assert.NotContains(t, ids(got), ID(40))
	assert.NotContains(t, ids(got), ID(71))
}

func TestSearchItems_NoMatch(t *testing.T) {
	t.Parallel()

	got, total := SearchItems(demoCrate(), "zzz", 10)
	assert.Zero(t, total)
	assert.Empty(t, got)
}

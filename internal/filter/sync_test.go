package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSync_LoadThenSliderChange(t *testing.T) {
	s := NewSync(NewBuilder(DefaultCeiling))

	nav, err := s.Load("/products?category=phones&brands=acme&minPrice=100&maxPrice=500")
	require.NoError(t, err)
	assert.False(t, nav.Changed)

	snap := s.Snapshot()
	assert.Equal(t, "phones", snap.Category)
	assert.True(t, snap.State.HasBrand("acme"))
	assert.Equal(t, [2]float64{100, 500}, snap.State.PriceRange)

	nav = s.Update(func(st *State, b *Builder) {
		b.SetPriceRange(st, 200, 400)
	})
	assert.True(t, nav.Replace)
	assert.True(t, nav.Changed)
	assert.Equal(t, "/products?category=phones&brands=acme&minPrice=200&maxPrice=400", nav.URL)
	assert.Equal(t, "categorySlug=phones&brandSlug=acme&basePrice[gte]=200&basePrice[lte]=400", s.Snapshot().Query)
}

func TestSync_LoadCanonicalizes(t *testing.T) {
	s := NewSync(NewBuilder(DefaultCeiling))

	nav, err := s.Load("/products?maxPrice=47000&rating=0")
	require.NoError(t, err)
	assert.True(t, nav.Changed)
	assert.Equal(t, "/products?category=all", nav.URL)
}

func TestSync_UpdateClampsMutatorOutput(t *testing.T) {
	s := NewSync(NewBuilder(1000))

	nav := s.Update(func(st *State, _ *Builder) {
		st.PriceRange = [2]float64{5000, 10}
		st.MinRating = 9
	})
	assert.Equal(t, "/products?category=all&minPrice=10&rating=5", nav.URL)
}

func TestSync_UpdateDoesNotAliasSnapshot(t *testing.T) {
	s := NewSync(NewBuilder(DefaultCeiling))
	s.Update(func(st *State, _ *Builder) { st.ToggleBrand("acme") })

	snap := s.Snapshot()
	snap.State.Brands[0] = "changed"

	assert.Equal(t, []string{"acme"}, s.Snapshot().State.Brands)
}

func TestSync_NoopUpdateIsUnchanged(t *testing.T) {
	s := NewSync(NewBuilder(DefaultCeiling))
	nav := s.Update(func(*State, *Builder) {})
	assert.False(t, nav.Changed)
}

func TestSync_CategoryAndReset(t *testing.T) {
	s := NewSync(NewBuilder(DefaultCeiling))
	s.Update(func(st *State, b *Builder) { b.SetRating(st, 4) })

	nav := s.SetCategory("Laptops")
	assert.Equal(t, "/products?category=laptops&rating=4", nav.URL)

	nav = s.Reset()
	assert.Equal(t, "/products?category=laptops", nav.URL)
}

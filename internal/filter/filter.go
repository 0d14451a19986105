// Package filter translates the product listing sidebar state to and from
// the backend listing query and the shareable page URL.
package filter

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/utafrali/storefront/pkg/slug"
)

const (
	// MinPrice is the lower bound of the price slider.
	MinPrice = 0
	// DefaultCeiling is the upper bound of the price slider.
	DefaultCeiling = 47000
	// MaxRating is the highest selectable minimum rating.
	MaxRating = 5
)

// Backend listing parameters.
const (
	paramCategorySlug = "categorySlug"
	paramBrandSlug    = "brandSlug"
	paramPriceGTE     = "basePrice[gte]"
	paramPriceLTE     = "basePrice[lte]"
	paramRatingGTE    = "averageRating[gte]"
)

// Page URL parameters.
const (
	ProductsPath  = "/products"
	pageCategory  = "category"
	pageBrands    = "brands"
	pageMinPrice  = "minPrice"
	pageMaxPrice  = "maxPrice"
	pageRating    = "rating"
	legacyBrands  = "Brands"
	categoryUnset = "undefined"
	categoryNull  = "null"
)

// ErrInvalidURL is returned when a page URL cannot be parsed.
var ErrInvalidURL = errors.New("filter: invalid page url")

// State is the sidebar filter selection. PriceRange is always ordered and
// within the builder's bounds once it passed through a Builder.
type State struct {
	Brands     []string   `json:"brands"`
	PriceRange [2]float64 `json:"priceRange"`
	MinRating  float64    `json:"rating"`
}

// HasBrand reports whether brand is selected.
func (s State) HasBrand(brand string) bool {
	return slices.Contains(s.Brands, brand)
}

// ToggleBrand selects brand, or deselects it when already selected.
func (s *State) ToggleBrand(brand string) {
	if i := slices.Index(s.Brands, brand); i >= 0 {
		s.Brands = slices.Delete(s.Brands, i, i+1)
		if len(s.Brands) == 0 {
			s.Brands = nil
		}
		return
	}
	s.Brands = append(s.Brands, brand)
}

// Equal reports whether two states select the same listing.
func (s State) Equal(o State) bool {
	return slices.Equal(s.Brands, o.Brands) &&
		s.PriceRange == o.PriceRange &&
		s.MinRating == o.MinRating
}

// Builder holds the price domain and performs every translation.
type Builder struct {
	ceiling float64
}

// NewBuilder returns a Builder whose price slider spans [MinPrice, ceiling].
// A non-positive ceiling selects DefaultCeiling.
func NewBuilder(ceiling float64) *Builder {
	if ceiling <= MinPrice {
		ceiling = DefaultCeiling
	}
	return &Builder{ceiling: ceiling}
}

// Ceiling returns the upper price bound.
func (b *Builder) Ceiling() float64 {
	return b.ceiling
}

// NewState returns the unfiltered state.
func (b *Builder) NewState() State {
	return State{PriceRange: [2]float64{MinPrice, b.ceiling}}
}

// SetPriceRange stores [lo, hi] on s, swapping inverted bounds and clamping
// both into the price domain.
func (b *Builder) SetPriceRange(s *State, lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	s.PriceRange = [2]float64{b.clamp(lo), b.clamp(hi)}
}

// SetRating stores the minimum rating, clamped into [0, MaxRating].
func (b *Builder) SetRating(s *State, rating float64) {
	s.MinRating = min(max(rating, 0), MaxRating)
}

func (b *Builder) clamp(v float64) float64 {
	return min(max(v, MinPrice), b.ceiling)
}

// BuildQuery renders the backend listing query for s within category. The
// category is always present; brands are comma-joined under one parameter;
// price bounds appear only when they differ from the domain bounds and the
// rating only when positive. Brackets and commas are left unescaped.
func (b *Builder) BuildQuery(s State, category string) string {
	var sb strings.Builder
	sb.WriteString(paramCategorySlug)
	sb.WriteByte('=')
	sb.WriteString(url.QueryEscape(normalizeCategory(category)))

	if len(s.Brands) > 0 {
		escaped := make([]string, len(s.Brands))
		for i, brand := range s.Brands {
			escaped[i] = url.QueryEscape(brand)
		}
		writeParam(&sb, paramBrandSlug, strings.Join(escaped, ","))
	}
	if s.PriceRange[0] > MinPrice {
		writeParam(&sb, paramPriceGTE, formatNumber(s.PriceRange[0]))
	}
	if s.PriceRange[1] < b.ceiling {
		writeParam(&sb, paramPriceLTE, formatNumber(s.PriceRange[1]))
	}
	if s.MinRating > 0 {
		writeParam(&sb, paramRatingGTE, formatNumber(s.MinRating))
	}
	return sb.String()
}

// ParseQuery reconstructs the state and category a BuildQuery output was
// produced from. A leading "?" is ignored.
func (b *Builder) ParseQuery(query string) (State, string, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return State{}, "", fmt.Errorf("parse listing query: %w", err)
	}
	s := b.fromValues(values, paramBrandSlug, paramPriceGTE, paramPriceLTE, paramRatingGTE)
	return s, normalizeCategory(values.Get(paramCategorySlug)), nil
}

// EncodeURL renders the shareable page URL. Parameters appear in the fixed
// order category, brands, minPrice, maxPrice, rating, with the same omission
// rules as BuildQuery.
func (b *Builder) EncodeURL(s State, category string) string {
	var sb strings.Builder
	sb.WriteString(ProductsPath)
	sb.WriteString("?")
	sb.WriteString(pageCategory)
	sb.WriteByte('=')
	sb.WriteString(url.QueryEscape(normalizeCategory(category)))

	if len(s.Brands) > 0 {
		writeParam(&sb, pageBrands, url.QueryEscape(strings.Join(s.Brands, ",")))
	}
	if s.PriceRange[0] > MinPrice {
		writeParam(&sb, pageMinPrice, formatNumber(s.PriceRange[0]))
	}
	if s.PriceRange[1] < b.ceiling {
		writeParam(&sb, pageMaxPrice, formatNumber(s.PriceRange[1]))
	}
	if s.MinRating > 0 {
		writeParam(&sb, pageRating, formatNumber(s.MinRating))
	}
	return sb.String()
}

// DecodeURL initializes state from a directly-loaded page URL. Both an
// absolute URL and a bare path with query are accepted.
func (b *Builder) DecodeURL(raw string) (State, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return State{}, "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	values := u.Query()
	if values.Get(pageBrands) == "" && values.Get(legacyBrands) != "" {
		values.Set(pageBrands, values.Get(legacyBrands))
	}
	s := b.fromValues(values, pageBrands, pageMinPrice, pageMaxPrice, pageRating)
	return s, normalizeCategory(values.Get(pageCategory)), nil
}

func (b *Builder) fromValues(values url.Values, brandsKey, minKey, maxKey, ratingKey string) State {
	s := b.NewState()
	s.Brands = slug.List(values.Get(brandsKey))

	lo, hi := s.PriceRange[0], s.PriceRange[1]
	if v, ok := parseNumber(values.Get(minKey)); ok {
		lo = v
	}
	if v, ok := parseNumber(values.Get(maxKey)); ok {
		hi = v
	}
	b.SetPriceRange(&s, lo, hi)

	if v, ok := parseNumber(values.Get(ratingKey)); ok {
		b.SetRating(&s, v)
	}
	return s
}

// normalizeCategory lower-cases the slug and maps the values a page can end
// up with when the category was never chosen to "all".
func normalizeCategory(raw string) string {
	c := slug.Category(raw)
	if c == categoryUnset || c == categoryNull {
		return "all"
	}
	return c
}

func writeParam(sb *strings.Builder, key, value string) {
	sb.WriteByte('&')
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(value)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func decodeProduct(t *testing.T, body string) domain.RawProduct {
	t.Helper()
	var raw domain.RawProduct
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestNormalize_PlainStringsUnchangedForEveryLanguage(t *testing.T) {
	raw := decodeProduct(t, `{
		"_id": "p1",
		"name": "Galaxy S24",
		"brand": {"name": "Samsung"},
		"category": {"name": "Phones"},
		"basePrice": 899
	}`)

	for _, lang := range []domain.Language{domain.English, domain.Arabic, "fr"} {
		p := Normalize(raw, lang)
		assert.Equal(t, "Galaxy S24", p.Name, lang)
		assert.Equal(t, "Samsung", p.BrandName, lang)
		assert.Equal(t, "Phones", p.CategoryName, lang)
	}
}

func TestNormalize_LocalizedFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		lang domain.Language
		want string
	}{
		{"active language", `{"name": {"en": "Shoe", "ar": "حذاء"}}`, domain.Arabic, "حذاء"},
		{"english fallback", `{"name": {"en": "Shoe"}}`, domain.Arabic, "Shoe"},
		{"arabic fallback", `{"name": {"ar": "حذاء"}}`, domain.English, "حذاء"},
		{"empty english skipped", `{"name": {"en": "", "ar": "حذاء"}}`, domain.English, "حذاء"},
		{"missing name", `{}`, domain.English, domain.DefaultProductName},
		{"wrong shape", `{"name": 42}`, domain.English, domain.DefaultProductName},
		{"empty map", `{"name": {}}`, domain.Arabic, domain.DefaultProductName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Normalize(decodeProduct(t, tt.body), tt.lang)
			assert.Equal(t, tt.want, p.Name)
		})
	}
}

func TestNormalize_AliasChains(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, p domain.Product)
	}{
		{
			name: "mongo id wins over id",
			body: `{"_id": {"$oid": "abc"}, "id": "def"}`,
			check: func(t *testing.T, p domain.Product) {
				assert.Equal(t, "abc", p.ID)
			},
		},
		{
			name: "id used when _id absent",
			body: `{"id": 17}`,
			check: func(t *testing.T, p domain.Product) {
				assert.Equal(t, "17", p.ID)
			},
		},
		{
			name: "basePrice before price",
			body: `{"basePrice": 100, "price": 90, "bestPriceAfterDiscount": 80}`,
			check: func(t *testing.T, p domain.Product) {
				assert.Equal(t, 100.0, p.BasePrice)
				assert.Equal(t, 80.0, p.Price)
			},
		},
		{
			name: "price used when basePrice missing",
			body: `{"price": "1,250.00"}`,
			check: func(t *testing.T, p domain.Product) {
				assert.Equal(t, 1250.0, p.BasePrice)
				assert.Equal(t, 1250.0, p.Price)
			},
		},
		{
			name: "discount before discountPercentage",
			body: `{"discount": 15, "discountPercentage": 30}`,
			check: func(t *testing.T, p domain.Product) {
				assert.Equal(t, 15.0, p.Discount)
			},
		},
		{
			name: "zero discount falls through",
			body: `{"discount": 0, "discountPercentage": 30}`,
			check: func(t *testing.T, p domain.Product) {
				assert.Equal(t, 30.0, p.Discount)
			},
		},
		{
			name: "review and stock aliases",
			body: `{"reviewCount": 4, "stock": "12", "averageRating": 4.5}`,
			check: func(t *testing.T, p domain.Product) {
				assert.Equal(t, 4, p.ReviewCount)
				assert.Equal(t, 12, p.Stock)
				assert.Equal(t, 4.5, p.AverageRating)
			},
		},
		{
			name: "numOfReviews and totalStock preferred",
			body: `{"numOfReviews": 9, "reviewCount": 4, "totalStock": 3, "stock": 12}`,
			check: func(t *testing.T, p domain.Product) {
				assert.Equal(t, 9, p.ReviewCount)
				assert.Equal(t, 3, p.Stock)
			},
		},
		{
			name: "description chain",
			body: `{"shortDescription": {"en": "short"}, "description": "long"}`,
			check: func(t *testing.T, p domain.Product) {
				assert.Equal(t, "short", p.Description)
			},
		},
		{
			name: "thumbnail used when images missing",
			body: `{"thumbnail": "/t.jpg"}`,
			check: func(t *testing.T, p domain.Product) {
				require.Len(t, p.Images, 1)
				assert.Equal(t, "/t.jpg", p.Images[0].URL)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Normalize(decodeProduct(t, tt.body), domain.English))
		})
	}
}

func TestNormalize_MalformedFieldsDefault(t *testing.T) {
	raw := decodeProduct(t, `{
		"name": ["not", "text"],
		"brand": 12,
		"images": "nope",
		"basePrice": {"amount": 5},
		"variants": [{"options": "broken"}, 7, {"name": "Color", "options": [{"sku": "A", "stock": null}]}]
	}`)

	p := Normalize(raw, domain.Arabic)
	assert.Equal(t, domain.DefaultProductName, p.Name)
	assert.Equal(t, "", p.BrandName)
	assert.NotNil(t, p.Images)
	assert.Empty(t, p.Images)
	assert.Zero(t, p.BasePrice)
	require.Len(t, p.Variants, 2)
	assert.Empty(t, p.Variants[0].Options)
	require.Len(t, p.Variants[1].Options, 1)
	assert.Nil(t, p.Variants[1].Options[0].Stock)
}

func TestNormalize_VariantOptions(t *testing.T) {
	raw := decodeProduct(t, `{
		"name": "Tee",
		"variants": [{
			"name": {"en": "Color", "ar": "اللون"},
			"options": [{
				"sku": "TEE-RED",
				"value": {"en": "Red", "ar": "أحمر"},
				"colorHex": "#f00",
				"price": 20,
				"priceAfterDiscount": 15,
				"stock": 0,
				"variantImages": [{"url": "/red.jpg", "altText": {"en": "red tee"}}]
			}]
		}]
	}`)

	p := Normalize(raw, domain.Arabic)
	require.Len(t, p.Variants, 1)
	assert.Equal(t, "اللون", p.Variants[0].Name)
	opt := p.Variants[0].Options[0]
	assert.Equal(t, "أحمر", opt.Value)
	assert.Equal(t, 20.0, opt.Price)
	assert.Equal(t, 15.0, opt.PriceAfterDiscount)
	require.NotNil(t, opt.Stock)
	assert.Equal(t, 0, *opt.Stock)
	require.Len(t, opt.Images, 1)
	assert.Equal(t, "red tee", opt.Images[0].AltText)
}

func TestNormalizeBrands(t *testing.T) {
	var raws []domain.RawBrand
	require.NoError(t, json.Unmarshal([]byte(`[
		{"_id": "b1", "name": {"en": "Acme Corp", "ar": "أكمي"}, "slug": "acme", "logo": {"url": "/acme.png"}},
		{"_id": "b2", "name": {"en": "Globex Intl"}},
		{"_id": "b3", "name": {"ar": "بدون"}}
	]`), &raws))

	brands := NormalizeBrands(raws, domain.Arabic)
	require.Len(t, brands, 2)
	assert.Equal(t, domain.Brand{ID: "b1", Name: "أكمي", Slug: "acme", Logo: "/acme.png"}, brands[0])
	assert.Equal(t, "globex-intl", brands[1].Slug)
}

func TestNormalizeCategories(t *testing.T) {
	var raws []domain.RawCategory
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id": "c1", "name": {"en": "Smart Phones", "ar": "هواتف"}, "image": "/c.png"},
		{"id": "c2", "name": "Laptops", "slug": {"en": "laptops", "ar": "لابتوب"}}
	]`), &raws))

	cats := NormalizeCategories(raws, domain.English)
	require.Len(t, cats, 2)
	assert.Equal(t, "smart-phones", cats[0].Slug)
	assert.Equal(t, "/c.png", cats[0].Image)
	assert.Equal(t, "laptops", cats[1].Slug)
}

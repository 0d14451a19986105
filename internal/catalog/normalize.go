// Package catalog turns backend product, brand and category records into the
// canonical shapes the rest of the storefront works with, and resolves the
// selected variant option of a product.
package catalog

import (
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/slug"
)

// Normalize maps a raw backend product to the canonical Product for lang.
// It never fails: missing or malformed fields resolve to "", 0 or an empty
// slice, and the name falls back to domain.DefaultProductName.
func Normalize(raw domain.RawProduct, lang domain.Language) domain.Product {
	p := domain.Product{
		ID:            firstID(raw.MongoID, raw.ID),
		Name:          raw.Name.Resolve(lang),
		Slug:          raw.Slug.Resolve(domain.English),
		Description:   firstText(lang, raw.Details, raw.ShortDescription, raw.Description),
		BrandName:     raw.Brand.Name.Resolve(lang),
		BrandSlug:     raw.Brand.Slug.Resolve(domain.English),
		CategoryName:  raw.Category.Name.Resolve(lang),
		CategorySlug:  raw.Category.Slug.Resolve(domain.English),
		SKU:           raw.SKU,
		Images:        normalizeImages(raw.Images, lang),
		BasePrice:     domain.FirstNonZero(raw.BasePrice, raw.Price, raw.BestPriceAfterDiscount),
		Price:         domain.FirstNonZero(raw.BestPriceAfterDiscount, raw.BasePrice, raw.Price),
		Discount:      domain.FirstNonZero(raw.Discount, raw.DiscountPercentage),
		AverageRating: raw.AverageRating.Float(),
		ReviewCount:   int(domain.FirstNonZero(raw.NumOfReviews, raw.ReviewCount)),
		Stock:         int(domain.FirstNonZero(raw.TotalStock, raw.Stock)),
	}

	if p.Name == "" {
		p.Name = domain.DefaultProductName
	}
	if len(p.Images) == 0 && raw.Thumbnail != "" {
		p.Images = []domain.Image{{URL: raw.Thumbnail}}
	}
	if p.Images == nil {
		p.Images = []domain.Image{}
	}

	for _, rv := range raw.Variants {
		v := domain.Variant{
			Name:    rv.Name.Resolve(lang),
			Options: make([]domain.Option, 0, len(rv.Options)),
		}
		for _, ro := range rv.Options {
			v.Options = append(v.Options, normalizeOption(ro, lang))
		}
		p.Variants = append(p.Variants, v)
	}

	return p
}

// NormalizeAll normalizes a listing.
func NormalizeAll(raws []domain.RawProduct, lang domain.Language) []domain.Product {
	out := make([]domain.Product, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw, lang))
	}
	return out
}

// NormalizeBrand maps a raw brand. A missing slug is derived from the
// English name.
func NormalizeBrand(raw domain.RawBrand, lang domain.Language) domain.Brand {
	b := domain.Brand{
		ID:   firstID(raw.MongoID, raw.ID),
		Name: raw.Name.Resolve(lang),
		Slug: raw.Slug.Resolve(domain.English),
		Logo: raw.Logo.URL,
	}
	if b.Slug == "" {
		b.Slug = slug.Generate(raw.Name.Resolve(domain.English))
	}
	return b
}

// NormalizeBrands normalizes a brand listing, dropping brands with no slug.
func NormalizeBrands(raws []domain.RawBrand, lang domain.Language) []domain.Brand {
	out := make([]domain.Brand, 0, len(raws))
	for _, raw := range raws {
		if b := NormalizeBrand(raw, lang); b.Slug != "" {
			out = append(out, b)
		}
	}
	return out
}

// NormalizeCategory maps a raw category. A missing slug is derived from the
// English name.
func NormalizeCategory(raw domain.RawCategory, lang domain.Language) domain.Category {
	c := domain.Category{
		ID:    firstID(raw.MongoID, raw.ID),
		Name:  raw.Name.Resolve(lang),
		Slug:  raw.Slug.Resolve(domain.English),
		Image: raw.Image.URL,
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(raw.Name.Resolve(domain.English))
	}
	return c
}

// NormalizeCategories normalizes a category listing, dropping categories with
// no slug.
func NormalizeCategories(raws []domain.RawCategory, lang domain.Language) []domain.Category {
	out := make([]domain.Category, 0, len(raws))
	for _, raw := range raws {
		if c := NormalizeCategory(raw, lang); c.Slug != "" {
			out = append(out, c)
		}
	}
	return out
}

func normalizeOption(ro domain.RawOption, lang domain.Language) domain.Option {
	o := domain.Option{
		SKU:                ro.SKU,
		Value:              ro.Value.Resolve(lang),
		ColorHex:           ro.ColorHex,
		ColorName:          ro.ColorName.Resolve(lang),
		Price:              ro.Price.Float(),
		PriceAfterDiscount: ro.PriceAfterDiscount.Float(),
		Discount:           ro.Discount.Float(),
		Images:             normalizeImages(ro.VariantImages, lang),
	}
	if ro.Stock.IsSet() {
		stock := ro.Stock.Int()
		o.Stock = &stock
	}
	return o
}

func normalizeImages(raws []domain.RawImage, lang domain.Language) []domain.Image {
	if len(raws) == 0 {
		return nil
	}
	out := make([]domain.Image, 0, len(raws))
	for _, r := range raws {
		if r.URL == "" {
			continue
		}
		out = append(out, domain.Image{
			URL:      r.URL,
			AltText:  r.AltText.Resolve(lang),
			Featured: r.IsFeatured,
		})
	}
	return out
}

func firstID(ids ...domain.ID) string {
	for _, id := range ids {
		if id != "" {
			return string(id)
		}
	}
	return ""
}

func firstText(lang domain.Language, texts ...domain.LocalizedText) string {
	for _, t := range texts {
		if s := t.Resolve(lang); s != "" {
			return s
		}
	}
	return ""
}

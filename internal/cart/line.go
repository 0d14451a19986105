package cart

import (
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
)

// LineFromRaw maps a backend cart item to a CartLine. Display fields prefer
// the values denormalized onto the cart item and fall back to the populated
// product document.
func LineFromRaw(raw domain.RawCartItem, lang domain.Language) domain.CartLine {
	p := catalog.Normalize(raw.Product, lang)

	line := domain.CartLine{
		ID:        firstString(string(raw.MongoID), string(raw.ID)),
		ProductID: firstString(string(raw.ProductID), string(raw.Product.MongoID), string(raw.Product.ID)),
		SKU:       raw.SKU,
		Quantity:  raw.Quantity.Int(),
		UnitPrice: raw.Price.Decimal(),
		Name:      firstString(raw.ProductName.Resolve(lang), p.Name),
		Brand:     firstString(raw.Brand.Resolve(lang), p.BrandName),
		Category:  firstString(raw.Category.Resolve(lang), p.CategoryName),
		ColorHex:  raw.Variant.ColorHex,
		Label:     firstString(raw.Variant.Label.Resolve(lang), raw.Variant.Color.Resolve(lang)),
	}
	if !raw.Price.IsSet() {
		line.UnitPrice = domain.NumberOf(p.Price).Decimal()
	}

	line.Image = raw.Image
	if line.Image == "" && len(raw.Images) > 0 {
		line.Image = raw.Images[0].URL
	}
	if line.Image == "" {
		line.Image = p.FeaturedImage().URL
	}
	return line
}

// LinesFromRaw maps a cart listing. Items without a product id or with a
// quantity below one are dropped.
func LinesFromRaw(raws []domain.RawCartItem, lang domain.Language) []domain.CartLine {
	lines := make([]domain.CartLine, 0, len(raws))
	for _, raw := range raws {
		l := LineFromRaw(raw, lang)
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

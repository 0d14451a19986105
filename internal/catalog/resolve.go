package catalog

import (
	"math"

	"github.com/utafrali/storefront/internal/domain"
)

// Selection is the purchasable state of a product for one chosen option.
// OldPrice is 0 when no strike-through price applies.
type Selection struct {
	Option             *domain.Option `json:"option,omitempty"`
	Image              domain.Image   `json:"image"`
	Price              float64        `json:"price"`
	PriceAfterDiscount float64        `json:"priceAfterDiscount"`
	OldPrice           float64        `json:"oldPrice,omitempty"`
	DiscountPercent    int            `json:"discountPercent"`
	Stock              int            `json:"stock"`
}

// InStock reports whether at least one unit can be added to the cart.
func (s Selection) InStock() bool {
	return s.Stock > 0
}

// MaxQuantity is the upper bound of the quantity stepper.
func (s Selection) MaxQuantity() int {
	return max(s.Stock, 0)
}

// SKU returns the option SKU, or fallback for single-SKU products.
func (s Selection) SKU(fallback string) string {
	if s.Option != nil && s.Option.SKU != "" {
		return s.Option.SKU
	}
	return fallback
}

// Swatch is one entry of the color picker.
type Swatch struct {
	ColorHex  string `json:"colorHex"`
	ColorName string `json:"colorName,omitempty"`
	Value     string `json:"value,omitempty"`
	SKU       string `json:"sku"`
}

// Options flattens every variant's options in order.
func Options(p domain.Product) []domain.Option {
	var all []domain.Option
	for _, v := range p.Variants {
		all = append(all, v.Options...)
	}
	return all
}

// SelectableColors lists one swatch per distinct color hex. The first option
// carrying a hex is its representative; options without a hex are skipped.
func SelectableColors(p domain.Product) []Swatch {
	seen := make(map[string]struct{})
	var swatches []Swatch
	for _, o := range Options(p) {
		if o.ColorHex == "" {
			continue
		}
		if _, dup := seen[o.ColorHex]; dup {
			continue
		}
		seen[o.ColorHex] = struct{}{}
		swatches = append(swatches, Swatch{
			ColorHex:  o.ColorHex,
			ColorName: o.ColorName,
			Value:     o.Value,
			SKU:       o.SKU,
		})
	}
	return swatches
}

// ResolveSelection picks the option matching colorHex (else the first option,
// else none) and derives its image, price, discount and stock. Exactly one
// discount source applies, checked in order: the option's price difference,
// the option's explicit discount, the product discount. A percent discount
// outside (0, 100) is malformed and counts as absent.
func ResolveSelection(p domain.Product, colorHex string) Selection {
	options := Options(p)
	if colorHex != "" {
		for i := range options {
			if options[i].ColorHex == colorHex {
				return resolve(p, &options[i])
			}
		}
	}
	return resolve(p, first(options))
}

// ResolveSKU is ResolveSelection for the option with the given SKU. An empty
// sku selects the first option. It reports false when sku names no option
// of a product that has options.
func ResolveSKU(p domain.Product, sku string) (Selection, bool) {
	options := Options(p)
	if sku == "" || len(options) == 0 {
		return resolve(p, first(options)), true
	}
	for i := range options {
		if options[i].SKU == sku {
			return resolve(p, &options[i]), true
		}
	}
	return Selection{}, false
}

func first(options []domain.Option) *domain.Option {
	if len(options) == 0 {
		return nil
	}
	return &options[0]
}

func resolve(p domain.Product, selected *domain.Option) Selection {
	sel := Selection{Option: selected, Image: p.FeaturedImage(), Stock: p.Stock}

	price := p.BasePrice
	if selected != nil {
		if len(selected.Images) > 0 {
			sel.Image = selected.Images[0]
		}
		if selected.Price != 0 {
			price = selected.Price
		}
		if selected.Stock != nil {
			sel.Stock = *selected.Stock
		}
	}
	sel.Price = price
	sel.PriceAfterDiscount = price
	if selected != nil && selected.PriceAfterDiscount != 0 {
		sel.PriceAfterDiscount = selected.PriceAfterDiscount
	}

	switch {
	case selected != nil && selected.Price > 0 && selected.PriceAfterDiscount > 0 &&
		selected.Price != selected.PriceAfterDiscount:
		sel.OldPrice = selected.Price
		sel.DiscountPercent = roundHalfUp((selected.Price - selected.PriceAfterDiscount) / selected.Price * 100)
	case selected != nil && validPercent(selected.Discount):
		applyPercent(&sel, selected.Discount)
	case validPercent(p.Discount):
		applyPercent(&sel, p.Discount)
	}

	return sel
}

func validPercent(percent float64) bool {
	return percent > 0 && percent < 100
}

func applyPercent(sel *Selection, percent float64) {
	sel.OldPrice = sel.Price
	sel.DiscountPercent = roundHalfUp(percent)
	sel.PriceAfterDiscount = math.Round(sel.Price*(100-percent)) / 100
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(f float64) int {
	return int(math.Floor(f + 0.5))
}

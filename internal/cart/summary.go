package cart

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

var (
	freeShippingOver = decimal.NewFromInt(100)
	flatShipping     = decimal.RequireFromString("9.99")
	taxRate          = decimal.RequireFromString("0.08")
)

// promoCodes maps a promo code to its discount rate.
var promoCodes = map[string]decimal.Decimal{
	"SAVE10":    decimal.RequireFromString("0.10"),
	"WELCOME20": decimal.RequireFromString("0.20"),
	"STUDENT15": decimal.RequireFromString("0.15"),
}

// Summary is the price breakdown shown next to the cart.
type Summary struct {
	Lines        int             `json:"lines"`
	Units        int             `json:"units"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	PromoCode    string          `json:"promoCode,omitempty"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	Discount     decimal.Decimal `json:"discount"`
	Shipping     decimal.Decimal `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
}

// Summarize prices lines with an optional promo code. Shipping is free when
// the subtotal exceeds 100; tax is 8% of the discounted subtotal. Amounts
// are rounded to cents. An unknown promo code is rejected.
func Summarize(lines []domain.CartLine, promoCode string) (Summary, error) {
	code := strings.ToUpper(strings.TrimSpace(promoCode))
	rate := decimal.Zero
	if code != "" {
		r, ok := promoCodes[code]
		if !ok {
			return Summary{}, apperrors.InvalidInput("invalid promo code")
		}
		rate = r
	}

	units := 0
	for _, l := range lines {
		units += l.Quantity
	}

	subtotal := Total(lines)
	discount := subtotal.Mul(rate)
	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingOver) {
		shipping = decimal.Zero
	}
	taxed := subtotal.Sub(discount)
	tax := taxed.Mul(taxRate)

	return Summary{
		Lines:        len(lines),
		Units:        units,
		Subtotal:     subtotal.Round(2),
		PromoCode:    code,
		DiscountRate: rate,
		Discount:     discount.Round(2),
		Shipping:     shipping,
		Tax:          tax.Round(2),
		Total:        taxed.Add(shipping).Add(tax).Round(2),
	}, nil
}

package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func line(price string, qty int) domain.CartLine {
	return domain.CartLine{ProductID: "p", UnitPrice: decimal.RequireFromString(price), Quantity: qty}
}

func TestSummarize_SmallCartPaysShipping(t *testing.T) {
	s, err := Summarize([]domain.CartLine{line("10.50", 2), line("5", 1)}, "")
	require.NoError(t, err)

	assert.Equal(t, "26.00", s.Subtotal.StringFixed(2))
	assert.Equal(t, "9.99", s.Shipping.StringFixed(2))
	assert.Equal(t, "2.08", s.Tax.StringFixed(2))
	assert.Equal(t, "38.07", s.Total.StringFixed(2))
	assert.Equal(t, 3, s.Units)
	assert.Equal(t, 2, s.Lines)
}

func TestSummarize_PromoAndFreeShipping(t *testing.T) {
	s, err := Summarize([]domain.CartLine{line("60", 2)}, " save10 ")
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", s.PromoCode)
	assert.Equal(t, "12.00", s.Discount.StringFixed(2))
	assert.True(t, s.Shipping.IsZero())
	assert.Equal(t, "8.64", s.Tax.StringFixed(2))
	assert.Equal(t, "116.64", s.Total.StringFixed(2))
}

func TestSummarize_ExactlyHundredPaysShipping(t *testing.T) {
	s, err := Summarize([]domain.CartLine{line("100", 1)}, "")
	require.NoError(t, err)
	assert.Equal(t, "9.99", s.Shipping.StringFixed(2))
}

func TestSummarize_UnknownPromo(t *testing.T) {
	_, err := Summarize([]domain.CartLine{line("1", 1)}, "FREE100")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

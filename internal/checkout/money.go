package checkout

import (
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/shopspring/decimal"
)

// CartTotal prices the cart in USD. Each line is rounded half-up to cents
// before it is added, and the running sum is kept in integer cents so the
// order of items never changes the result.
func CartTotal(items []cart.Item) string {
	return formatCents(totalCents(items))
}

func totalCents(items []cart.Item) int64 {
	var cents int64
	for _, item := range items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		cents += line.Round(2).Shift(2).IntPart()
	}
	return cents
}

func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

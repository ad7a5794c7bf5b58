package checkout

import (
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/stretchr/testify/assert"
)

func TestCartTotal(t *testing.T) {
	cases := []struct {
		name  string
		items []cart.Item
		want  string
	}{
		{
			name:  "fractional cents round per line",
			items: []cart.Item{{Price: 19.995, Quantity: 1}, {Price: 0.004999, Quantity: 2}},
			want:  "20.01",
		},
		{
			name:  "classic float drift",
			items: []cart.Item{{Price: 0.1, Quantity: 1}, {Price: 0.2, Quantity: 1}},
			want:  "0.30",
		},
		{
			name:  "quantity multiplies before rounding",
			items: []cart.Item{{Price: 3.333, Quantity: 3}},
			want:  "10.00",
		},
		{
			name:  "whole dollars",
			items: []cart.Item{{Price: 10, Quantity: 2}, {Price: 5, Quantity: 1}},
			want:  "25.00",
		},
		{
			name: "empty",
			want: "0.00",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CartTotal(tc.items))
		})
	}
}

func TestCartTotalIgnoresItemOrder(t *testing.T) {
	a := []cart.Item{{Price: 0.015, Quantity: 1}, {Price: 1.005, Quantity: 3}, {Price: 7.77, Quantity: 2}}
	b := []cart.Item{a[2], a[0], a[1]}
	assert.Equal(t, CartTotal(a), CartTotal(b))
}

// Package pricing derives shipping, tax and totals from a cart subtotal.
package pricing

import "time"

// Policy holds the checkout pricing knobs. All amounts are in cents.
type Policy struct {
	// FreeShippingOverCents is a strict threshold: shipping is free only when
	// the subtotal is greater than this value.
	FreeShippingOverCents int64
	ShippingFeeCents      int64
	TaxRateBasisPoints    int64
	DeliveryOffset        time.Duration
}

// Default returns the storefront's stock policy: free shipping over $50,
// $9.99 otherwise, 8% tax, delivery estimate one week out.
func Default() Policy {
	return Policy{
		FreeShippingOverCents: 5000,
		ShippingFeeCents:      999,
		TaxRateBasisPoints:    800,
		DeliveryOffset:        7 * 24 * time.Hour,
	}
}

// Totals is the derived cost breakdown of a cart.
type Totals struct {
	SubtotalCents int64 `json:"subtotalCents"`
	ShippingCents int64 `json:"shippingCents"`
	TaxCents      int64 `json:"taxCents"`
	TotalCents    int64 `json:"totalCents"`
}

func (p Policy) Shipping(subtotal int64) int64 {
	if subtotal > p.FreeShippingOverCents {
		return 0
	}
	return p.ShippingFeeCents
}

// Tax rounds half up to the nearest cent.
func (p Policy) Tax(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	return (subtotal*p.TaxRateBasisPoints + 5000) / 10000
}

func (p Policy) Totals(subtotal int64) Totals {
	shipping := p.Shipping(subtotal)
	tax := p.Tax(subtotal)
	return Totals{
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    subtotal + shipping + tax,
	}
}

func (p Policy) EstimatedDelivery(orderedAt time.Time) time.Time {
	return orderedAt.Add(p.DeliveryOffset)
}

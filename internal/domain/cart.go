package domain

// CartLineItem is one row of the in-memory cart. ID is local to the cart and
// distinct from ItemID so re-adding the same catalog item merges into one line.
type CartLineItem struct {
	ID                 string    `json:"id"`
	ItemID             string    `json:"itemId"`
	Title              string    `json:"title"`
	PriceCents         int64     `json:"priceCents"`
	OriginalPriceCents *int64    `json:"originalPriceCents,omitempty"`
	Image              string    `json:"image,omitempty"`
	Seller             SellerRef `json:"seller"`
	Quantity           int       `json:"quantity"`
	Stock              int       `json:"stock"`
	Category           string    `json:"category,omitempty"`
}

// LineTotalCents is price times quantity.
func (l CartLineItem) LineTotalCents() int64 {
	return l.PriceCents * int64(l.Quantity)
}

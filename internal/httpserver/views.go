package httpserver

import (
	"strconv"

	cartstore "socialshop/internal/cart"
	"socialshop/internal/checkout"
	"socialshop/internal/domain"
	"socialshop/internal/pricing"
)

type itemView struct {
	domain.ShopItem
	DiscountPercent int  `json:"discountPercent,omitempty"`
	InStock         bool `json:"inStock"`
}

type itemList struct {
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
	Count   int        `json:"count"`
	Total   int        `json:"total"`
	Results []itemView `json:"results"`
}

type checkoutView struct {
	checkout.View
	Open   bool                  `json:"open"`
	Items  []domain.CartLineItem `json:"items"`
	Totals pricing.Totals        `json:"totals"`
}

type tokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	Profile      *domain.Profile `json:"profile,omitempty"`
	GuestID      string          `json:"guestId,omitempty"`
	AdoptedLines int             `json:"adoptedLines,omitempty"`
}

func toItemView(it domain.ShopItem) itemView {
	return itemView{
		ShopItem:        it,
		DiscountPercent: discountPercent(it.PriceCents, it.OriginalPriceCents),
		InStock:         it.Stock > 0,
	}
}

// discountPercent is the whole-percent markdown from the original price,
// zero when there is none.
func discountPercent(price int64, original *int64) int {
	if original == nil || *original <= 0 || *original <= price {
		return 0
	}
	return int((*original - price) * 100 / *original)
}

func buildItemList(items []domain.ShopItem, limit, offset int) itemList {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	results := []itemView{}
	if offset < len(items) {
		for _, it := range items[offset:end] {
			results = append(results, toItemView(it))
		}
	}
	return itemList{
		Limit:   limit,
		Offset:  offset,
		Count:   len(results),
		Total:   len(items),
		Results: results,
	}
}

func buildCheckoutView(store *cartstore.Store, flow *checkout.Flow) checkoutView {
	state := store.State()
	items := state.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return checkoutView{
		View:   flow.View(),
		Open:   state.CheckoutOpen,
		Items:  items,
		Totals: state.Totals,
	}
}

func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

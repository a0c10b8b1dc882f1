package domain

import "time"

// SellerRef is the seller summary embedded in items and cart lines.
type SellerRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Seller is a shop owner profile with its running sales counter.
type Seller struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	TotalSales  int64     `json:"totalSales"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Ref returns the embeddable summary of s.
func (s Seller) Ref() SellerRef {
	return SellerRef{ID: s.ID, DisplayName: s.DisplayName, AvatarURL: s.AvatarURL}
}

// ShopItem is a catalog entry offered in the marketplace.
type ShopItem struct {
	ID                 string    `json:"id"`
	Key                string    `json:"key,omitempty"`
	Title              string    `json:"title"`
	Description        string    `json:"description,omitempty"`
	PriceCents         int64     `json:"priceCents"`
	OriginalPriceCents *int64    `json:"originalPriceCents,omitempty"`
	Images             []string  `json:"images,omitempty"`
	Stock              int       `json:"stock"`
	Category           string    `json:"category,omitempty"`
	Seller             SellerRef `json:"seller"`
	CreatedAt          time.Time `json:"createdAt"`
}

// PrimaryImage returns the first non-empty image url.
func (i ShopItem) PrimaryImage() string {
	for _, img := range i.Images {
		if img != "" {
			return img
		}
	}
	return ""
}

// Category is a shop category label with the number of items filed under it.
type Category struct {
	Name      string `json:"name"`
	ItemCount int    `json:"itemCount"`
}

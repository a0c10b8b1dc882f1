package domain

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

// Order is the confirmation snapshot of a placed order. Items is a copy of the
// cart at submission time and never aliases the live cart.
type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"orderNumber,omitempty"`
	BuyerID           string          `json:"buyerId,omitempty"`
	Items             []CartLineItem  `json:"items"`
	ShippingAddress   ShippingAddress `json:"shippingAddress"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
	SubtotalCents     int64           `json:"subtotalCents"`
	ShippingCents     int64           `json:"shippingCents"`
	TaxCents          int64           `json:"taxCents"`
	TotalCents        int64           `json:"totalCents"`
	Status            OrderStatus     `json:"status"`
	OrderDate         time.Time       `json:"orderDate"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
}

// OrderHeader is the persisted top-level order row.
type OrderHeader struct {
	ID                string          `json:"id"`
	SubmissionID      string          `json:"-"`
	OrderNumber       string          `json:"orderNumber"`
	BuyerID           string          `json:"buyerId"`
	Status            OrderStatus     `json:"status"`
	SubtotalCents     int64           `json:"subtotalCents"`
	ShippingCents     int64           `json:"shippingCents"`
	TaxCents          int64           `json:"taxCents"`
	TotalCents        int64           `json:"totalCents"`
	ShippingAddress   ShippingAddress `json:"shippingAddress"`
	PaymentType       PaymentType     `json:"paymentType"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	CreatedAt         time.Time       `json:"createdAt"`
	Lines             []OrderLine     `json:"lines,omitempty"`
}

// OrderLine is one persisted purchased item.
type OrderLine struct {
	OrderID    string `json:"orderId"`
	ItemID     string `json:"itemId"`
	SellerID   string `json:"sellerId"`
	Title      string `json:"title,omitempty"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

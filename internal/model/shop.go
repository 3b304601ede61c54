package model

import "time"

// Order statuses.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// CartItem is one product line in a cart or an order snapshot. Prices are
// whole currency units.
type CartItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Cart mirrors the `carts` table plus its `cart_items` rows. A user owns at
// most one cart.
type Cart struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Subtotal sums price times quantity over the cart's items.
func (c Cart) Subtotal() int64 {
	var sum int64
	for _, it := range c.Items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}

// CustomerInfo and ShippingInfo are captured by the enhanced checkout.
type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ShippingInfo struct {
	Method  string `json:"method"` // domicilio, sucursal or fitzone pickup
	Cost    int64  `json:"cost"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// Order is an immutable purchase record.
type Order struct {
	ID            uint64        `json:"id"`
	Reference     string        `json:"reference"`
	UserID        uint64        `json:"userId"`
	Items         []CartItem    `json:"items"`
	Subtotal      int64         `json:"subtotal"`
	ShippingCost  int64         `json:"shippingCost"`
	Total         int64         `json:"total"`
	PaymentMethod string        `json:"paymentMethod"`
	Customer      *CustomerInfo `json:"customerInfo,omitempty"`
	Shipping      *ShippingInfo `json:"shippingInfo,omitempty"`
	Status        string        `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

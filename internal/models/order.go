package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Terminal reports whether no further status transitions are possible.
// Orders in a terminal status are immutable except for metadata on
// related refund records.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

type OrderItem struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image,omitempty"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
	Subtotal     float64 `json:"subtotal"`
}

// Timeline is one append-only record marking a status transition.
type Timeline struct {
	Status      string    `json:"status"`
	StatusText  string    `json:"status_text"`
	Time        time.Time `json:"time"`
	Description string    `json:"description,omitempty"`
}

type ShippingAddress struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	DetailAddress string `json:"detail_address"`
}

type OrderSummary struct {
	ID          int64       `json:"id"`
	OrderNumber string      `json:"order_number"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	StatusText  string      `json:"status_text"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
}

type OrderDetail struct {
	OrderSummary

	PaymentMethod   string           `json:"payment_method,omitempty"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	ShippingFee     float64          `json:"shipping_fee"`
	Note            string           `json:"note,omitempty"`
	Timelines       []Timeline       `json:"timelines"`
	PaidAt          *time.Time       `json:"paid_at,omitempty"`
	ShippedAt       *time.Time       `json:"shipped_at,omitempty"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusApproved  RefundStatus = "approved"
	RefundStatusRejected  RefundStatus = "rejected"
	RefundStatusCompleted RefundStatus = "completed"
)

// Refund tracks one order's refund lifecycle. The pending decision is
// one-way: once approved or rejected it never goes back.
type Refund struct {
	ID           int64        `json:"id"`
	OrderID      int64        `json:"order_id"`
	Status       RefundStatus `json:"status"`
	RefundAmount float64      `json:"refund_amount"`
	Reason       string       `json:"reason"`
	AdminNotes   string       `json:"admin_notes,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

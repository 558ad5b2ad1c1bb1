package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published after a checkout commits
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent is published when staff move an order to a new status
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	UserID  int64  `json:"user_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	MedicineID int64           `json:"medicine_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

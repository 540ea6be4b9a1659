package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus constants. Forward-only except CANCELLED (explicit, from the
// first three) and the READY<->DELIVERED oscillation driven by deliveries.
const (
	OrderStatusConfirmed    = "CONFIRMED"
	OrderStatusInProduction = "IN_PRODUCTION"
	OrderStatusReady        = "READY"
	OrderStatusDelivered    = "DELIVERED"
	OrderStatusCancelled    = "CANCELLED"
)

// OrderItem unit Enum Simulation
const (
	UnitPieces = "PIECES"
	UnitM2     = "M2"
)

// Order is a customer order for finished goods. The customer itself is master
// data owned elsewhere; only the reference and a display name are kept.
type Order struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Seq          int64       `gorm:"type:bigint;uniqueIndex;not null" json:"seq"`
	CustomerID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"customer_id"`
	CustomerName string      `gorm:"type:varchar(255);not null" json:"customer_name"`
	Status       string      `gorm:"type:varchar(20);not null;default:'CONFIRMED'" json:"status"`
	Notes        string      `gorm:"type:text" json:"notes"`
	Items        []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderItem is one product line on an order. QuantityPieces is derived once at
// creation (ceil(quantity * piecesPerM2) for M2 lines, ceil(quantity)
// otherwise) and is the figure every downstream check works against.
type OrderItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product        Product         `gorm:"foreignKey:ProductID" json:"-"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"quantity"`
	Unit           string          `gorm:"type:varchar(10);not null" json:"unit"` // PIECES, M2
	QuantityPieces int             `gorm:"type:int;not null" json:"quantity_pieces"`
	CreatedAt      time.Time       `json:"created_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus constants. LOADING -> {IN_TRANSIT, CANCELLED},
// IN_TRANSIT -> {DELIVERED, CANCELLED}; DELIVERED and CANCELLED are terminal.
const (
	DeliveryLoading   = "LOADING"
	DeliveryInTransit = "IN_TRANSIT"
	DeliveryDelivered = "DELIVERED"
	DeliveryCancelled = "CANCELLED"
)

// Delivery is a truck load against one order. Creating it posts one OUT
// movement per item; cancelling posts reversing IN movements dated at the
// cancellation. Vehicle and driver are external master-data references.
type Delivery struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Seq          int64          `gorm:"type:bigint;uniqueIndex;not null" json:"seq"`
	OrderID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	VehicleID    *uuid.UUID     `gorm:"type:uuid" json:"vehicle_id"`
	DriverID     *uuid.UUID     `gorm:"type:uuid" json:"driver_id"`
	LoadingDate  time.Time      `gorm:"type:date;not null" json:"loading_date"`
	DeliveryDate *time.Time     `json:"delivery_date"`
	Status       string         `gorm:"type:varchar(20);not null;default:'LOADING'" json:"status"`
	Notes        string         `gorm:"type:text" json:"notes"`
	Items        []DeliveryItem `gorm:"foreignKey:DeliveryID" json:"items"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// DeliveryItem is an immutable stock commitment against one order item.
type DeliveryItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DeliveryID     uuid.UUID `gorm:"type:uuid;not null;index" json:"delivery_id"`
	OrderItemID    uuid.UUID `gorm:"type:uuid;not null;index" json:"order_item_id"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	QuantityPieces int       `gorm:"type:int;not null" json:"quantity_pieces"`
	CreatedAt      time.Time `json:"created_at"`
}

// ItemDeliveryCheck is the advisory per-item figure set returned by the
// delivery check: what is still owed on the item and what the ledger holds.
type ItemDeliveryCheck struct {
	OrderItemID      uuid.UUID `json:"order_item_id"`
	ProductID        uuid.UUID `json:"product_id"`
	ProductName      string    `json:"product_name"`
	QuantityPieces   int       `json:"quantity_pieces"`
	AlreadyDelivered int       `json:"already_delivered"`
	Remaining        int       `json:"remaining"`
	AvailableStock   int       `json:"available_stock"`
}

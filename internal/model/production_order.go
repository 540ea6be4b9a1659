package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductionOrderStatus constants
const (
	ProductionOrderPending    = "PENDING"
	ProductionOrderInProgress = "IN_PROGRESS"
	ProductionOrderCompleted  = "COMPLETED"
	ProductionOrderCancelled  = "CANCELLED"
)

// ProductionOrder is a stock reservation created when an order is committed to
// production: one row per order item. Seq is allocated from a global counter
// and never reused; the FIFO evaluator satisfies rows in Seq order as ledger
// stock arrives. Cancelling a row never touches the ledger, it only releases
// the reservation.
type ProductionOrder struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Seq             int64      `gorm:"type:bigint;uniqueIndex;not null" json:"seq"`
	OrderID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	OrderItemID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_item_id"`
	ProductID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         Product    `gorm:"foreignKey:ProductID" json:"-"`
	QuantityPieces  int        `gorm:"type:int;not null" json:"quantity_pieces"`
	StockAtCreation int        `gorm:"type:int;not null" json:"stock_at_creation"`
	ToProducePieces int        `gorm:"type:int;not null" json:"to_produce_pieces"`
	Status          string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ItemStockCheck is the advisory per-item figure set returned by the
// production stock check. EffectiveStock nets the ledger balance against other
// orders' open reservations; SuggestedToProduce is what remains uncovered.
type ItemStockCheck struct {
	OrderItemID        uuid.UUID `json:"order_item_id"`
	ProductID          uuid.UUID `json:"product_id"`
	ProductName        string    `json:"product_name"`
	QuantityPieces     int       `json:"quantity_pieces"`
	AvailableStock     int       `json:"available_stock"`
	ReservedByOthers   int       `json:"reserved_by_others"`
	EffectiveStock     int       `json:"effective_stock"`
	SuggestedToProduce int       `json:"suggested_to_produce"`
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement direction Enum Simulation
const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// Movement source types. Movements with a source other than MANUAL belong to
// their owning record and can only be reversed through that record's lifecycle.
const (
	SourceManual           = "manual"
	SourcePalletization    = "palletization"
	SourceLoosePallet      = "loose_pallet"
	SourceDelivery         = "delivery"
	SourceDeliveryReversal = "delivery_reversal"
)

// InventoryMovement is one append-only stock ledger row. The per-product
// balance is always SUM(IN) - SUM(OUT) over these rows, never cached.
// QuantityPallets and AreaM2 are snapshots of the recipe at write time and are
// never recomputed from a later-edited recipe.
type InventoryMovement struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         Product          `gorm:"foreignKey:ProductID" json:"-"`
	MovementDate    time.Time        `gorm:"type:date;not null;index" json:"movement_date"`
	Direction       string           `gorm:"type:varchar(10);not null" json:"direction"` // IN, OUT
	QuantityPieces  int              `gorm:"type:int;not null" json:"quantity_pieces"`
	QuantityPallets *decimal.Decimal `gorm:"type:decimal(12,4)" json:"quantity_pallets"`
	AreaM2          *decimal.Decimal `gorm:"type:decimal(12,4)" json:"area_m2"`
	SourceType      string           `gorm:"type:varchar(30);not null;default:'manual'" json:"source_type"`
	SourceID        *uuid.UUID       `gorm:"type:uuid;index" json:"source_id"`
	Notes           string           `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time        `json:"created_at"`
}

// LoosePiecesBalance is the per-product carry-over of pieces that did not fill
// a complete pallet. Mutated only by the palletization reconciler; never
// negative.
type LoosePiecesBalance struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"-"`
	Pieces    int       `gorm:"type:int;not null;default:0" json:"pieces"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductStockBalance is a read-model row for the per-product balance listing.
type ProductStockBalance struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Balance     int       `json:"balance"`
}

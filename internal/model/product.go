package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a finished-goods catalog entry. Master data is owned by the
// catalog system; this service reads the recipe fields and never updates them.
type Product struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string           `gorm:"type:varchar(255);not null" json:"name"`
	PiecesPerCycle  int              `gorm:"type:int;default:0;not null" json:"pieces_per_cycle"`
	PiecesPerPallet *int             `gorm:"type:int" json:"pieces_per_pallet"`
	PiecesPerM2     *decimal.Decimal `gorm:"type:decimal(10,4)" json:"pieces_per_m2"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
}

// ProductionRun is one recorded press run for a product on a given day.
// Several runs (shifts) per day are summed into the day's theoretical output.
// When Pieces is zero the output falls back to Cycles * product.PiecesPerCycle.
// Legacy rows come from the historical data import and are excluded from
// palletization detection.
type ProductionRun struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"-"`
	RunDate   time.Time `gorm:"type:date;not null;index" json:"run_date"`
	Cycles    int       `gorm:"type:int;not null" json:"cycles"`
	Pieces    int       `gorm:"type:int;default:0;not null" json:"pieces"`
	Legacy    bool      `gorm:"default:false;not null" json:"legacy"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

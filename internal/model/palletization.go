package model

import (
	"time"

	"github.com/google/uuid"
)

// Palletization reconciles one day's theoretical output for a product against
// the physically counted pallets and loose pieces. One record per
// (product, production date) pair. Conservation invariant:
//
//	TheoreticalPieces + LoosePiecesBefore == RealPieces + LoosePiecesAfter + LossPieces
//
// with LossPieces >= 0. Deleting the record reverses its ledger movement and
// restores the loose-pieces balance.
type Palletization struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_palletizations_product_date" json:"product_id"`
	Product           Product    `gorm:"foreignKey:ProductID" json:"-"`
	ProductionDate    time.Time  `gorm:"type:date;not null;uniqueIndex:idx_palletizations_product_date" json:"production_date"`
	TheoreticalPieces int        `gorm:"type:int;not null" json:"theoretical_pieces"`
	LoosePiecesBefore int        `gorm:"type:int;not null" json:"loose_pieces_before"`
	CompletePallets   int        `gorm:"type:int;not null" json:"complete_pallets"`
	LoosePiecesAfter  int        `gorm:"type:int;not null" json:"loose_pieces_after"`
	RealPieces        int        `gorm:"type:int;not null" json:"real_pieces"`
	LossPieces        int        `gorm:"type:int;not null" json:"loss_pieces"`
	Notes             string     `gorm:"type:text" json:"notes"`
	MovementID        *uuid.UUID `gorm:"type:uuid" json:"movement_id"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// PendingPalletization is a detected (product, date) pair with recorded output
// and no Palletization row yet. Pairs whose product has no pallet recipe are
// reported in a separate "missing recipe" bucket since they cannot be
// processed.
type PendingPalletization struct {
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	ProductionDate    time.Time `json:"production_date"`
	TheoreticalPieces int       `json:"theoretical_pieces"`
	PiecesPerPallet   *int      `json:"pieces_per_pallet"`
}

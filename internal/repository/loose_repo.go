package repository

import (
	"context"
	"errors"

	"pavestock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LooseBalanceRepository owns the per-product loose-pieces carry-over. Only
// the palletization reconciler writes through it.
type LooseBalanceRepository interface {
	// Get returns the current balance, zero when the product has no row yet.
	Get(ctx context.Context, productID uuid.UUID) (int, error)
	// GetForUpdate locks the row for the duration of the transaction.
	GetForUpdate(ctx context.Context, productID uuid.UUID) (int, error)
	Set(ctx context.Context, productID uuid.UUID, pieces int) error
	List(ctx context.Context) ([]model.LoosePiecesBalance, error)
}

type looseBalanceRepository struct {
	db *gorm.DB
}

func NewLooseBalanceRepository(db *gorm.DB) LooseBalanceRepository {
	return &looseBalanceRepository{db: db}
}

func (r *looseBalanceRepository) Get(ctx context.Context, productID uuid.UUID) (int, error) {
	var balance model.LoosePiecesBalance
	err := GetDB(ctx, r.db).First(&balance, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Pieces, nil
}

func (r *looseBalanceRepository) GetForUpdate(ctx context.Context, productID uuid.UUID) (int, error) {
	var balance model.LoosePiecesBalance
	err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&balance, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance.Pieces, nil
}

func (r *looseBalanceRepository) Set(ctx context.Context, productID uuid.UUID, pieces int) error {
	balance := model.LoosePiecesBalance{ProductID: productID, Pieces: pieces}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"pieces", "updated_at"}),
	}).Create(&balance).Error
}

func (r *looseBalanceRepository) List(ctx context.Context) ([]model.LoosePiecesBalance, error) {
	var balances []model.LoosePiecesBalance
	if err := GetDB(ctx, r.db).Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

package repository

import (
	"context"
	"time"

	"pavestock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductionRunRepository interface {
	Create(ctx context.Context, run *model.ProductionRun) error
	List(ctx context.Context, page, limit int, productID *uuid.UUID) ([]model.ProductionRun, int64, error)
	// TheoreticalPieces sums the day's recorded output for one product: the
	// recorded piece count per run, or cycles * piecesPerCycle when no count
	// was recorded. Legacy-seeded rows are included here (the reconciler
	// filters them at detection, not at summation).
	TheoreticalPieces(ctx context.Context, productID uuid.UUID, date time.Time) (int, error)
	// PendingPalletizations returns every non-legacy (product, date) pair with
	// theoretical output > 0 and no palletization record yet.
	PendingPalletizations(ctx context.Context) ([]model.PendingPalletization, error)
}

type productionRunRepository struct {
	db *gorm.DB
}

func NewProductionRunRepository(db *gorm.DB) ProductionRunRepository {
	return &productionRunRepository{db: db}
}

func (r *productionRunRepository) Create(ctx context.Context, run *model.ProductionRun) error {
	return GetDB(ctx, r.db).Create(run).Error
}

func (r *productionRunRepository) List(ctx context.Context, page, limit int, productID *uuid.UUID) ([]model.ProductionRun, int64, error) {
	var runs []model.ProductionRun
	var total int64

	db := GetDB(ctx, r.db).Model(&model.ProductionRun{})
	if productID != nil {
		db = db.Where("product_id = ?", *productID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("run_date DESC, created_at DESC").Offset(offset).Limit(limit).Find(&runs).Error; err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

func (r *productionRunRepository) TheoreticalPieces(ctx context.Context, productID uuid.UUID, date time.Time) (int, error) {
	var result struct {
		Total int64
	}
	err := GetDB(ctx, r.db).Table("production_runs").
		Select("COALESCE(SUM(CASE WHEN production_runs.pieces > 0 THEN production_runs.pieces ELSE production_runs.cycles * products.pieces_per_cycle END), 0) as total").
		Joins("JOIN products ON products.id = production_runs.product_id").
		Where("production_runs.product_id = ? AND production_runs.run_date = ?", productID, date).
		Scan(&result).Error
	if err != nil {
		return 0, err
	}
	return int(result.Total), nil
}

func (r *productionRunRepository) PendingPalletizations(ctx context.Context) ([]model.PendingPalletization, error) {
	var pending []model.PendingPalletization
	err := GetDB(ctx, r.db).Table("production_runs").
		Select("production_runs.product_id, products.name as product_name, production_runs.run_date as production_date, products.pieces_per_pallet, SUM(CASE WHEN production_runs.pieces > 0 THEN production_runs.pieces ELSE production_runs.cycles * products.pieces_per_cycle END) as theoretical_pieces").
		Joins("JOIN products ON products.id = production_runs.product_id").
		Where("production_runs.legacy = ?", false).
		Where("NOT EXISTS (SELECT 1 FROM palletizations WHERE palletizations.product_id = production_runs.product_id AND palletizations.production_date = production_runs.run_date)").
		Group("production_runs.product_id, products.name, production_runs.run_date, products.pieces_per_pallet").
		Having("SUM(CASE WHEN production_runs.pieces > 0 THEN production_runs.pieces ELSE production_runs.cycles * products.pieces_per_cycle END) > 0").
		Order("production_date ASC").
		Scan(&pending).Error
	if err != nil {
		return nil, err
	}
	return pending, nil
}

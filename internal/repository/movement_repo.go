package repository

import (
	"context"
	"time"

	"pavestock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementFilter narrows ledger listings.
type MovementFilter struct {
	ProductID *uuid.UUID
	From      *time.Time
	To        *time.Time
}

// MovementRepository is the append-only stock ledger. Rows are never updated;
// Delete exists solely for manual adjustments and for reversing a
// palletization by deleting its owned movement.
type MovementRepository interface {
	Create(ctx context.Context, movement *model.InventoryMovement) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryMovement, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, limit int, filter MovementFilter) ([]model.InventoryMovement, int64, error)
	// Balance derives the product's stock as SUM(IN) - SUM(OUT) on demand.
	Balance(ctx context.Context, productID uuid.UUID) (int, error)
	// Balances derives every product's stock in one aggregation.
	Balances(ctx context.Context) ([]model.ProductStockBalance, error)
}

type movementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Create(ctx context.Context, movement *model.InventoryMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *movementRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.InventoryMovement, error) {
	var movement model.InventoryMovement
	if err := GetDB(ctx, r.db).First(&movement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *movementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.InventoryMovement{}).Error
}

func (r *movementRepository) List(ctx context.Context, page, limit int, filter MovementFilter) ([]model.InventoryMovement, int64, error) {
	var movements []model.InventoryMovement
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryMovement{})
	if filter.ProductID != nil {
		db = db.Where("product_id = ?", *filter.ProductID)
	}
	if filter.From != nil {
		db = db.Where("movement_date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("movement_date <= ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("movement_date DESC, created_at DESC").Offset(offset).Limit(limit).Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

func (r *movementRepository) Balance(ctx context.Context, productID uuid.UUID) (int, error) {
	var result struct {
		Balance int64
	}
	err := GetDB(ctx, r.db).Table("inventory_movements").
		Select("COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity_pieces ELSE -quantity_pieces END), 0) as balance").
		Where("product_id = ?", productID).
		Scan(&result).Error
	if err != nil {
		return 0, err
	}
	return int(result.Balance), nil
}

func (r *movementRepository) Balances(ctx context.Context) ([]model.ProductStockBalance, error) {
	var balances []model.ProductStockBalance
	err := GetDB(ctx, r.db).Table("inventory_movements").
		Select("inventory_movements.product_id, products.name as product_name, COALESCE(SUM(CASE WHEN direction = 'IN' THEN quantity_pieces ELSE -quantity_pieces END), 0) as balance").
		Joins("JOIN products ON products.id = inventory_movements.product_id").
		Group("inventory_movements.product_id, products.name").
		Order("products.name ASC").
		Scan(&balances).Error
	if err != nil {
		return nil, err
	}
	return balances, nil
}

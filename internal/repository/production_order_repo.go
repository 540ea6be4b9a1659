package repository

import (
	"context"
	"time"

	"pavestock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductionOrderFilter narrows production-order listings.
type ProductionOrderFilter struct {
	Status    string
	OrderID   *uuid.UUID
	ProductID *uuid.UUID
}

type ProductionOrderRepository interface {
	Create(ctx context.Context, po *model.ProductionOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error)
	// ListOpenFIFO returns every PENDING/IN_PROGRESS row ordered by Seq
	// ascending, the order the evaluator walks them in.
	ListOpenFIFO(ctx context.Context) ([]model.ProductionOrder, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.ProductionOrder, error)
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
	// SumOpenForProduct sums target quantities of open rows for a product,
	// excluding one order's rows (the reservedByOthers figure).
	SumOpenForProduct(ctx context.Context, productID uuid.UUID, excludeOrderID uuid.UUID) (int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, completedAt *time.Time) error
	List(ctx context.Context, page, limit int, filter ProductionOrderFilter) ([]model.ProductionOrder, int64, error)
}

type productionOrderRepository struct {
	db *gorm.DB
}

func NewProductionOrderRepository(db *gorm.DB) ProductionOrderRepository {
	return &productionOrderRepository{db: db}
}

func (r *productionOrderRepository) Create(ctx context.Context, po *model.ProductionOrder) error {
	return GetDB(ctx, r.db).Create(po).Error
}

func (r *productionOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	var po model.ProductionOrder
	if err := GetDB(ctx, r.db).First(&po, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *productionOrderRepository) ListOpenFIFO(ctx context.Context) ([]model.ProductionOrder, error) {
	var pos []model.ProductionOrder
	err := GetDB(ctx, r.db).
		Where("status IN ?", []string{model.ProductionOrderPending, model.ProductionOrderInProgress}).
		Order("seq ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return pos, nil
}

func (r *productionOrderRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.ProductionOrder, error) {
	var pos []model.ProductionOrder
	err := GetDB(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("seq ASC").
		Find(&pos).Error
	if err != nil {
		return nil, err
	}
	return pos, nil
}

func (r *productionOrderRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ProductionOrder{}).
		Where("order_id = ?", orderID).
		Count(&count).Error
	return count, err
}

func (r *productionOrderRepository) SumOpenForProduct(ctx context.Context, productID uuid.UUID, excludeOrderID uuid.UUID) (int, error) {
	var result struct {
		Total int64
	}
	err := GetDB(ctx, r.db).Table("production_orders").
		Select("COALESCE(SUM(quantity_pieces), 0) as total").
		Where("product_id = ? AND order_id <> ? AND status IN ?",
			productID, excludeOrderID,
			[]string{model.ProductionOrderPending, model.ProductionOrderInProgress}).
		Scan(&result).Error
	if err != nil {
		return 0, err
	}
	return int(result.Total), nil
}

func (r *productionOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, completedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	return GetDB(ctx, r.db).Model(&model.ProductionOrder{}).Where("id = ?", id).Updates(updates).Error
}

func (r *productionOrderRepository) List(ctx context.Context, page, limit int, filter ProductionOrderFilter) ([]model.ProductionOrder, int64, error) {
	var pos []model.ProductionOrder
	var total int64

	db := GetDB(ctx, r.db).Model(&model.ProductionOrder{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.OrderID != nil {
		db = db.Where("order_id = ?", *filter.OrderID)
	}
	if filter.ProductID != nil {
		db = db.Where("product_id = ?", *filter.ProductID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("seq ASC").Offset(offset).Limit(limit).Find(&pos).Error; err != nil {
		return nil, 0, err
	}

	return pos, total, nil
}

package repository

import (
	"context"
	"time"

	"pavestock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryRepository interface {
	Create(ctx context.Context, delivery *model.Delivery) error
	CreateItem(ctx context.Context, item *model.DeliveryItem) error
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Delivery, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, deliveryDate *time.Time) error
	// Delete hard-removes the delivery and its items (allowed only from
	// LOADING, enforced by the service).
	Delete(ctx context.Context, id uuid.UUID) error
	// SumDeliveredForItem sums quantities committed against one order item
	// across all non-cancelled deliveries.
	SumDeliveredForItem(ctx context.Context, orderItemID uuid.UUID) (int, error)
	CountActiveByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
	List(ctx context.Context, page, limit int, orderID *uuid.UUID, status string) ([]model.Delivery, int64, error)
}

type deliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (r *deliveryRepository) Create(ctx context.Context, delivery *model.Delivery) error {
	return GetDB(ctx, r.db).Create(delivery).Error
}

func (r *deliveryRepository) CreateItem(ctx context.Context, item *model.DeliveryItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *deliveryRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.Delivery, error) {
	var delivery model.Delivery
	if err := GetDB(ctx, r.db).
		Preload("Items").
		First(&delivery, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *deliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, deliveryDate *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if deliveryDate != nil {
		updates["delivery_date"] = *deliveryDate
	}
	return GetDB(ctx, r.db).Model(&model.Delivery{}).Where("id = ?", id).Updates(updates).Error
}

func (r *deliveryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("delivery_id = ?", id).Delete(&model.DeliveryItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Delivery{}).Error
}

func (r *deliveryRepository) SumDeliveredForItem(ctx context.Context, orderItemID uuid.UUID) (int, error) {
	var result struct {
		Total int64
	}
	err := GetDB(ctx, r.db).Table("delivery_items").
		Select("COALESCE(SUM(delivery_items.quantity_pieces), 0) as total").
		Joins("JOIN deliveries ON deliveries.id = delivery_items.delivery_id").
		Where("delivery_items.order_item_id = ? AND deliveries.status <> ?", orderItemID, model.DeliveryCancelled).
		Scan(&result).Error
	if err != nil {
		return 0, err
	}
	return int(result.Total), nil
}

func (r *deliveryRepository) CountActiveByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Delivery{}).
		Where("order_id = ? AND status <> ?", orderID, model.DeliveryCancelled).
		Count(&count).Error
	return count, err
}

func (r *deliveryRepository) List(ctx context.Context, page, limit int, orderID *uuid.UUID, status string) ([]model.Delivery, int64, error) {
	var deliveries []model.Delivery
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Delivery{})
	if orderID != nil {
		db = db.Where("order_id = ?", *orderID)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.
		Preload("Items").
		Order("seq DESC").
		Offset(offset).Limit(limit).
		Find(&deliveries).Error; err != nil {
		return nil, 0, err
	}

	return deliveries, total, nil
}

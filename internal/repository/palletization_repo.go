package repository

import (
	"context"
	"errors"
	"time"

	"pavestock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PalletizationRepository interface {
	Create(ctx context.Context, palletization *model.Palletization) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Palletization, error)
	// Exists reports whether the (product, date) pair was already reconciled.
	Exists(ctx context.Context, productID uuid.UUID, date time.Time) (bool, error)
	// SetMovementID links the record to the ledger movement it posted.
	SetMovementID(ctx context.Context, id, movementID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page, limit int, productID *uuid.UUID) ([]model.Palletization, int64, error)
}

type palletizationRepository struct {
	db *gorm.DB
}

func NewPalletizationRepository(db *gorm.DB) PalletizationRepository {
	return &palletizationRepository{db: db}
}

func (r *palletizationRepository) Create(ctx context.Context, palletization *model.Palletization) error {
	return GetDB(ctx, r.db).Create(palletization).Error
}

func (r *palletizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Palletization, error) {
	var palletization model.Palletization
	if err := GetDB(ctx, r.db).First(&palletization, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &palletization, nil
}

func (r *palletizationRepository) Exists(ctx context.Context, productID uuid.UUID, date time.Time) (bool, error) {
	var palletization model.Palletization
	err := GetDB(ctx, r.db).
		Where("product_id = ? AND production_date = ?", productID, date).
		First(&palletization).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *palletizationRepository) SetMovementID(ctx context.Context, id, movementID uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.Palletization{}).
		Where("id = ?", id).Update("movement_id", movementID).Error
}

func (r *palletizationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Palletization{}).Error
}

func (r *palletizationRepository) List(ctx context.Context, page, limit int, productID *uuid.UUID) ([]model.Palletization, int64, error) {
	var palletizations []model.Palletization
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Palletization{})
	if productID != nil {
		db = db.Where("product_id = ?", *productID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("production_date DESC").Offset(offset).Limit(limit).Find(&palletizations).Error; err != nil {
		return nil, 0, err
	}

	return palletizations, total, nil
}

package repository

import (
	"context"
	"errors"

	"pavestock/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository allocates per-entity display sequence numbers. The
// counter row is locked FOR UPDATE inside the caller's transaction, so
// allocation serializes with the record creation it numbers and a rollback
// simply discards the increment.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	db := GetDB(ctx, r.db)

	var counter model.SequenceCounter
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = model.SequenceCounter{Name: name, Value: 0}
		if err := db.Create(&counter).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	counter.Value++
	if err := db.Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

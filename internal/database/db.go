package database

import (
	"pavestock/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Product{},
		&model.ProductionRun{},
		&model.InventoryMovement{},
		&model.LoosePiecesBalance{},
		&model.Palletization{},
		&model.Order{},
		&model.OrderItem{},
		&model.ProductionOrder{},
		&model.Delivery{},
		&model.DeliveryItem{},
		&model.SequenceCounter{},
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to auto-migrate models")
	}

	return db, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pavestock/internal/apperror"
	"pavestock/internal/model"
	"pavestock/internal/repository"
	ws "pavestock/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PostMovementParams describes one ledger append. SourceType/SourceID link the
// row to its owning record; rows so linked can only be reversed through that
// record, never deleted directly.
type PostMovementParams struct {
	ProductID      uuid.UUID
	Date           time.Time
	Direction      string
	QuantityPieces int
	SourceType     string
	SourceID       *uuid.UUID
	Notes          string
}

// ManualMovementRequest is the API payload for a manual stock adjustment.
type ManualMovementRequest struct {
	ProductID      string `json:"product_id" binding:"required"`
	Date           string `json:"date" binding:"required"` // YYYY-MM-DD
	Direction      string `json:"direction" binding:"required,oneof=IN OUT"`
	QuantityPieces int    `json:"quantity_pieces" binding:"required,gt=0"`
	Notes          string `json:"notes"`
}

// StockService is the ledger facade. Balance is always derived from the
// movement rows; nothing here caches stock.
type StockService interface {
	// Post appends one movement inside the caller's transaction scope. Used
	// by the reconciler and delivery fulfillment; validation and recipe
	// snapshotting happen here so every writer shares them.
	Post(ctx context.Context, params PostMovementParams) (*model.InventoryMovement, error)
	PostManual(ctx context.Context, req ManualMovementRequest) (*model.InventoryMovement, error)
	DeleteManual(ctx context.Context, id string) error
	Balance(ctx context.Context, productID string) (int, error)
	Balances(ctx context.Context) ([]model.ProductStockBalance, error)
	ListMovements(ctx context.Context, page, limit int, filter repository.MovementFilter) ([]model.InventoryMovement, int64, error)
}

type stockService struct {
	movementRepo repository.MovementRepository
	productRepo  repository.ProductRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewStockService(
	movementRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) StockService {
	return &stockService{
		movementRepo: movementRepo,
		productRepo:  productRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

func (s *stockService) Post(ctx context.Context, params PostMovementParams) (*model.InventoryMovement, error) {
	if params.QuantityPieces <= 0 {
		return nil, apperror.Validation("movement quantity must be positive, got %d", params.QuantityPieces)
	}
	if params.Direction != model.DirectionIn && params.Direction != model.DirectionOut {
		return nil, apperror.Validation("unknown movement direction %q", params.Direction)
	}

	product, err := s.productRepo.FindByID(ctx, params.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product %s not found", params.ProductID)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	movement := &model.InventoryMovement{
		ProductID:      product.ID,
		MovementDate:   params.Date,
		Direction:      params.Direction,
		QuantityPieces: params.QuantityPieces,
		SourceType:     params.SourceType,
		SourceID:       params.SourceID,
		Notes:          params.Notes,
	}

	// Snapshot derived units from the recipe as it is right now. History must
	// not rewrite itself when the recipe is edited later.
	pieces := decimal.NewFromInt(int64(params.QuantityPieces))
	if product.PiecesPerPallet != nil && *product.PiecesPerPallet > 0 {
		pallets := pieces.Div(decimal.NewFromInt(int64(*product.PiecesPerPallet))).Round(4)
		movement.QuantityPallets = &pallets
	}
	if product.PiecesPerM2 != nil && product.PiecesPerM2.IsPositive() {
		area := pieces.Div(*product.PiecesPerM2).Round(4)
		movement.AreaM2 = &area
	}

	if err := s.movementRepo.Create(ctx, movement); err != nil {
		return nil, fmt.Errorf("failed to append movement: %w", err)
	}
	return movement, nil
}

func (s *stockService) PostManual(ctx context.Context, req ManualMovementRequest) (*model.InventoryMovement, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperror.Validation("invalid product id: %s", req.ProductID)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apperror.Validation("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	var movement *model.InventoryMovement
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		movement, err = s.Post(txCtx, PostMovementParams{
			ProductID:      productID,
			Date:           date,
			Direction:      req.Direction,
			QuantityPieces: req.QuantityPieces,
			SourceType:     model.SourceManual,
			Notes:          req.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify("stock.posted", movement)
	return movement, nil
}

func (s *stockService) DeleteManual(ctx context.Context, id string) error {
	movementID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid movement id: %s", id)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		movement, err := s.movementRepo.FindByID(txCtx, movementID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("movement %s not found", id)
			}
			return fmt.Errorf("failed to find movement: %w", err)
		}
		if movement.SourceType != model.SourceManual {
			return apperror.InvalidState("movement %s belongs to a %s record and can only be reversed through it", id, movement.SourceType)
		}
		return s.movementRepo.Delete(txCtx, movementID)
	})
	if err != nil {
		return err
	}

	s.hub.Notify("stock.deleted", map[string]string{"movement_id": id})
	return nil
}

func (s *stockService) Balance(ctx context.Context, productID string) (int, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return 0, apperror.Validation("invalid product id: %s", productID)
	}
	return s.movementRepo.Balance(ctx, id)
}

func (s *stockService) Balances(ctx context.Context) ([]model.ProductStockBalance, error) {
	return s.movementRepo.Balances(ctx)
}

func (s *stockService) ListMovements(ctx context.Context, page, limit int, filter repository.MovementFilter) ([]model.InventoryMovement, int64, error) {
	return s.movementRepo.List(ctx, page, limit, filter)
}

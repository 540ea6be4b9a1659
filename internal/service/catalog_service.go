package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pavestock/internal/apperror"
	"pavestock/internal/model"
	"pavestock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Name            string           `json:"name" binding:"required"`
	PiecesPerCycle  int              `json:"pieces_per_cycle"`
	PiecesPerPallet *int             `json:"pieces_per_pallet"`
	PiecesPerM2     *decimal.Decimal `json:"pieces_per_m2"`
}

type CreateProductionRunRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	RunDate   string `json:"run_date" binding:"required"`
	Cycles    int    `json:"cycles"`
	Pieces    int    `json:"pieces"`
	Legacy    bool   `json:"legacy"`
}

// CatalogService covers the two master-data surfaces the stock system needs:
// the product catalog with its recipes, and the daily production run log.
type CatalogService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	ListProducts(ctx context.Context, page, limit int, search string) ([]model.Product, int64, error)
	CreateRun(ctx context.Context, req CreateProductionRunRequest) (*model.ProductionRun, error)
	ListRuns(ctx context.Context, page, limit int, productID string) ([]model.ProductionRun, int64, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	runRepo     repository.ProductionRunRepository
}

func NewCatalogService(productRepo repository.ProductRepository, runRepo repository.ProductionRunRepository) CatalogService {
	return &catalogService{productRepo: productRepo, runRepo: runRepo}
}

func (s *catalogService) CreateProduct(ctx context.Context, req CreateProductRequest) (*model.Product, error) {
	if req.PiecesPerCycle < 0 {
		return nil, apperror.Validation("pieces per cycle cannot be negative")
	}
	if req.PiecesPerPallet != nil && *req.PiecesPerPallet <= 0 {
		return nil, apperror.Validation("pieces per pallet must be positive when set")
	}
	if req.PiecesPerM2 != nil && !req.PiecesPerM2.IsPositive() {
		return nil, apperror.Validation("pieces per m2 must be positive when set")
	}

	product := &model.Product{
		Name:            req.Name,
		PiecesPerCycle:  req.PiecesPerCycle,
		PiecesPerPallet: req.PiecesPerPallet,
		PiecesPerM2:     req.PiecesPerM2,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return nil, apperror.Validation("invalid product id: %s", productID)
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product %s not found", productID)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, page, limit int, search string) ([]model.Product, int64, error) {
	return s.productRepo.List(ctx, page, limit, search)
}

func (s *catalogService) CreateRun(ctx context.Context, req CreateProductionRunRequest) (*model.ProductionRun, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperror.Validation("invalid product id: %s", req.ProductID)
	}
	runDate, err := time.Parse("2006-01-02", req.RunDate)
	if err != nil {
		return nil, apperror.Validation("invalid run date %q, expected YYYY-MM-DD", req.RunDate)
	}
	if req.Cycles < 0 || req.Pieces < 0 {
		return nil, apperror.Validation("cycles and pieces cannot be negative")
	}
	if req.Cycles == 0 && req.Pieces == 0 {
		return nil, apperror.Validation("a run needs cycles or a recorded piece count")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product %s not found", req.ProductID)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if req.Pieces == 0 && product.PiecesPerCycle <= 0 {
		return nil, apperror.Validation("product %q has no pieces-per-cycle recipe, record the piece count directly", product.Name)
	}

	run := &model.ProductionRun{
		ProductID: productID,
		RunDate:   runDate,
		Cycles:    req.Cycles,
		Pieces:    req.Pieces,
		Legacy:    req.Legacy,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create production run: %w", err)
	}
	return run, nil
}

func (s *catalogService) ListRuns(ctx context.Context, page, limit int, productID string) ([]model.ProductionRun, int64, error) {
	var filter *uuid.UUID
	if productID != "" {
		id, err := uuid.Parse(productID)
		if err != nil {
			return nil, 0, apperror.Validation("invalid product id: %s", productID)
		}
		filter = &id
	}
	return s.runRepo.List(ctx, page, limit, filter)
}

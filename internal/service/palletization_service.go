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
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SavePalletizationRequest is the API payload for reconciling one production
// day: how many complete pallets were stacked and how many loose pieces were
// left over after stacking.
type SavePalletizationRequest struct {
	ProductID        string `json:"product_id" binding:"required"`
	ProductionDate   string `json:"production_date" binding:"required"` // YYYY-MM-DD
	CompletePallets  int    `json:"complete_pallets" binding:"min=0"`
	LoosePiecesAfter int    `json:"loose_pieces_after" binding:"min=0"`
	Notes            string `json:"notes"`
}

// PendingPalletizations splits detected pending pairs into those that can be
// processed and those whose product lacks a pallet recipe.
type PendingPalletizations struct {
	Pending       []model.PendingPalletization `json:"pending"`
	MissingRecipe []model.PendingPalletization `json:"missing_recipe"`
}

// PalletizationService reconciles theoretical production output against the
// physically counted result, posting the real pieces to the ledger and
// carrying loose pieces over to the next day.
type PalletizationService interface {
	Pending(ctx context.Context) (*PendingPalletizations, error)
	Save(ctx context.Context, req SavePalletizationRequest) (*model.Palletization, error)
	Delete(ctx context.Context, id string) error
	FormPalletFromLoose(ctx context.Context, productID string) (*model.InventoryMovement, error)
	List(ctx context.Context, page, limit int, productID *uuid.UUID) ([]model.Palletization, int64, error)
	LooseBalances(ctx context.Context) ([]model.LoosePiecesBalance, error)
}

type palletizationService struct {
	palletizationRepo repository.PalletizationRepository
	runRepo           repository.ProductionRunRepository
	looseRepo         repository.LooseBalanceRepository
	movementRepo      repository.MovementRepository
	productRepo       repository.ProductRepository
	stock             StockService
	evaluator         Evaluator
	txManager         repository.TransactionManager
	hub               *ws.Hub
}

func NewPalletizationService(
	palletizationRepo repository.PalletizationRepository,
	runRepo repository.ProductionRunRepository,
	looseRepo repository.LooseBalanceRepository,
	movementRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	stock StockService,
	evaluator Evaluator,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) PalletizationService {
	return &palletizationService{
		palletizationRepo: palletizationRepo,
		runRepo:           runRepo,
		looseRepo:         looseRepo,
		movementRepo:      movementRepo,
		productRepo:       productRepo,
		stock:             stock,
		evaluator:         evaluator,
		txManager:         txManager,
		hub:               hub,
	}
}

func (s *palletizationService) Pending(ctx context.Context) (*PendingPalletizations, error) {
	detected, err := s.runRepo.PendingPalletizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to detect pending palletizations: %w", err)
	}

	result := &PendingPalletizations{
		Pending:       []model.PendingPalletization{},
		MissingRecipe: []model.PendingPalletization{},
	}
	for _, p := range detected {
		if p.PiecesPerPallet == nil || *p.PiecesPerPallet <= 0 {
			result.MissingRecipe = append(result.MissingRecipe, p)
			continue
		}
		result.Pending = append(result.Pending, p)
	}
	return result, nil
}

func (s *palletizationService) Save(ctx context.Context, req SavePalletizationRequest) (*model.Palletization, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperror.Validation("invalid product id: %s", req.ProductID)
	}
	date, err := time.Parse("2006-01-02", req.ProductionDate)
	if err != nil {
		return nil, apperror.Validation("invalid production date %q, expected YYYY-MM-DD", req.ProductionDate)
	}
	if req.CompletePallets < 0 {
		return nil, apperror.Validation("complete pallets must not be negative, got %d", req.CompletePallets)
	}
	if req.LoosePiecesAfter < 0 {
		return nil, apperror.Validation("loose pieces after must not be negative, got %d", req.LoosePiecesAfter)
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product %s not found", req.ProductID)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	if product.PiecesPerPallet == nil || *product.PiecesPerPallet <= 0 {
		return nil, apperror.MissingRecipe("product %q has no pieces-per-pallet recipe", product.Name)
	}
	piecesPerPallet := *product.PiecesPerPallet

	var palletization *model.Palletization
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := s.palletizationRepo.Exists(txCtx, productID, date)
		if err != nil {
			return fmt.Errorf("failed to check existing palletization: %w", err)
		}
		if exists {
			return apperror.InvalidState("palletization for product %q on %s already exists", product.Name, req.ProductionDate)
		}

		loosePiecesBefore, err := s.looseRepo.GetForUpdate(txCtx, productID)
		if err != nil {
			return fmt.Errorf("failed to read loose balance: %w", err)
		}

		theoreticalPieces, err := s.runRepo.TheoreticalPieces(txCtx, productID, date)
		if err != nil {
			return fmt.Errorf("failed to sum theoretical output: %w", err)
		}
		if theoreticalPieces <= 0 {
			return apperror.NoProduction("no recorded production for product %q on %s", product.Name, req.ProductionDate)
		}

		realPieces := req.CompletePallets * piecesPerPallet
		lossPieces := theoreticalPieces + loosePiecesBefore - realPieces - req.LoosePiecesAfter
		if lossPieces < 0 {
			return apperror.ReconciliationOverrun(
				"counted output exceeds available pieces: theoretical %d + loose before %d < real %d + loose after %d (overrun %d)",
				theoreticalPieces, loosePiecesBefore, realPieces, req.LoosePiecesAfter, -lossPieces)
		}

		palletization = &model.Palletization{
			ProductID:         productID,
			ProductionDate:    date,
			TheoreticalPieces: theoreticalPieces,
			LoosePiecesBefore: loosePiecesBefore,
			CompletePallets:   req.CompletePallets,
			LoosePiecesAfter:  req.LoosePiecesAfter,
			RealPieces:        realPieces,
			LossPieces:        lossPieces,
			Notes:             req.Notes,
		}
		if err := s.palletizationRepo.Create(txCtx, palletization); err != nil {
			return fmt.Errorf("failed to create palletization: %w", err)
		}

		if err := s.looseRepo.Set(txCtx, productID, req.LoosePiecesAfter); err != nil {
			return fmt.Errorf("failed to update loose balance: %w", err)
		}

		if req.CompletePallets > 0 {
			movement, err := s.stock.Post(txCtx, PostMovementParams{
				ProductID:      productID,
				Date:           date,
				Direction:      model.DirectionIn,
				QuantityPieces: realPieces,
				SourceType:     model.SourcePalletization,
				SourceID:       &palletization.ID,
				Notes:          fmt.Sprintf("palletization %s: %d pallets", req.ProductionDate, req.CompletePallets),
			})
			if err != nil {
				return err
			}
			palletization.MovementID = &movement.ID
			if err := s.palletizationRepo.SetMovementID(txCtx, palletization.ID, movement.ID); err != nil {
				return fmt.Errorf("failed to link movement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// New real stock may satisfy waiting production orders.
	if err := s.evaluator.Evaluate(ctx); err != nil {
		log.Warn().Err(err).Msg("fifo evaluation after palletization failed")
	}

	s.hub.Notify("palletization.saved", palletization)
	return palletization, nil
}

func (s *palletizationService) Delete(ctx context.Context, id string) error {
	palletizationID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid palletization id: %s", id)
	}

	var productID uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		palletization, err := s.palletizationRepo.FindByID(txCtx, palletizationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("palletization %s not found", id)
			}
			return fmt.Errorf("failed to find palletization: %w", err)
		}
		productID = palletization.ProductID

		current, err := s.looseRepo.GetForUpdate(txCtx, palletization.ProductID)
		if err != nil {
			return fmt.Errorf("failed to read loose balance: %w", err)
		}

		restored := current - palletization.LoosePiecesAfter + palletization.LoosePiecesBefore
		if restored < 0 {
			// The clamp masks a prior inconsistency rather than failing the
			// reversal; surface it in the logs.
			log.Warn().
				Str("product_id", palletization.ProductID.String()).
				Int("computed", restored).
				Msg("loose balance reversal clamped to zero")
			restored = 0
		}
		if err := s.looseRepo.Set(txCtx, palletization.ProductID, restored); err != nil {
			return fmt.Errorf("failed to restore loose balance: %w", err)
		}

		if palletization.MovementID != nil {
			if err := s.movementRepo.Delete(txCtx, *palletization.MovementID); err != nil {
				return fmt.Errorf("failed to delete linked movement: %w", err)
			}
		}
		return s.palletizationRepo.Delete(txCtx, palletizationID)
	})
	if err != nil {
		return err
	}

	s.hub.Notify("palletization.deleted", map[string]string{
		"palletization_id": id,
		"product_id":       productID.String(),
	})
	return nil
}

func (s *palletizationService) FormPalletFromLoose(ctx context.Context, productID string) (*model.InventoryMovement, error) {
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
	if product.PiecesPerPallet == nil || *product.PiecesPerPallet <= 0 {
		return nil, apperror.MissingRecipe("product %q has no pieces-per-pallet recipe", product.Name)
	}
	piecesPerPallet := *product.PiecesPerPallet

	var movement *model.InventoryMovement
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		balance, err := s.looseRepo.GetForUpdate(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to read loose balance: %w", err)
		}
		if balance < piecesPerPallet {
			return apperror.InsufficientLoosePieces(
				"product %q has %d loose pieces, a pallet needs %d", product.Name, balance, piecesPerPallet)
		}
		if err := s.looseRepo.Set(txCtx, id, balance-piecesPerPallet); err != nil {
			return fmt.Errorf("failed to update loose balance: %w", err)
		}

		movement, err = s.stock.Post(txCtx, PostMovementParams{
			ProductID:      id,
			Date:           time.Now(),
			Direction:      model.DirectionIn,
			QuantityPieces: piecesPerPallet,
			SourceType:     model.SourceLoosePallet,
			Notes:          "pallet formed from loose pieces",
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.evaluator.Evaluate(ctx); err != nil {
		log.Warn().Err(err).Msg("fifo evaluation after pallet formation failed")
	}

	s.hub.Notify("pallet.formed", movement)
	return movement, nil
}

func (s *palletizationService) List(ctx context.Context, page, limit int, productID *uuid.UUID) ([]model.Palletization, int64, error) {
	return s.palletizationRepo.List(ctx, page, limit, productID)
}

func (s *palletizationService) LooseBalances(ctx context.Context) ([]model.LoosePiecesBalance, error) {
	return s.looseRepo.List(ctx)
}

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
	"gorm.io/gorm"
)

// Evaluator is the lazy FIFO sweep. It runs in its own transaction, persists
// only changed rows, and is idempotent: a second run with no ledger change in
// between mutates nothing.
type Evaluator interface {
	Evaluate(ctx context.Context) error
}

// GenerateProductionRequest commits an order to production. Overrides let the
// caller replace the suggested to-produce quantity per item; the stock check
// is advisory only.
type GenerateProductionRequest struct {
	OrderID   string                      `json:"order_id" binding:"required"`
	Overrides []ProductionOverrideRequest `json:"overrides"`
}

type ProductionOverrideRequest struct {
	OrderItemID     string `json:"order_item_id" binding:"required"`
	ToProducePieces int    `json:"to_produce_pieces" binding:"min=0"`
}

// ProductionService allocates production work against orders and advances
// reservations as ledger stock arrives, oldest commitment first.
type ProductionService interface {
	Evaluator
	Check(ctx context.Context, orderID string) ([]model.ItemStockCheck, error)
	Generate(ctx context.Context, req GenerateProductionRequest) ([]model.ProductionOrder, error)
	Cancel(ctx context.Context, productionOrderID string) error
	CancelForOrder(ctx context.Context, orderID string) error
	List(ctx context.Context, page, limit int, filter repository.ProductionOrderFilter) ([]model.ProductionOrder, int64, error)
}

type productionService struct {
	poRepo       repository.ProductionOrderRepository
	orderRepo    repository.OrderRepository
	movementRepo repository.MovementRepository
	productRepo  repository.ProductRepository
	seqRepo      repository.SequenceRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewProductionService(
	poRepo repository.ProductionOrderRepository,
	orderRepo repository.OrderRepository,
	movementRepo repository.MovementRepository,
	productRepo repository.ProductRepository,
	seqRepo repository.SequenceRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ProductionService {
	return &productionService{
		poRepo:       poRepo,
		orderRepo:    orderRepo,
		movementRepo: movementRepo,
		productRepo:  productRepo,
		seqRepo:      seqRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// Check computes the advisory per-item production figures without writing
// anything. reservedByOthers counts the full target of other orders' open
// reservations, even where existing stock already satisfies part of them.
func (s *productionService) Check(ctx context.Context, orderID string) ([]model.ItemStockCheck, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, apperror.Validation("invalid order id: %s", orderID)
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order %s not found", orderID)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	checks := make([]model.ItemStockCheck, 0, len(order.Items))
	for _, item := range order.Items {
		available, err := s.movementRepo.Balance(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to read balance: %w", err)
		}
		reserved, err := s.poRepo.SumOpenForProduct(ctx, item.ProductID, order.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum reservations: %w", err)
		}

		effective := available - reserved
		if effective < 0 {
			effective = 0
		}
		suggested := item.QuantityPieces - effective
		if suggested < 0 {
			suggested = 0
		}

		checks = append(checks, model.ItemStockCheck{
			OrderItemID:        item.ID,
			ProductID:          item.ProductID,
			ProductName:        item.Product.Name,
			QuantityPieces:     item.QuantityPieces,
			AvailableStock:     available,
			ReservedByOthers:   reserved,
			EffectiveStock:     effective,
			SuggestedToProduce: suggested,
		})
	}
	return checks, nil
}

func (s *productionService) Generate(ctx context.Context, req GenerateProductionRequest) ([]model.ProductionOrder, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apperror.Validation("invalid order id: %s", req.OrderID)
	}

	overrides := make(map[uuid.UUID]int, len(req.Overrides))
	for _, o := range req.Overrides {
		itemID, err := uuid.Parse(o.OrderItemID)
		if err != nil {
			return nil, apperror.Validation("invalid order item id: %s", o.OrderItemID)
		}
		if o.ToProducePieces < 0 {
			return nil, apperror.Validation("to-produce override must not be negative, got %d", o.ToProducePieces)
		}
		overrides[itemID] = o.ToProducePieces
	}

	var created []model.ProductionOrder
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByIDWithItems(txCtx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("order %s not found", req.OrderID)
			}
			return fmt.Errorf("failed to find order: %w", err)
		}
		if order.Status != model.OrderStatusConfirmed {
			return apperror.InvalidState("order %s is %s, production can only be generated from %s",
				req.OrderID, order.Status, model.OrderStatusConfirmed)
		}

		existing, err := s.poRepo.CountByOrder(txCtx, orderID)
		if err != nil {
			return fmt.Errorf("failed to count production orders: %w", err)
		}
		if existing > 0 {
			return apperror.AlreadyGenerated("order %s already has %d production orders", req.OrderID, existing)
		}

		for _, item := range order.Items {
			available, err := s.movementRepo.Balance(txCtx, item.ProductID)
			if err != nil {
				return fmt.Errorf("failed to read balance: %w", err)
			}
			reserved, err := s.poRepo.SumOpenForProduct(txCtx, item.ProductID, order.ID)
			if err != nil {
				return fmt.Errorf("failed to sum reservations: %w", err)
			}
			effective := available - reserved
			if effective < 0 {
				effective = 0
			}
			toProduce := item.QuantityPieces - effective
			if toProduce < 0 {
				toProduce = 0
			}
			if override, ok := overrides[item.ID]; ok {
				toProduce = override
			}

			seq, err := s.seqRepo.Next(txCtx, model.SeqProductionOrder)
			if err != nil {
				return fmt.Errorf("failed to allocate sequence: %w", err)
			}

			po := model.ProductionOrder{
				Seq:             seq,
				OrderID:         order.ID,
				OrderItemID:     item.ID,
				ProductID:       item.ProductID,
				QuantityPieces:  item.QuantityPieces,
				StockAtCreation: available,
				ToProducePieces: toProduce,
				Status:          model.ProductionOrderPending,
			}
			if err := s.poRepo.Create(txCtx, &po); err != nil {
				return fmt.Errorf("failed to create production order: %w", err)
			}
			created = append(created, po)
		}

		return s.orderRepo.UpdateStatus(txCtx, order.ID, model.OrderStatusInProduction)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify("production.generated", map[string]interface{}{
		"order_id": req.OrderID,
		"count":    len(created),
	})
	return created, nil
}

// Evaluate walks every open production order in sequence order, maintaining a
// per-product pool of remaining ledger stock. Earlier rows fully consume
// available stock before later rows for the same product see any.
func (s *productionService) Evaluate(ctx context.Context) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		open, err := s.poRepo.ListOpenFIFO(txCtx)
		if err != nil {
			return fmt.Errorf("failed to list open production orders: %w", err)
		}
		if len(open) == 0 {
			return nil
		}

		remaining := make(map[uuid.UUID]int)
		for _, po := range open {
			if _, ok := remaining[po.ProductID]; ok {
				continue
			}
			balance, err := s.movementRepo.Balance(txCtx, po.ProductID)
			if err != nil {
				return fmt.Errorf("failed to read balance: %w", err)
			}
			remaining[po.ProductID] = balance
		}

		touched := make(map[uuid.UUID]bool)
		now := time.Now()
		for _, po := range open {
			pool := remaining[po.ProductID]

			var next string
			switch {
			case pool >= po.QuantityPieces:
				next = model.ProductionOrderCompleted
				remaining[po.ProductID] = pool - po.QuantityPieces
			case pool > 0:
				next = model.ProductionOrderInProgress
				remaining[po.ProductID] = 0
			default:
				// No stock left for this product; the row keeps its status.
				continue
			}

			if next == po.Status {
				continue
			}
			var completedAt *time.Time
			if next == model.ProductionOrderCompleted {
				completedAt = &now
			}
			if err := s.poRepo.UpdateStatus(txCtx, po.ID, next, completedAt); err != nil {
				return fmt.Errorf("failed to update production order: %w", err)
			}
			touched[po.OrderID] = true
		}

		for orderID := range touched {
			if err := s.advanceOrderIfSatisfied(txCtx, orderID); err != nil {
				return err
			}
		}
		return nil
	})
}

// advanceOrderIfSatisfied moves an order to READY once every one of its
// production orders is COMPLETED or CANCELLED.
func (s *productionService) advanceOrderIfSatisfied(ctx context.Context, orderID uuid.UUID) error {
	rows, err := s.poRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to list production orders: %w", err)
	}
	for _, po := range rows {
		if po.Status != model.ProductionOrderCompleted && po.Status != model.ProductionOrderCancelled {
			return nil
		}
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to find order: %w", err)
	}
	if order.Status != model.OrderStatusInProduction {
		return nil
	}
	if err := s.orderRepo.UpdateStatus(ctx, orderID, model.OrderStatusReady); err != nil {
		return fmt.Errorf("failed to advance order: %w", err)
	}
	s.hub.Notify("order.status", map[string]string{
		"order_id": orderID.String(),
		"status":   model.OrderStatusReady,
	})
	return nil
}

func (s *productionService) Cancel(ctx context.Context, productionOrderID string) error {
	id, err := uuid.Parse(productionOrderID)
	if err != nil {
		return apperror.Validation("invalid production order id: %s", productionOrderID)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		po, err := s.poRepo.FindByID(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("production order %s not found", productionOrderID)
			}
			return fmt.Errorf("failed to find production order: %w", err)
		}
		if po.Status != model.ProductionOrderPending && po.Status != model.ProductionOrderInProgress {
			return apperror.InvalidState("production order %s is %s and cannot be cancelled", productionOrderID, po.Status)
		}

		if err := s.poRepo.UpdateStatus(txCtx, id, model.ProductionOrderCancelled, nil); err != nil {
			return fmt.Errorf("failed to cancel production order: %w", err)
		}
		// Cancelling never touches the ledger; it only releases the
		// reservation, which may leave the rest of the order fully satisfied.
		return s.advanceOrderIfSatisfied(txCtx, po.OrderID)
	})
	if err != nil {
		return err
	}

	s.hub.Notify("production.cancelled", map[string]string{"production_order_id": productionOrderID})
	return nil
}

// cancelOpenProductionOrders releases every PENDING or IN_PROGRESS row for
// the order. Runs inside the caller's transaction; order cancellation and
// production rollback share this path.
func cancelOpenProductionOrders(ctx context.Context, poRepo repository.ProductionOrderRepository, orderID uuid.UUID) error {
	rows, err := poRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to list production orders: %w", err)
	}
	for _, po := range rows {
		if po.Status != model.ProductionOrderPending && po.Status != model.ProductionOrderInProgress {
			continue
		}
		if err := poRepo.UpdateStatus(ctx, po.ID, model.ProductionOrderCancelled, nil); err != nil {
			return fmt.Errorf("failed to cancel production order: %w", err)
		}
	}
	return nil
}

func (s *productionService) CancelForOrder(ctx context.Context, orderID string) error {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return apperror.Validation("invalid order id: %s", orderID)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByIDWithItems(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("order %s not found", orderID)
			}
			return fmt.Errorf("failed to find order: %w", err)
		}

		if err := cancelOpenProductionOrders(txCtx, s.poRepo, id); err != nil {
			return err
		}

		if order.Status == model.OrderStatusInProduction {
			return s.orderRepo.UpdateStatus(txCtx, id, model.OrderStatusConfirmed)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Notify("production.cancelled", map[string]string{"order_id": orderID})
	return nil
}

// List runs the lazy sweep first so derived statuses are current, then pages.
func (s *productionService) List(ctx context.Context, page, limit int, filter repository.ProductionOrderFilter) ([]model.ProductionOrder, int64, error) {
	if err := s.Evaluate(ctx); err != nil {
		return nil, 0, err
	}
	return s.poRepo.List(ctx, page, limit, filter)
}

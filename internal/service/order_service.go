package service

import (
	"context"
	"errors"
	"fmt"

	"pavestock/internal/apperror"
	"pavestock/internal/model"
	"pavestock/internal/repository"
	ws "pavestock/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateOrderRequest is the API payload for a new customer order. Orders
// enter as CONFIRMED; the customer is an external master-data reference.
type CreateOrderRequest struct {
	CustomerID   string                   `json:"customer_id" binding:"required"`
	CustomerName string                   `json:"customer_name" binding:"required"`
	Notes        string                   `json:"notes"`
	Items        []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateOrderItemRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Unit      string          `json:"unit" binding:"required,oneof=PIECES M2"`
}

// OrderService owns order intake, cancellation and the delivery-coverage
// cascade that oscillates orders between READY and DELIVERED.
type OrderService interface {
	OrderCascader
	Create(ctx context.Context, req CreateOrderRequest) (*model.Order, error)
	Get(ctx context.Context, orderID string) (*model.Order, error)
	Cancel(ctx context.Context, orderID string) error
	List(ctx context.Context, page, limit int, status string) ([]model.Order, int64, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	poRepo       repository.ProductionOrderRepository
	deliveryRepo repository.DeliveryRepository
	productRepo  repository.ProductRepository
	seqRepo      repository.SequenceRepository
	evaluator    Evaluator
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	poRepo repository.ProductionOrderRepository,
	deliveryRepo repository.DeliveryRepository,
	productRepo repository.ProductRepository,
	seqRepo repository.SequenceRepository,
	evaluator Evaluator,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		poRepo:       poRepo,
		deliveryRepo: deliveryRepo,
		productRepo:  productRepo,
		seqRepo:      seqRepo,
		evaluator:    evaluator,
		txManager:    txManager,
		hub:          hub,
	}
}

// derivePieces converts an item quantity into whole pieces: ceil(q * recipe)
// for M2 lines, ceil(q) otherwise. M2 lines require a pieces-per-m2 recipe.
func derivePieces(product *model.Product, quantity decimal.Decimal, unit string) (int, error) {
	if !quantity.IsPositive() {
		return 0, apperror.Validation("item quantity must be positive, got %s", quantity)
	}
	switch unit {
	case model.UnitPieces:
		return int(quantity.Ceil().IntPart()), nil
	case model.UnitM2:
		if product.PiecesPerM2 == nil || !product.PiecesPerM2.IsPositive() {
			return 0, apperror.Validation("product %q has no pieces-per-m2 recipe, cannot order in M2", product.Name)
		}
		return int(quantity.Mul(*product.PiecesPerM2).Ceil().IntPart()), nil
	default:
		return 0, apperror.Validation("unknown unit %q", unit)
	}
}

func (s *orderService) Create(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apperror.Validation("invalid customer id: %s", req.CustomerID)
	}

	var order *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		seq, err := s.seqRepo.Next(txCtx, model.SeqOrder)
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}

		order = &model.Order{
			Seq:          seq,
			CustomerID:   customerID,
			CustomerName: req.CustomerName,
			Status:       model.OrderStatusConfirmed,
			Notes:        req.Notes,
		}
		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, line := range req.Items {
			productID, err := uuid.Parse(line.ProductID)
			if err != nil {
				return apperror.Validation("invalid product id: %s", line.ProductID)
			}
			product, err := s.productRepo.FindByID(txCtx, productID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NotFound("product %s not found", line.ProductID)
				}
				return fmt.Errorf("failed to find product: %w", err)
			}

			pieces, err := derivePieces(product, line.Quantity, line.Unit)
			if err != nil {
				return err
			}

			item := &model.OrderItem{
				OrderID:        order.ID,
				ProductID:      productID,
				Quantity:       line.Quantity,
				Unit:           line.Unit,
				QuantityPieces: pieces,
			}
			if err := s.orderRepo.CreateItem(txCtx, item); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			order.Items = append(order.Items, *item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify("order.created", order)
	return order, nil
}

// Get runs the lazy sweep first so the derived status is current.
func (s *orderService) Get(ctx context.Context, orderID string) (*model.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, apperror.Validation("invalid order id: %s", orderID)
	}
	if err := s.evaluator.Evaluate(ctx); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("order %s not found", orderID)
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return order, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID string) error {
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
		switch order.Status {
		case model.OrderStatusConfirmed, model.OrderStatusInProduction, model.OrderStatusReady:
			// cancellable
		default:
			return apperror.InvalidState("order %s is %s and cannot be cancelled", orderID, order.Status)
		}

		active, err := s.deliveryRepo.CountActiveByOrder(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to count deliveries: %w", err)
		}
		if active > 0 {
			return apperror.InvalidState("order %s has %d active deliveries, cancel them first", orderID, active)
		}

		// Release open reservations; cancellation never touches the ledger.
		if err := cancelOpenProductionOrders(txCtx, s.poRepo, id); err != nil {
			return err
		}

		return s.orderRepo.UpdateStatus(txCtx, id, model.OrderStatusCancelled)
	})
	if err != nil {
		return err
	}

	s.hub.Notify("order.cancelled", map[string]string{"order_id": orderID})
	return nil
}

// Recalculate is the order status cascade: if every item is covered by
// non-cancelled deliveries the order is DELIVERED; if coverage was lost while
// DELIVERED it reverts to READY. Runs inside the caller's transaction.
func (s *orderService) Recalculate(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to find order: %w", err)
	}
	if order.Status == model.OrderStatusCancelled {
		return nil
	}

	covered := len(order.Items) > 0
	for _, item := range order.Items {
		delivered, err := s.deliveryRepo.SumDeliveredForItem(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("failed to sum deliveries: %w", err)
		}
		if delivered < item.QuantityPieces {
			covered = false
			break
		}
	}

	switch {
	case covered && order.Status != model.OrderStatusDelivered:
		if err := s.orderRepo.UpdateStatus(ctx, orderID, model.OrderStatusDelivered); err != nil {
			return fmt.Errorf("failed to advance order: %w", err)
		}
		s.hub.Notify("order.status", map[string]string{
			"order_id": orderID.String(),
			"status":   model.OrderStatusDelivered,
		})
	case !covered && order.Status == model.OrderStatusDelivered:
		if err := s.orderRepo.UpdateStatus(ctx, orderID, model.OrderStatusReady); err != nil {
			return fmt.Errorf("failed to revert order: %w", err)
		}
		s.hub.Notify("order.status", map[string]string{
			"order_id": orderID.String(),
			"status":   model.OrderStatusReady,
		})
	}
	return nil
}

// List runs the lazy sweep first so derived statuses are current, then pages.
func (s *orderService) List(ctx context.Context, page, limit int, status string) ([]model.Order, int64, error) {
	if err := s.evaluator.Evaluate(ctx); err != nil {
		return nil, 0, err
	}
	return s.orderRepo.List(ctx, page, limit, status)
}

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
	"pavestock/pkg/sequence"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OrderCascader recomputes an order's delivery coverage. It must run inside
// the caller's transaction scope and never opens one of its own.
type OrderCascader interface {
	Recalculate(ctx context.Context, orderID uuid.UUID) error
}

// CreateDeliveryRequest is the API payload for loading a truck against an
// order. Vehicle and driver are optional external references.
type CreateDeliveryRequest struct {
	OrderID     string                      `json:"order_id" binding:"required"`
	VehicleID   *string                     `json:"vehicle_id"`
	DriverID    *string                     `json:"driver_id"`
	LoadingDate string                      `json:"loading_date" binding:"required"` // YYYY-MM-DD
	Notes       string                      `json:"notes"`
	Items       []CreateDeliveryItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateDeliveryItemRequest struct {
	OrderItemID    string `json:"order_item_id" binding:"required"`
	QuantityPieces int    `json:"quantity_pieces" binding:"required,gt=0"`
}

// DeliveryService consumes ledger stock against order items and reverses
// cleanly on cancellation or deletion.
type DeliveryService interface {
	Check(ctx context.Context, orderID string) ([]model.ItemDeliveryCheck, error)
	Create(ctx context.Context, req CreateDeliveryRequest) (*model.Delivery, error)
	UpdateStatus(ctx context.Context, deliveryID, status string) (*model.Delivery, error)
	Delete(ctx context.Context, deliveryID string) error
	List(ctx context.Context, page, limit int, orderID *uuid.UUID, status string) ([]model.Delivery, int64, error)
}

type deliveryService struct {
	deliveryRepo repository.DeliveryRepository
	orderRepo    repository.OrderRepository
	movementRepo repository.MovementRepository
	seqRepo      repository.SequenceRepository
	stock        StockService
	cascade      OrderCascader
	evaluator    Evaluator
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewDeliveryService(
	deliveryRepo repository.DeliveryRepository,
	orderRepo repository.OrderRepository,
	movementRepo repository.MovementRepository,
	seqRepo repository.SequenceRepository,
	stock StockService,
	cascade OrderCascader,
	evaluator Evaluator,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) DeliveryService {
	return &deliveryService{
		deliveryRepo: deliveryRepo,
		orderRepo:    orderRepo,
		movementRepo: movementRepo,
		seqRepo:      seqRepo,
		stock:        stock,
		cascade:      cascade,
		evaluator:    evaluator,
		txManager:    txManager,
		hub:          hub,
	}
}

// Check computes the advisory per-item delivery figures. availableStock is
// the raw ledger balance: deliveries consume stock atomically at creation, so
// it is not netted against other orders' deliveries.
func (s *deliveryService) Check(ctx context.Context, orderID string) ([]model.ItemDeliveryCheck, error) {
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

	checks := make([]model.ItemDeliveryCheck, 0, len(order.Items))
	for _, item := range order.Items {
		delivered, err := s.deliveryRepo.SumDeliveredForItem(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum deliveries: %w", err)
		}
		remaining := item.QuantityPieces - delivered
		if remaining < 0 {
			remaining = 0
		}
		available, err := s.movementRepo.Balance(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to read balance: %w", err)
		}

		checks = append(checks, model.ItemDeliveryCheck{
			OrderItemID:      item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.Product.Name,
			QuantityPieces:   item.QuantityPieces,
			AlreadyDelivered: delivered,
			Remaining:        remaining,
			AvailableStock:   available,
		})
	}
	return checks, nil
}

func (s *deliveryService) Create(ctx context.Context, req CreateDeliveryRequest) (*model.Delivery, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apperror.Validation("invalid order id: %s", req.OrderID)
	}
	loadingDate, err := time.Parse("2006-01-02", req.LoadingDate)
	if err != nil {
		return nil, apperror.Validation("invalid loading date %q, expected YYYY-MM-DD", req.LoadingDate)
	}
	vehicleID, err := parseOptionalUUID(req.VehicleID, "vehicle id")
	if err != nil {
		return nil, err
	}
	driverID, err := parseOptionalUUID(req.DriverID, "driver id")
	if err != nil {
		return nil, err
	}

	var delivery *model.Delivery
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByIDWithItems(txCtx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("order %s not found", req.OrderID)
			}
			return fmt.Errorf("failed to find order: %w", err)
		}
		if order.Status != model.OrderStatusReady && order.Status != model.OrderStatusInProduction {
			return apperror.InvalidState("order %s is %s, deliveries require %s or %s",
				req.OrderID, order.Status, model.OrderStatusReady, model.OrderStatusInProduction)
		}

		itemsByID := make(map[uuid.UUID]*model.OrderItem, len(order.Items))
		for i := range order.Items {
			itemsByID[order.Items[i].ID] = &order.Items[i]
		}

		// Validate every line before writing anything. Lines for the same
		// product share one stock pool, so each accepted line reduces what
		// later lines in this request may claim.
		type pendingItem struct {
			orderItem *model.OrderItem
			quantity  int
		}
		pending := make([]pendingItem, 0, len(req.Items))
		available := make(map[uuid.UUID]int)
		for _, line := range req.Items {
			itemID, err := uuid.Parse(line.OrderItemID)
			if err != nil {
				return apperror.Validation("invalid order item id: %s", line.OrderItemID)
			}
			orderItem, ok := itemsByID[itemID]
			if !ok {
				return apperror.Validation("order item %s does not belong to order %s", line.OrderItemID, req.OrderID)
			}
			if line.QuantityPieces <= 0 {
				return apperror.Validation("delivery quantity must be positive, got %d", line.QuantityPieces)
			}

			delivered, err := s.deliveryRepo.SumDeliveredForItem(txCtx, itemID)
			if err != nil {
				return fmt.Errorf("failed to sum deliveries: %w", err)
			}
			remaining := orderItem.QuantityPieces - delivered
			if remaining < 0 {
				remaining = 0
			}
			if line.QuantityPieces > remaining {
				return apperror.ExceedsRemaining(
					"item %s: requested %d pieces but only %d remain undelivered",
					line.OrderItemID, line.QuantityPieces, remaining)
			}

			pool, seen := available[orderItem.ProductID]
			if !seen {
				pool, err = s.movementRepo.Balance(txCtx, orderItem.ProductID)
				if err != nil {
					return fmt.Errorf("failed to read balance: %w", err)
				}
			}
			if line.QuantityPieces > pool {
				return apperror.InsufficientStock(
					"item %s: requested %d pieces but the ledger holds %d",
					line.OrderItemID, line.QuantityPieces, pool)
			}
			available[orderItem.ProductID] = pool - line.QuantityPieces

			pending = append(pending, pendingItem{orderItem: orderItem, quantity: line.QuantityPieces})
		}

		seq, err := s.seqRepo.Next(txCtx, model.SeqDelivery)
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}

		delivery = &model.Delivery{
			Seq:         seq,
			OrderID:     order.ID,
			VehicleID:   vehicleID,
			DriverID:    driverID,
			LoadingDate: loadingDate,
			Status:      model.DeliveryLoading,
			Notes:       req.Notes,
		}
		if err := s.deliveryRepo.Create(txCtx, delivery); err != nil {
			return fmt.Errorf("failed to create delivery: %w", err)
		}

		for _, p := range pending {
			item := &model.DeliveryItem{
				DeliveryID:     delivery.ID,
				OrderItemID:    p.orderItem.ID,
				ProductID:      p.orderItem.ProductID,
				QuantityPieces: p.quantity,
			}
			if err := s.deliveryRepo.CreateItem(txCtx, item); err != nil {
				return fmt.Errorf("failed to create delivery item: %w", err)
			}
			delivery.Items = append(delivery.Items, *item)

			if _, err := s.stock.Post(txCtx, PostMovementParams{
				ProductID:      p.orderItem.ProductID,
				Date:           loadingDate,
				Direction:      model.DirectionOut,
				QuantityPieces: p.quantity,
				SourceType:     model.SourceDelivery,
				SourceID:       &delivery.ID,
				Notes:          fmt.Sprintf("delivery %s", sequence.Code(sequence.DeliveryPrefix, seq)),
			}); err != nil {
				return err
			}
		}

		return s.cascade.Recalculate(txCtx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify("delivery.created", delivery)
	return delivery, nil
}

// deliveryTransitions is the allowed status graph; DELIVERED and CANCELLED
// are terminal.
var deliveryTransitions = map[string][]string{
	model.DeliveryLoading:   {model.DeliveryInTransit, model.DeliveryCancelled},
	model.DeliveryInTransit: {model.DeliveryDelivered, model.DeliveryCancelled},
}

func canTransition(from, to string) bool {
	for _, allowed := range deliveryTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *deliveryService) UpdateStatus(ctx context.Context, deliveryID, status string) (*model.Delivery, error) {
	id, err := uuid.Parse(deliveryID)
	if err != nil {
		return nil, apperror.Validation("invalid delivery id: %s", deliveryID)
	}

	var delivery *model.Delivery
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		delivery, err = s.deliveryRepo.FindByIDWithItems(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("delivery %s not found", deliveryID)
			}
			return fmt.Errorf("failed to find delivery: %w", err)
		}
		if !canTransition(delivery.Status, status) {
			return apperror.InvalidState("delivery %s cannot move from %s to %s", deliveryID, delivery.Status, status)
		}

		switch status {
		case model.DeliveryInTransit:
			if err := s.deliveryRepo.UpdateStatus(txCtx, id, status, nil); err != nil {
				return fmt.Errorf("failed to update delivery: %w", err)
			}
			delivery.Status = status
			return nil

		case model.DeliveryDelivered:
			now := time.Now()
			if err := s.deliveryRepo.UpdateStatus(txCtx, id, status, &now); err != nil {
				return fmt.Errorf("failed to update delivery: %w", err)
			}
			delivery.Status = status
			delivery.DeliveryDate = &now
			return s.cascade.Recalculate(txCtx, delivery.OrderID)

		case model.DeliveryCancelled:
			if err := s.deliveryRepo.UpdateStatus(txCtx, id, status, nil); err != nil {
				return fmt.Errorf("failed to update delivery: %w", err)
			}
			delivery.Status = status
			if err := s.reverseStock(txCtx, delivery, "cancelled"); err != nil {
				return err
			}
			return s.cascade.Recalculate(txCtx, delivery.OrderID)

		default:
			return apperror.Validation("unknown delivery status %q", status)
		}
	})
	if err != nil {
		return nil, err
	}

	// Reversed stock may satisfy waiting production orders.
	if status == model.DeliveryCancelled {
		if err := s.evaluator.Evaluate(ctx); err != nil {
			log.Warn().Err(err).Msg("fifo evaluation after delivery cancellation failed")
		}
	}

	s.hub.Notify("delivery.status", map[string]string{
		"delivery_id": deliveryID,
		"status":      status,
	})
	return delivery, nil
}

func (s *deliveryService) Delete(ctx context.Context, deliveryID string) error {
	id, err := uuid.Parse(deliveryID)
	if err != nil {
		return apperror.Validation("invalid delivery id: %s", deliveryID)
	}

	var orderID uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		delivery, err := s.deliveryRepo.FindByIDWithItems(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("delivery %s not found", deliveryID)
			}
			return fmt.Errorf("failed to find delivery: %w", err)
		}
		if delivery.Status != model.DeliveryLoading {
			return apperror.InvalidState("delivery %s is %s, only %s deliveries can be deleted",
				deliveryID, delivery.Status, model.DeliveryLoading)
		}
		orderID = delivery.OrderID

		if err := s.reverseStock(txCtx, delivery, "deleted"); err != nil {
			return err
		}
		if err := s.deliveryRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete delivery: %w", err)
		}
		return s.cascade.Recalculate(txCtx, orderID)
	})
	if err != nil {
		return err
	}

	if err := s.evaluator.Evaluate(ctx); err != nil {
		log.Warn().Err(err).Msg("fifo evaluation after delivery deletion failed")
	}

	s.hub.Notify("delivery.deleted", map[string]string{"delivery_id": deliveryID})
	return nil
}

// reverseStock posts one IN movement per item, dated at the reversal rather
// than backdated to the loading date.
func (s *deliveryService) reverseStock(ctx context.Context, delivery *model.Delivery, reason string) error {
	now := time.Now()
	for _, item := range delivery.Items {
		if _, err := s.stock.Post(ctx, PostMovementParams{
			ProductID:      item.ProductID,
			Date:           now,
			Direction:      model.DirectionIn,
			QuantityPieces: item.QuantityPieces,
			SourceType:     model.SourceDeliveryReversal,
			SourceID:       &delivery.ID,
			Notes:          fmt.Sprintf("delivery %s %s", sequence.Code(sequence.DeliveryPrefix, delivery.Seq), reason),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *deliveryService) List(ctx context.Context, page, limit int, orderID *uuid.UUID, status string) ([]model.Delivery, int64, error) {
	return s.deliveryRepo.List(ctx, page, limit, orderID, status)
}

func parseOptionalUUID(raw *string, label string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperror.Validation("invalid %s: %s", label, *raw)
	}
	return &id, nil
}

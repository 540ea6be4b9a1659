package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"pavestock/internal/model"
	"pavestock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the SQL repositories' semantics
// closely enough for service-level tests: gorm.ErrRecordNotFound on misses,
// derived balances summed from movement rows, FIFO ordering by Seq.

type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// --- products ---

type memProductRepo struct {
	byID  map[uuid.UUID]*model.Product
	order []uuid.UUID
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{byID: map[uuid.UUID]*model.Product{}}
}

func (r *memProductRepo) Create(_ context.Context, product *model.Product) error {
	product.ID = uuid.New()
	cp := *product
	r.byID[product.ID] = &cp
	r.order = append(r.order, product.ID)
	return nil
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) List(_ context.Context, _, _ int, _ string) ([]model.Product, int64, error) {
	out := make([]model.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out, int64(len(out)), nil
}

// --- movements ---

type memMovementRepo struct {
	products *memProductRepo
	byID     map[uuid.UUID]*model.InventoryMovement
	order    []uuid.UUID
}

func newMemMovementRepo(products *memProductRepo) *memMovementRepo {
	return &memMovementRepo{products: products, byID: map[uuid.UUID]*model.InventoryMovement{}}
}

func (r *memMovementRepo) Create(_ context.Context, movement *model.InventoryMovement) error {
	movement.ID = uuid.New()
	movement.CreatedAt = time.Now()
	cp := *movement
	r.byID[movement.ID] = &cp
	r.order = append(r.order, movement.ID)
	return nil
}

func (r *memMovementRepo) FindByID(_ context.Context, id uuid.UUID) (*model.InventoryMovement, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *memMovementRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *memMovementRepo) List(_ context.Context, _, _ int, filter repository.MovementFilter) ([]model.InventoryMovement, int64, error) {
	var out []model.InventoryMovement
	for _, id := range r.order {
		m, ok := r.byID[id]
		if !ok {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *memMovementRepo) Balance(_ context.Context, productID uuid.UUID) (int, error) {
	balance := 0
	for _, m := range r.byID {
		if m.ProductID != productID {
			continue
		}
		if m.Direction == model.DirectionIn {
			balance += m.QuantityPieces
		} else {
			balance -= m.QuantityPieces
		}
	}
	return balance, nil
}

func (r *memMovementRepo) Balances(ctx context.Context) ([]model.ProductStockBalance, error) {
	var out []model.ProductStockBalance
	for _, id := range r.products.order {
		balance, _ := r.Balance(ctx, id)
		out = append(out, model.ProductStockBalance{
			ProductID:   id,
			ProductName: r.products.byID[id].Name,
			Balance:     balance,
		})
	}
	return out, nil
}

// --- loose pieces ---

type memLooseRepo struct {
	pieces map[uuid.UUID]int
}

func newMemLooseRepo() *memLooseRepo {
	return &memLooseRepo{pieces: map[uuid.UUID]int{}}
}

func (r *memLooseRepo) Get(_ context.Context, productID uuid.UUID) (int, error) {
	return r.pieces[productID], nil
}

func (r *memLooseRepo) GetForUpdate(_ context.Context, productID uuid.UUID) (int, error) {
	return r.pieces[productID], nil
}

func (r *memLooseRepo) Set(_ context.Context, productID uuid.UUID, pieces int) error {
	r.pieces[productID] = pieces
	return nil
}

func (r *memLooseRepo) List(_ context.Context) ([]model.LoosePiecesBalance, error) {
	var out []model.LoosePiecesBalance
	for id, pieces := range r.pieces {
		out = append(out, model.LoosePiecesBalance{ProductID: id, Pieces: pieces})
	}
	return out, nil
}

// --- palletizations ---

type memPalletizationRepo struct {
	byID  map[uuid.UUID]*model.Palletization
	order []uuid.UUID
}

func newMemPalletizationRepo() *memPalletizationRepo {
	return &memPalletizationRepo{byID: map[uuid.UUID]*model.Palletization{}}
}

func (r *memPalletizationRepo) Create(_ context.Context, p *model.Palletization) error {
	p.ID = uuid.New()
	cp := *p
	r.byID[p.ID] = &cp
	r.order = append(r.order, p.ID)
	return nil
}

func (r *memPalletizationRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Palletization, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPalletizationRepo) Exists(_ context.Context, productID uuid.UUID, date time.Time) (bool, error) {
	for _, p := range r.byID {
		if p.ProductID == productID && sameDay(p.ProductionDate, date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPalletizationRepo) SetMovementID(_ context.Context, id, movementID uuid.UUID) error {
	p, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	mid := movementID
	p.MovementID = &mid
	return nil
}

func (r *memPalletizationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *memPalletizationRepo) List(_ context.Context, _, _ int, _ *uuid.UUID) ([]model.Palletization, int64, error) {
	var out []model.Palletization
	for _, id := range r.order {
		if p, ok := r.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

// --- production runs ---

type memRunRepo struct {
	products *memProductRepo
	pallets  *memPalletizationRepo
	runs     []*model.ProductionRun
}

func newMemRunRepo(products *memProductRepo, pallets *memPalletizationRepo) *memRunRepo {
	return &memRunRepo{products: products, pallets: pallets}
}

func (r *memRunRepo) Create(_ context.Context, run *model.ProductionRun) error {
	run.ID = uuid.New()
	cp := *run
	r.runs = append(r.runs, &cp)
	return nil
}

func (r *memRunRepo) List(_ context.Context, _, _ int, _ *uuid.UUID) ([]model.ProductionRun, int64, error) {
	out := make([]model.ProductionRun, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, *run)
	}
	return out, int64(len(out)), nil
}

func (r *memRunRepo) runPieces(run *model.ProductionRun) int {
	if run.Pieces > 0 {
		return run.Pieces
	}
	product := r.products.byID[run.ProductID]
	if product == nil {
		return 0
	}
	return run.Cycles * product.PiecesPerCycle
}

func (r *memRunRepo) TheoreticalPieces(_ context.Context, productID uuid.UUID, date time.Time) (int, error) {
	total := 0
	for _, run := range r.runs {
		if run.ProductID == productID && sameDay(run.RunDate, date) {
			total += r.runPieces(run)
		}
	}
	return total, nil
}

func (r *memRunRepo) PendingPalletizations(ctx context.Context) ([]model.PendingPalletization, error) {
	type key struct {
		productID uuid.UUID
		day       string
	}
	sums := map[key]*model.PendingPalletization{}
	var keys []key
	for _, run := range r.runs {
		if run.Legacy {
			continue
		}
		exists, _ := r.pallets.Exists(ctx, run.ProductID, run.RunDate)
		if exists {
			continue
		}
		k := key{productID: run.ProductID, day: run.RunDate.Format("2006-01-02")}
		entry, ok := sums[k]
		if !ok {
			product := r.products.byID[run.ProductID]
			entry = &model.PendingPalletization{
				ProductID:       run.ProductID,
				ProductName:     product.Name,
				ProductionDate:  run.RunDate,
				PiecesPerPallet: product.PiecesPerPallet,
			}
			sums[k] = entry
			keys = append(keys, k)
		}
		entry.TheoreticalPieces += r.runPieces(run)
	}

	var out []model.PendingPalletization
	for _, k := range keys {
		if sums[k].TheoreticalPieces > 0 {
			out = append(out, *sums[k])
		}
	}
	return out, nil
}

// --- sequences ---

type memSequenceRepo struct {
	values map[string]int64
}

func (r *memSequenceRepo) Next(_ context.Context, name string) (int64, error) {
	r.values[name]++
	return r.values[name], nil
}

// --- orders ---

type memOrderRepo struct {
	products  *memProductRepo
	orders    map[uuid.UUID]*model.Order
	items     map[uuid.UUID]*model.OrderItem
	itemOrder []uuid.UUID
}

func newMemOrderRepo(products *memProductRepo) *memOrderRepo {
	return &memOrderRepo{
		products: products,
		orders:   map[uuid.UUID]*model.Order{},
		items:    map[uuid.UUID]*model.OrderItem{},
	}
}

func (r *memOrderRepo) Create(_ context.Context, order *model.Order) error {
	order.ID = uuid.New()
	cp := *order
	cp.Items = nil
	r.orders[order.ID] = &cp
	return nil
}

func (r *memOrderRepo) CreateItem(_ context.Context, item *model.OrderItem) error {
	item.ID = uuid.New()
	cp := *item
	r.items[item.ID] = &cp
	r.itemOrder = append(r.itemOrder, item.ID)
	return nil
}

func (r *memOrderRepo) itemsFor(orderID uuid.UUID) []model.OrderItem {
	var out []model.OrderItem
	for _, id := range r.itemOrder {
		item := r.items[id]
		if item.OrderID != orderID {
			continue
		}
		cp := *item
		if p, ok := r.products.byID[item.ProductID]; ok {
			cp.Product = *p
		}
		out = append(out, cp)
	}
	return out
}

func (r *memOrderRepo) FindByIDWithItems(_ context.Context, id uuid.UUID) (*model.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *order
	cp.Items = r.itemsFor(id)
	return &cp, nil
}

func (r *memOrderRepo) FindItemByID(_ context.Context, id uuid.UUID) (*model.OrderItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	if p, ok := r.products.byID[item.ProductID]; ok {
		cp.Product = *p
	}
	return &cp, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	order, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	return nil
}

func (r *memOrderRepo) List(_ context.Context, _, _ int, status string) ([]model.Order, int64, error) {
	var out []model.Order
	for _, order := range r.orders {
		if status != "" && order.Status != status {
			continue
		}
		cp := *order
		cp.Items = r.itemsFor(order.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	return out, int64(len(out)), nil
}

// --- production orders ---

type memProductionOrderRepo struct {
	byID map[uuid.UUID]*model.ProductionOrder
}

func newMemProductionOrderRepo() *memProductionOrderRepo {
	return &memProductionOrderRepo{byID: map[uuid.UUID]*model.ProductionOrder{}}
}

func (r *memProductionOrderRepo) Create(_ context.Context, po *model.ProductionOrder) error {
	po.ID = uuid.New()
	cp := *po
	r.byID[po.ID] = &cp
	return nil
}

func (r *memProductionOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	po, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *po
	return &cp, nil
}

func (r *memProductionOrderRepo) sortedBySeq(filter func(*model.ProductionOrder) bool) []model.ProductionOrder {
	var out []model.ProductionOrder
	for _, po := range r.byID {
		if filter(po) {
			out = append(out, *po)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func openStatus(status string) bool {
	return status == model.ProductionOrderPending || status == model.ProductionOrderInProgress
}

func (r *memProductionOrderRepo) ListOpenFIFO(_ context.Context) ([]model.ProductionOrder, error) {
	return r.sortedBySeq(func(po *model.ProductionOrder) bool { return openStatus(po.Status) }), nil
}

func (r *memProductionOrderRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]model.ProductionOrder, error) {
	return r.sortedBySeq(func(po *model.ProductionOrder) bool { return po.OrderID == orderID }), nil
}

func (r *memProductionOrderRepo) CountByOrder(_ context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	for _, po := range r.byID {
		if po.OrderID == orderID {
			count++
		}
	}
	return count, nil
}

func (r *memProductionOrderRepo) SumOpenForProduct(_ context.Context, productID uuid.UUID, excludeOrderID uuid.UUID) (int, error) {
	total := 0
	for _, po := range r.byID {
		if po.ProductID == productID && po.OrderID != excludeOrderID && openStatus(po.Status) {
			total += po.QuantityPieces
		}
	}
	return total, nil
}

func (r *memProductionOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, completedAt *time.Time) error {
	po, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	po.Status = status
	if completedAt != nil {
		po.CompletedAt = completedAt
	}
	return nil
}

func (r *memProductionOrderRepo) List(_ context.Context, _, _ int, filter repository.ProductionOrderFilter) ([]model.ProductionOrder, int64, error) {
	out := r.sortedBySeq(func(po *model.ProductionOrder) bool {
		if filter.Status != "" && po.Status != filter.Status {
			return false
		}
		if filter.OrderID != nil && po.OrderID != *filter.OrderID {
			return false
		}
		if filter.ProductID != nil && po.ProductID != *filter.ProductID {
			return false
		}
		return true
	})
	return out, int64(len(out)), nil
}

// --- deliveries ---

type memDeliveryRepo struct {
	byID      map[uuid.UUID]*model.Delivery
	items     map[uuid.UUID]*model.DeliveryItem
	itemOrder []uuid.UUID
}

func newMemDeliveryRepo() *memDeliveryRepo {
	return &memDeliveryRepo{
		byID:  map[uuid.UUID]*model.Delivery{},
		items: map[uuid.UUID]*model.DeliveryItem{},
	}
}

func (r *memDeliveryRepo) Create(_ context.Context, delivery *model.Delivery) error {
	delivery.ID = uuid.New()
	cp := *delivery
	cp.Items = nil
	r.byID[delivery.ID] = &cp
	return nil
}

func (r *memDeliveryRepo) CreateItem(_ context.Context, item *model.DeliveryItem) error {
	item.ID = uuid.New()
	cp := *item
	r.items[item.ID] = &cp
	r.itemOrder = append(r.itemOrder, item.ID)
	return nil
}

func (r *memDeliveryRepo) itemsFor(deliveryID uuid.UUID) []model.DeliveryItem {
	var out []model.DeliveryItem
	for _, id := range r.itemOrder {
		if item, ok := r.items[id]; ok && item.DeliveryID == deliveryID {
			out = append(out, *item)
		}
	}
	return out
}

func (r *memDeliveryRepo) FindByIDWithItems(_ context.Context, id uuid.UUID) (*model.Delivery, error) {
	delivery, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *delivery
	cp.Items = r.itemsFor(id)
	return &cp, nil
}

func (r *memDeliveryRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, deliveryDate *time.Time) error {
	delivery, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delivery.Status = status
	if deliveryDate != nil {
		delivery.DeliveryDate = deliveryDate
	}
	return nil
}

func (r *memDeliveryRepo) Delete(_ context.Context, id uuid.UUID) error {
	for itemID, item := range r.items {
		if item.DeliveryID == id {
			delete(r.items, itemID)
		}
	}
	delete(r.byID, id)
	return nil
}

func (r *memDeliveryRepo) SumDeliveredForItem(_ context.Context, orderItemID uuid.UUID) (int, error) {
	total := 0
	for _, item := range r.items {
		delivery, ok := r.byID[item.DeliveryID]
		if !ok || delivery.Status == model.DeliveryCancelled {
			continue
		}
		if item.OrderItemID == orderItemID {
			total += item.QuantityPieces
		}
	}
	return total, nil
}

func (r *memDeliveryRepo) CountActiveByOrder(_ context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	for _, delivery := range r.byID {
		if delivery.OrderID == orderID && delivery.Status != model.DeliveryCancelled {
			count++
		}
	}
	return count, nil
}

func (r *memDeliveryRepo) List(_ context.Context, _, _ int, orderID *uuid.UUID, status string) ([]model.Delivery, int64, error) {
	var out []model.Delivery
	for _, delivery := range r.byID {
		if orderID != nil && delivery.OrderID != *orderID {
			continue
		}
		if status != "" && delivery.Status != status {
			continue
		}
		cp := *delivery
		cp.Items = r.itemsFor(delivery.ID)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	return out, int64(len(out)), nil
}

// --- wiring ---

type testEnv struct {
	products   *memProductRepo
	runs       *memRunRepo
	movements  *memMovementRepo
	loose      *memLooseRepo
	pallets    *memPalletizationRepo
	orders     *memOrderRepo
	pos        *memProductionOrderRepo
	deliveries *memDeliveryRepo

	stock         StockService
	catalog       CatalogService
	production    ProductionService
	order         OrderService
	palletization PalletizationService
	delivery      DeliveryService
}

func newTestEnv() *testEnv {
	products := newMemProductRepo()
	pallets := newMemPalletizationRepo()
	runs := newMemRunRepo(products, pallets)
	movements := newMemMovementRepo(products)
	loose := newMemLooseRepo()
	orders := newMemOrderRepo(products)
	pos := newMemProductionOrderRepo()
	deliveries := newMemDeliveryRepo()
	seqs := &memSequenceRepo{values: map[string]int64{}}
	tx := stubTxManager{}

	stock := NewStockService(movements, products, tx, nil)
	catalog := NewCatalogService(products, runs)
	production := NewProductionService(pos, orders, movements, products, seqs, tx, nil)
	order := NewOrderService(orders, pos, deliveries, products, seqs, production, tx, nil)
	palletization := NewPalletizationService(pallets, runs, loose, movements, products, stock, production, tx, nil)
	delivery := NewDeliveryService(deliveries, orders, movements, seqs, stock, order, production, tx, nil)

	return &testEnv{
		products:   products,
		runs:       runs,
		movements:  movements,
		loose:      loose,
		pallets:    pallets,
		orders:     orders,
		pos:        pos,
		deliveries: deliveries,

		stock:         stock,
		catalog:       catalog,
		production:    production,
		order:         order,
		palletization: palletization,
		delivery:      delivery,
	}
}

func (e *testEnv) newProduct(t *testing.T, name string, piecesPerCycle, piecesPerPallet int, piecesPerM2 string) *model.Product {
	t.Helper()
	req := CreateProductRequest{Name: name, PiecesPerCycle: piecesPerCycle}
	if piecesPerPallet > 0 {
		req.PiecesPerPallet = &piecesPerPallet
	}
	if piecesPerM2 != "" {
		d := decimal.RequireFromString(piecesPerM2)
		req.PiecesPerM2 = &d
	}
	product, err := e.catalog.CreateProduct(context.Background(), req)
	require.NoError(t, err)
	return product
}

func (e *testEnv) addStock(t *testing.T, productID uuid.UUID, pieces int) {
	t.Helper()
	err := e.movements.Create(context.Background(), &model.InventoryMovement{
		ProductID:      productID,
		MovementDate:   time.Now(),
		Direction:      model.DirectionIn,
		QuantityPieces: pieces,
		SourceType:     model.SourceManual,
	})
	require.NoError(t, err)
}

func (e *testEnv) newConfirmedOrder(t *testing.T, items ...CreateOrderItemRequest) *model.Order {
	t.Helper()
	order, err := e.order.Create(context.Background(), CreateOrderRequest{
		CustomerID:   uuid.New().String(),
		CustomerName: "Test Customer",
		Items:        items,
	})
	require.NoError(t, err)
	return order
}

func piecesItem(productID uuid.UUID, quantity int) CreateOrderItemRequest {
	return CreateOrderItemRequest{
		ProductID: productID.String(),
		Quantity:  decimal.NewFromInt(int64(quantity)),
		Unit:      model.UnitPieces,
	}
}

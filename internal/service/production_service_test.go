package service

import (
	"context"
	"testing"

	"pavestock/internal/apperror"
	"pavestock/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateFor(t *testing.T, env *testEnv, orderID string) []model.ProductionOrder {
	t.Helper()
	created, err := env.production.Generate(context.Background(), GenerateProductionRequest{OrderID: orderID})
	require.NoError(t, err)
	return created
}

func TestGenerateComputesToProduce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")
	env.addStock(t, product.ID, 300)

	order := env.newConfirmedOrder(t, piecesItem(product.ID, 500))
	created := generateFor(t, env, order.ID.String())

	require.Len(t, created, 1)
	assert.Equal(t, 500, created[0].QuantityPieces)
	assert.Equal(t, 300, created[0].StockAtCreation)
	assert.Equal(t, 200, created[0].ToProducePieces)
	assert.Equal(t, model.ProductionOrderPending, created[0].Status)

	updated, err := env.orders.FindByIDWithItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInProduction, updated.Status)
}

func TestGenerateHonorsOverrides(t *testing.T) {
	env := newTestEnv()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")
	order := env.newConfirmedOrder(t, piecesItem(product.ID, 500))

	created, err := env.production.Generate(context.Background(), GenerateProductionRequest{
		OrderID: order.ID.String(),
		Overrides: []ProductionOverrideRequest{
			{OrderItemID: order.Items[0].ID.String(), ToProducePieces: 750},
		},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, 750, created[0].ToProducePieces)
}

func TestGenerateIsOneShot(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")
	order := env.newConfirmedOrder(t, piecesItem(product.ID, 500))

	generateFor(t, env, order.ID.String())

	_, err := env.production.Generate(ctx, GenerateProductionRequest{OrderID: order.ID.String()})
	// The order is IN_PRODUCTION now, so the status gate fires first.
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
}

func TestCheckNetsOtherOrdersReservations(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")
	env.addStock(t, product.ID, 400)

	other := env.newConfirmedOrder(t, piecesItem(product.ID, 300))
	generateFor(t, env, other.ID.String())

	order := env.newConfirmedOrder(t, piecesItem(product.ID, 500))
	checks, err := env.production.Check(ctx, order.ID.String())
	require.NoError(t, err)
	require.Len(t, checks, 1)

	assert.Equal(t, 400, checks[0].AvailableStock)
	assert.Equal(t, 300, checks[0].ReservedByOthers)
	assert.Equal(t, 100, checks[0].EffectiveStock)
	assert.Equal(t, 400, checks[0].SuggestedToProduce)
}

func TestEvaluateSatisfiesOldestFirst(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	orderA := env.newConfirmedOrder(t, piecesItem(product.ID, 500))
	orderB := env.newConfirmedOrder(t, piecesItem(product.ID, 300))
	poA := generateFor(t, env, orderA.ID.String())[0]
	poB := generateFor(t, env, orderB.ID.String())[0]

	env.addStock(t, product.ID, 500)
	require.NoError(t, env.production.Evaluate(ctx))

	gotA, err := env.pos.FindByID(ctx, poA.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProductionOrderCompleted, gotA.Status)
	assert.NotNil(t, gotA.CompletedAt)

	// The older commitment consumed the whole pool; the newer one saw nothing.
	gotB, err := env.pos.FindByID(ctx, poB.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProductionOrderPending, gotB.Status)
	assert.Nil(t, gotB.CompletedAt)

	a, err := env.orders.FindByIDWithItems(ctx, orderA.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusReady, a.Status)

	b, err := env.orders.FindByIDWithItems(ctx, orderB.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInProduction, b.Status)
}

func TestEvaluatePartialStockMarksInProgress(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	order := env.newConfirmedOrder(t, piecesItem(product.ID, 500))
	po := generateFor(t, env, order.ID.String())[0]

	env.addStock(t, product.ID, 200)
	require.NoError(t, env.production.Evaluate(ctx))

	got, err := env.pos.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProductionOrderInProgress, got.Status)

	// More stock arrives and the same row completes.
	env.addStock(t, product.ID, 300)
	require.NoError(t, env.production.Evaluate(ctx))

	got, err = env.pos.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProductionOrderCompleted, got.Status)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	order := env.newConfirmedOrder(t, piecesItem(product.ID, 500))
	po := generateFor(t, env, order.ID.String())[0]

	env.addStock(t, product.ID, 500)
	require.NoError(t, env.production.Evaluate(ctx))

	first, err := env.pos.FindByID(ctx, po.ID)
	require.NoError(t, err)
	completedAt := first.CompletedAt

	// Running again with no ledger change mutates nothing.
	require.NoError(t, env.production.Evaluate(ctx))
	second, err := env.pos.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, completedAt, second.CompletedAt)
}

func TestCancelReleasesReservation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	order := env.newConfirmedOrder(t, piecesItem(product.ID, 500), piecesItem(product.ID, 300))
	created := generateFor(t, env, order.ID.String())
	require.Len(t, created, 2)

	env.addStock(t, product.ID, 500)
	require.NoError(t, env.production.Evaluate(ctx))

	// First row completed, second is open; cancelling it leaves every row
	// settled, so the order advances to READY without extra stock.
	require.NoError(t, env.production.Cancel(ctx, created[1].ID.String()))

	got, err := env.orders.FindByIDWithItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusReady, got.Status)

	// Cancelled rows never touch the ledger.
	balance, err := env.movements.Balance(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, balance)
}

func TestCancelRejectsSettledRows(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	order := env.newConfirmedOrder(t, piecesItem(product.ID, 100))
	po := generateFor(t, env, order.ID.String())[0]

	env.addStock(t, product.ID, 100)
	require.NoError(t, env.production.Evaluate(ctx))

	err := env.production.Cancel(ctx, po.ID.String())
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
}

func TestCancelForOrderRevertsStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	order := env.newConfirmedOrder(t, piecesItem(product.ID, 500))
	generateFor(t, env, order.ID.String())

	require.NoError(t, env.production.CancelForOrder(ctx, order.ID.String()))

	got, err := env.orders.FindByIDWithItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, got.Status)

	open, err := env.pos.ListOpenFIFO(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

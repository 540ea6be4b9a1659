package service

import (
	"context"
	"testing"
	"time"

	"pavestock/internal/apperror"
	"pavestock/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordRun(t *testing.T, env *testEnv, productID string, date string, cycles, pieces int, legacy bool) {
	t.Helper()
	_, err := env.catalog.CreateRun(context.Background(), CreateProductionRunRequest{
		ProductID: productID,
		RunDate:   date,
		Cycles:    cycles,
		Pieces:    pieces,
		Legacy:    legacy,
	})
	require.NoError(t, err)
}

func TestSavePalletizationReconciles(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	// Two shifts on the same day sum to 1000 theoretical pieces.
	recordRun(t, env, product.ID.String(), "2025-03-10", 6, 0, false)
	recordRun(t, env, product.ID.String(), "2025-03-10", 4, 0, false)
	require.NoError(t, env.loose.Set(ctx, product.ID, 50))

	p, err := env.palletization.Save(ctx, SavePalletizationRequest{
		ProductID:        product.ID.String(),
		ProductionDate:   "2025-03-10",
		CompletePallets:  7,
		LoosePiecesAfter: 18,
	})
	require.NoError(t, err)

	assert.Equal(t, 1000, p.TheoreticalPieces)
	assert.Equal(t, 50, p.LoosePiecesBefore)
	assert.Equal(t, 1008, p.RealPieces)
	assert.Equal(t, 24, p.LossPieces)
	require.NotNil(t, p.MovementID)

	// Conservation: theoretical + before == real + after + loss.
	assert.Equal(t, p.TheoreticalPieces+p.LoosePiecesBefore, p.RealPieces+p.LoosePiecesAfter+p.LossPieces)

	loose, err := env.loose.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 18, loose)

	balance, err := env.movements.Balance(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1008, balance)
}

func TestSavePalletizationRejectsOverrun(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	recordRun(t, env, product.ID.String(), "2025-03-10", 10, 0, false)
	require.NoError(t, env.loose.Set(ctx, product.ID, 50))

	// 7 pallets plus 50 loose would need 1058 pieces, only 1050 exist.
	_, err := env.palletization.Save(ctx, SavePalletizationRequest{
		ProductID:        product.ID.String(),
		ProductionDate:   "2025-03-10",
		CompletePallets:  7,
		LoosePiecesAfter: 50,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeReconciliationOverrun))

	// The failed save mutated nothing.
	loose, err := env.loose.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, loose)

	balance, err := env.movements.Balance(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	_, total, err := env.pallets.List(ctx, 1, 20, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestSavePalletizationGuards(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	noRecipe := env.newProduct(t, "Curb Stone", 40, 0, "")
	recordRun(t, env, noRecipe.ID.String(), "2025-03-10", 5, 0, false)
	_, err := env.palletization.Save(ctx, SavePalletizationRequest{
		ProductID:      noRecipe.ID.String(),
		ProductionDate: "2025-03-10",
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeMissingRecipe))

	product := env.newProduct(t, "Paver 20x10", 100, 144, "")
	_, err = env.palletization.Save(ctx, SavePalletizationRequest{
		ProductID:      product.ID.String(),
		ProductionDate: "2025-03-10",
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeNoProduction))

	recordRun(t, env, product.ID.String(), "2025-03-10", 3, 0, false)
	_, err = env.palletization.Save(ctx, SavePalletizationRequest{
		ProductID:        product.ID.String(),
		ProductionDate:   "2025-03-10",
		CompletePallets:  2,
		LoosePiecesAfter: 12,
	})
	require.NoError(t, err)

	// A second save for the same product and day is rejected.
	_, err = env.palletization.Save(ctx, SavePalletizationRequest{
		ProductID:        product.ID.String(),
		ProductionDate:   "2025-03-10",
		CompletePallets:  1,
		LoosePiecesAfter: 0,
	})
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidState))
}

func TestDeletePalletizationReverses(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	recordRun(t, env, product.ID.String(), "2025-03-10", 10, 0, false)
	require.NoError(t, env.loose.Set(ctx, product.ID, 50))

	p, err := env.palletization.Save(ctx, SavePalletizationRequest{
		ProductID:        product.ID.String(),
		ProductionDate:   "2025-03-10",
		CompletePallets:  7,
		LoosePiecesAfter: 18,
	})
	require.NoError(t, err)

	require.NoError(t, env.palletization.Delete(ctx, p.ID.String()))

	loose, err := env.loose.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, loose)

	balance, err := env.movements.Balance(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	// The day shows up as pending again.
	pending, err := env.palletization.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending.Pending, 1)
	assert.Equal(t, product.ID, pending.Pending[0].ProductID)
}

func TestPendingSplitsMissingRecipe(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	withRecipe := env.newProduct(t, "Paver 20x10", 100, 144, "")
	noRecipe := env.newProduct(t, "Curb Stone", 40, 0, "")
	legacyOnly := env.newProduct(t, "Old Paver", 100, 144, "")

	recordRun(t, env, withRecipe.ID.String(), "2025-03-10", 5, 0, false)
	recordRun(t, env, noRecipe.ID.String(), "2025-03-10", 5, 0, false)
	recordRun(t, env, legacyOnly.ID.String(), "2025-03-10", 5, 0, true)

	pending, err := env.palletization.Pending(ctx)
	require.NoError(t, err)

	require.Len(t, pending.Pending, 1)
	assert.Equal(t, withRecipe.ID, pending.Pending[0].ProductID)
	assert.Equal(t, 500, pending.Pending[0].TheoreticalPieces)
	require.Len(t, pending.MissingRecipe, 1)
	assert.Equal(t, noRecipe.ID, pending.MissingRecipe[0].ProductID)
}

func TestFormPalletFromLoose(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	require.NoError(t, env.loose.Set(ctx, product.ID, 100))
	_, err := env.palletization.FormPalletFromLoose(ctx, product.ID.String())
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientLoosePieces))

	require.NoError(t, env.loose.Set(ctx, product.ID, 150))
	movement, err := env.palletization.FormPalletFromLoose(ctx, product.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.DirectionIn, movement.Direction)
	assert.Equal(t, 144, movement.QuantityPieces)
	assert.Equal(t, model.SourceLoosePallet, movement.SourceType)

	loose, err := env.loose.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, loose)

	balance, err := env.movements.Balance(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 144, balance)
}

func TestTheoreticalPiecesPrefersRecordedCount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	product := env.newProduct(t, "Paver 20x10", 100, 144, "")

	// One run with a recorded count, one falling back to cycles.
	recordRun(t, env, product.ID.String(), "2025-03-10", 6, 580, false)
	recordRun(t, env, product.ID.String(), "2025-03-10", 4, 0, false)

	date, _ := time.Parse("2006-01-02", "2025-03-10")
	total, err := env.runs.TheoreticalPieces(ctx, product.ID, date)
	require.NoError(t, err)
	assert.Equal(t, 980, total)
}

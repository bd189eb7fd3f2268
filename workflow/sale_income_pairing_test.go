package workflow_test

import (
	"context"
	"testing"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/norteapps/cartera_backend/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleMovement(t *testing.T, ctx context.Context, saleId int) *models.Movement {
	t.Helper()
	var movement models.Movement
	require.NoError(t, config.GetDB().WithContext(ctx).
		Where("sale_id = ?", saleId).First(&movement).Error)
	return &movement
}

func TestCreateSaleIncome_PairsSaleWithIncomeMovement(t *testing.T) {
	ctx := setupLedgerTest(t)
	branch := seedBranch(t, ctx, "Sucursal Centro")

	sale, err := workflow.CreateSaleIncome(ctx, &models.NewSale{
		BranchId: branch.ID,
		Amount:   dec(t, "4200.00"),
		Date:     "2026-03-05",
	})
	require.NoError(t, err)

	movement := saleMovement(t, ctx, sale.ID)
	assert.Equal(t, models.OriginIncome, movement.Origin)
	assert.True(t, movement.Amount.Equal(sale.Amount))
	assert.Equal(t, "2026-03-05", movement.Date.Format("2006-01-02"))
	assert.Equal(t, "Ingreso $4200.00 de sucursal Sucursal Centro", movement.Description)
}

func TestEditSaleIncome_RewritesPairedMovement(t *testing.T) {
	ctx := setupLedgerTest(t)
	branch := seedBranch(t, ctx, "Sucursal Centro")

	sale, err := workflow.CreateSaleIncome(ctx, &models.NewSale{
		BranchId: branch.ID,
		Amount:   dec(t, "4200.00"),
		Date:     "2026-03-05",
	})
	require.NoError(t, err)

	updated, err := workflow.EditSaleIncome(ctx, sale.ID, &models.NewSale{
		BranchId: branch.ID,
		Amount:   dec(t, "3800.00"),
		Date:     "2026-03-06",
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(dec(t, "3800.00")))

	movement := saleMovement(t, ctx, sale.ID)
	assert.True(t, movement.Amount.Equal(dec(t, "3800.00")))
	assert.Equal(t, "2026-03-06", movement.Date.Format("2006-01-02"))
	assert.Equal(t, "Actualiza Ingreso $3800.00 de sucursal Sucursal Centro", movement.Description)

	// Still exactly one movement for the sale.
	var count int64
	require.NoError(t, config.GetDB().WithContext(ctx).Model(&models.Movement{}).
		Where("sale_id = ?", sale.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteSaleIncome_RemovesBothSides(t *testing.T) {
	ctx := setupLedgerTest(t)
	branch := seedBranch(t, ctx, "Sucursal Centro")

	sale, err := workflow.CreateSaleIncome(ctx, &models.NewSale{
		BranchId: branch.ID,
		Amount:   dec(t, "1000.00"),
		Date:     "2026-03-05",
	})
	require.NoError(t, err)

	require.NoError(t, workflow.DeleteSaleIncome(ctx, sale.ID))

	var count int64
	require.NoError(t, config.GetDB().WithContext(ctx).Model(&models.Movement{}).
		Where("sale_id = ?", sale.ID).Count(&count).Error)
	assert.Zero(t, count)
	_, err = models.GetSaleById(ctx, config.GetDB(), branch.OrganizationId, sale.ID)
	require.Error(t, err)
}

func TestCreateAdjustment_DefaultDescriptionAndOrigin(t *testing.T) {
	ctx := setupLedgerTest(t)

	plus, err := workflow.CreateAdjustment(ctx, &workflow.NewAdjustment{
		Amount: dec(t, "200.00"),
		Kind:   models.AdjustmentAdd,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OriginAdjustmentPlus, plus.Origin)
	assert.Equal(t, "Ajuste (Suma): $200.00", plus.Description)
	assert.Equal(t, utils.Today(), plus.Date)

	minus, err := workflow.CreateAdjustment(ctx, &workflow.NewAdjustment{
		Amount:      dec(t, "75.50"),
		Kind:        models.AdjustmentSubtract,
		Description: "merma de almacén",
		Date:        "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OriginAdjustmentMinus, minus.Origin)
	assert.Equal(t, "merma de almacén", minus.Description)
	assert.Equal(t, "2026-03-02", minus.Date.Format("2006-01-02"))

	// Adjustments can always be deleted directly.
	require.NoError(t, workflow.DeleteMovement(ctx, plus.ID))
	require.NoError(t, workflow.DeleteMovement(ctx, minus.ID))
}

func TestCreateAdjustment_RejectsNonPositiveAmount(t *testing.T) {
	ctx := setupLedgerTest(t)

	_, err := workflow.CreateAdjustment(ctx, &workflow.NewAdjustment{
		Amount: dec(t, "-10.00"),
		Kind:   models.AdjustmentAdd,
	})
	require.ErrorIs(t, err, utils.ErrorInvalidAmount)
}

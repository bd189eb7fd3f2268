package models_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMovements_LimitAndOrdering(t *testing.T) {
	ctx := setupModelsTest(t)
	db := config.GetDB()

	for i := 0; i < 30; i++ {
		require.NoError(t, db.Create(&models.Movement{
			OrganizationId: 1,
			Origin:         models.OriginIncome,
			Amount:         decimal.NewFromInt(int64(100 + i)),
			Date:           utils.DateOnly(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)),
			Description:    fmt.Sprintf("ingreso %d", i),
		}).Error)
	}

	movements, err := models.GetMovements(ctx, nil)
	require.NoError(t, err)
	require.Len(t, movements, 20, "listing is capped at the default limit")
	// Newest first.
	assert.Equal(t, "2026-03-30", movements[0].Date.Format("2006-01-02"))
	assert.True(t, movements[0].Date.After(movements[len(movements)-1].Date))

	// The limit can only shrink, never grow past the cap.
	movements, err = models.GetMovements(ctx, &models.MovementFilter{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, movements, 5)

	movements, err = models.GetMovements(ctx, &models.MovementFilter{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, movements, 20)
}

func TestGetMovements_OriginAndDateFilter(t *testing.T) {
	ctx := setupModelsTest(t)
	db := config.GetDB()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Movement{
		OrganizationId: 1, Origin: models.OriginIncome,
		Amount: decimal.NewFromInt(100), Date: day,
	}).Error)
	require.NoError(t, db.Create(&models.Movement{
		OrganizationId: 1, Origin: models.OriginPayment,
		Amount: decimal.NewFromInt(50), Date: day.AddDate(0, 0, 1),
	}).Error)

	movements, err := models.GetMovements(ctx, &models.MovementFilter{Origin: models.OriginPayment})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, models.OriginPayment, movements[0].Origin)

	from := day.AddDate(0, 0, 1)
	movements, err = models.GetMovements(ctx, &models.MovementFilter{DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, movements, 1)

	_, err = models.GetMovements(ctx, &models.MovementFilter{Origin: "NOPE"})
	require.Error(t, err)
}

func TestGetMovements_ScopedToOrganization(t *testing.T) {
	ctx := setupModelsTest(t)
	db := config.GetDB()

	require.NoError(t, db.Create(&models.Movement{
		OrganizationId: 1, Origin: models.OriginIncome,
		Amount: decimal.NewFromInt(100), Date: utils.Today(),
	}).Error)
	require.NoError(t, db.Create(&models.Movement{
		OrganizationId: 2, Origin: models.OriginIncome,
		Amount: decimal.NewFromInt(999), Date: utils.Today(),
	}).Error)

	movements, err := models.GetMovements(ctx, nil)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Amount.Equal(decimal.NewFromInt(100)))

	// And lookups by id never cross the tenant boundary either.
	var foreign models.Movement
	require.NoError(t, db.Where("organization_id = ?", 2).First(&foreign).Error)
	_, err = models.GetMovementById(ctx, foreign.ID)
	require.ErrorIs(t, err, utils.ErrorRecordNotFound)
}

func TestGetMovements_BranchAndFolioFilter(t *testing.T) {
	ctx := setupModelsTest(t)
	db := config.GetDB()

	centro, err := models.CreateBranch(ctx, &models.NewBranch{Name: "Sucursal Centro"})
	require.NoError(t, err)
	norte, err := models.CreateBranch(ctx, &models.NewBranch{Name: "Sucursal Norte"})
	require.NoError(t, err)

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, branch := range []*models.Branch{centro, centro, norte} {
		sale := models.Sale{
			OrganizationId: 1, BranchId: branch.ID,
			Amount: decimal.NewFromInt(int64(1000 + i)), Date: day,
		}
		require.NoError(t, db.Create(&sale).Error)
		require.NoError(t, db.Create(&models.Movement{
			OrganizationId: 1, Origin: models.OriginIncome,
			Amount: sale.Amount, Date: day, SaleId: &sale.ID,
		}).Error)
	}

	invoice := models.Invoice{
		OrganizationId: 1, SupplierId: 1, Folio: "FAC-2026-044",
		TotalAmount: decimal.NewFromInt(500), IssueDate: day,
		InvoiceType: models.InvoiceTypeFactura, Status: models.InvoiceStatusPending,
	}
	require.NoError(t, db.Create(&invoice).Error)
	other := models.Invoice{
		OrganizationId: 1, SupplierId: 1, Folio: "REM-77",
		TotalAmount: decimal.NewFromInt(300), IssueDate: day,
		InvoiceType: models.InvoiceTypeRemision, Status: models.InvoiceStatusPending,
	}
	require.NoError(t, db.Create(&other).Error)
	for _, inv := range []*models.Invoice{&invoice, &other} {
		require.NoError(t, db.Create(&models.Movement{
			OrganizationId: 1, Origin: models.OriginCharge,
			Amount: inv.TotalAmount, Date: day, InvoiceId: &inv.ID,
		}).Error)
	}

	// Branch filter follows the movement's linked sale.
	movements, err := models.GetMovements(ctx, &models.MovementFilter{BranchId: centro.ID})
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, models.OriginIncome, m.Origin)
	}

	// Folio filter matches a substring of the linked invoice's folio.
	movements, err = models.GetMovements(ctx, &models.MovementFilter{Folio: "2026"})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.NotNil(t, movements[0].InvoiceId)
	assert.Equal(t, invoice.ID, *movements[0].InvoiceId)

	movements, err = models.GetMovements(ctx, &models.MovementFilter{Folio: "ZZZ"})
	require.NoError(t, err)
	assert.Empty(t, movements)

	// Branch filter combines with the origin and date clauses.
	movements, err = models.GetMovements(ctx, &models.MovementFilter{
		BranchId: norte.ID, Origin: models.OriginIncome,
	})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Amount.Equal(decimal.NewFromInt(1002)))
}

func TestBranchActiveFilter(t *testing.T) {
	ctx := setupModelsTest(t)

	_, err := models.CreateBranch(ctx, &models.NewBranch{Name: "Sucursal Centro"})
	require.NoError(t, err)
	closed, err := models.CreateBranch(ctx, &models.NewBranch{Name: "Sucursal Vieja"})
	require.NoError(t, err)

	_, err = models.UpdateBranch(ctx, closed.ID, &models.NewBranch{
		Name:     "Sucursal Vieja",
		IsActive: utils.NewFalse(),
	})
	require.NoError(t, err)

	branches, err := models.GetBranches(ctx, true)
	require.NoError(t, err)
	require.Len(t, branches, 1)
	assert.Equal(t, "Sucursal Centro", branches[0].Name)

	branches, err = models.GetBranches(ctx, false)
	require.NoError(t, err)
	assert.Len(t, branches, 2)
}

package workflow_test

import (
	"context"
	"testing"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupLedgerTest boots an in-memory database, migrates the schema and
// returns a context scoped to a fresh organization. Redis stays nil so the
// cache and lock helpers fall back to their no-op paths.
func setupLedgerTest(t *testing.T) context.Context {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	config.SetDB(db)

	org := models.Organization{Name: "Ferretería El Norte"}
	require.NoError(t, db.Create(&org).Error)

	ctx := context.Background()
	ctx = utils.SetOrganizationIdInContext(ctx, org.ID)
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetIsOrgAdminInContext(ctx, true)
	return ctx
}

func seedSupplier(t *testing.T, ctx context.Context, name string) *models.Supplier {
	t.Helper()
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{
		Name:        name,
		BankAccount: "012345678901234567",
	})
	require.NoError(t, err)
	return supplier
}

func seedBranch(t *testing.T, ctx context.Context, name string) *models.Branch {
	t.Helper()
	branch, err := models.CreateBranch(ctx, &models.NewBranch{Name: name})
	require.NoError(t, err)
	return branch
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

// invoiceMovements returns the invoice's ledger rows filtered by origin,
// oldest first.
func invoiceMovements(t *testing.T, ctx context.Context, invoiceId int, origin models.MovementOrigin) []models.Movement {
	t.Helper()
	var movements []models.Movement
	err := config.GetDB().WithContext(ctx).
		Where("invoice_id = ? AND origin = ?", invoiceId, origin).
		Order("date, id").Find(&movements).Error
	require.NoError(t, err)
	return movements
}

func reloadInvoice(t *testing.T, ctx context.Context, invoiceId int) *models.Invoice {
	t.Helper()
	invoice, err := models.GetInvoiceById(ctx, invoiceId)
	require.NoError(t, err)
	return invoice
}

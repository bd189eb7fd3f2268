package reports_test

import (
	"context"
	"testing"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/norteapps/cartera_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupReportsTest(t *testing.T) context.Context {
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
	return ctx
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
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

func seedSale(t *testing.T, ctx context.Context, branchId int, amount, date string) *models.Sale {
	t.Helper()
	sale, err := workflow.CreateSaleIncome(ctx, &models.NewSale{
		BranchId: branchId,
		Amount:   dec(t, amount),
		Date:     date,
	})
	require.NoError(t, err)
	return sale
}

func seedInvoice(t *testing.T, ctx context.Context, supplierId int, folio, total, issueDate string, installments ...models.NewInstallment) *models.Invoice {
	t.Helper()
	if len(installments) == 0 {
		installments = []models.NewInstallment{{Amount: dec(t, total), DueDate: issueDate}}
	}
	invoice, err := workflow.CreateInvoiceWithSchedule(ctx, &models.NewInvoice{
		SupplierId:   supplierId,
		Folio:        folio,
		TotalAmount:  dec(t, total),
		IssueDate:    issueDate,
		Installments: installments,
	})
	require.NoError(t, err)
	return invoice
}

func seedPayment(t *testing.T, ctx context.Context, invoiceId int, amount, date string) *models.Movement {
	t.Helper()
	movement, err := workflow.RegisterInvoicePayment(ctx, &workflow.NewInvoicePayment{
		InvoiceId: invoiceId,
		Amount:    dec(t, amount),
		Date:      date,
	})
	require.NoError(t, err)
	return movement
}

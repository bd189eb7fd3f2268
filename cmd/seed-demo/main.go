// seed-demo creates a demo organization with a supplier, a branch, one
// scheduled invoice and a sale, so a fresh environment has data to look at.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/norteapps/cartera_backend/workflow"
	"github.com/shopspring/decimal"
)

const (
	demoUsername = "demo"
	demoPassword = "demo1234!"
	demoOrgName  = "Organización Demo"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.Migrate(db); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	if err := db.Where("username = ?", demoUsername).First(&existing).Error; err == nil {
		fmt.Printf("Demo user %q already exists (organization_id=%d); nothing to do.\n",
			demoUsername, existing.OrganizationId)
		return
	}

	user, err := models.SignUp(ctx, &models.NewUser{
		Username:     demoUsername,
		Password:     demoPassword,
		Email:        "demo@example.com",
		Organization: demoOrgName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create demo user: %v\n", err)
		os.Exit(1)
	}

	ctx = utils.SetOrganizationIdInContext(ctx, user.OrganizationId)
	ctx = utils.SetUserIdInContext(ctx, user.ID)
	ctx = utils.SetIsOrgAdminInContext(ctx, true)

	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{
		Name:        "Distribuidora del Norte",
		BankAccount: "012 3456 7890",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create supplier: %v\n", err)
		os.Exit(1)
	}

	branch, err := models.CreateBranch(ctx, &models.NewBranch{
		Name:                "Sucursal Centro",
		ProjectedDailySales: decimal.RequireFromString("5000.00"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create branch: %v\n", err)
		os.Exit(1)
	}

	today := utils.Today()
	invoice, err := workflow.CreateInvoiceWithSchedule(ctx, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "DEMO-001",
		TotalAmount: decimal.RequireFromString("1500.00"),
		IssueDate:   today.Format("2006-01-02"),
		Installments: []models.NewInstallment{
			{Amount: decimal.RequireFromString("750.00"), DueDate: today.AddDate(0, 0, 7).Format("2006-01-02")},
			{Amount: decimal.RequireFromString("750.00"), DueDate: today.AddDate(0, 0, 14).Format("2006-01-02")},
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create invoice: %v\n", err)
		os.Exit(1)
	}

	if _, err := workflow.CreateSaleIncome(ctx, &models.NewSale{
		BranchId: branch.ID,
		Amount:   decimal.RequireFromString("4200.00"),
		Date:     today.Format("2006-01-02"),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create sale: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded demo data: user=%q organization_id=%d invoice=%q\n",
		demoUsername, user.OrganizationId, invoice.Folio)
}

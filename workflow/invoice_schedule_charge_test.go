package workflow_test

import (
	"fmt"
	"testing"

	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/norteapps/cartera_backend/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoiceWithSchedule_PostsOneChargePerInstallment(t *testing.T) {
	ctx := setupLedgerTest(t)
	supplier := seedSupplier(t, ctx, "Distribuidora del Norte")

	invoice, err := workflow.CreateInvoiceWithSchedule(ctx, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "A-1001",
		TotalAmount: dec(t, "1500.00"),
		IssueDate:   "2026-03-01",
		Installments: []models.NewInstallment{
			{Amount: dec(t, "750.00"), DueDate: "2026-03-10"},
			{Amount: dec(t, "750.00"), DueDate: "2026-03-20"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPending, invoice.Status)

	charges := invoiceMovements(t, ctx, invoice.ID, models.OriginCharge)
	require.Len(t, charges, 2)
	assert.Equal(t, "Creación de factura con FOLIO A-1001 - Cuota 2026-03-10", charges[0].Description)
	assert.Equal(t, "2026-03-10", charges[0].Date.Format("2006-01-02"))
	assert.True(t, charges[0].Amount.Equal(dec(t, "750.00")))
	require.NotNil(t, charges[0].InstallmentId)
	assert.Equal(t, "2026-03-20", charges[1].Date.Format("2006-01-02"))
}

func TestCreateInvoiceWithSchedule_ToleranceBoundary(t *testing.T) {
	ctx := setupLedgerTest(t)
	supplier := seedSupplier(t, ctx, "Abarrotes García")

	// A schedule off by exactly 0.01 is accepted.
	_, err := workflow.CreateInvoiceWithSchedule(ctx, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "B-1",
		TotalAmount: dec(t, "100.00"),
		IssueDate:   "2026-03-01",
		Installments: []models.NewInstallment{
			{Amount: dec(t, "50.00"), DueDate: "2026-03-10"},
			{Amount: dec(t, "49.99"), DueDate: "2026-03-20"},
		},
	})
	require.NoError(t, err)

	// Off by 0.02 is not.
	_, err = workflow.CreateInvoiceWithSchedule(ctx, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "B-2",
		TotalAmount: dec(t, "100.00"),
		IssueDate:   "2026-03-01",
		Installments: []models.NewInstallment{
			{Amount: dec(t, "50.00"), DueDate: "2026-03-10"},
			{Amount: dec(t, "49.98"), DueDate: "2026-03-20"},
		},
	})
	require.ErrorIs(t, err, utils.ErrorScheduleMismatch)
}

func TestCreateInvoiceWithSchedule_RequiresAtLeastOneInstallment(t *testing.T) {
	ctx := setupLedgerTest(t)
	supplier := seedSupplier(t, ctx, "Abarrotes García")

	_, err := workflow.CreateInvoiceWithSchedule(ctx, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "C-1",
		TotalAmount: dec(t, "100.00"),
		IssueDate:   "2026-03-01",
	})
	require.ErrorIs(t, err, utils.ErrorScheduleMismatch)
}

func TestCreateInvoiceWithSchedule_DuplicateFolioPerOrganization(t *testing.T) {
	ctx := setupLedgerTest(t)
	supplier := seedSupplier(t, ctx, "Abarrotes García")

	input := &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "DUP-1",
		TotalAmount: dec(t, "100.00"),
		IssueDate:   "2026-03-01",
		Installments: []models.NewInstallment{
			{Amount: dec(t, "100.00"), DueDate: "2026-03-10"},
		},
	}
	_, err := workflow.CreateInvoiceWithSchedule(ctx, input)
	require.NoError(t, err)

	_, err = workflow.CreateInvoiceWithSchedule(ctx, input)
	require.ErrorIs(t, err, utils.ErrorDuplicateFolio)
}

func TestUpdateInvoice_AmountFrozenOncePaid(t *testing.T) {
	ctx := setupLedgerTest(t)
	supplier := seedSupplier(t, ctx, "Abarrotes García")

	invoice, err := workflow.CreateInvoiceWithSchedule(ctx, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "D-1",
		TotalAmount: dec(t, "500.00"),
		IssueDate:   "2026-03-01",
		Installments: []models.NewInstallment{
			{Amount: dec(t, "500.00"), DueDate: "2026-03-10"},
		},
	})
	require.NoError(t, err)

	_, err = workflow.RegisterInvoicePayment(ctx, &workflow.NewInvoicePayment{
		InvoiceId: invoice.ID,
		Amount:    dec(t, "200.00"),
	})
	require.NoError(t, err)

	_, err = workflow.UpdateInvoice(ctx, invoice.ID, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "D-1",
		TotalAmount: dec(t, "600.00"),
		IssueDate:   "2026-03-01",
	})
	require.ErrorIs(t, err, utils.ErrorImmutableAmount)

	// Same amount stays editable even when PARTIAL.
	updated, err := workflow.UpdateInvoice(ctx, invoice.ID, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "D-1-R",
		TotalAmount: dec(t, "500.00"),
		IssueDate:   "2026-03-01",
		Notes:       "folio corregido",
	})
	require.NoError(t, err)
	assert.Equal(t, "D-1-R", updated.Folio)
}

func TestUpdateInvoice_ResyncRebuildsChargesAndKeepsPayments(t *testing.T) {
	ctx := setupLedgerTest(t)
	supplier := seedSupplier(t, ctx, "Abarrotes García")

	invoice, err := workflow.CreateInvoiceWithSchedule(ctx, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "E-1",
		TotalAmount: dec(t, "900.00"),
		IssueDate:   "2026-03-01",
		Installments: []models.NewInstallment{
			{Amount: dec(t, "300.00"), DueDate: "2026-03-05"},
			{Amount: dec(t, "300.00"), DueDate: "2026-03-15"},
			{Amount: dec(t, "300.00"), DueDate: "2026-03-25"},
		},
	})
	require.NoError(t, err)

	_, err = workflow.RegisterInvoicePayment(ctx, &workflow.NewInvoicePayment{
		InvoiceId: invoice.ID,
		Amount:    dec(t, "300.00"),
	})
	require.NoError(t, err)

	oldCharges := invoiceMovements(t, ctx, invoice.ID, models.OriginCharge)
	require.Len(t, oldCharges, 3)

	_, err = workflow.UpdateInvoice(ctx, invoice.ID, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "E-1",
		TotalAmount: dec(t, "900.00"),
		IssueDate:   "2026-03-01",
		Notes:       "sin cambios de importe",
	})
	require.NoError(t, err)

	charges := invoiceMovements(t, ctx, invoice.ID, models.OriginCharge)
	require.Len(t, charges, 3)
	for i, charge := range charges {
		assert.NotEqual(t, oldCharges[i].ID, charge.ID, fmt.Sprintf("charge %d should be reposted", i))
	}

	payments := invoiceMovements(t, ctx, invoice.ID, models.OriginPayment)
	require.Len(t, payments, 1, "resync must never touch payments")
	assert.Equal(t, models.InvoiceStatusPartial, reloadInvoice(t, ctx, invoice.ID).Status)
}

func TestUpdateInvoice_ScheduleReplacementOnlyWhilePending(t *testing.T) {
	ctx := setupLedgerTest(t)
	supplier := seedSupplier(t, ctx, "Abarrotes García")

	invoice, err := workflow.CreateInvoiceWithSchedule(ctx, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "F-1",
		TotalAmount: dec(t, "600.00"),
		IssueDate:   "2026-03-01",
		Installments: []models.NewInstallment{
			{Amount: dec(t, "600.00"), DueDate: "2026-03-10"},
		},
	})
	require.NoError(t, err)

	_, err = workflow.UpdateInvoice(ctx, invoice.ID, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "F-1",
		TotalAmount: dec(t, "600.00"),
		IssueDate:   "2026-03-01",
		Installments: []models.NewInstallment{
			{Amount: dec(t, "200.00"), DueDate: "2026-03-10"},
			{Amount: dec(t, "200.00"), DueDate: "2026-03-20"},
			{Amount: dec(t, "200.00"), DueDate: "2026-03-30"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, invoiceMovements(t, ctx, invoice.ID, models.OriginCharge), 3)

	_, err = workflow.RegisterInvoicePayment(ctx, &workflow.NewInvoicePayment{
		InvoiceId: invoice.ID,
		Amount:    dec(t, "100.00"),
	})
	require.NoError(t, err)

	// Not PENDING anymore: the replacement schedule is ignored, charges
	// are just reposted from the existing installments.
	_, err = workflow.UpdateInvoice(ctx, invoice.ID, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "F-1",
		TotalAmount: dec(t, "600.00"),
		IssueDate:   "2026-03-01",
		Installments: []models.NewInstallment{
			{Amount: dec(t, "600.00"), DueDate: "2026-04-01"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, invoiceMovements(t, ctx, invoice.ID, models.OriginCharge), 3)
}

func TestDeleteInvoice_RemovesScheduleAndEveryMovement(t *testing.T) {
	ctx := setupLedgerTest(t)
	supplier := seedSupplier(t, ctx, "Abarrotes García")

	invoice, err := workflow.CreateInvoiceWithSchedule(ctx, &models.NewInvoice{
		SupplierId:  supplier.ID,
		Folio:       "G-1",
		TotalAmount: dec(t, "400.00"),
		IssueDate:   "2026-03-01",
		Installments: []models.NewInstallment{
			{Amount: dec(t, "400.00"), DueDate: "2026-03-10"},
		},
	})
	require.NoError(t, err)

	_, err = workflow.RegisterInvoicePayment(ctx, &workflow.NewInvoicePayment{
		InvoiceId: invoice.ID,
		Amount:    dec(t, "150.00"),
	})
	require.NoError(t, err)

	require.NoError(t, workflow.DeleteInvoice(ctx, invoice.ID))

	assert.Empty(t, invoiceMovements(t, ctx, invoice.ID, models.OriginCharge))
	assert.Empty(t, invoiceMovements(t, ctx, invoice.ID, models.OriginPayment))
	_, err = models.GetInvoiceById(ctx, invoice.ID)
	require.Error(t, err)
}

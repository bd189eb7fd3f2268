package reports_test

import (
	"testing"
	"time"

	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/models/reports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInvoiceReport(t *testing.T) {
	ctx := setupReportsTest(t)

	garcia := seedSupplier(t, ctx, "Abarrotes García")
	norte := seedSupplier(t, ctx, "Distribuidora del Norte")

	// Fully paid: scheduled but no longer debt.
	settled := seedInvoice(t, ctx, garcia.ID, "IR-1", "300.00", "2026-04-01",
		models.NewInstallment{Amount: dec(t, "300.00"), DueDate: "2026-04-05"},
	)
	seedPayment(t, ctx, settled.ID, "300.00", "2026-04-05")

	// Open, two installments on different days.
	seedInvoice(t, ctx, norte.ID, "IR-2", "800.00", "2026-04-01",
		models.NewInstallment{Amount: dec(t, "400.00"), DueDate: "2026-04-05"},
		models.NewInstallment{Amount: dec(t, "400.00"), DueDate: "2026-04-20"},
	)

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	report, err := reports.BuildInvoiceReport(ctx, &reports.InvoiceReportFilter{
		DateFrom: &from,
		DateTo:   &to,
	})
	require.NoError(t, err)

	assert.True(t, report.TotalScheduled.Equal(dec(t, "1100.00")), "got %s", report.TotalScheduled)
	assert.True(t, report.TotalDebt.Equal(dec(t, "800.00")), "got %s", report.TotalDebt)

	require.Len(t, report.DebtBySupplier, 1)
	assert.Equal(t, "Distribuidora del Norte", report.DebtBySupplier[0].Name)

	statusByName := map[models.InvoiceStatus]reports.StatusSlice{}
	for _, slice := range report.StatusBreakdown {
		statusByName[slice.Status] = slice
	}
	assert.Equal(t, 1, statusByName[models.InvoiceStatusPaid].Count)
	assert.Equal(t, 1, statusByName[models.InvoiceStatusPending].Count)

	require.Len(t, report.DueTimeline, 2)
	assert.Equal(t, "2026-04-05", report.DueTimeline[0].Day.Format("2006-01-02"))
	assert.True(t, report.DueTimeline[0].Total.Equal(dec(t, "700.00")))

	assert.Len(t, report.Details, 3)
}

func TestBuildInvoiceReport_StatusFilter(t *testing.T) {
	ctx := setupReportsTest(t)
	supplier := seedSupplier(t, ctx, "Abarrotes García")

	paid := seedInvoice(t, ctx, supplier.ID, "IR-3", "100.00", "2026-04-01",
		models.NewInstallment{Amount: dec(t, "100.00"), DueDate: "2026-04-05"},
	)
	seedPayment(t, ctx, paid.ID, "100.00", "2026-04-05")
	seedInvoice(t, ctx, supplier.ID, "IR-4", "250.00", "2026-04-01",
		models.NewInstallment{Amount: dec(t, "250.00"), DueDate: "2026-04-08"},
	)

	report, err := reports.BuildInvoiceReport(ctx, &reports.InvoiceReportFilter{
		Status: models.InvoiceStatusPending,
	})
	require.NoError(t, err)

	require.Len(t, report.Details, 1)
	assert.Equal(t, "IR-4", report.Details[0].Folio)
	assert.True(t, report.TotalDebt.Equal(dec(t, "250.00")))
	require.Len(t, report.StatusBreakdown, 1)
	assert.Equal(t, models.InvoiceStatusPending, report.StatusBreakdown[0].Status)
}

package reports

import (
	"context"
	"sort"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
)

type InvoiceReportFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	SupplierId int
	Status     models.InvoiceStatus
}

type StatusSlice struct {
	Status models.InvoiceStatus `json:"status"`
	Count  int                  `json:"count"`
	Total  decimal.Decimal      `json:"total"`
}

type InvoiceReportLine struct {
	InstallmentId int                  `json:"installment_id"`
	InvoiceId     int                  `json:"invoice_id"`
	Folio         string               `json:"folio"`
	SupplierName  string               `json:"supplier_name"`
	Status        models.InvoiceStatus `json:"status"`
	DueDate       time.Time            `json:"due_date"`
	AmountDue     decimal.Decimal      `json:"amount_due"`
}

type InvoiceReport struct {
	TotalDebt       decimal.Decimal     `json:"total_debt"`
	TotalScheduled  decimal.Decimal     `json:"total_scheduled"`
	DebtBySupplier  []NamedTotal        `json:"debt_by_supplier"`
	StatusBreakdown []StatusSlice       `json:"status_breakdown"`
	DueTimeline     []DailyTotal        `json:"due_timeline"`
	Details         []InvoiceReportLine `json:"details"`
}

const invoiceReportDetailCap = 100

// BuildInvoiceReport aggregates the installment schedule over a range:
// outstanding debt (unpaid invoices' scheduled dues), top debtor suppliers,
// invoice status distribution and the due-date timeline.
func BuildInvoiceReport(ctx context.Context, filter *InvoiceReportFilter) (*InvoiceReport, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()

	query := db.WithContext(ctx).
		Where("organization_id = ?", organizationId)
	if filter != nil {
		if filter.DateFrom != nil {
			query = query.Where("due_date >= ?", utils.DateOnly(*filter.DateFrom))
		}
		if filter.DateTo != nil {
			query = query.Where("due_date <= ?", utils.DateOnly(*filter.DateTo))
		}
	}
	var installments []models.Installment
	if err := query.Order("due_date, id").Find(&installments).Error; err != nil {
		return nil, err
	}

	report := &InvoiceReport{
		TotalDebt:      decimal.Zero,
		TotalScheduled: decimal.Zero,
	}

	invoices := map[int]*models.Invoice{}
	loadInvoice := func(id int) (*models.Invoice, error) {
		if inv, ok := invoices[id]; ok {
			return inv, nil
		}
		var invoice models.Invoice
		if err := db.WithContext(ctx).Preload("Supplier").
			Where("organization_id = ? AND id = ?", organizationId, id).
			First(&invoice).Error; err != nil {
			return nil, err
		}
		invoices[id] = &invoice
		return &invoice, nil
	}

	debtBySupplier := map[string]decimal.Decimal{}
	timeline := map[string]*DailyTotal{}

	for _, inst := range installments {
		invoice, err := loadInvoice(inst.InvoiceId)
		if err != nil {
			return nil, err
		}
		if filter != nil {
			if filter.SupplierId > 0 && invoice.SupplierId != filter.SupplierId {
				continue
			}
			if filter.Status != "" && invoice.Status != filter.Status {
				continue
			}
		}

		supplierName := "Sin Proveedor"
		if invoice.Supplier != nil {
			supplierName = invoice.Supplier.Name
		}

		report.TotalScheduled = report.TotalScheduled.Add(inst.Amount)
		if invoice.Status != models.InvoiceStatusPaid {
			report.TotalDebt = report.TotalDebt.Add(inst.Amount)
			debtBySupplier[supplierName] = debtBySupplier[supplierName].Add(inst.Amount)
		}

		day := utils.DateOnly(inst.DueDate)
		key := day.Format("2006-01-02")
		entry, ok := timeline[key]
		if !ok {
			entry = &DailyTotal{Day: day, Total: decimal.Zero}
			timeline[key] = entry
		}
		entry.Total = entry.Total.Add(inst.Amount)

		if len(report.Details) < invoiceReportDetailCap {
			report.Details = append(report.Details, InvoiceReportLine{
				InstallmentId: inst.ID,
				InvoiceId:     invoice.ID,
				Folio:         invoice.Folio,
				SupplierName:  supplierName,
				Status:        invoice.Status,
				DueDate:       inst.DueDate,
				AmountDue:     inst.Amount,
			})
		}
	}

	for name, total := range debtBySupplier {
		report.DebtBySupplier = append(report.DebtBySupplier, NamedTotal{Name: name, Total: total})
	}
	sort.Slice(report.DebtBySupplier, func(i, j int) bool {
		return report.DebtBySupplier[i].Total.GreaterThan(report.DebtBySupplier[j].Total)
	})
	if len(report.DebtBySupplier) > 10 {
		report.DebtBySupplier = report.DebtBySupplier[:10]
	}

	statusTotals := map[models.InvoiceStatus]*StatusSlice{}
	for _, invoice := range invoices {
		if filter != nil {
			if filter.SupplierId > 0 && invoice.SupplierId != filter.SupplierId {
				continue
			}
			if filter.Status != "" && invoice.Status != filter.Status {
				continue
			}
		}
		slice, ok := statusTotals[invoice.Status]
		if !ok {
			slice = &StatusSlice{Status: invoice.Status, Total: decimal.Zero}
			statusTotals[invoice.Status] = slice
		}
		slice.Count++
		slice.Total = slice.Total.Add(invoice.TotalAmount)
	}
	for _, slice := range statusTotals {
		report.StatusBreakdown = append(report.StatusBreakdown, *slice)
	}
	sort.Slice(report.StatusBreakdown, func(i, j int) bool {
		return report.StatusBreakdown[i].Status < report.StatusBreakdown[j].Status
	})

	for _, entry := range timeline {
		report.DueTimeline = append(report.DueTimeline, *entry)
	}
	sort.Slice(report.DueTimeline, func(i, j int) bool {
		return report.DueTimeline[i].Day.Before(report.DueTimeline[j].Day)
	})

	return report, nil
}

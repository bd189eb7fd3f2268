package reports

import (
	"context"
	"sort"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementReportFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	Origin     models.MovementOrigin
	BranchId   int
	SupplierId int
}

type NamedTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

type DailyFlow struct {
	Day      time.Time       `json:"day"`
	Inflows  decimal.Decimal `json:"inflows"`
	Outflows decimal.Decimal `json:"outflows"`
}

type MovementReportLine struct {
	models.Movement
	InvoiceRemaining *decimal.Decimal `json:"invoice_remaining,omitempty"`
}

type MovementReport struct {
	TotalIncomes       decimal.Decimal      `json:"total_incomes"`
	TotalPayments      decimal.Decimal      `json:"total_payments"`
	TotalCharges       decimal.Decimal      `json:"total_charges"`
	NetBalance         decimal.Decimal      `json:"net_balance"`
	IncomesByBranch    []NamedTotal         `json:"incomes_by_branch"`
	PaymentsBySupplier []NamedTotal         `json:"payments_by_supplier"`
	ChargesBySupplier  []NamedTotal         `json:"charges_by_supplier"`
	DailyFlows         []DailyFlow          `json:"daily_flows"`
	Details            []MovementReportLine `json:"details"`
}

func (f *MovementReportFilter) apply(query *gorm.DB) *gorm.DB {
	if f == nil {
		return query
	}
	if f.DateFrom != nil {
		query = query.Where("movements.date >= ?", utils.DateOnly(*f.DateFrom))
	}
	if f.DateTo != nil {
		query = query.Where("movements.date <= ?", utils.DateOnly(*f.DateTo))
	}
	if f.Origin != "" {
		query = query.Where("movements.origin = ?", f.Origin)
	}
	return query
}

// BuildMovementReport aggregates the filtered movements into the range
// report: origin totals, incomes grouped by branch, payments and charges
// grouped by supplier (top 10), the daily in/out timeline and the detailed
// list annotated with each invoice's remaining balance.
func BuildMovementReport(ctx context.Context, filter *MovementReportFilter) (*MovementReport, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	base := func() *gorm.DB {
		q := db.WithContext(ctx).Model(&models.Movement{}).
			Where("movements.organization_id = ?", organizationId)
		return filter.apply(q)
	}

	var movements []models.Movement
	query := base().Order("movements.date, movements.id")
	if filter != nil && filter.BranchId > 0 {
		query = query.Joins("JOIN sales ON sales.id = movements.sale_id").
			Where("sales.branch_id = ?", filter.BranchId)
	}
	if filter != nil && filter.SupplierId > 0 {
		query = query.Joins("JOIN invoices ON invoices.id = movements.invoice_id").
			Where("invoices.supplier_id = ?", filter.SupplierId)
	}
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}

	report := &MovementReport{
		TotalIncomes:  decimal.Zero,
		TotalPayments: decimal.Zero,
		TotalCharges:  decimal.Zero,
	}
	plus, minus := decimal.Zero, decimal.Zero

	branchNames := map[int]string{}
	supplierNameForInvoice := map[int]string{}

	incomesByBranch := map[string]decimal.Decimal{}
	paymentsBySupplier := map[string]decimal.Decimal{}
	chargesBySupplier := map[string]decimal.Decimal{}
	flows := map[string]*DailyFlow{}
	remainingByInvoice := map[int]decimal.Decimal{}

	resolveBranch := func(saleId *int) string {
		if saleId == nil {
			return "Sin Sucursal"
		}
		var sale models.Sale
		if err := db.WithContext(ctx).Preload("Branch").
			Where("id = ?", *saleId).First(&sale).Error; err != nil {
			return "Sin Sucursal"
		}
		if sale.Branch == nil {
			return "Sin Sucursal"
		}
		branchNames[sale.BranchId] = sale.Branch.Name
		return sale.Branch.Name
	}
	resolveSupplier := func(invoiceId *int) string {
		if invoiceId == nil {
			return "Sin Proveedor"
		}
		if name, ok := supplierNameForInvoice[*invoiceId]; ok {
			return name
		}
		var invoice models.Invoice
		if err := db.WithContext(ctx).Preload("Supplier").
			Where("id = ?", *invoiceId).First(&invoice).Error; err != nil {
			return "Sin Proveedor"
		}
		name := "Sin Proveedor"
		if invoice.Supplier != nil {
			name = invoice.Supplier.Name
		}
		supplierNameForInvoice[*invoiceId] = name
		return name
	}

	for _, mov := range movements {
		dayKey := utils.DateOnly(mov.Date).Format("2006-01-02")
		flow, ok := flows[dayKey]
		if !ok {
			flow = &DailyFlow{Day: utils.DateOnly(mov.Date), Inflows: decimal.Zero, Outflows: decimal.Zero}
			flows[dayKey] = flow
		}

		switch mov.Origin {
		case models.OriginIncome:
			report.TotalIncomes = report.TotalIncomes.Add(mov.Amount)
			name := resolveBranch(mov.SaleId)
			incomesByBranch[name] = incomesByBranch[name].Add(mov.Amount)
			flow.Inflows = flow.Inflows.Add(mov.Amount)
		case models.OriginPayment:
			report.TotalPayments = report.TotalPayments.Add(mov.Amount)
			name := resolveSupplier(mov.InvoiceId)
			paymentsBySupplier[name] = paymentsBySupplier[name].Add(mov.Amount)
			flow.Outflows = flow.Outflows.Add(mov.Amount)
		case models.OriginCharge:
			report.TotalCharges = report.TotalCharges.Add(mov.Amount)
			name := resolveSupplier(mov.InvoiceId)
			chargesBySupplier[name] = chargesBySupplier[name].Add(mov.Amount)
		case models.OriginAdjustmentPlus:
			plus = plus.Add(mov.Amount)
			flow.Inflows = flow.Inflows.Add(mov.Amount)
		case models.OriginAdjustmentMinus:
			minus = minus.Add(mov.Amount)
			flow.Outflows = flow.Outflows.Add(mov.Amount)
		}

		line := MovementReportLine{Movement: mov}
		if mov.InvoiceId != nil {
			remaining, ok := remainingByInvoice[*mov.InvoiceId]
			if !ok {
				var invoice models.Invoice
				if err := db.WithContext(ctx).Where("id = ?", *mov.InvoiceId).
					First(&invoice).Error; err == nil {
					r, err := RemainingForInvoice(ctx, &invoice)
					if err != nil {
						return nil, err
					}
					remaining = r
					remainingByInvoice[*mov.InvoiceId] = remaining
				}
			}
			line.InvoiceRemaining = &remaining
		}
		report.Details = append(report.Details, line)
	}

	report.NetBalance = report.TotalIncomes.Add(plus).Sub(report.TotalPayments.Add(minus))

	toSorted := func(m map[string]decimal.Decimal, top int) []NamedTotal {
		out := make([]NamedTotal, 0, len(m))
		for name, total := range m {
			out = append(out, NamedTotal{Name: name, Total: total})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
		if top > 0 && len(out) > top {
			out = out[:top]
		}
		return out
	}
	report.IncomesByBranch = toSorted(incomesByBranch, 0)
	report.PaymentsBySupplier = toSorted(paymentsBySupplier, 10)
	report.ChargesBySupplier = toSorted(chargesBySupplier, 10)

	for _, flow := range flows {
		report.DailyFlows = append(report.DailyFlows, *flow)
	}
	sort.Slice(report.DailyFlows, func(i, j int) bool {
		return report.DailyFlows[i].Day.Before(report.DailyFlows[j].Day)
	})

	return report, nil
}

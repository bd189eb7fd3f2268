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

// DueInstallment is one scheduled due line of the day with its invoice,
// supplier and the account the payment should go out from.
type DueInstallment struct {
	InstallmentId int                  `json:"installment_id"`
	InvoiceId     int                  `json:"invoice_id"`
	Folio         string               `json:"folio"`
	InvoiceType   models.InvoiceType   `json:"invoice_type"`
	InvoiceStatus models.InvoiceStatus `json:"invoice_status"`
	SupplierName  string               `json:"supplier_name"`
	Account       string               `json:"account"`
	AccountLabel  string               `json:"account_label"`
	AmountDue     decimal.Decimal      `json:"amount_due"`
	InvoiceTotal  decimal.Decimal      `json:"invoice_total"`
	Remaining     decimal.Decimal      `json:"remaining"`
}

type BranchSales struct {
	BranchName string          `json:"branch_name"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

type DayDetail struct {
	Date               time.Time        `json:"date"`
	Today              time.Time        `json:"today"`
	PrevDate           time.Time        `json:"prev_date"`
	NextDate           time.Time        `json:"next_date"`
	DueInstallments    []DueInstallment `json:"due_installments"`
	Sales              []models.Sale    `json:"sales"`
	SalesByBranch      []BranchSales    `json:"sales_by_branch"`
	DueTotal           decimal.Decimal  `json:"due_total"`
	TabulationTotal    decimal.Decimal  `json:"tabulation_total"`
	RemainingTotal     decimal.Decimal  `json:"remaining_total"`
	InvoiceTotalSum    decimal.Decimal  `json:"invoice_total_sum"`
	SalesTotal         decimal.Decimal  `json:"sales_total"`
	IsFuture           bool             `json:"is_future"`
	DaysAhead          int              `json:"days_ahead"`
	RequiredDailySales decimal.Decimal  `json:"required_daily_sales"`
	PaymentsTotal      decimal.Decimal  `json:"payments_total"`
	PaymentsCount      int              `json:"payments_count"`
}

// accountToDisplay resolves which bank account a due line should show,
// honoring the invoice's manual account mode.
func accountToDisplay(mode models.AccountDisplayMode, supplier *models.Supplier) (string, string) {
	if supplier == nil {
		return "Sin Cuenta", ""
	}
	if mode == models.AccountDisplayMaster {
		if supplier.MasterAccount != nil {
			account := supplier.MasterAccount.BankAccount
			if account == "" {
				account = "S/C"
			}
			return account, "Cuenta Maestra: " + supplier.MasterAccount.Name
		}
		return "S/C", "Cuenta Maestra no configurada"
	}
	account := supplier.BankAccount
	if account == "" {
		account = "S/C"
	}
	return account, "Cuenta Proveedor"
}

// BuildDayDetail assembles everything shown for one calendar day: the dues
// with their payment accounts, the branch sales, the tabulation total
// (MERCADO_PAGO invoices excluded from cash counting) and, for future days,
// the daily sales pace needed to cover the dues.
func BuildDayDetail(ctx context.Context, day time.Time) (*DayDetail, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	day = utils.DateOnly(day)
	today := utils.Today()
	db := config.GetDB()

	var installments []models.Installment
	err := db.WithContext(ctx).
		Where("organization_id = ? AND due_date = ?", organizationId, day).
		Order("id").Find(&installments).Error
	if err != nil {
		return nil, err
	}

	detail := &DayDetail{
		Date:               day,
		Today:              today,
		PrevDate:           day.AddDate(0, 0, -1),
		NextDate:           day.AddDate(0, 0, 1),
		DueInstallments:    []DueInstallment{},
		SalesByBranch:      []BranchSales{},
		DueTotal:           decimal.Zero,
		TabulationTotal:    decimal.Zero,
		RemainingTotal:     decimal.Zero,
		InvoiceTotalSum:    decimal.Zero,
		SalesTotal:         decimal.Zero,
		RequiredDailySales: decimal.Zero,
	}

	remainingByInvoice := map[int]decimal.Decimal{}
	for _, inst := range installments {
		var invoice models.Invoice
		if err := db.WithContext(ctx).Preload("Supplier").Preload("Supplier.MasterAccount").
			Where("organization_id = ? AND id = ?", organizationId, inst.InvoiceId).
			First(&invoice).Error; err != nil {
			return nil, err
		}

		remaining, ok := remainingByInvoice[invoice.ID]
		if !ok {
			remaining, err = RemainingForInvoice(ctx, &invoice)
			if err != nil {
				return nil, err
			}
			remainingByInvoice[invoice.ID] = remaining
		}

		supplierName := "Proveedor Desconocido"
		if invoice.Supplier != nil {
			supplierName = invoice.Supplier.Name
		}
		account, accountLabel := accountToDisplay(invoice.AccountMode, invoice.Supplier)

		detail.DueInstallments = append(detail.DueInstallments, DueInstallment{
			InstallmentId: inst.ID,
			InvoiceId:     invoice.ID,
			Folio:         invoice.Folio,
			InvoiceType:   invoice.InvoiceType,
			InvoiceStatus: invoice.Status,
			SupplierName:  supplierName,
			Account:       account,
			AccountLabel:  accountLabel,
			AmountDue:     inst.Amount,
			InvoiceTotal:  invoice.TotalAmount,
			Remaining:     remaining,
		})

		detail.DueTotal = detail.DueTotal.Add(inst.Amount)
		detail.RemainingTotal = detail.RemainingTotal.Add(remaining)
		detail.InvoiceTotalSum = detail.InvoiceTotalSum.Add(invoice.TotalAmount)
		if invoice.InvoiceType != models.InvoiceTypeMercadoPago {
			detail.TabulationTotal = detail.TabulationTotal.Add(inst.Amount)
		}
	}

	var sales []models.Sale
	err = db.WithContext(ctx).Preload("Branch").
		Where("organization_id = ? AND date = ?", organizationId, day).
		Order("id").Find(&sales).Error
	if err != nil {
		return nil, err
	}
	detail.Sales = sales

	byBranch := map[string]*BranchSales{}
	for _, sale := range sales {
		detail.SalesTotal = detail.SalesTotal.Add(sale.Amount)
		name := ""
		if sale.Branch != nil {
			name = sale.Branch.Name
		}
		b, ok := byBranch[name]
		if !ok {
			b = &BranchSales{BranchName: name, Total: decimal.Zero}
			byBranch[name] = b
		}
		b.Total = b.Total.Add(sale.Amount)
		b.Count++
	}
	for _, b := range byBranch {
		detail.SalesByBranch = append(detail.SalesByBranch, *b)
	}
	sort.Slice(detail.SalesByBranch, func(i, j int) bool {
		return detail.SalesByBranch[i].Total.GreaterThan(detail.SalesByBranch[j].Total)
	})

	if day.After(today) && detail.DueTotal.GreaterThan(decimal.Zero) {
		detail.IsFuture = true
		detail.DaysAhead = int(day.Sub(today).Hours() / 24)
		if detail.DaysAhead > 0 {
			detail.RequiredDailySales = detail.DueTotal.Div(decimal.NewFromInt(int64(detail.DaysAhead)))
		}
	}

	paymentsTotal, paymentsCount, err := DailyPayments(ctx, day)
	if err != nil {
		return nil, err
	}
	detail.PaymentsTotal = paymentsTotal
	detail.PaymentsCount = paymentsCount

	return detail, nil
}

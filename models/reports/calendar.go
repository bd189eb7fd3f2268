package reports

import (
	"context"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var spanishMonths = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

var spanishWeekdays = []string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}

type FolioMatch struct {
	Date      time.Time       `json:"date"`
	InvoiceId int             `json:"invoice_id"`
	Folio     string          `json:"folio"`
	Supplier  string          `json:"supplier"`
	AmountDue decimal.Decimal `json:"amount_due"`
}

type CalendarDay struct {
	Date             time.Time       `json:"date"`
	Day              int             `json:"day"`
	IsToday          bool            `json:"is_today"`
	TotalDue         decimal.Decimal `json:"total_due"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	RunningBalance   decimal.Decimal `json:"running_balance"`
	PendingInvoices  int             `json:"pending_invoices"`
	PaidInvoices     int             `json:"paid_invoices"`
	InstallmentCount int             `json:"installment_count"`
	TotalMovements   decimal.Decimal `json:"total_movements"`
	HasFolioMatch    bool            `json:"has_folio_match"`
	FolioMatches     []FolioMatch    `json:"folio_matches,omitempty"`
}

type MonthlyCalendar struct {
	Year                int              `json:"year"`
	Month               int              `json:"month"`
	MonthName           string           `json:"month_name"`
	Today               time.Time        `json:"today"`
	Weeks               [][]*CalendarDay `json:"weeks"`
	GlobalBalance       decimal.Decimal  `json:"global_balance"`
	TotalPayable        decimal.Decimal  `json:"total_payable"`
	MonthDueTotal       decimal.Decimal  `json:"month_due_total"`
	MonthPaymentsTotal  decimal.Decimal  `json:"month_payments_total"`
	DailyQuota          decimal.Decimal  `json:"daily_quota"`
	MonthSalesTotal     decimal.Decimal  `json:"month_sales_total"`
	PendingInstallments int              `json:"pending_installments"`
	PrevMonth           int              `json:"prev_month"`
	PrevYear            int              `json:"prev_year"`
	NextMonth           int              `json:"next_month"`
	NextYear            int              `json:"next_year"`
	Weekdays            []string         `json:"weekdays"`
	FolioSearch         string           `json:"folio_search,omitempty"`
	FolioMatches        []FolioMatch     `json:"folio_matches,omitempty"`
}

type installmentWithStatus struct {
	models.Installment
	InvoiceStatus models.InvoiceStatus
}

func sumRange(ctx context.Context, db *gorm.DB, model interface{}, organizationId int, dateColumn string, cond string, args ...interface{}) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	query := db.WithContext(ctx).Model(model).
		Where("organization_id = ?", organizationId).
		Where(dateColumn+" "+cond, args...)
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// BuildMonthlyCalendar assembles the month view: Sunday-first weeks, per-day
// due and sales totals and a running balance carried in from everything
// before the month (sales and plus adjustments in, scheduled dues and minus
// adjustments out).
func BuildMonthlyCalendar(ctx context.Context, year int, month int, folioSearch string) (*MonthlyCalendar, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	today := utils.Today()
	if year == 0 || month < 1 || month > 12 {
		year = today.Year()
		month = int(today.Month())
	}

	firstDay := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstDay.AddDate(0, 1, -1)

	db := config.GetDB()

	globalBalance, err := GlobalBalance(ctx)
	if err != nil {
		return nil, err
	}
	totalPayable, err := TotalPayable(ctx)
	if err != nil {
		return nil, err
	}

	// Month installments joined with their invoice status.
	var monthInstallments []installmentWithStatus
	err = db.WithContext(ctx).Model(&models.Installment{}).
		Select("installments.*, invoices.status AS invoice_status").
		Joins("JOIN invoices ON invoices.id = installments.invoice_id").
		Where("installments.organization_id = ? AND installments.due_date BETWEEN ? AND ?",
			organizationId, firstDay, lastDay).
		Scan(&monthInstallments).Error
	if err != nil {
		return nil, err
	}

	var monthSales []models.Sale
	err = db.WithContext(ctx).
		Where("organization_id = ? AND date BETWEEN ? AND ?", organizationId, firstDay, lastDay).
		Find(&monthSales).Error
	if err != nil {
		return nil, err
	}

	var monthAdjustments []models.Movement
	err = db.WithContext(ctx).
		Where("organization_id = ? AND origin IN ? AND date BETWEEN ? AND ?",
			organizationId,
			[]models.MovementOrigin{models.OriginAdjustmentPlus, models.OriginAdjustmentMinus},
			firstDay, lastDay).
		Find(&monthAdjustments).Error
	if err != nil {
		return nil, err
	}

	// Carried balance from everything before the month.
	priorSales, err := sumRange(ctx, db, &models.Sale{}, organizationId, "date", "< ?", firstDay)
	if err != nil {
		return nil, err
	}
	priorDues, err := sumRange(ctx, db, &models.Installment{}, organizationId, "due_date", "< ?", firstDay)
	if err != nil {
		return nil, err
	}
	priorAdjustments := func(origin models.MovementOrigin) (decimal.Decimal, error) {
		var total decimal.NullDecimal
		err := db.WithContext(ctx).Model(&models.Movement{}).
			Where("organization_id = ? AND origin = ? AND date < ?", organizationId, origin, firstDay).
			Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
		if err != nil {
			return decimal.Zero, err
		}
		if !total.Valid {
			return decimal.Zero, nil
		}
		return total.Decimal, nil
	}
	priorPlus, err := priorAdjustments(models.OriginAdjustmentPlus)
	if err != nil {
		return nil, err
	}
	priorMinus, err := priorAdjustments(models.OriginAdjustmentMinus)
	if err != nil {
		return nil, err
	}
	runningBalance := priorSales.Add(priorPlus).Sub(priorDues.Add(priorMinus))

	// Folio search annotations.
	var folioMatches []FolioMatch
	if folioSearch != "" {
		var invoices []models.Invoice
		err = db.WithContext(ctx).Preload("Supplier").Preload("Installments").
			Where("organization_id = ? AND folio LIKE ?", organizationId, "%"+folioSearch+"%").
			Find(&invoices).Error
		if err != nil {
			return nil, err
		}
		for _, inv := range invoices {
			supplierName := ""
			if inv.Supplier != nil {
				supplierName = inv.Supplier.Name
			}
			for _, inst := range inv.Installments {
				folioMatches = append(folioMatches, FolioMatch{
					Date:      inst.DueDate,
					InvoiceId: inv.ID,
					Folio:     inv.Folio,
					Supplier:  supplierName,
					AmountDue: inst.Amount,
				})
			}
		}
	}

	type dayBucket struct {
		due          decimal.Decimal
		sales        decimal.Decimal
		plus         decimal.Decimal
		minus        decimal.Decimal
		pending      int
		paid         int
		installments int
	}
	buckets := map[string]*dayBucket{}
	bucket := func(d time.Time) *dayBucket {
		key := utils.DateOnly(d).Format("2006-01-02")
		if b, ok := buckets[key]; ok {
			return b
		}
		b := &dayBucket{due: decimal.Zero, sales: decimal.Zero, plus: decimal.Zero, minus: decimal.Zero}
		buckets[key] = b
		return b
	}
	for _, inst := range monthInstallments {
		b := bucket(inst.DueDate)
		b.due = b.due.Add(inst.Amount)
		b.installments++
		switch inst.InvoiceStatus {
		case models.InvoiceStatusPending:
			b.pending++
		case models.InvoiceStatusPaid:
			b.paid++
		}
	}
	for _, sale := range monthSales {
		b := bucket(sale.Date)
		b.sales = b.sales.Add(sale.Amount)
	}
	for _, adj := range monthAdjustments {
		b := bucket(adj.Date)
		if adj.Origin == models.OriginAdjustmentPlus {
			b.plus = b.plus.Add(adj.Amount)
		} else {
			b.minus = b.minus.Add(adj.Amount)
		}
	}

	// Sunday-first week grid covering the whole month.
	gridStart := firstDay.AddDate(0, 0, -int(firstDay.Weekday()))
	var weeks [][]*CalendarDay
	for cursor := gridStart; !cursor.After(lastDay); cursor = cursor.AddDate(0, 0, 7) {
		week := make([]*CalendarDay, 7)
		for i := 0; i < 7; i++ {
			dayDate := cursor.AddDate(0, 0, i)
			if dayDate.Month() != time.Month(month) {
				continue
			}
			b := bucket(dayDate)
			runningBalance = runningBalance.
				Add(b.sales).Sub(b.due).Add(b.plus).Sub(b.minus)

			day := &CalendarDay{
				Date:             dayDate,
				Day:              dayDate.Day(),
				IsToday:          dayDate.Equal(today),
				TotalDue:         b.due,
				TotalSales:       b.sales,
				RunningBalance:   runningBalance,
				PendingInvoices:  b.pending,
				PaidInvoices:     b.paid,
				InstallmentCount: b.installments,
				TotalMovements:   b.due.Add(b.sales),
			}
			for _, match := range folioMatches {
				if utils.DateOnly(match.Date).Equal(dayDate) {
					day.HasFolioMatch = true
					day.FolioMatches = append(day.FolioMatches, match)
				}
			}
			week[i] = day
		}
		weeks = append(weeks, week)
	}

	// Monthly summary.
	monthDueTotal := decimal.Zero
	pendingInstallments := 0
	for _, inst := range monthInstallments {
		monthDueTotal = monthDueTotal.Add(inst.Amount)
		if inst.InvoiceStatus == models.InvoiceStatusPending {
			pendingInstallments++
		}
	}
	monthSalesTotal := decimal.Zero
	for _, sale := range monthSales {
		monthSalesTotal = monthSalesTotal.Add(sale.Amount)
	}

	var paymentsTotal decimal.NullDecimal
	err = db.WithContext(ctx).Model(&models.Movement{}).
		Where("organization_id = ? AND origin = ? AND date BETWEEN ? AND ?",
			organizationId, models.OriginPayment, firstDay, lastDay).
		Select("COALESCE(SUM(amount), 0)").Scan(&paymentsTotal).Error
	if err != nil {
		return nil, err
	}
	monthPaymentsTotal := decimal.Zero
	if paymentsTotal.Valid {
		monthPaymentsTotal = paymentsTotal.Decimal
	}

	daysInMonth := lastDay.Day()
	dailyQuota := decimal.Zero
	if daysInMonth > 0 {
		dailyQuota = monthDueTotal.Div(decimal.NewFromInt(int64(daysInMonth)))
	}

	prevMonth, prevYear := month-1, year
	if prevMonth == 0 {
		prevMonth, prevYear = 12, year-1
	}
	nextMonth, nextYear := month+1, year
	if nextMonth == 13 {
		nextMonth, nextYear = 1, year+1
	}

	return &MonthlyCalendar{
		Year:                year,
		Month:               month,
		MonthName:           spanishMonths[month-1],
		Today:               today,
		Weeks:               weeks,
		GlobalBalance:       globalBalance,
		TotalPayable:        totalPayable,
		MonthDueTotal:       monthDueTotal,
		MonthPaymentsTotal:  monthPaymentsTotal,
		DailyQuota:          dailyQuota,
		MonthSalesTotal:     monthSalesTotal,
		PendingInstallments: pendingInstallments,
		PrevMonth:           prevMonth,
		PrevYear:            prevYear,
		NextMonth:           nextMonth,
		NextYear:            nextYear,
		Weekdays:            spanishWeekdays,
		FolioSearch:         folioSearch,
		FolioMatches:        folioMatches,
	}, nil
}

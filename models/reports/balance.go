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

func sumMovements(ctx context.Context, db *gorm.DB, organizationId int, origin models.MovementOrigin) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Model(&models.Movement{}).
		Where("organization_id = ? AND origin = ?", organizationId, origin).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// GlobalBalance is the cash position of the organization:
// (incomes + plus adjustments) - (payments + minus adjustments).
// CHARGE rows are debt, not cash, and stay out of it.
func GlobalBalance(ctx context.Context) (decimal.Decimal, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return decimal.Zero, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	incomes, err := sumMovements(ctx, db, organizationId, models.OriginIncome)
	if err != nil {
		return decimal.Zero, err
	}
	payments, err := sumMovements(ctx, db, organizationId, models.OriginPayment)
	if err != nil {
		return decimal.Zero, err
	}
	plus, err := sumMovements(ctx, db, organizationId, models.OriginAdjustmentPlus)
	if err != nil {
		return decimal.Zero, err
	}
	minus, err := sumMovements(ctx, db, organizationId, models.OriginAdjustmentMinus)
	if err != nil {
		return decimal.Zero, err
	}

	return incomes.Add(plus).Sub(payments.Add(minus)), nil
}

// TotalPayable is what the organization still owes suppliers:
// invoice-linked charges minus invoice-linked payments.
func TotalPayable(ctx context.Context) (decimal.Decimal, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return decimal.Zero, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	sumLinked := func(origin models.MovementOrigin) (decimal.Decimal, error) {
		var total decimal.NullDecimal
		err := db.WithContext(ctx).Model(&models.Movement{}).
			Where("organization_id = ? AND origin = ? AND invoice_id IS NOT NULL", organizationId, origin).
			Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
		if err != nil {
			return decimal.Zero, err
		}
		if !total.Valid {
			return decimal.Zero, nil
		}
		return total.Decimal, nil
	}

	charges, err := sumLinked(models.OriginCharge)
	if err != nil {
		return decimal.Zero, err
	}
	payments, err := sumLinked(models.OriginPayment)
	if err != nil {
		return decimal.Zero, err
	}
	return charges.Sub(payments), nil
}

// DailyPayments returns the total amount and count of payments on one day.
func DailyPayments(ctx context.Context, day time.Time) (decimal.Decimal, int, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return decimal.Zero, 0, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	type row struct {
		Total   decimal.NullDecimal
		Counter int
	}
	var r row
	err := db.WithContext(ctx).Model(&models.Movement{}).
		Where("organization_id = ? AND origin = ? AND date = ?",
			organizationId, models.OriginPayment, utils.DateOnly(day)).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(id) AS counter").
		Scan(&r).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	total := decimal.Zero
	if r.Total.Valid {
		total = r.Total.Decimal
	}
	return total, r.Counter, nil
}

// RemainingForInvoice is the invoice total minus its payments. This is the
// figure the payment guards check against.
func RemainingForInvoice(ctx context.Context, invoice *models.Invoice) (decimal.Decimal, error) {
	db := config.GetDB()
	paid, err := models.PaidSumForInvoice(ctx, db, invoice.OrganizationId, invoice.ID, 0)
	if err != nil {
		return decimal.Zero, err
	}
	return invoice.TotalAmount.Sub(paid), nil
}

// InvoiceBalance derives the same figure from the movement ledger alone:
// CHARGE sum minus PAYMENT sum for the invoice.
func InvoiceBalance(ctx context.Context, invoice *models.Invoice) (decimal.Decimal, error) {
	db := config.GetDB()
	sumOrigin := func(origin models.MovementOrigin) (decimal.Decimal, error) {
		var total decimal.NullDecimal
		err := db.WithContext(ctx).Model(&models.Movement{}).
			Where("organization_id = ? AND invoice_id = ? AND origin = ?",
				invoice.OrganizationId, invoice.ID, origin).
			Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
		if err != nil {
			return decimal.Zero, err
		}
		if !total.Valid {
			return decimal.Zero, nil
		}
		return total.Decimal, nil
	}

	charges, err := sumOrigin(models.OriginCharge)
	if err != nil {
		return decimal.Zero, err
	}
	payments, err := sumOrigin(models.OriginPayment)
	if err != nil {
		return decimal.Zero, err
	}
	return charges.Sub(payments), nil
}

// CheckInvoiceConsistency compares the two balance derivations. They drift
// only when CHARGE rows got out of sync with the invoice total, which the
// schedule tolerance allows by at most 0.01.
func CheckInvoiceConsistency(ctx context.Context, invoice *models.Invoice) (bool, decimal.Decimal, error) {
	remaining, err := RemainingForInvoice(ctx, invoice)
	if err != nil {
		return false, decimal.Zero, err
	}
	ledger, err := InvoiceBalance(ctx, invoice)
	if err != nil {
		return false, decimal.Zero, err
	}
	diff := remaining.Sub(ledger).Abs()
	return diff.LessThanOrEqual(models.ScheduleTolerance), diff, nil
}

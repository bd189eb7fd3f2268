package workflow

import (
	"context"
	"fmt"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BulkPaymentInput struct {
	InstallmentIds []int  `json:"installment_ids" binding:"required"`
	Date           string `json:"date"`
}

type BulkPaymentReport struct {
	Paid        int             `json:"paid"`
	Skipped     int             `json:"skipped"`
	Errored     int             `json:"errored"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Details     []string        `json:"details"`
}

// ProcessBulkPayments pays the selected installments in one transaction.
// Each installment pays min(its amount, invoice remaining); already-paid and
// zero-remaining invoices are skipped. A business error on one item rolls
// back only that item via savepoint and is tallied; infrastructure errors
// abort the whole batch. A per-organization redis lock keeps two batches of
// the same tenant from interleaving.
func ProcessBulkPayments(ctx context.Context, input *BulkPaymentInput) (*BulkPaymentReport, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	report := &BulkPaymentReport{TotalAmount: decimal.Zero, Details: []string{}}
	installmentIds := utils.UniqueSlice(input.InstallmentIds)
	if len(installmentIds) == 0 {
		return report, nil
	}

	paymentDate := utils.Today()
	if input.Date != "" {
		parsed, err := utils.ParseDate(input.Date)
		if err != nil {
			return nil, err
		}
		paymentDate = parsed
	}

	release, err := utils.ObtainOrganizationLock(ctx, organizationId, "bulk-payment",
		"bulkPaymentWorkflow.go", "ProcessBulkPayments")
	if err != nil {
		return nil, err
	}
	defer release()

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var installments []models.Installment
		if err := tx.Where("organization_id = ? AND id IN ?", organizationId, installmentIds).
			Order("due_date, id").Find(&installments).Error; err != nil {
			return err
		}

		for i, inst := range installments {
			var invoice models.Invoice
			if err := tx.Where("organization_id = ? AND id = ?", organizationId, inst.InvoiceId).
				First(&invoice).Error; err != nil {
				return err
			}

			if invoice.Status == models.InvoiceStatusPaid {
				report.Skipped++
				report.Details = append(report.Details,
					fmt.Sprintf("Factura %s ya pagada. Omitida.", invoice.Folio))
				continue
			}

			paid, err := models.PaidSumForInvoice(ctx, tx, organizationId, invoice.ID, 0)
			if err != nil {
				return err
			}
			remaining := invoice.TotalAmount.Sub(paid)
			if remaining.LessThanOrEqual(decimal.Zero) {
				report.Skipped++
				continue
			}

			amount := inst.Amount
			if remaining.LessThan(amount) {
				amount = remaining
			}
			if amount.LessThanOrEqual(decimal.Zero) {
				report.Skipped++
				continue
			}

			savepoint := fmt.Sprintf("bulk_item_%d", i)
			if err := tx.SavePoint(savepoint).Error; err != nil {
				return err
			}
			if _, err := postInvoicePaymentTx(ctx, tx, &invoice, amount, paymentDate); err != nil {
				if !utils.IsBusinessError(err) {
					return err
				}
				if err := tx.RollbackTo(savepoint).Error; err != nil {
					return err
				}
				report.Errored++
				report.Details = append(report.Details,
					fmt.Sprintf("Error en factura %s: %s", invoice.Folio, err.Error()))
				continue
			}

			report.Paid++
			report.TotalAmount = report.TotalAmount.Add(amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

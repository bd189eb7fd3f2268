package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type NewInvoicePayment struct {
	InvoiceId int             `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Date      string          `json:"date"`
}

// postInvoicePaymentTx validates and posts one PAYMENT movement inside tx,
// then rederives the invoice status. Shared by the single-payment endpoint
// and the bulk processor.
func postInvoicePaymentTx(ctx context.Context, tx *gorm.DB, invoice *models.Invoice, amount decimal.Decimal, date time.Time) (*models.Movement, error) {
	if invoice.Status == models.InvoiceStatusPaid {
		return nil, utils.ErrorInvoicePaid
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrorInvalidAmount
	}

	paid, err := models.PaidSumForInvoice(ctx, tx, invoice.OrganizationId, invoice.ID, 0)
	if err != nil {
		return nil, err
	}
	remaining := invoice.TotalAmount.Sub(paid)
	if amount.GreaterThan(remaining) {
		return nil, utils.ErrorOverpayment
	}

	movement := models.Movement{
		OrganizationId: invoice.OrganizationId,
		Origin:         models.OriginPayment,
		Amount:         amount,
		Date:           date,
		Description:    fmt.Sprintf("Pago de factura con FOLIO %s", invoice.Folio),
		InvoiceId:      &invoice.ID,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}
	if err := models.RefreshInvoiceStatus(ctx, tx, invoice); err != nil {
		return nil, err
	}
	return &movement, nil
}

// RegisterInvoicePayment posts a PAYMENT movement against an invoice and
// rederives its status. The per-invoice posting lock closes the window where
// two concurrent payments could each pass the overpayment check.
func RegisterInvoicePayment(ctx context.Context, input *NewInvoicePayment) (*models.Movement, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrorInvalidAmount
	}

	paymentDate := utils.Today()
	if input.Date != "" {
		parsed, err := utils.ParseDate(input.Date)
		if err != nil {
			return nil, err
		}
		paymentDate = parsed
	}

	db := config.GetDB()
	var movement models.Movement
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireInvoicePostingLock(tx, organizationId, input.InvoiceId); err != nil {
			return err
		}
		defer ReleaseInvoicePostingLock(tx, organizationId, input.InvoiceId)

		var invoice models.Invoice
		if err := tx.Where("organization_id = ? AND id = ?", organizationId, input.InvoiceId).
			First(&invoice).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		posted, err := postInvoicePaymentTx(ctx, tx, &invoice, input.Amount, paymentDate)
		if err != nil {
			return err
		}
		movement = *posted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

type EditPayment struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Date   string          `json:"date"`
}

// EditInvoicePayment changes a payment's amount in place. The overpayment
// check excludes the payment being edited so raising or lowering it within
// the remaining balance both work.
func EditInvoicePayment(ctx context.Context, movementId int, input *EditPayment) (*models.Movement, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrorInvalidAmount
	}

	db := config.GetDB()
	var movement models.Movement
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ? AND id = ?", organizationId, movementId).
			First(&movement).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if movement.Origin != models.OriginPayment || movement.InvoiceId == nil {
			return utils.ErrorInvalidAmount
		}

		if err := AcquireInvoicePostingLock(tx, organizationId, *movement.InvoiceId); err != nil {
			return err
		}
		defer ReleaseInvoicePostingLock(tx, organizationId, *movement.InvoiceId)

		var invoice models.Invoice
		if err := tx.Where("organization_id = ? AND id = ?", organizationId, *movement.InvoiceId).
			First(&invoice).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		paidOthers, err := models.PaidSumForInvoice(ctx, tx, organizationId, invoice.ID, movement.ID)
		if err != nil {
			return err
		}
		remaining := invoice.TotalAmount.Sub(paidOthers)
		if input.Amount.GreaterThan(remaining) {
			return utils.ErrorOverpayment
		}

		movement.Amount = input.Amount
		if input.Date != "" {
			parsed, err := utils.ParseDate(input.Date)
			if err != nil {
				return err
			}
			movement.Date = parsed
		}
		if err := tx.Save(&movement).Error; err != nil {
			return err
		}

		return models.RefreshInvoiceStatus(ctx, tx, &invoice)
	})
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

// DeleteMovement removes a payment or adjustment. CHARGE and INCOME rows are
// managed by their owning records and are refused here. Deleting a payment
// rederives the invoice status, which can never land back on PAID since the
// removed amount was positive.
func DeleteMovement(ctx context.Context, movementId int) error {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var movement models.Movement
		if err := tx.Where("organization_id = ? AND id = ?", organizationId, movementId).
			First(&movement).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		switch movement.Origin {
		case models.OriginAdjustmentPlus, models.OriginAdjustmentMinus:
			return tx.Delete(&movement).Error
		case models.OriginPayment:
			// handled below
		default:
			return utils.ErrorProtectedMovement
		}

		if err := tx.Delete(&movement).Error; err != nil {
			return err
		}
		if movement.InvoiceId == nil {
			return nil
		}

		var invoice models.Invoice
		if err := tx.Where("organization_id = ? AND id = ?", organizationId, *movement.InvoiceId).
			First(&invoice).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		return models.RefreshInvoiceStatus(ctx, tx, &invoice)
	})
}

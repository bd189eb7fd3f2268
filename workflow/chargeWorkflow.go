package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// postInvoiceCharges writes the CHARGE movements for an invoice, one per
// installment dated on its due date. An invoice without installments gets a
// single charge dated today so legacy rows still show up in the ledger.
func postInvoiceCharges(ctx context.Context, tx *gorm.DB, invoice *models.Invoice) error {
	var installments []models.Installment
	if err := tx.WithContext(ctx).Where("invoice_id = ?", invoice.ID).
		Order("due_date").Find(&installments).Error; err != nil {
		return err
	}

	if len(installments) == 0 {
		charge := models.Movement{
			OrganizationId: invoice.OrganizationId,
			Origin:         models.OriginCharge,
			Amount:         invoice.TotalAmount,
			Date:           utils.Today(),
			Description:    fmt.Sprintf("Creación de factura con FOLIO %s", invoice.Folio),
			InvoiceId:      &invoice.ID,
		}
		return tx.WithContext(ctx).Create(&charge).Error
	}

	charges := make([]models.Movement, 0, len(installments))
	for i := range installments {
		inst := installments[i]
		charges = append(charges, models.Movement{
			OrganizationId: invoice.OrganizationId,
			Origin:         models.OriginCharge,
			Amount:         inst.Amount,
			Date:           inst.DueDate,
			Description: fmt.Sprintf("Creación de factura con FOLIO %s - Cuota %s",
				invoice.Folio, inst.DueDate.Format("2006-01-02")),
			InvoiceId:     &invoice.ID,
			InstallmentId: &inst.ID,
		})
	}
	return tx.WithContext(ctx).Create(&charges).Error
}

// resyncInvoiceCharges rebuilds only the CHARGE rows of an invoice. PAYMENT
// and other origins attached to the invoice are never touched.
func resyncInvoiceCharges(ctx context.Context, tx *gorm.DB, invoice *models.Invoice) error {
	if err := tx.WithContext(ctx).
		Where("invoice_id = ? AND origin = ?", invoice.ID, models.OriginCharge).
		Delete(&models.Movement{}).Error; err != nil {
		return err
	}
	return postInvoiceCharges(ctx, tx, invoice)
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// CreateInvoiceWithSchedule creates the invoice, its installment schedule
// and the matching CHARGE movements in one transaction.
func CreateInvoiceWithSchedule(ctx context.Context, input *models.NewInvoice) (*models.Invoice, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}
	if len(input.Installments) == 0 {
		return nil, fmt.Errorf("debe registrar al menos un pago: %w", utils.ErrorScheduleMismatch)
	}
	if input.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrorInvalidAmount
	}
	if err := models.ValidateSchedule(input.TotalAmount, input.Installments); err != nil {
		return nil, err
	}

	issueDate, err := utils.ParseDate(input.IssueDate)
	if err != nil {
		return nil, err
	}

	invoiceType := input.InvoiceType
	if invoiceType == "" {
		invoiceType = models.InvoiceTypeFactura
	}
	accountMode := input.AccountMode
	if accountMode == "" {
		accountMode = models.AccountDisplaySupplier
	}

	db := config.GetDB()
	var invoice models.Invoice
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := models.GetSupplierById(ctx, tx, organizationId, input.SupplierId); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Invoice{}).
			Where("organization_id = ? AND folio = ?", organizationId, input.Folio).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return utils.ErrorDuplicateFolio
		}

		invoice = models.Invoice{
			OrganizationId: organizationId,
			SupplierId:     input.SupplierId,
			Folio:          input.Folio,
			TotalAmount:    input.TotalAmount,
			IssueDate:      issueDate,
			InvoiceType:    invoiceType,
			AccountMode:    accountMode,
			Status:         models.InvoiceStatusPending,
			Notes:          input.Notes,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			if isDuplicateKeyError(err) {
				return utils.ErrorDuplicateFolio
			}
			return err
		}

		installments := make([]models.Installment, 0, len(input.Installments))
		for _, in := range input.Installments {
			dueDate, err := utils.ParseDate(in.DueDate)
			if err != nil {
				return err
			}
			installments = append(installments, models.Installment{
				OrganizationId: organizationId,
				InvoiceId:      invoice.ID,
				Amount:         in.Amount,
				DueDate:        dueDate,
			})
		}
		if err := tx.Create(&installments).Error; err != nil {
			return err
		}

		return postInvoiceCharges(ctx, tx, &invoice)
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateInvoice edits an invoice. Once a payment exists the amount is
// frozen and the schedule can no longer be replaced; the remaining fields
// stay editable. CHARGE movements are rebuilt after every edit.
func UpdateInvoice(ctx context.Context, invoiceId int, input *models.NewInvoice) (*models.Invoice, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	var invoice models.Invoice
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ? AND id = ?", organizationId, invoiceId).
			First(&invoice).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		if _, err := models.GetSupplierById(ctx, tx, organizationId, input.SupplierId); err != nil {
			return err
		}

		if invoice.Status != models.InvoiceStatusPending &&
			!invoice.TotalAmount.Equal(input.TotalAmount) {
			return utils.ErrorImmutableAmount
		}

		if input.Folio != invoice.Folio {
			var count int64
			if err := tx.Model(&models.Invoice{}).
				Where("organization_id = ? AND folio = ? AND id <> ?", organizationId, input.Folio, invoiceId).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return utils.ErrorDuplicateFolio
			}
		}

		invoice.SupplierId = input.SupplierId
		invoice.Folio = input.Folio
		invoice.TotalAmount = input.TotalAmount
		invoice.Notes = input.Notes
		if input.InvoiceType != "" {
			invoice.InvoiceType = input.InvoiceType
		}
		if input.AccountMode != "" {
			invoice.AccountMode = input.AccountMode
		}
		if err := tx.Save(&invoice).Error; err != nil {
			if isDuplicateKeyError(err) {
				return utils.ErrorDuplicateFolio
			}
			return err
		}

		if invoice.Status == models.InvoiceStatusPending && len(input.Installments) > 0 {
			if err := models.ValidateSchedule(invoice.TotalAmount, input.Installments); err != nil {
				return err
			}
			if err := tx.Where("invoice_id = ?", invoice.ID).
				Delete(&models.Installment{}).Error; err != nil {
				return err
			}
			installments := make([]models.Installment, 0, len(input.Installments))
			for _, in := range input.Installments {
				dueDate, err := utils.ParseDate(in.DueDate)
				if err != nil {
					return err
				}
				installments = append(installments, models.Installment{
					OrganizationId: organizationId,
					InvoiceId:      invoice.ID,
					Amount:         in.Amount,
					DueDate:        dueDate,
				})
			}
			if err := tx.Create(&installments).Error; err != nil {
				return err
			}
		}

		return resyncInvoiceCharges(ctx, tx, &invoice)
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// DeleteInvoice removes the invoice with its schedule and every movement
// attached to it, payments included.
func DeleteInvoice(ctx context.Context, invoiceId int) error {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.Where("organization_id = ? AND id = ?", organizationId, invoiceId).
			First(&invoice).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&models.Movement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&models.Installment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&invoice).Error
	})
}

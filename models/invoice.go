package models

import (
	"context"
	"fmt"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is a supplier bill. Status is always derived from TotalAmount and
// its PAYMENT movements through InvoiceStatusFor, never set by hand.
type Invoice struct {
	ID             int                `gorm:"primary_key" json:"id"`
	OrganizationId int                `gorm:"not null;uniqueIndex:idx_org_folio" json:"organization_id"`
	SupplierId     int                `gorm:"index;not null" json:"supplier_id"`
	Supplier       *Supplier          `gorm:"foreignKey:SupplierId" json:"supplier,omitempty"`
	Folio          string             `gorm:"size:50;not null;uniqueIndex:idx_org_folio" json:"folio"`
	TotalAmount    decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"total_amount"`
	IssueDate      time.Time          `gorm:"not null" json:"issue_date"`
	InvoiceType    InvoiceType        `gorm:"type:varchar(20);default:FACTURA" json:"invoice_type"`
	AccountMode    AccountDisplayMode `gorm:"type:varchar(10);default:SUPPLIER" json:"account_mode"`
	Status         InvoiceStatus      `gorm:"type:varchar(10);default:PENDING;index" json:"status"`
	Notes          string             `gorm:"type:text" json:"notes"`
	Installments   []Installment      `gorm:"foreignKey:InvoiceId" json:"installments,omitempty"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// Installment is one scheduled due line of an invoice. When an invoice has
// no explicit schedule a single implicit charge dated today stands in for it.
type Installment struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId int             `gorm:"index;not null" json:"organization_id"`
	InvoiceId      int             `gorm:"index;not null" json:"invoice_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	DueDate        time.Time       `gorm:"index;not null" json:"due_date"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInstallment struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	DueDate string          `json:"due_date" binding:"required"`
}

type NewInvoice struct {
	SupplierId   int                `json:"supplier_id" binding:"required"`
	Folio        string             `json:"folio" binding:"required"`
	TotalAmount  decimal.Decimal    `json:"total_amount" binding:"required"`
	IssueDate    string             `json:"issue_date" binding:"required"`
	InvoiceType  InvoiceType        `json:"invoice_type"`
	AccountMode  AccountDisplayMode `json:"account_mode"`
	Notes        string             `json:"notes"`
	Installments []NewInstallment   `json:"installments"`
}

type InvoiceFilter struct {
	SupplierId  int
	Status      InvoiceStatus
	InvoiceType InvoiceType
	Folio       string
	DateFrom    *time.Time
	DateTo      *time.Time
	Limit       int
}

const invoiceDefaultLimit = 50

// ValidateSchedule checks that the installment amounts add up to the invoice
// total within the 0.01 tolerance. A difference of exactly 0.01 is accepted.
func ValidateSchedule(totalAmount decimal.Decimal, installments []NewInstallment) error {
	if len(installments) == 0 {
		return nil
	}
	sum := decimal.Zero
	for _, inst := range installments {
		if inst.Amount.LessThanOrEqual(decimal.Zero) {
			return utils.ErrorInvalidAmount
		}
		sum = sum.Add(inst.Amount)
	}
	if sum.Sub(totalAmount).Abs().GreaterThan(ScheduleTolerance) {
		return fmt.Errorf("la suma de las cuotas %s no coincide con el total de la factura %s: %w",
			sum.StringFixed(2), totalAmount.StringFixed(2), utils.ErrorScheduleMismatch)
	}
	return nil
}

func GetInvoices(ctx context.Context, filter *InvoiceFilter) ([]Invoice, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Preload("Supplier").Preload("Installments").
		Where("invoices.organization_id = ?", organizationId)

	limit := invoiceDefaultLimit
	if filter != nil {
		if filter.SupplierId > 0 {
			query = query.Where("supplier_id = ?", filter.SupplierId)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.InvoiceType != "" {
			query = query.Where("invoice_type = ?", filter.InvoiceType)
		}
		if filter.Folio != "" {
			query = query.Where("folio LIKE ?", "%"+filter.Folio+"%")
		}
		if filter.DateFrom != nil {
			query = query.Where("issue_date >= ?", utils.DateOnly(*filter.DateFrom))
		}
		if filter.DateTo != nil {
			query = query.Where("issue_date <= ?", utils.DateOnly(*filter.DateTo))
		}
		if filter.Limit > 0 && filter.Limit < invoiceDefaultLimit {
			limit = filter.Limit
		}
	}

	var invoices []Invoice
	if err := query.Order("issue_date DESC, id DESC").Limit(limit).Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func GetInvoiceById(ctx context.Context, invoiceId int) (*Invoice, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	var invoice Invoice
	if err := db.WithContext(ctx).Preload("Supplier").Preload("Installments").
		Where("organization_id = ? AND id = ?", organizationId, invoiceId).
		First(&invoice).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &invoice, nil
}

// PaidSumForInvoice totals the PAYMENT movements of an invoice inside tx.
// excludeMovementId skips one movement, used when editing a payment in place.
func PaidSumForInvoice(ctx context.Context, tx *gorm.DB, organizationId int, invoiceId int, excludeMovementId int) (decimal.Decimal, error) {
	query := tx.WithContext(ctx).Model(&Movement{}).
		Where("organization_id = ? AND invoice_id = ? AND origin = ?", organizationId, invoiceId, OriginPayment)
	if excludeMovementId > 0 {
		query = query.Where("id <> ?", excludeMovementId)
	}
	var paid decimal.NullDecimal
	if err := query.Select("COALESCE(SUM(amount), 0)").Scan(&paid).Error; err != nil {
		return decimal.Zero, err
	}
	if !paid.Valid {
		return decimal.Zero, nil
	}
	return paid.Decimal, nil
}

// RefreshInvoiceStatus recomputes and persists the derived status inside tx.
func RefreshInvoiceStatus(ctx context.Context, tx *gorm.DB, invoice *Invoice) error {
	paid, err := PaidSumForInvoice(ctx, tx, invoice.OrganizationId, invoice.ID, 0)
	if err != nil {
		return err
	}
	status := InvoiceStatusFor(invoice.TotalAmount, paid)
	if status == invoice.Status {
		return nil
	}
	invoice.Status = status
	return tx.WithContext(ctx).Model(&Invoice{}).Where("id = ?", invoice.ID).
		Update("status", status).Error
}

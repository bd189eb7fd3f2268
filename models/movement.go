package models

import (
	"context"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
)

// Movement is the single append-style ledger row every money event becomes.
// Amounts are always positive; Origin decides which side of the balance the
// row lands on.
type Movement struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId int             `gorm:"index;not null" json:"organization_id"`
	Origin         MovementOrigin  `gorm:"type:varchar(20);not null;index" json:"origin"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date           time.Time       `gorm:"index;not null" json:"date"`
	Description    string          `gorm:"size:255" json:"description"`
	InvoiceId      *int            `gorm:"index;default:null" json:"invoice_id"`
	Invoice        *Invoice        `gorm:"foreignKey:InvoiceId" json:"invoice,omitempty"`
	InstallmentId  *int            `gorm:"index;default:null" json:"installment_id"`
	SaleId         *int            `gorm:"index;default:null" json:"sale_id"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type MovementFilter struct {
	Origin   MovementOrigin
	DateFrom *time.Time
	DateTo   *time.Time
	BranchId int
	Folio    string
	Limit    int
}

const movementDefaultLimit = 20

// GetMovements lists the newest movements first. The limit defaults to 20
// and is never allowed past it; range reports have their own query path.
func GetMovements(ctx context.Context, filter *MovementFilter) ([]Movement, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Movement{}).
		Where("movements.organization_id = ?", organizationId)

	limit := movementDefaultLimit
	if filter != nil {
		if filter.Origin != "" {
			if !filter.Origin.Valid() {
				return nil, utils.ErrorRecordNotFound
			}
			query = query.Where("movements.origin = ?", filter.Origin)
		}
		if filter.DateFrom != nil {
			query = query.Where("movements.date >= ?", utils.DateOnly(*filter.DateFrom))
		}
		if filter.DateTo != nil {
			query = query.Where("movements.date <= ?", utils.DateOnly(*filter.DateTo))
		}
		if filter.BranchId > 0 {
			query = query.Joins("JOIN sales ON sales.id = movements.sale_id").
				Where("sales.branch_id = ?", filter.BranchId)
		}
		if filter.Folio != "" {
			query = query.Joins("JOIN invoices ON invoices.id = movements.invoice_id").
				Where("invoices.folio LIKE ?", "%"+filter.Folio+"%")
		}
		if filter.Limit > 0 && filter.Limit < movementDefaultLimit {
			limit = filter.Limit
		}
	}

	var movements []Movement
	if err := query.Order("movements.date DESC, movements.id DESC").Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func GetMovementById(ctx context.Context, movementId int) (*Movement, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	var movement Movement
	if err := db.WithContext(ctx).Where("organization_id = ? AND id = ?", organizationId, movementId).
		First(&movement).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &movement, nil
}

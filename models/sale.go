package models

import (
	"context"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale records one branch's sales figure for a day. Every sale is paired
// with exactly one INCOME movement that mirrors its amount and date.
type Sale struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId int             `gorm:"index;not null" json:"organization_id"`
	BranchId       int             `gorm:"index;not null" json:"branch_id"`
	Branch         *Branch         `gorm:"foreignKey:BranchId" json:"branch,omitempty"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date           time.Time       `gorm:"index;not null" json:"date"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSale struct {
	BranchId int             `json:"branch_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Date     string          `json:"date" binding:"required"`
}

type SaleFilter struct {
	BranchId int
	DateFrom *time.Time
	DateTo   *time.Time
}

func GetSales(ctx context.Context, filter *SaleFilter) ([]Sale, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Preload("Branch").
		Where("organization_id = ?", organizationId)
	if filter != nil {
		if filter.BranchId > 0 {
			query = query.Where("branch_id = ?", filter.BranchId)
		}
		if filter.DateFrom != nil {
			query = query.Where("date >= ?", utils.DateOnly(*filter.DateFrom))
		}
		if filter.DateTo != nil {
			query = query.Where("date <= ?", utils.DateOnly(*filter.DateTo))
		}
	}

	var sales []Sale
	if err := query.Order("date DESC, id DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func GetSaleById(ctx context.Context, tx *gorm.DB, organizationId int, saleId int) (*Sale, error) {
	var sale Sale
	if err := tx.WithContext(ctx).Preload("Branch").
		Where("organization_id = ? AND id = ?", organizationId, saleId).
		First(&sale).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &sale, nil
}

package models

import (
	"context"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Branch is a point of sale whose daily sales feed the income side of the
// ledger. ProjectedDailySales is used by the day detail for future dates.
type Branch struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	OrganizationId      int             `gorm:"index;not null" json:"organization_id"`
	Name                string          `gorm:"size:200;not null" json:"name"`
	ProjectedDailySales decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"projected_daily_sales"`
	IsActive            *bool           `gorm:"default:true" json:"is_active"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBranch struct {
	Name                string          `json:"name" binding:"required"`
	ProjectedDailySales decimal.Decimal `json:"projected_daily_sales"`
	IsActive            *bool           `json:"is_active"`
}

func CreateBranch(ctx context.Context, input *NewBranch) (*Branch, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}

	branch := Branch{
		OrganizationId:      organizationId,
		Name:                input.Name,
		ProjectedDailySales: input.ProjectedDailySales,
		IsActive:            isActive,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func UpdateBranch(ctx context.Context, branchId int, input *NewBranch) (*Branch, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	var branch Branch
	if err := db.WithContext(ctx).Where("organization_id = ? AND id = ?", organizationId, branchId).
		First(&branch).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	branch.Name = input.Name
	branch.ProjectedDailySales = input.ProjectedDailySales
	if input.IsActive != nil {
		branch.IsActive = input.IsActive
	}
	if err := db.WithContext(ctx).Save(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func GetBranches(ctx context.Context, activeOnly bool) ([]Branch, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Where("organization_id = ?", organizationId)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var branches []Branch
	if err := query.Order("name").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

func GetBranchById(ctx context.Context, tx *gorm.DB, organizationId int, branchId int) (*Branch, error) {
	var branch Branch
	if err := tx.WithContext(ctx).Where("organization_id = ? AND id = ?", organizationId, branchId).
		First(&branch).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &branch, nil
}

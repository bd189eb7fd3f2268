package models

import (
	"context"
	"errors"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/utils"
	"gorm.io/gorm"
)

// MasterAccount is the shared bank account some suppliers are paid through.
// Each organization has at most one.
type MasterAccount struct {
	ID             int       `gorm:"primary_key" json:"id"`
	OrganizationId int       `gorm:"uniqueIndex;not null" json:"organization_id"`
	Name           string    `gorm:"size:200;not null" json:"name"`
	BankAccount    string    `gorm:"type:text" json:"bank_account"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMasterAccount struct {
	Name        string `json:"name" binding:"required"`
	BankAccount string `json:"bank_account"`
}

// UpsertMasterAccount creates the organization's master account or updates
// the existing one in place.
func UpsertMasterAccount(ctx context.Context, input *NewMasterAccount) (*MasterAccount, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	var account MasterAccount
	err := db.WithContext(ctx).Where("organization_id = ?", organizationId).First(&account).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		account = MasterAccount{
			OrganizationId: organizationId,
			Name:           input.Name,
			BankAccount:    input.BankAccount,
		}
		if err := db.WithContext(ctx).Create(&account).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		account.Name = input.Name
		account.BankAccount = input.BankAccount
		if err := db.WithContext(ctx).Save(&account).Error; err != nil {
			return nil, err
		}
	}
	invalidateSupplierCache(organizationId)
	return &account, nil
}

func GetMasterAccount(ctx context.Context) (*MasterAccount, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	var account MasterAccount
	if err := db.WithContext(ctx).Where("organization_id = ?", organizationId).
		First(&account).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &account, nil
}

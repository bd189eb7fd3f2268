package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/utils"
	"gorm.io/gorm"
)

type Supplier struct {
	ID              int            `gorm:"primary_key" json:"id"`
	OrganizationId  int            `gorm:"index;not null" json:"organization_id"`
	Name            string         `gorm:"size:200;not null" json:"name"`
	BankAccount     string         `gorm:"type:text" json:"bank_account"`
	Phone           string         `gorm:"size:20" json:"phone"`
	Email           string         `gorm:"size:255" json:"email"`
	MasterAccountId *int           `gorm:"default:null" json:"master_account_id"`
	MasterAccount   *MasterAccount `gorm:"foreignKey:MasterAccountId" json:"master_account,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewSupplier struct {
	Name            string `json:"name" binding:"required"`
	BankAccount     string `json:"bank_account"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	MasterAccountId *int   `json:"master_account_id"`
}

type SupplierFilter struct {
	Name  string
	Phone string
	Email string
}

func supplierCacheKey(organizationId int) string {
	return fmt.Sprintf("suppliers:%d", organizationId)
}

// invalidateSupplierCache runs synchronously on every supplier mutation so
// callers see their own writes immediately; the TTL is only a backstop.
func invalidateSupplierCache(organizationId int) {
	logger := config.GetLogger()
	if err := config.RemoveRedisKey(supplierCacheKey(organizationId)); err != nil {
		config.LogError(logger, "supplier.go", "invalidateSupplierCache", "RemoveRedisKey", organizationId, err)
	}
}

func (input *NewSupplier) validate(ctx context.Context, organizationId int, exceptId int) error {
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return fmt.Errorf("invalid phone number: %w", err)
		}
		if err := utils.ValidateUnique[Supplier](ctx, organizationId, "phone", input.Phone, exceptId); err != nil {
			return err
		}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return fmt.Errorf("invalid email")
	}
	if input.MasterAccountId != nil && *input.MasterAccountId > 0 {
		if err := utils.ValidateResourceId[MasterAccount](ctx, organizationId, *input.MasterAccountId); err != nil {
			return utils.ErrorRecordNotFound
		}
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	if err := input.validate(ctx, organizationId, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()
	supplier := Supplier{
		OrganizationId:  organizationId,
		Name:            input.Name,
		BankAccount:     input.BankAccount,
		Phone:           input.Phone,
		Email:           input.Email,
		MasterAccountId: input.MasterAccountId,
	}
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	invalidateSupplierCache(organizationId)
	return &supplier, nil
}

func UpdateSupplier(ctx context.Context, supplierId int, input *NewSupplier) (*Supplier, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	var supplier Supplier
	if err := db.WithContext(ctx).Where("organization_id = ? AND id = ?", organizationId, supplierId).
		First(&supplier).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := input.validate(ctx, organizationId, supplierId); err != nil {
		return nil, err
	}

	supplier.Name = input.Name
	supplier.BankAccount = input.BankAccount
	supplier.Phone = input.Phone
	supplier.Email = input.Email
	supplier.MasterAccountId = input.MasterAccountId

	if err := db.WithContext(ctx).Save(&supplier).Error; err != nil {
		return nil, err
	}
	invalidateSupplierCache(organizationId)
	return &supplier, nil
}

func DeleteSupplier(ctx context.Context, supplierId int) error {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	result := db.WithContext(ctx).Where("organization_id = ? AND id = ?", organizationId, supplierId).
		Delete(&Supplier{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	invalidateSupplierCache(organizationId)
	return nil
}

// GetSuppliers is the single read path for the per-organization supplier
// list. The full list is cached in redis (24h TTL) and filtered in memory;
// all mutations invalidate the key in the same call.
func GetSuppliers(ctx context.Context, filter *SupplierFilter) ([]Supplier, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}

	var suppliers []Supplier
	cacheKey := supplierCacheKey(organizationId)
	exists, err := config.GetRedisObject(cacheKey, &suppliers)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		if err := db.WithContext(ctx).Where("organization_id = ?", organizationId).
			Order("name").Find(&suppliers).Error; err != nil {
			return nil, err
		}
		if err := config.SetRedisObject(cacheKey, &suppliers, 24*time.Hour); err != nil {
			return nil, err
		}
	}

	if filter == nil {
		return suppliers, nil
	}

	result := make([]Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if filter.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Phone != "" && !strings.Contains(strings.ToLower(s.Phone), strings.ToLower(filter.Phone)) {
			continue
		}
		if filter.Email != "" && !strings.Contains(strings.ToLower(s.Email), strings.ToLower(filter.Email)) {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func GetSupplierById(ctx context.Context, tx *gorm.DB, organizationId int, supplierId int) (*Supplier, error) {
	var supplier Supplier
	if err := tx.WithContext(ctx).Preload("MasterAccount").
		Where("organization_id = ? AND id = ?", organizationId, supplierId).
		First(&supplier).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &supplier, nil
}

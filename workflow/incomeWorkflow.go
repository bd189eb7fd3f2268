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

// CreateSaleIncome records a branch sale together with its mirrored INCOME
// movement. Sale and movement always move in lockstep.
func CreateSaleIncome(ctx context.Context, input *models.NewSale) (*models.Sale, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrorInvalidAmount
	}
	date, err := utils.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var sale models.Sale
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		branch, err := models.GetBranchById(ctx, tx, organizationId, input.BranchId)
		if err != nil {
			return err
		}

		sale = models.Sale{
			OrganizationId: organizationId,
			BranchId:       branch.ID,
			Amount:         input.Amount,
			Date:           date,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		movement := models.Movement{
			OrganizationId: organizationId,
			Origin:         models.OriginIncome,
			Amount:         sale.Amount,
			Date:           sale.Date,
			Description: fmt.Sprintf("Ingreso $%s de sucursal %s",
				sale.Amount.StringFixed(2), branch.Name),
			SaleId: &sale.ID,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// EditSaleIncome updates a sale and rewrites its paired INCOME movement.
func EditSaleIncome(ctx context.Context, saleId int, input *models.NewSale) (*models.Sale, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrorInvalidAmount
	}
	date, err := utils.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var sale *models.Sale
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err = models.GetSaleById(ctx, tx, organizationId, saleId)
		if err != nil {
			return err
		}
		branch, err := models.GetBranchById(ctx, tx, organizationId, input.BranchId)
		if err != nil {
			return err
		}

		sale.BranchId = branch.ID
		sale.Amount = input.Amount
		sale.Date = date
		if err := tx.Save(sale).Error; err != nil {
			return err
		}

		var movement models.Movement
		if err := tx.Where("organization_id = ? AND sale_id = ?", organizationId, sale.ID).
			First(&movement).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		movement.Amount = sale.Amount
		movement.Date = sale.Date
		movement.Description = fmt.Sprintf("Actualiza Ingreso $%s de sucursal %s",
			sale.Amount.StringFixed(2), branch.Name)
		return tx.Save(&movement).Error
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// DeleteSaleIncome removes a sale and every movement paired with it.
func DeleteSaleIncome(ctx context.Context, saleId int) error {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return utils.ErrorTenantMismatch
	}

	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale, err := models.GetSaleById(ctx, tx, organizationId, saleId)
		if err != nil {
			return err
		}
		if err := tx.Where("sale_id = ?", sale.ID).
			Delete(&models.Movement{}).Error; err != nil {
			return err
		}
		return tx.Delete(sale).Error
	})
}

package workflow

import (
	"context"
	"fmt"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
)

type NewAdjustment struct {
	Amount      decimal.Decimal       `json:"amount" binding:"required"`
	Kind        models.AdjustmentKind `json:"kind" binding:"required"`
	Description string                `json:"description"`
	Date        string                `json:"date"`
}

// CreateAdjustment posts a manual ADJUSTMENT movement to correct the global
// balance outside the invoice and sale flows.
func CreateAdjustment(ctx context.Context, input *NewAdjustment) (*models.Movement, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId <= 0 {
		return nil, utils.ErrorTenantMismatch
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, utils.ErrorInvalidAmount
	}

	var origin models.MovementOrigin
	var descPrefix string
	switch input.Kind {
	case models.AdjustmentAdd:
		origin = models.OriginAdjustmentPlus
		descPrefix = "Ajuste (Suma)"
	case models.AdjustmentSubtract:
		origin = models.OriginAdjustmentMinus
		descPrefix = "Ajuste (Resta)"
	default:
		return nil, utils.ErrorInvalidAmount
	}

	description := input.Description
	if description == "" {
		description = fmt.Sprintf("%s: $%s", descPrefix, input.Amount.StringFixed(2))
	}

	date := utils.Today()
	if input.Date != "" {
		parsed, err := utils.ParseDate(input.Date)
		if err != nil {
			return nil, err
		}
		date = parsed
	}

	movement := models.Movement{
		OrganizationId: organizationId,
		Origin:         origin,
		Amount:         input.Amount,
		Date:           date,
		Description:    description,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

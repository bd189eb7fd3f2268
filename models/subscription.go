package models

import (
	"context"
	"errors"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const TrialDays = 14

var DefaultMonthlyPrice = decimal.RequireFromString("199.00")

// Subscription gates access to the product per organization.
// Lifecycle: TRIAL -> ACTIVE (monthly charge) -> CANCELLED/EXPIRED.
// NextChargeAt always points at the end of the last paid period; the daily
// batch only charges once NextChargeAt <= now. Gateway (Stripe) interaction
// lives outside this repo; only the state synchronized from it is stored.
type Subscription struct {
	ID             int                `gorm:"primary_key" json:"id"`
	OrganizationId int                `gorm:"uniqueIndex;not null" json:"organization_id"`
	Status         SubscriptionStatus `gorm:"size:20;not null;default:TRIAL" json:"status"`
	StartedAt      time.Time          `gorm:"not null" json:"started_at"`
	TrialEndsAt    *time.Time         `gorm:"default:null" json:"trial_ends_at"`
	NextChargeAt   *time.Time         `gorm:"default:null" json:"next_charge_at"`
	MonthlyPrice   decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"monthly_price"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// BillingCharge is the immutable record of every charge attempt.
type BillingCharge struct {
	ID             int                 `gorm:"primary_key" json:"id"`
	SubscriptionId int                 `gorm:"index;not null" json:"subscription_id"`
	Date           time.Time           `gorm:"not null" json:"date"`
	Amount         decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"amount"`
	Result         BillingChargeResult `gorm:"size:20;not null" json:"result"`
	Description    string              `gorm:"size:255" json:"description"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Subscription) InTrial(now time.Time) bool {
	return s.Status == SubscriptionStatusTrial && s.TrialEndsAt != nil && !now.After(*s.TrialEndsAt)
}

// Active reports whether the organization may use the product.
func (s *Subscription) Active(now time.Time) bool {
	switch s.Status {
	case SubscriptionStatusTrial:
		return s.InTrial(now)
	case SubscriptionStatusActive:
		return true
	case SubscriptionStatusCancelled:
		// remains usable until the end of the last paid period
		return s.NextChargeAt != nil && now.Before(*s.NextChargeAt)
	default:
		return false
	}
}

func CreateTrialSubscription(tx *gorm.DB, organizationId int) (*Subscription, error) {
	var existing Subscription
	err := tx.Where("organization_id = ?", organizationId).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	trialEnd := now.AddDate(0, 0, TrialDays)
	sub := Subscription{
		OrganizationId: organizationId,
		Status:         SubscriptionStatusTrial,
		StartedAt:      now,
		TrialEndsAt:    &trialEnd,
		MonthlyPrice:   DefaultMonthlyPrice,
	}
	if err := tx.Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func GetSubscription(ctx context.Context, organizationId int) (*Subscription, error) {
	db := config.GetDB()
	var sub Subscription
	if err := db.WithContext(ctx).Where("organization_id = ?", organizationId).First(&sub).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &sub, nil
}

// CancelSubscription marks the subscription cancelled. No refund; the
// organization keeps access until NextChargeAt.
func CancelSubscription(ctx context.Context, organizationId int) error {
	isAdmin, _ := utils.GetIsOrgAdminFromContext(ctx)
	if !isAdmin {
		return errors.New("only the organization admin can cancel the subscription")
	}

	db := config.GetDB()
	sub, err := GetSubscription(ctx, organizationId)
	if err != nil {
		return err
	}
	if sub.Status == SubscriptionStatusCancelled {
		return nil
	}
	return db.WithContext(ctx).Model(&Subscription{}).Where("id = ?", sub.ID).
		Update("status", SubscriptionStatusCancelled).Error
}

// ExpireDueSubscriptions is the daily batch step: any TRIAL past its trial
// end or ACTIVE past its paid period is marked EXPIRED, with a FAILED charge
// row recorded for audit. It returns how many subscriptions were expired.
func ExpireDueSubscriptions(ctx context.Context, now time.Time) (int, error) {
	db := config.GetDB()
	expired := 0

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []Subscription
		if err := tx.
			Where("(status = ? AND trial_ends_at <= ?) OR (status = ? AND next_charge_at <= ?)",
				SubscriptionStatusTrial, now, SubscriptionStatusActive, now).
			Find(&due).Error; err != nil {
			return err
		}

		for _, sub := range due {
			if err := tx.Model(&Subscription{}).Where("id = ?", sub.ID).
				Update("status", SubscriptionStatusExpired).Error; err != nil {
				return err
			}
			charge := BillingCharge{
				SubscriptionId: sub.ID,
				Date:           now,
				Amount:         sub.MonthlyPrice,
				Result:         BillingChargeFailed,
				Description:    "Suscripción vencida: sin período pagado vigente",
			}
			if err := tx.Create(&charge).Error; err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	return expired, err
}

package models_test

import (
	"testing"

	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestInvoiceStatusFor(t *testing.T) {
	cases := []struct {
		name  string
		total string
		paid  string
		want  models.InvoiceStatus
	}{
		{"nothing paid", "100.00", "0", models.InvoiceStatusPending},
		{"negative paid sum", "100.00", "-5.00", models.InvoiceStatusPending},
		{"one cent paid", "100.00", "0.01", models.InvoiceStatusPartial},
		{"one cent short", "100.00", "99.99", models.InvoiceStatusPartial},
		{"exactly paid", "100.00", "100.00", models.InvoiceStatusPaid},
		{"paid beyond total", "100.00", "100.01", models.InvoiceStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, models.InvoiceStatusFor(d(tc.total), d(tc.paid)))
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	t.Run("empty schedule passes through", func(t *testing.T) {
		require.NoError(t, models.ValidateSchedule(d("100.00"), nil))
	})

	t.Run("exact sum", func(t *testing.T) {
		require.NoError(t, models.ValidateSchedule(d("100.00"), []models.NewInstallment{
			{Amount: d("60.00"), DueDate: "2026-03-01"},
			{Amount: d("40.00"), DueDate: "2026-03-15"},
		}))
	})

	t.Run("difference of exactly the tolerance is accepted", func(t *testing.T) {
		require.NoError(t, models.ValidateSchedule(d("100.00"), []models.NewInstallment{
			{Amount: d("100.01"), DueDate: "2026-03-01"},
		}))
	})

	t.Run("difference beyond the tolerance is rejected", func(t *testing.T) {
		err := models.ValidateSchedule(d("100.00"), []models.NewInstallment{
			{Amount: d("100.02"), DueDate: "2026-03-01"},
		})
		require.ErrorIs(t, err, utils.ErrorScheduleMismatch)
		// The message names both sums so the caller can see the gap.
		assert.Contains(t, err.Error(), "100.02")
		assert.Contains(t, err.Error(), "100.00")
	})

	t.Run("non-positive installment amount is rejected", func(t *testing.T) {
		err := models.ValidateSchedule(d("100.00"), []models.NewInstallment{
			{Amount: d("100.00"), DueDate: "2026-03-01"},
			{Amount: d("0"), DueDate: "2026-03-15"},
		})
		require.ErrorIs(t, err, utils.ErrorInvalidAmount)
	})
}

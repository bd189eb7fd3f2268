package models

import "github.com/shopspring/decimal"

type MovementOrigin string

const (
	OriginCharge          MovementOrigin = "CHARGE"
	OriginIncome          MovementOrigin = "INCOME"
	OriginPayment         MovementOrigin = "PAYMENT"
	OriginAdjustmentPlus  MovementOrigin = "ADJUSTMENT_PLUS"
	OriginAdjustmentMinus MovementOrigin = "ADJUSTMENT_MINUS"
)

func (o MovementOrigin) Valid() bool {
	switch o {
	case OriginCharge, OriginIncome, OriginPayment, OriginAdjustmentPlus, OriginAdjustmentMinus:
		return true
	}
	return false
}

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPartial InvoiceStatus = "PARTIAL"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// InvoiceStatusFor is the single status transition function. Every write
// path that touches payments (register, edit, delete) derives the invoice
// status through it so creation-side and deletion-side logic cannot drift.
func InvoiceStatusFor(totalAmount, paidSum decimal.Decimal) InvoiceStatus {
	switch {
	case paidSum.LessThanOrEqual(decimal.Zero):
		return InvoiceStatusPending
	case paidSum.GreaterThanOrEqual(totalAmount):
		return InvoiceStatusPaid
	default:
		return InvoiceStatusPartial
	}
}

type InvoiceType string

const (
	InvoiceTypeFactura         InvoiceType = "FACTURA"
	InvoiceTypeRemision        InvoiceType = "REMISION"
	InvoiceTypeGastosGenerales InvoiceType = "GASTOS_GENERALES"
	// Invoices of this type are excluded from the daily cash tabulation
	// totals (they are settled electronically, never in counted cash).
	InvoiceTypeMercadoPago InvoiceType = "MERCADO_PAGO"
)

type AccountDisplayMode string

const (
	AccountDisplaySupplier AccountDisplayMode = "SUPPLIER"
	AccountDisplayMaster   AccountDisplayMode = "MASTER"
)

type AdjustmentKind string

const (
	AdjustmentAdd      AdjustmentKind = "ADD"
	AdjustmentSubtract AdjustmentKind = "SUBTRACT"
)

type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "TRIAL"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
)

type BillingChargeResult string

const (
	BillingChargeSucceeded BillingChargeResult = "SUCCEEDED"
	BillingChargeFailed    BillingChargeResult = "FAILED"
	BillingChargePending   BillingChargeResult = "PENDING"
)

// ScheduleTolerance is the maximum accepted difference between an invoice
// total and the sum of its installment amounts. Differences of exactly this
// value are accepted.
var ScheduleTolerance = decimal.RequireFromString("0.01")

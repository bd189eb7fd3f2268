package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")

	// Domain errors raised by the ledger core. Handlers map these to 4xx
	// responses; the bulk payment processor tallies them per item instead
	// of aborting the batch.
	ErrorTenantMismatch    = errors.New("entity does not belong to your organization")
	ErrorInvalidAmount     = errors.New("amount must be greater than zero")
	ErrorOverpayment       = errors.New("amount exceeds the remaining balance of the invoice")
	ErrorScheduleMismatch  = errors.New("installment amounts do not match the invoice total")
	ErrorImmutableAmount   = errors.New("cannot edit amount of an invoice that has been paid or partially paid")
	ErrorDuplicateFolio    = errors.New("an invoice with that folio already exists in your organization")
	ErrorInvoicePaid       = errors.New("invoice is already paid")
	ErrorProtectedMovement = errors.New("only payments and adjustments can be deleted directly")
)

// IsBusinessError reports whether err belongs to the domain error taxonomy.
// Anything else is treated as an infrastructure fault and aborts the
// enclosing transaction.
func IsBusinessError(err error) bool {
	for _, be := range []error{
		ErrorRecordNotFound,
		ErrorTenantMismatch,
		ErrorInvalidAmount,
		ErrorOverpayment,
		ErrorScheduleMismatch,
		ErrorImmutableAmount,
		ErrorDuplicateFolio,
		ErrorInvoicePaid,
		ErrorProtectedMovement,
	} {
		if errors.Is(err, be) {
			return true
		}
	}
	return false
}

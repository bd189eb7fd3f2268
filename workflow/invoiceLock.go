package workflow

import (
	"fmt"

	"gorm.io/gorm"
)

// AcquireInvoicePostingLock serializes payment posting per invoice across
// instances using MySQL advisory locks. GET_LOCK is connection-scoped, so
// this must run on the same *gorm.DB that carries the posting transaction.
// Other dialects (sqlite in tests) skip the lock.
func AcquireInvoicePostingLock(tx *gorm.DB, organizationId int, invoiceId int) error {
	if tx.Dialector.Name() != "mysql" {
		return nil
	}
	lockName := fmt.Sprintf("invoice:%d:%d", organizationId, invoiceId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire posting lock for invoice_id=%d", invoiceId)
	}
	return nil
}

func ReleaseInvoicePostingLock(tx *gorm.DB, organizationId int, invoiceId int) {
	if tx.Dialector.Name() != "mysql" {
		return
	}
	lockName := fmt.Sprintf("invoice:%d:%d", organizationId, invoiceId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

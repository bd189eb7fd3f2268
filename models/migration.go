package models

import "gorm.io/gorm"

// Migrate keeps the schema in sync at startup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Organization{},
		&User{},
		&Subscription{},
		&BillingCharge{},
		&MasterAccount{},
		&Supplier{},
		&Branch{},
		&Invoice{},
		&Installment{},
		&Sale{},
		&Movement{},
	)
}

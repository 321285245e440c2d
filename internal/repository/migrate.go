package repository

import "gorm.io/gorm"

// AutoMigrate creates the tables this service owns. Bookings, users,
// beauticians and services belong to the marketplace schema and are
// migrated elsewhere.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&offerModel{},
		&preferencesModel{},
		&whatsappMessageModel{},
	)
}

package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const bookingOverlapConstraint = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
			EXCLUDE USING gist (property_id WITH =, daterange(start_date, end_date, '[]') WITH &&)
			WHERE (status <> 'Cancelled');
	END IF;
END $$;`

func Migrate(db *gorm.DB, log logrus.FieldLogger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	// The row lock taken during booking creation is the primary guard; the
	// constraint is skipped when btree_gist cannot be installed.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		log.WithError(err).Warn("btree_gist unavailable, bookings_no_overlap not installed")
		return nil
	}
	if err := db.Exec(bookingOverlapConstraint).Error; err != nil {
		return fmt.Errorf("install bookings_no_overlap: %w", err)
	}
	return nil
}

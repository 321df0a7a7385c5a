package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Invite{},
		&InviteRedemption{},
		&VipCode{},
		&VipRedemption{},
		&WebhookEvent{},
		&RateLimitRecord{},
		&Booking{},
	); err != nil {
		return err
	}

	// At most one pending invite per email, enforced by the database so
	// concurrent creates cannot slip past the service-level pre-check.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_invites_email_pending " +
			"ON invites ((lower(email))) WHERE status = 'pending'",
	).Error
}

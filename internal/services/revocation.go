package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevocationService maintains the logout token blacklist. Revoked tokens stay
// listed until their natural expiry; a background job purges expired rows.
type RevocationService struct {
	db        *gorm.DB
	cron      *cron.Cron
	cleanupID cron.EntryID
}

func NewRevocationService(db *gorm.DB) *RevocationService {
	return &RevocationService{db: db}
}

// Revoke blacklists a token until expiresAt. Revoking the same token twice is
// a no-op.
func (s *RevocationService) Revoke(token string, expiresAt time.Time) error {
	record := models.RevokedToken{Token: token, ExpiresAt: expiresAt}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoNothing: true,
	}).Create(&record).Error
}

// IsRevoked reports whether a token is on the blacklist.
func (s *RevocationService) IsRevoked(token string) (bool, error) {
	var count int64
	err := s.db.Model(&models.RevokedToken{}).Where("token = ?", token).Count(&count).Error
	return count > 0, err
}

// PurgeExpired removes blacklist entries whose expiry has passed and returns
// the number of rows deleted.
func (s *RevocationService) PurgeExpired() (int64, error) {
	res := s.db.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{})
	return res.RowsAffected, res.Error
}

// StartPurgeScheduler purges expired blacklist rows every hour until
// StopPurgeScheduler is called.
func (s *RevocationService) StartPurgeScheduler() {
	if s.cron != nil {
		return
	}
	s.cron = cron.New()
	id, err := s.cron.AddFunc("@hourly", func() {
		n, err := s.PurgeExpired()
		if err != nil {
			logger.Error().Err(err).Msg("revoked token purge failed")
			return
		}
		if n > 0 {
			logger.Info().Int64("purged", n).Msg("expired revoked tokens removed")
		}
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to schedule revoked token purge")
		return
	}
	s.cleanupID = id
	s.cron.Start()
}

// StopPurgeScheduler stops the purge job.
func (s *RevocationService) StopPurgeScheduler() {
	if s.cron != nil {
		s.cron.Stop()
		s.cron.Remove(s.cleanupID)
		s.cron = nil
	}
}

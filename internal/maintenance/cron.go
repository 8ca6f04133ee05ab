// Package maintenance runs the scheduled housekeeping: location-log
// retention and stale vehicle-assignment cleanup. Everything else in the
// system is soft-deleted; the location log is the one table that is
// physically purged.
package maintenance

import (
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"route_dispatch/internal/models"
)

type Service struct {
	db            *gorm.DB
	cron          *cron.Cron
	retentionDays int
}

// NewService builds the cron service. retentionDays comes from
// LOCATION_RETENTION_DAYS; zero disables the purge.
func NewService(db *gorm.DB, retentionDays string) *Service {
	days, err := strconv.Atoi(retentionDays)
	if err != nil || days < 0 {
		days = 0
	}
	return &Service{db: db, cron: cron.New(), retentionDays: days}
}

func (s *Service) Start() {
	s.cron.AddFunc("0 3 * * *", s.purgeOldLocations)
	s.cron.AddFunc("30 3 * * *", s.deactivateOrphanAssignments)
	s.cron.Start()
	logrus.WithField("retention_days", s.retentionDays).Info("maintenance: cron started")
}

func (s *Service) Stop() {
	s.cron.Stop()
}

func (s *Service) purgeOldLocations() {
	if s.retentionDays == 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	res := s.db.Unscoped().
		Where("timestamp < ?", cutoff).
		Delete(&models.DriverLocation{})
	if res.Error != nil {
		logrus.WithError(res.Error).Error("maintenance: location purge failed")
		return
	}
	logrus.WithFields(logrus.Fields{"purged": res.RowsAffected, "cutoff": cutoff}).
		Info("maintenance: purged old driver locations")
}

// deactivateOrphanAssignments flips is_active off for assignments whose
// route has been soft-deleted, so vehicle availability views stay honest.
func (s *Service) deactivateOrphanAssignments() {
	res := s.db.Model(&models.VehicleAssignment{}).
		Where("is_active = ? AND is_deleted = ?", true, false).
		Where("route_id IN (?)", s.db.Model(&models.Route{}).Select("id").Where("is_deleted = ?", true)).
		Update("is_active", false)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("maintenance: assignment cleanup failed")
		return
	}
	if res.RowsAffected > 0 {
		logrus.WithField("deactivated", res.RowsAffected).
			Info("maintenance: deactivated assignments on deleted routes")
	}
}

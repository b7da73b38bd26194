package services

import (
	"sort"
	"time"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

// Follow-up thresholds in whole days. Fixed business constants agreed
// with the sales operation, not configurable.
const (
	followUpThresholdDays = 15
	urgentThresholdDays   = 30
	warningFloorDays      = 7
)

// sentinelLastContact is the instant assumed for records with no logs
// and no usable last-contact timestamp, far enough in the past that
// such records always rank as maximally overdue.
var sentinelLastContact = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// FollowUpService computes which doctors are overdue for contact. It
// holds no state beyond an injectable clock; the ranking is a pure
// function of the input list and the current time.
type FollowUpService struct {
	now func() time.Time
}

// NewFollowUpService creates a new follow-up service using wall-clock time
func NewFollowUpService() *FollowUpService {
	return &FollowUpService{now: time.Now}
}

// NewFollowUpServiceWithClock creates a follow-up service with a fixed
// clock, used by tests and report generation for a stable "today"
func NewFollowUpServiceWithClock(now func() time.Time) *FollowUpService {
	return &FollowUpService{now: now}
}

// lastInteractionAt resolves the true last interaction instant for a
// doctor. Logs are not guaranteed to be stored newest-first, so this
// scans for the maximum timestamp rather than trusting position.
// Unparsable timestamps fall back to the sentinel.
func lastInteractionAt(doctor *entities.Doctor) time.Time {
	if len(doctor.VisitLogs) > 0 {
		latest := sentinelLastContact
		for _, log := range doctor.VisitLogs {
			if ts, err := time.Parse(time.RFC3339, log.Timestamp); err == nil && ts.After(latest) {
				latest = ts
			}
		}
		return latest
	}

	if doctor.LastContactAt != "" {
		if ts, err := time.Parse(time.RFC3339, doctor.LastContactAt); err == nil {
			return ts
		}
	}

	return sentinelLastContact
}

// DaysInactive returns the whole-day difference between now and the
// doctor's last interaction, truncating partial days.
func (s *FollowUpService) DaysInactive(doctor *entities.Doctor) int {
	elapsed := s.now().Sub(lastInteractionAt(doctor))
	return int(elapsed.Hours() / 24)
}

// Overdue produces the ranked follow-up list: every doctor inactive for
// 15 days or more, most overdue first. Ties keep input order. Nil
// entries in the input are skipped.
func (s *FollowUpService) Overdue(doctors []*entities.Doctor) []*entities.FollowUpAlert {
	alerts := make([]*entities.FollowUpAlert, 0)
	for _, doctor := range doctors {
		if doctor == nil {
			continue
		}
		days := s.DaysInactive(doctor)
		if days >= followUpThresholdDays {
			alerts = append(alerts, &entities.FollowUpAlert{Doctor: doctor, DaysInactive: days})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysInactive > alerts[j].DaysInactive
	})

	return alerts
}

// Classify returns the coarse urgency used for card coloring. Urgent
// outranks warning; warning only applies to doctors still in the
// presented stage.
func (s *FollowUpService) Classify(doctor *entities.Doctor) entities.Urgency {
	if doctor == nil {
		return entities.UrgencyNone
	}

	days := s.DaysInactive(doctor)
	if days > urgentThresholdDays {
		return entities.UrgencyUrgent
	}
	if doctor.Status == entities.DoctorStatusPresented && days > warningFloorDays && days <= urgentThresholdDays {
		return entities.UrgencyWarning
	}
	return entities.UrgencyNone
}

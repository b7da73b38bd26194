package services

import (
	"strings"
	"time"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

// protocolSendMarker flags a visit log note as a protocol send. The
// marker is embedded in the note text when a protocol goes out, so
// stats can be recomputed from the log history alone.
const protocolSendMarker = "📄"

// MonthlyStats summarizes a rep's activity for the current calendar month
type MonthlyStats struct {
	ProtocolSends  int     `json:"protocol_sends"`
	InPersonVisits int     `json:"in_person_visits"`
	TopProtocol    string  `json:"top_protocol"`
	EngagementRate float64 `json:"engagement_rate"`
	TotalDoctors   int     `json:"total_doctors"`
}

// StatsService derives activity figures from the doctor roster. Like
// the follow-up ranking it is a pure function of the input and clock.
type StatsService struct {
	now func() time.Time
}

// NewStatsService creates a new stats service using wall-clock time
func NewStatsService() *StatsService {
	return &StatsService{now: time.Now}
}

// NewStatsServiceWithClock creates a stats service with a fixed clock
func NewStatsServiceWithClock(now func() time.Time) *StatsService {
	return &StatsService{now: now}
}

// protocolNameFromNote extracts the protocol title from a send note of
// the form "📄 Protocolo enviado: {title} via {channel}". Returns ""
// when the note does not follow the pattern.
func protocolNameFromNote(note string) string {
	_, after, found := strings.Cut(note, ": ")
	if !found {
		return ""
	}
	if idx := strings.Index(after, " via"); idx >= 0 {
		after = after[:idx]
	}
	return strings.TrimSpace(after)
}

// Monthly computes the current-month activity summary. Logs with
// malformed timestamps are ignored rather than counted into the wrong
// month.
func (s *StatsService) Monthly(doctors []*entities.Doctor) MonthlyStats {
	now := s.now()
	year, month := now.Year(), now.Month()

	stats := MonthlyStats{}
	protocolCounts := make(map[string]int)
	engaged := 0

	for _, doctor := range doctors {
		if doctor == nil {
			continue
		}
		stats.TotalDoctors++

		sentThisMonth := false
		for _, log := range doctor.VisitLogs {
			ts, err := time.Parse(time.RFC3339, log.Timestamp)
			if err != nil || ts.Year() != year || ts.Month() != month {
				continue
			}

			if strings.Contains(log.Note, protocolSendMarker) {
				stats.ProtocolSends++
				sentThisMonth = true
				if name := protocolNameFromNote(log.Note); name != "" {
					protocolCounts[name]++
				}
			}
			if log.Kind == entities.VisitLogKindInPerson {
				stats.InPersonVisits++
			}
		}
		if sentThisMonth {
			engaged++
		}
	}

	top, best := "", 0
	for name, count := range protocolCounts {
		if count > best || (count == best && (top == "" || name < top)) {
			top, best = name, count
		}
	}
	stats.TopProtocol = top

	if stats.TotalDoctors > 0 {
		stats.EngagementRate = float64(engaged) / float64(stats.TotalDoctors)
	}

	return stats
}

package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/farmacliniq/fieldcrm/backend/internal/application/services"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

func TestStatsService_Monthly(t *testing.T) {
	service := services.NewStatsServiceWithClock(fixedClock)

	t.Run("counts sends, visits and the most sent protocol", func(t *testing.T) {
		// Arrange
		doctors := []*entities.Doctor{
			{ID: "d1", VisitLogs: []entities.VisitLog{
				{Timestamp: daysAgo(2), Note: "📄 Protocolo enviado: Capilar Avançado via WhatsApp"},
				{Timestamp: daysAgo(5), Note: "visita de rotina", Kind: entities.VisitLogKindInPerson},
			}},
			{ID: "d2", VisitLogs: []entities.VisitLog{
				{Timestamp: daysAgo(1), Note: "📄 Protocolo enviado: Capilar Avançado via Email"},
			}},
			{ID: "d3", VisitLogs: []entities.VisitLog{
				{Timestamp: daysAgo(3), Note: "📄 Protocolo enviado: Skin Care via WhatsApp"},
			}},
			{ID: "d4"},
		}

		// Act
		stats := service.Monthly(doctors)

		// Assert
		assert.Equal(t, 3, stats.ProtocolSends)
		assert.Equal(t, 1, stats.InPersonVisits)
		assert.Equal(t, "Capilar Avançado", stats.TopProtocol)
		assert.Equal(t, 4, stats.TotalDoctors)
		assert.InDelta(t, 0.75, stats.EngagementRate, 0.001)
	})

	t.Run("ignores activity outside the current month", func(t *testing.T) {
		doctors := []*entities.Doctor{
			{ID: "d1", VisitLogs: []entities.VisitLog{
				{Timestamp: daysAgo(60), Note: "📄 Protocolo enviado: Antigo via WhatsApp"},
				{Timestamp: daysAgo(45), Note: "visita", Kind: entities.VisitLogKindInPerson},
			}},
		}

		stats := service.Monthly(doctors)

		assert.Zero(t, stats.ProtocolSends)
		assert.Zero(t, stats.InPersonVisits)
		assert.Empty(t, stats.TopProtocol)
		assert.Zero(t, stats.EngagementRate)
	})

	t.Run("malformed log timestamps are skipped", func(t *testing.T) {
		doctors := []*entities.Doctor{
			{ID: "d1", VisitLogs: []entities.VisitLog{
				{Timestamp: "garbage", Note: "📄 Protocolo enviado: X via WhatsApp"},
			}},
		}

		stats := service.Monthly(doctors)

		assert.Zero(t, stats.ProtocolSends)
		assert.Equal(t, 1, stats.TotalDoctors)
	})

	t.Run("empty roster yields a zero rate, not a division error", func(t *testing.T) {
		stats := service.Monthly(nil)

		assert.Zero(t, stats.TotalDoctors)
		assert.Zero(t, stats.EngagementRate)
	})
}

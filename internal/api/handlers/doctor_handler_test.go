package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmacliniq/fieldcrm/backend/internal/api/handlers"
	"github.com/farmacliniq/fieldcrm/backend/internal/api/middleware"
	"github.com/farmacliniq/fieldcrm/backend/internal/application/services"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

// fakeDoctorCache is an in-memory DoctorCache for handler tests
type fakeDoctorCache struct {
	mu   sync.Mutex
	data map[string][]*entities.Doctor
}

func newFakeDoctorCache() *fakeDoctorCache {
	return &fakeDoctorCache{data: make(map[string][]*entities.Doctor)}
}

func (c *fakeDoctorCache) Get(ctx context.Context, uid string) ([]*entities.Doctor, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	doctors, ok := c.data[uid]
	return doctors, ok, nil
}

func (c *fakeDoctorCache) Put(ctx context.Context, uid string, doctors []*entities.Doctor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[uid] = doctors
	return nil
}

func (c *fakeDoctorCache) Delete(ctx context.Context, uid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, uid)
	return nil
}

func newDoctorHandler(cache *fakeDoctorCache) *handlers.DoctorHandler {
	roster := services.NewRosterService(cache, nil, nil)
	followUp := services.NewFollowUpService()
	stats := services.NewStatsService()
	return handlers.NewDoctorHandler(roster, followUp, stats, nil)
}

func authedRequest(method, target string, body *bytes.Buffer) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	return req.WithContext(middleware.WithUID(req.Context(), "user-1"))
}

func TestDoctorHandler_ListDoctors(t *testing.T) {
	t.Run("returns the cached roster", func(t *testing.T) {
		// Arrange
		cache := newFakeDoctorCache()
		cache.data["user-1"] = []*entities.Doctor{{ID: "d1", Name: "Dr. One"}}
		handler := newDoctorHandler(cache)

		req := authedRequest(http.MethodGet, "/api/doctors", nil)
		rec := httptest.NewRecorder()

		// Act
		handler.ListDoctors(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Doctors []*entities.Doctor `json:"doctors"`
			Count   int                `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, "Dr. One", resp.Doctors[0].Name)
	})

	t.Run("rejects requests without an identity", func(t *testing.T) {
		handler := newDoctorHandler(newFakeDoctorCache())

		req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
		rec := httptest.NewRecorder()

		handler.ListDoctors(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDoctorHandler_CreateDoctor(t *testing.T) {
	t.Run("creates a doctor from the payload", func(t *testing.T) {
		cache := newFakeDoctorCache()
		handler := newDoctorHandler(cache)

		body := bytes.NewBufferString(`{"name":"Dr. Nova","specialty":"Cardiologia"}`)
		req := authedRequest(http.MethodPost, "/api/doctors", body)
		rec := httptest.NewRecorder()

		handler.CreateDoctor(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var created entities.Doctor
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, entities.DoctorStatusProspecting, created.Status)
		assert.Len(t, cache.data["user-1"], 1)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		handler := newDoctorHandler(newFakeDoctorCache())

		body := bytes.NewBufferString(`{"specialty":"Cardiologia"}`)
		req := authedRequest(http.MethodPost, "/api/doctors", body)
		rec := httptest.NewRecorder()

		handler.CreateDoctor(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDoctorHandler_GetFollowUpAlerts(t *testing.T) {
	t.Run("returns only overdue doctors, most overdue first", func(t *testing.T) {
		cache := newFakeDoctorCache()
		now := time.Now().UTC()
		cache.data["user-1"] = []*entities.Doctor{
			{ID: "fresh", LastContactAt: now.AddDate(0, 0, -2).Format(time.RFC3339)},
			{ID: "stale", LastContactAt: now.AddDate(0, 0, -20).Format(time.RFC3339)},
			{ID: "very-stale", LastContactAt: now.AddDate(0, 0, -50).Format(time.RFC3339)},
		}
		handler := newDoctorHandler(cache)

		req := authedRequest(http.MethodGet, "/api/doctors/alerts", nil)
		rec := httptest.NewRecorder()

		handler.GetFollowUpAlerts(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Alerts []*entities.FollowUpAlert `json:"alerts"`
			Count  int                       `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 2, resp.Count)
		assert.Equal(t, "very-stale", resp.Alerts[0].Doctor.ID)
		assert.Equal(t, "stale", resp.Alerts[1].Doctor.ID)
	})
}

func TestDoctorHandler_AddVisitLog(t *testing.T) {
	t.Run("records the log and bumps last contact", func(t *testing.T) {
		cache := newFakeDoctorCache()
		cache.data["user-1"] = []*entities.Doctor{{ID: "d1", Name: "Dr. One"}}
		handler := newDoctorHandler(cache)

		body := bytes.NewBufferString(`{"note":"visita de rotina","kind":"in_person"}`)
		req := authedRequest(http.MethodPost, "/api/doctors/d1/logs", body)
		req.SetPathValue("id", "d1")
		rec := httptest.NewRecorder()

		handler.AddVisitLog(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var updated entities.Doctor
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		require.Len(t, updated.VisitLogs, 1)
		assert.Equal(t, updated.VisitLogs[0].Timestamp, updated.LastContactAt)
	})

	t.Run("unknown doctor yields 404", func(t *testing.T) {
		cache := newFakeDoctorCache()
		cache.data["user-1"] = []*entities.Doctor{}
		handler := newDoctorHandler(cache)

		body := bytes.NewBufferString(`{"note":"x"}`)
		req := authedRequest(http.MethodPost, "/api/doctors/missing/logs", body)
		req.SetPathValue("id", "missing")
		rec := httptest.NewRecorder()

		handler.AddVisitLog(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

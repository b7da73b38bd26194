package routes

import (
	"net/http"

	"github.com/farmacliniq/fieldcrm/backend/internal/api/handlers"
	"github.com/farmacliniq/fieldcrm/backend/internal/api/middleware"
	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	doctorHandler   *handlers.DoctorHandler
	syncHandler     *handlers.SyncHandler
	protocolHandler *handlers.ProtocolHandler
	visitHandler    *handlers.VisitHandler
	importHandler   *handlers.ImportHandler

	jwtSecret string
	metrics   *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	doctorHandler *handlers.DoctorHandler,
	syncHandler *handlers.SyncHandler,
	protocolHandler *handlers.ProtocolHandler,
	visitHandler *handlers.VisitHandler,
	importHandler *handlers.ImportHandler,
	jwtSecret string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		doctorHandler:   doctorHandler,
		syncHandler:     syncHandler,
		protocolHandler: protocolHandler,
		visitHandler:    visitHandler,
		importHandler:   importHandler,

		jwtSecret: jwtSecret,
		metrics:   metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint, outside authentication
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	api := http.NewServeMux()

	// Doctor roster endpoints
	api.HandleFunc("GET /api/doctors", r.doctorHandler.ListDoctors)
	api.HandleFunc("POST /api/doctors", r.doctorHandler.CreateDoctor)
	api.HandleFunc("GET /api/doctors/alerts", r.doctorHandler.GetFollowUpAlerts)
	api.HandleFunc("GET /api/doctors/stats", r.doctorHandler.GetMonthlyStats)
	api.HandleFunc("GET /api/doctors/search", r.doctorHandler.SearchDoctors)
	api.HandleFunc("PATCH /api/doctors/{id}", r.doctorHandler.UpdateDoctor)
	api.HandleFunc("DELETE /api/doctors/{id}", r.doctorHandler.DeleteDoctor)
	api.HandleFunc("POST /api/doctors/{id}/logs", r.doctorHandler.AddVisitLog)

	// Session and synchronization endpoints
	api.HandleFunc("POST /api/session/open", r.syncHandler.OpenSession)
	api.HandleFunc("POST /api/session/close", r.syncHandler.CloseSession)
	api.HandleFunc("POST /api/sync/push", r.syncHandler.Push)
	api.HandleFunc("POST /api/sync/pull", r.syncHandler.Pull)

	// Protocol library endpoints
	api.HandleFunc("GET /api/protocols", r.protocolHandler.ListProtocols)
	api.HandleFunc("POST /api/protocols", r.protocolHandler.CreateProtocol)
	api.HandleFunc("DELETE /api/protocols/{id}", r.protocolHandler.DeleteProtocol)

	// Visit scheduling endpoint
	api.HandleFunc("POST /api/visits", r.visitHandler.ScheduleVisit)

	// Spreadsheet import endpoint
	api.HandleFunc("POST /api/import/spreadsheet", r.importHandler.ImportSpreadsheet)

	// Everything under /api/ requires a resolved user identity
	r.mux.Handle("/api/", middleware.AuthMiddleware(r.jwtSecret)(api))

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so error responses also carry its headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}

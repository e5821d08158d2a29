package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	"github.com/BruksfildServices01/petcare-scheduler/internal/config"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/handlers"
	"github.com/BruksfildServices01/petcare-scheduler/internal/metrics"
	"github.com/BruksfildServices01/petcare-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/appointment"
	ucAvailability "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/availability"
	ucBooking "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/booking"
)

// Deps are the singletons built by main, whichever store backs them.
type Deps struct {
	Config   *config.Config
	Log      zerolog.Logger
	Calendar *schedule.Calendar

	Repo     domain.Repository
	Slots    availability.Store
	Prices   domain.PriceResolver
	AuditLog audit.Reader

	Audit    *audit.Dispatcher
	Metrics  *metrics.BookingMetrics
	Gatherer prometheus.Gatherer

	// Optional. Without it Idempotency-Key is ignored.
	Redis *redis.Client
	// Optional readiness probe, e.g. a DB ping.
	Ready func(ctx context.Context) error
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// USE CASES: AVAILABILITY
	// ======================================================
	getSlotsUC := ucAvailability.NewGetSlots(d.Slots)
	generateUC := ucAvailability.NewBulkGenerate(d.Slots, d.Repo, d.Calendar, d.Audit, d.Metrics)
	toggleAnchorUC := ucAvailability.NewToggleAnchor(d.Slots, d.Calendar, d.Audit, d.Metrics)
	setDayUC := ucAvailability.NewSetDayAvailability(d.Slots, d.Calendar, d.Audit, d.Metrics)
	purgeUC := ucAvailability.NewPurgeAvailability(d.Slots, d.Calendar, d.Audit)

	// ======================================================
	// USE CASES: BOOKING
	// ======================================================
	planner := ucBooking.NewPlanner(d.Repo, d.Prices, d.Calendar)
	gridUC := ucBooking.NewGetSlotGrid(planner)
	checkUC := ucBooking.NewCheckConflicts(planner, d.Metrics)
	createUC := ucBooking.NewCreateBooking(d.Repo, d.Prices, d.Calendar, d.Audit, d.Metrics)

	// ======================================================
	// USE CASES: APPOINTMENTS
	// ======================================================
	confirmUC := ucAppointment.NewConfirmAppointment(d.Repo, d.Calendar, d.Audit)
	completeUC := ucAppointment.NewCompleteAppointment(d.Repo, d.Calendar, d.Audit)
	cancelUC := ucAppointment.NewCancelAppointment(d.Repo, d.Calendar, d.Audit)
	listUC := ucAppointment.NewListAppointments(d.Repo)

	// ======================================================
	// HANDLERS
	// ======================================================
	catalogHandler := handlers.NewCatalogHandler(d.Repo)
	availabilityHandler := handlers.NewAvailabilityHandler(getSlotsUC, generateUC, toggleAnchorUC, setDayUC, purgeUC)
	bookingHandler := handlers.NewBookingHandler(d.Repo, gridUC, checkUC, createUC)
	appointmentHandler := handlers.NewAppointmentHandler(confirmUC, completeUC, cancelUC, listUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.AuditLog)

	idempotency := middleware.Idempotency(d.Redis, middleware.IdempotencyConfig{}, d.Log)

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		if d.Ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ready(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.Config.JWTSecret))
	{
		api.GET("/services", catalogHandler.Services)
		api.GET("/staff", catalogHandler.Staff)
		api.GET("/availability/:staffID", availabilityHandler.Get)

		// ------------------------------
		// BOOKINGS
		// ------------------------------
		bookings := api.Group("/bookings")
		{
			bookings.GET("/slots", bookingHandler.Slots)
			bookings.POST("/check", bookingHandler.Check)
			bookings.POST("", idempotency, bookingHandler.Create)
		}

		// ------------------------------
		// APPOINTMENTS
		// ------------------------------
		staffOnly := middleware.RequireRole(audit.RoleAdmin, audit.RoleStaff)
		api.GET("/staff/:staffID/appointments", staffOnly, appointmentHandler.ListByDate)
		api.GET("/staff/:staffID/appointments/month", staffOnly, appointmentHandler.ListByMonth)

		api.PATCH("/appointments/:id/confirm", idempotency, appointmentHandler.Confirm)
		api.PATCH("/appointments/:id/complete", idempotency, appointmentHandler.Complete)
		api.PATCH("/appointments/:id/cancel", idempotency, appointmentHandler.Cancel)

		// ------------------------------
		// ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(staffOnly)
		{
			admin.POST("/availability/generate", availabilityHandler.Generate)
			admin.PATCH("/availability/anchor", availabilityHandler.Anchor)
			admin.PATCH("/availability/day", availabilityHandler.Day)
			admin.DELETE("/availability", middleware.RequireRole(audit.RoleAdmin), availabilityHandler.Purge)

			admin.GET("/audit-logs", middleware.RequireRole(audit.RoleAdmin), auditLogsHandler.List)
		}
	}
}

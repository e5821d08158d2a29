package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	"github.com/BruksfildServices01/petcare-scheduler/internal/config"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/petcare-scheduler/internal/metrics"
	"github.com/BruksfildServices01/petcare-scheduler/internal/middleware"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

const (
	secret = "routes-secret"
	monday = "2025-06-02"
)

type api struct {
	t      *testing.T
	engine *gin.Engine
	store  *memory.Store
	audit  *audit.Dispatcher

	sam   models.StaffMember
	tina  models.StaffMember
	bath  models.Service
	groom models.Service
	rex   models.Pet
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	// Monday 08:00 in São Paulo.
	now := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)
	cal := schedule.NewCalendar(schedule.DefaultConfig()).WithClock(func() time.Time { return now })

	dispatcher := audit.NewDispatcher(audit.New(store), zerolog.Nop())
	t.Cleanup(dispatcher.Close)

	mr := miniredis.RunT(t)
	registry := prometheus.NewRegistry()

	a := &api{t: t, engine: gin.New(), store: store, audit: dispatcher}
	RegisterRoutes(a.engine, Deps{
		Config:   &config.Config{JWTSecret: secret},
		Log:      zerolog.Nop(),
		Calendar: cal,
		Repo:     store,
		Slots:    store,
		Prices:   store,
		AuditLog: store,
		Audit:    dispatcher,
		Metrics:  metrics.NewBookingMetrics(registry),
		Gatherer: registry,
		Redis:    redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	})

	a.bath = store.AddService(models.Service{Name: "Bath", BasePrice: 50, DefaultDuration: 60, RequiresBath: true, Active: true})
	a.groom = store.AddService(models.Service{Name: "Haircut", BasePrice: 40, DefaultDuration: 30, RequiresGrooming: true, Active: true})
	a.sam = store.AddStaff(models.StaffMember{Name: "Sam", CanBathe: true, CanGroom: true, Active: true})
	a.tina = store.AddStaff(models.StaffMember{Name: "Tina", CanGroom: true, Active: true})

	owner := store.AddClient(models.Client{UserID: "user-ana", Name: "Ana"})
	a.rex = store.AddPet(models.Pet{ClientID: owner.ID, Name: "Rex", Breed: "poodle", Size: "small"})
	store.AddClient(models.Client{UserID: "user-bob", Name: "Bob"})

	return a
}

func (a *api) token(sub, role string) string {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(a.t, err)
	return tok
}

func (a *api) call(method, path, role string, body any, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		sub := map[string]string{"admin": "admin-1", "staff": "staff-1", "client": "user-ana", "other": "user-bob"}[role]
		if role == "other" {
			role = audit.RoleClient
		}
		req.Header.Set("Authorization", "Bearer "+a.token(sub, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *api) booking(staffID, serviceID uint, at string) map[string]any {
	return map[string]any{
		"client_user_id":     "user-ana",
		"pet_id":             a.rex.ID,
		"primary_service_id": serviceID,
		"primary_staff_id":   staffID,
		"date":               monday,
		"time":               at,
	}
}

// ======================================================
// OPS
// ======================================================

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)

	w := a.call(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	a.call(http.MethodPost, "/api/bookings/check", "client", map[string]any{
		"date": monday, "start_time": "10:00", "primary_service_id": a.bath.ID, "primary_staff_id": a.sam.ID,
	})

	w = a.call(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "petcare_booking_conflict_checks_total")
}

func TestAPIRequiresToken(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusUnauthorized, a.call(http.MethodGet, "/api/services", "", nil).Code)
}

// ======================================================
// CATALOG
// ======================================================

func TestStaffFilteredByRole(t *testing.T) {
	a := newAPI(t)

	w := a.call(http.MethodGet, "/api/staff?role=bathing", "client", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Data  []models.StaffMember `json:"data"`
		Total int                  `json:"total"`
	}](t, w)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Sam", list.Data[0].Name)

	w = a.call(http.MethodGet, "/api/staff?role=surgery", "client", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ======================================================
// AVAILABILITY
// ======================================================

func TestAvailabilityAdministration(t *testing.T) {
	a := newAPI(t)

	gen := map[string]any{"staff_id": a.sam.ID, "from": monday, "to": monday}
	assert.Equal(t, http.StatusForbidden, a.call(http.MethodPost, "/api/admin/availability/generate", "client", gen).Code)

	w := a.call(http.MethodPost, "/api/admin/availability/generate", "staff", gen)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"days":1,"created":48}`, w.Body.String())

	w = a.call(http.MethodPatch, "/api/admin/availability/anchor", "staff", map[string]any{
		"staff_id": a.sam.ID, "date": monday, "time": "14:00:00", "available": false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"updated":3}`, w.Body.String())

	// Nothing generated for Tina yet.
	w = a.call(http.MethodPatch, "/api/admin/availability/anchor", "staff", map[string]any{
		"staff_id": a.tina.ID, "date": monday, "time": "14:00:00", "available": false,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no_slots_affected")

	w = a.call(http.MethodGet, "/api/availability/"+itoa(a.sam.ID)+"?date="+monday, "client", nil)
	require.Equal(t, http.StatusOK, w.Code)
	slots := decode[struct {
		Data []models.AvailabilitySlot `json:"data"`
	}](t, w)
	blocked := 0
	for _, s := range slots.Data {
		if !s.Available {
			blocked++
		}
	}
	assert.Equal(t, 3, blocked)

	w = a.call(http.MethodGet, "/api/bookings/slots?date="+monday+"&primary_service_id="+itoa(a.groom.ID)+"&primary_staff_id="+itoa(a.sam.ID), "client", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	grid := decode[struct {
		Data []struct {
			Time  string `json:"time"`
			State string `json:"state"`
		} `json:"data"`
	}](t, w)
	states := map[string]string{}
	for _, s := range grid.Data {
		states[s.Time] = s.State
	}
	assert.Equal(t, "unavailable", states["14:00:00"])
	assert.Equal(t, "available", states["14:30:00"])

	// Purge is admin only and refuses the future.
	assert.Equal(t, http.StatusForbidden, a.call(http.MethodDelete, "/api/admin/availability?before="+monday, "staff", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodDelete, "/api/admin/availability?before=2030-01-01", "admin", nil).Code)
	w = a.call(http.MethodDelete, "/api/admin/availability?before="+monday, "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":0}`, w.Body.String())
}

// ======================================================
// BOOKING
// ======================================================

func TestBookingLifecycle(t *testing.T) {
	a := newAPI(t)

	// Clients book for themselves, whatever client they name.
	body := a.booking(a.sam.ID, a.bath.ID, "10:00")
	body["client_id"] = 999
	body["client_user_id"] = "user-bob"
	w := a.call(http.MethodPost, "/api/bookings", "client", body, middleware.HeaderIdempotencyKey, "book-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Appointment](t, w)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "Ana", created.Client.Name)

	// A retried request gets the same answer without a second booking.
	w = a.call(http.MethodPost, "/api/bookings", "client", body, middleware.HeaderIdempotencyKey, "book-1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get(middleware.HeaderReplay))
	assert.Equal(t, created.ID, decode[models.Appointment](t, w).ID)

	// Overlapping request from staff is a conflict with a reason.
	w = a.call(http.MethodPost, "/api/bookings", "staff", a.booking(a.sam.ID, a.groom.ID, "10:30"))
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "occupied")
	assert.Contains(t, w.Body.String(), "Sam")

	// The pre-check agrees.
	w = a.call(http.MethodPost, "/api/bookings/check", "client", map[string]any{
		"date": monday, "start_time": "10:30", "primary_service_id": a.groom.ID, "primary_staff_id": a.sam.ID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":false`)

	// Only admins may override.
	over := a.booking(a.sam.ID, a.groom.ID, "10:30")
	over["overrides"] = map[string]bool{"override_conflicts": true}
	assert.Equal(t, http.StatusForbidden, a.call(http.MethodPost, "/api/bookings", "staff", over).Code)
	assert.Equal(t, http.StatusCreated, a.call(http.MethodPost, "/api/bookings", "admin", over).Code)

	id := itoa(created.ID)

	// Confirm and complete belong to staff; another client cannot touch it.
	assert.Equal(t, http.StatusForbidden, a.call(http.MethodPatch, "/api/appointments/"+id+"/confirm", "client", nil).Code)
	assert.Equal(t, http.StatusNotFound, a.call(http.MethodPatch, "/api/appointments/"+id+"/cancel", "other", nil).Code)

	w = a.call(http.MethodPatch, "/api/appointments/"+id+"/confirm", "staff", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", decode[models.Appointment](t, w).Status)

	w = a.call(http.MethodGet, "/api/staff/"+itoa(a.sam.ID)+"/appointments?date="+monday, "staff", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)
	assert.Equal(t, http.StatusForbidden, a.call(http.MethodGet, "/api/staff/"+itoa(a.sam.ID)+"/appointments?date="+monday, "client", nil).Code)

	w = a.call(http.MethodGet, "/api/staff/"+itoa(a.sam.ID)+"/appointments/month?year=2025&month=6", "staff", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"month":6`)
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodGet, "/api/staff/"+itoa(a.sam.ID)+"/appointments/month?year=2025&month=13", "staff", nil).Code)

	w = a.call(http.MethodPatch, "/api/appointments/"+id+"/cancel", "client", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode[models.Appointment](t, w).Status)

	// Audit trail is admin only.
	assert.Equal(t, http.StatusForbidden, a.call(http.MethodGet, "/api/admin/audit-logs", "staff", nil).Code)
	a.audit.Close()
	w = a.call(http.MethodGet, "/api/admin/audit-logs?action=appointment_override", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestBookingValidationErrors(t *testing.T) {
	a := newAPI(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		status int
		code   string
	}{
		{"malformed date", func(b map[string]any) { b["date"] = "02/06/2025" }, http.StatusBadRequest, "invalid_request"},
		{"closed sunday", func(b map[string]any) { b["date"] = "2025-06-08" }, http.StatusBadRequest, ""},
		{"unknown service", func(b map[string]any) { b["primary_service_id"] = 999 }, http.StatusNotFound, "service_not_found"},
		{"staff cannot bathe", func(b map[string]any) { b["primary_staff_id"] = a.tina.ID }, http.StatusBadRequest, "staff_not_capable"},
		{"off grid", func(b map[string]any) { b["time"] = "10:05" }, http.StatusBadRequest, "invalid_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := a.booking(a.sam.ID, a.bath.ID, "10:00")
			tt.mutate(body)
			w := a.call(http.MethodPost, "/api/bookings", "client", body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Contains(t, w.Body.String(), tt.code)
			}
		})
	}
}

func itoa(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

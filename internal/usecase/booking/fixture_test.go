package booking

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/infra/memory"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

const monday = "2025-06-02"

var (
	admin  = audit.Actor{ID: "admin-1", Role: audit.RoleAdmin}
	staff  = audit.Actor{ID: "staff-1", Role: audit.RoleStaff}
	client = audit.Actor{ID: "user-ana", Role: audit.RoleClient}
)

type fixture struct {
	store    *memory.Store
	calendar *schedule.Calendar
	audit    *audit.Dispatcher

	bath  models.Service // 60 min
	groom models.Service // 30 min
	nails models.Service // 20 min
	vet   models.Service

	sam   models.StaffMember // bathes and grooms
	tina  models.StaffMember // grooms
	owner models.Client
	rex   models.Pet
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	// Monday 2025-06-02, 08:00 in São Paulo.
	now := time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC)
	cal := schedule.NewCalendar(schedule.DefaultConfig()).WithClock(func() time.Time { return now })

	f := &fixture{
		store:    store,
		calendar: cal,
		audit:    audit.NewDispatcher(audit.New(store), zerolog.Nop()),
	}
	t.Cleanup(f.audit.Close)

	f.bath = store.AddService(models.Service{Name: "Bath", ServiceType: models.ServiceTypeGrooming, BasePrice: 50, DefaultDuration: 60, RequiresBath: true, Active: true})
	f.groom = store.AddService(models.Service{Name: "Haircut", ServiceType: models.ServiceTypeGrooming, BasePrice: 40, DefaultDuration: 30, RequiresGrooming: true, Active: true})
	f.nails = store.AddService(models.Service{Name: "Nails", ServiceType: models.ServiceTypeGrooming, BasePrice: 15, DefaultDuration: 20, RequiresGrooming: true, Active: true})
	f.vet = store.AddService(models.Service{Name: "Checkup", ServiceType: models.ServiceTypeVeterinary, BasePrice: 120, DefaultDuration: 30, RequiresVet: true, Active: true})

	f.sam = store.AddStaff(models.StaffMember{Name: "Sam", CanBathe: true, CanGroom: true, Active: true})
	f.tina = store.AddStaff(models.StaffMember{Name: "Tina", CanGroom: true, Active: true})

	f.owner = store.AddClient(models.Client{UserID: client.ID, Name: "Ana"})
	f.rex = store.AddPet(models.Pet{ClientID: f.owner.ID, Name: "Rex", Breed: "poodle", Size: "small"})

	return f
}

func (f *fixture) create() *CreateBooking {
	return NewCreateBooking(f.store, f.store, f.calendar, f.audit, nil)
}

func (f *fixture) planner() *Planner {
	return NewPlanner(f.store, f.store, f.calendar)
}

func (f *fixture) request(staffID, serviceID uint, at string) BookingRequest {
	return BookingRequest{
		ClientID:         f.owner.ID,
		PetID:            f.rex.ID,
		PrimaryServiceID: serviceID,
		PrimaryStaffID:   staffID,
		Date:             monday,
		Time:             at,
	}
}

func (f *fixture) book(t *testing.T, req BookingRequest, actor audit.Actor) *models.Appointment {
	t.Helper()
	ap, err := f.create().Execute(context.Background(), req, actor)
	require.NoError(t, err)
	return ap
}

// block marks the sub-slots of one anchor as not available.
func (f *fixture) block(t *testing.T, staffID uint, date, anchor string) {
	t.Helper()
	subSlots, err := schedule.SubSlotsForAnchor(anchor)
	require.NoError(t, err)

	rows := make([]models.AvailabilitySlot, 0, len(subSlots))
	for _, ts := range subSlots {
		rows = append(rows, models.AvailabilitySlot{StaffID: staffID, Date: date, TimeSlot: ts, Available: true})
	}
	_, err = f.store.InsertMissing(context.Background(), rows)
	require.NoError(t, err)
	n, err := f.store.SetAvailable(context.Background(), staffID, date, subSlots, false)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func (f *fixture) appointments(t *testing.T, staffID uint) []models.Appointment {
	t.Helper()
	aps, err := f.store.ListAppointmentsForPeriod(context.Background(), staffID, monday, "2025-06-03")
	require.NoError(t, err)
	return aps
}

// auditActions flushes the dispatcher and lists the recorded actions.
func (f *fixture) auditActions() []string {
	f.audit.Close()
	var out []string
	for _, e := range f.store.AuditEntries() {
		out = append(out, e.Action)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

var _ domain.Repository = (*memory.Store)(nil)

package appointment

import (
	"context"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// CancelAppointment keeps the row and releases the staff time. Clients may
// cancel their own bookings.
type CancelAppointment struct {
	t transition
}

func NewCancelAppointment(
	repo domain.Repository,
	calendar *schedule.Calendar,
	audit *audit.Dispatcher,
) *CancelAppointment {
	return &CancelAppointment{t: transition{repo: repo, calendar: calendar, audit: audit}}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	actor audit.Actor,
	appointmentID uint,
) (*models.Appointment, error) {
	return uc.t.run(ctx, actor, appointmentID, audit.ActionAppointmentCancelled, domain.Cancel)
}

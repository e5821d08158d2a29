package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

type ConfirmAppointment struct {
	t transition
}

func NewConfirmAppointment(
	repo domain.Repository,
	calendar *schedule.Calendar,
	audit *audit.Dispatcher,
) *ConfirmAppointment {
	return &ConfirmAppointment{t: transition{repo: repo, calendar: calendar, audit: audit}}
}

func (uc *ConfirmAppointment) Execute(
	ctx context.Context,
	actor audit.Actor,
	appointmentID uint,
) (*models.Appointment, error) {

	if !actor.IsStaff() {
		return nil, httperr.ErrValidation("staff_only")
	}

	return uc.t.run(ctx, actor, appointmentID, audit.ActionAppointmentConfirmed,
		func(ap *models.Appointment, _ time.Time) error {
			return domain.Confirm(ap)
		},
	)
}

package appointment

import (
	"context"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

type CompleteAppointment struct {
	t transition
}

func NewCompleteAppointment(
	repo domain.Repository,
	calendar *schedule.Calendar,
	audit *audit.Dispatcher,
) *CompleteAppointment {
	return &CompleteAppointment{t: transition{repo: repo, calendar: calendar, audit: audit}}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	actor audit.Actor,
	appointmentID uint,
) (*models.Appointment, error) {

	if !actor.IsStaff() {
		return nil, httperr.ErrValidation("staff_only")
	}

	return uc.t.run(ctx, actor, appointmentID, audit.ActionAppointmentCompleted, domain.Complete)
}

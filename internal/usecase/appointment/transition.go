package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// transition locks an appointment the actor may see, applies a status
// change and saves it in one transaction.
type transition struct {
	repo     domain.Repository
	calendar *schedule.Calendar
	audit    *audit.Dispatcher
}

func (t *transition) run(
	ctx context.Context,
	actor audit.Actor,
	appointmentID uint,
	action string,
	apply func(ap *models.Appointment, now time.Time) error,
) (*models.Appointment, error) {

	var (
		ap   *models.Appointment
		from string
	)
	err := t.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockAppointment(ctx, appointmentID); err != nil {
			return httperr.ErrPersistence("appointment_lock_failed", err).Arg("appointment_id", appointmentID)
		}

		var err error
		ap, err = tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return httperr.ErrValidation("appointment_not_found").Arg("appointment_id", appointmentID)
			}
			return httperr.ErrPersistence("appointment_read_failed", err).Arg("appointment_id", appointmentID)
		}

		// Clients only ever see their own bookings.
		if !actor.IsStaff() && (ap.Client.UserID == "" || ap.Client.UserID != actor.ID) {
			return httperr.ErrValidation("appointment_not_found").Arg("appointment_id", appointmentID)
		}

		from = ap.Status
		if err := apply(ap, t.calendar.Now()); err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return httperr.ErrPersistence("appointment_update_failed", err).Arg("appointment_id", appointmentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.audit.Dispatch(actor.Event(
		action,
		"appointment",
		&ap.ID,
		map[string]any{"from": from, "to": ap.Status},
	))

	return ap, nil
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/metrics"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo     domain.Repository
	planner  *planner
	calendar *schedule.Calendar
	audit    *audit.Dispatcher
	metrics  *metrics.BookingMetrics
}

func NewCreateBooking(
	repo domain.Repository,
	prices domain.PriceResolver,
	calendar *schedule.Calendar,
	audit *audit.Dispatcher,
	metrics *metrics.BookingMetrics,
) *CreateBooking {
	return &CreateBooking{
		repo:     repo,
		planner:  &planner{repo: repo, prices: prices, calendar: calendar},
		calendar: calendar,
		audit:    audit,
		metrics:  metrics,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute validates the request and commits it in one transaction. Whatever
// a pre-check said, the decision made here under the staff lock is the one
// that counts.
func (uc *CreateBooking) Execute(
	ctx context.Context,
	req BookingRequest,
	actor audit.Actor,
) (ap *models.Appointment, err error) {

	started := time.Now()
	defer func() {
		uc.metrics.ObserveCommit(outcome(err), time.Since(started).Seconds())
	}()

	// --------------------------------------------------
	// 1. Request shape and permissions
	// --------------------------------------------------
	if err := validate.Struct(req); err != nil {
		return nil, httperr.ErrValidation("invalid_request").Wrap(err)
	}
	if req.SecondaryServiceID != nil && *req.SecondaryServiceID == req.PrimaryServiceID {
		return nil, httperr.ErrValidation("invalid_request").Arg("secondary_service_id", *req.SecondaryServiceID)
	}
	if (req.Overrides.Conflicts || req.Overrides.Availability) && !actor.IsAdmin() {
		return nil, httperr.ErrValidation("override_not_allowed")
	}

	// --------------------------------------------------
	// 2. Client and pet
	// --------------------------------------------------
	client, err := uc.client(ctx, req)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. Services, staff, price and window
	// --------------------------------------------------
	pl, err := uc.planner.build(ctx, req.Selection(), req.ExtraFee)
	if err != nil {
		return nil, err
	}
	if pl.pet == nil || pl.pet.ClientID != client.ID {
		return nil, httperr.ErrValidation("pet_not_owned").
			Arg("pet_id", req.PetID).
			Arg("client_id", client.ID)
	}

	start, err := uc.planner.startMinute(pl, req.Time)
	if err != nil {
		return nil, err
	}
	candidate := pl.candidate(start)

	// --------------------------------------------------
	// 4. Authoritative check and insert
	// --------------------------------------------------
	var result conflict.Result
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockStaff(ctx, pl.staffIDs()); err != nil {
			return httperr.ErrPersistence("staff_lock_failed", err).Arg("staff_ids", pl.staffIDs())
		}

		snap, err := snapshot(ctx, tx, pl.staffIDs(), pl.date.String(), uc.calendar.Config().StepMinutes, pl.names)
		if err != nil {
			return err
		}

		result = conflict.Validate(candidate, snap, req.Overrides)
		if !result.OK {
			return httperr.ErrConflict(string(result.State), result.Reason).
				Arg("date", pl.date.String()).
				Arg("time", schedule.FormatMinutes(start))
		}

		ap = uc.appointment(req, actor, client, pl, candidate, result)
		if err := tx.CreateAppointment(ctx, ap); err != nil {
			if httperr.IsExclusionConflict(err) {
				return httperr.ErrConflict(string(conflict.StateOccupied), "another booking took this time").
					Arg("date", pl.date.String()).
					Arg("time", schedule.FormatMinutes(start)).
					Wrap(err)
			}
			return httperr.ErrPersistence("appointment_create_failed", err).
				Arg("date", pl.date.String()).
				Arg("time", schedule.FormatMinutes(start))
		}
		return nil
	})
	if err != nil {
		if httperr.KindOf(err) == httperr.KindConflict {
			uc.audit.Dispatch(actor.Event(
				audit.ActionAppointmentConflict,
				"appointment",
				nil,
				map[string]any{
					"date":   pl.date.String(),
					"time":   schedule.FormatMinutes(start),
					"staff":  pl.staffIDs(),
					"reason": httperr.ReasonOf(err),
				},
			))
		}
		var be *httperr.BusinessError
		if !errors.As(err, &be) {
			err = httperr.ErrPersistence("appointment_create_failed", err)
		}
		return nil, err
	}

	// --------------------------------------------------
	// 5. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(actor.Event(
		audit.ActionAppointmentCreated,
		"appointment",
		&ap.ID,
		map[string]any{"date": ap.Date, "time": ap.Time, "duration": ap.DurationMin},
	))
	if result.Overridden {
		uc.audit.Dispatch(actor.Event(
			audit.ActionAppointmentOverride,
			"appointment",
			&ap.ID,
			map[string]any{
				"state":                 result.State,
				"reason":                result.Reason,
				"override_conflicts":    req.Overrides.Conflicts,
				"override_availability": req.Overrides.Availability,
			},
		))
	}

	return ap, nil
}

func (uc *CreateBooking) client(ctx context.Context, req BookingRequest) (*models.Client, error) {
	if req.ClientID != 0 {
		c, err := uc.repo.GetClient(ctx, req.ClientID)
		if err != nil {
			return nil, notFound(err, "client_not_found", "client_id", req.ClientID)
		}
		return c, nil
	}

	c, err := uc.repo.GetClientByUserID(ctx, req.ClientUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperr.ErrValidation("client_not_found").Arg("client_user_id", req.ClientUserID)
		}
		return nil, httperr.ErrPersistence("client_read_failed", err)
	}
	return c, nil
}

func (uc *CreateBooking) appointment(
	req BookingRequest,
	actor audit.Actor,
	client *models.Client,
	pl *plan,
	c conflict.Candidate,
	result conflict.Result,
) *models.Appointment {

	window := c.Window()
	ap := &models.Appointment{
		ClientID:             client.ID,
		Client:               *client,
		PetID:                pl.pet.ID,
		Pet:                  *pl.pet,
		PrimaryServiceID:     req.PrimaryServiceID,
		SecondaryServiceID:   req.SecondaryServiceID,
		Date:                 pl.date.String(),
		Time:                 schedule.FormatMinutes(window.Start),
		DurationMin:          pl.totals.DurationMin,
		TotalPrice:           pl.totals.Price,
		ExtraFee:             req.ExtraFee,
		Status:               string(domain.InitialStatus(actor.IsStaff())),
		Notes:                strings.TrimSpace(req.Notes),
		OverrideConflicts:    req.Overrides.Conflicts && result.Overridden,
		OverrideAvailability: req.Overrides.Availability && result.Overridden,
		CreatedBy:            actor.ID,
	}

	if result.Overridden {
		note := fmt.Sprintf("[override by %s] %s", actor.ID, result.Reason)
		if ap.Notes == "" {
			ap.Notes = note
		} else {
			ap.Notes += "\n" + note
		}
	}

	for _, a := range c.Assignments {
		ap.Assignments = append(ap.Assignments, models.AppointmentStaffAssignment{
			StaffID:   a.StaffID,
			ServiceID: a.ServiceID,
			Date:      ap.Date,
			StartMin:  window.Start,
			EndMin:    window.End,
			Override:  ap.OverrideConflicts,
			Active:    true,
		})
	}

	return ap
}

func outcome(err error) string {
	if err == nil {
		return "created"
	}
	switch httperr.KindOf(err) {
	case httperr.KindConflict:
		return "conflict"
	case httperr.KindValidation:
		return "rejected"
	default:
		return "error"
	}
}

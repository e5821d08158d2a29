package availability

import (
	"context"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/metrics"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timezone"
)

type ToggleInput struct {
	StaffID   uint
	Date      string
	Available bool
	Actor     audit.Actor
}

// ======================================================
// ANCHOR
// ======================================================

type ToggleAnchor struct {
	store    domain.Store
	calendar *schedule.Calendar
	audit    *audit.Dispatcher
	metrics  *metrics.BookingMetrics
}

func NewToggleAnchor(
	store domain.Store,
	calendar *schedule.Calendar,
	audit *audit.Dispatcher,
	metrics *metrics.BookingMetrics,
) *ToggleAnchor {
	return &ToggleAnchor{store: store, calendar: calendar, audit: audit, metrics: metrics}
}

// Execute flips the sub-slots behind one anchor in a single statement and
// returns how many rows changed. Zero means there was nothing to toggle.
func (uc *ToggleAnchor) Execute(
	ctx context.Context,
	in ToggleInput,
	anchor string,
) (int64, error) {

	if _, err := timezone.ParseDate(in.Date); err != nil {
		return 0, httperr.ErrValidation("invalid_date").Arg("date", in.Date)
	}

	subSlots, err := uc.calendar.SubSlotsOfAnchor(anchor)
	if err != nil {
		return 0, err
	}

	return apply(ctx, uc.store, uc.audit, uc.metrics, "toggle_anchor", in, subSlots)
}

// ======================================================
// WHOLE DAY
// ======================================================

type SetDayAvailability struct {
	store    domain.Store
	calendar *schedule.Calendar
	audit    *audit.Dispatcher
	metrics  *metrics.BookingMetrics
}

func NewSetDayAvailability(
	store domain.Store,
	calendar *schedule.Calendar,
	audit *audit.Dispatcher,
	metrics *metrics.BookingMetrics,
) *SetDayAvailability {
	return &SetDayAvailability{store: store, calendar: calendar, audit: audit, metrics: metrics}
}

// Execute sets every sub-slot of the business day at once. Rows already in
// the target state still count as affected.
func (uc *SetDayAvailability) Execute(
	ctx context.Context,
	in ToggleInput,
) (int64, error) {

	date, err := timezone.ParseDate(in.Date)
	if err != nil {
		return 0, httperr.ErrValidation("invalid_date").Arg("date", in.Date)
	}

	var subSlots []string
	for _, anchor := range uc.calendar.AnchorsFor(date) {
		expanded, err := uc.calendar.SubSlotsOfAnchor(anchor)
		if err != nil {
			return 0, err
		}
		subSlots = append(subSlots, expanded...)
	}
	if len(subSlots) == 0 {
		return 0, nil
	}

	return apply(ctx, uc.store, uc.audit, uc.metrics, "set_day", in, subSlots)
}

func apply(
	ctx context.Context,
	store domain.Store,
	dispatcher *audit.Dispatcher,
	m *metrics.BookingMetrics,
	op string,
	in ToggleInput,
	subSlots []string,
) (int64, error) {

	affected, err := store.SetAvailable(ctx, in.StaffID, in.Date, subSlots, in.Available)
	if err != nil {
		return 0, httperr.ErrPersistence("availability_update_failed", err).
			Arg("staff_id", in.StaffID).
			Arg("date", in.Date).
			Arg("slots", subSlots)
	}

	m.ObserveAvailability(op, affected)
	dispatcher.Dispatch(in.Actor.Event(
		audit.ActionAvailabilityChanged,
		"staff",
		&in.StaffID,
		map[string]any{
			"op":        op,
			"date":      in.Date,
			"slots":     subSlots,
			"available": in.Available,
			"affected":  affected,
		},
	))

	return affected, nil
}

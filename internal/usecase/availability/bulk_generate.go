package availability

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domainAppointment "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/metrics"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timezone"
)

// MaxGenerateDays bounds one generation request.
const MaxGenerateDays = 62

// ======================================================
// INPUT
// ======================================================

type BulkGenerateInput struct {
	StaffID uint
	From    string
	To      string

	// Optional "HH:MM" bounds; empty means business hours.
	StartTime string
	EndTime   string

	// Nil means available.
	DefaultAvailable *bool

	Actor audit.Actor
}

type BulkGenerateResult struct {
	Days    int   `json:"days"`
	Created int64 `json:"created"`
}

// ======================================================
// USE CASE
// ======================================================

type BulkGenerate struct {
	store    domain.Store
	staff    StaffFinder
	calendar *schedule.Calendar
	audit    *audit.Dispatcher
	metrics  *metrics.BookingMetrics
}

func NewBulkGenerate(
	store domain.Store,
	staff StaffFinder,
	calendar *schedule.Calendar,
	audit *audit.Dispatcher,
	metrics *metrics.BookingMetrics,
) *BulkGenerate {
	return &BulkGenerate{
		store:    store,
		staff:    staff,
		calendar: calendar,
		audit:    audit,
		metrics:  metrics,
	}
}

// Execute creates the missing sub-slots for every open day in [From, To].
// Existing rows keep their current state, so running it twice is harmless.
func (uc *BulkGenerate) Execute(
	ctx context.Context,
	in BulkGenerateInput,
) (*BulkGenerateResult, error) {

	from, err := timezone.ParseDate(in.From)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date").Arg("from", in.From)
	}
	to, err := timezone.ParseDate(in.To)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date").Arg("to", in.To)
	}
	if to.Before(from) {
		return nil, httperr.ErrValidation("invalid_date_range")
	}
	if from.AddDays(MaxGenerateDays).Before(to) {
		return nil, httperr.ErrValidation("date_range_too_large").Arg("max_days", MaxGenerateDays)
	}

	fromMin, toMin, err := parseTimeRange(uc.calendar, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}

	if _, err := uc.staff.GetStaff(ctx, in.StaffID); err != nil {
		if errors.Is(err, domainAppointment.ErrNotFound) {
			return nil, httperr.ErrValidation("staff_not_found").Arg("staff_id", in.StaffID)
		}
		return nil, httperr.ErrPersistence("staff_read_failed", err).Arg("staff_id", in.StaffID)
	}

	available := true
	if in.DefaultAvailable != nil {
		available = *in.DefaultAvailable
	}

	var rows []models.AvailabilitySlot
	days := 0
	for d := from; !to.Before(d); d = d.AddDays(1) {
		if !uc.calendar.IsBookableDate(d) {
			continue
		}
		days++

		lo, hi := fromMin, toMin
		if lo < uc.calendar.DayStart() {
			lo = uc.calendar.DayStart()
		}
		if hi == 0 || hi > uc.calendar.DayEnd(d) {
			hi = uc.calendar.DayEnd(d)
		}
		if hi <= lo {
			continue
		}
		for _, ts := range uc.calendar.SubSlotsFor(d, lo, hi) {
			rows = append(rows, models.AvailabilitySlot{
				StaffID:   in.StaffID,
				Date:      d.String(),
				TimeSlot:  ts,
				Available: available,
			})
		}
	}

	created, err := uc.store.InsertMissing(ctx, rows)
	if err != nil {
		return nil, httperr.ErrPersistence("availability_generate_failed", err).
			Arg("staff_id", in.StaffID).
			Arg("from", in.From).
			Arg("to", in.To)
	}

	uc.metrics.ObserveAvailability("generate", created)
	uc.audit.Dispatch(in.Actor.Event(
		audit.ActionAvailabilityChanged,
		"staff",
		&in.StaffID,
		map[string]any{"op": "generate", "from": in.From, "to": in.To, "created": created},
	))

	return &BulkGenerateResult{Days: days, Created: created}, nil
}

// parseTimeRange reads the optional bounds. Both must sit on the sub-slot
// grid so every generated row belongs to an anchor.
func parseTimeRange(cal *schedule.Calendar, start, end string) (int, int, error) {
	var fromMin, toMin int
	var err error
	if start != "" {
		if fromMin, err = schedule.ParseMinutes(start); err != nil {
			return 0, 0, err
		}
		if !cal.OnGrid(fromMin) {
			return 0, 0, httperr.ErrValidation("invalid_time_range").Arg("start_time", start)
		}
	}
	if end != "" {
		if toMin, err = schedule.ParseMinutes(end); err != nil {
			return 0, 0, err
		}
		if !cal.OnGrid(toMin) {
			return 0, 0, httperr.ErrValidation("invalid_time_range").Arg("end_time", end)
		}
	}
	if start != "" && end != "" && toMin <= fromMin {
		return 0, 0, httperr.ErrValidation("invalid_time_range")
	}
	return fromMin, toMin, nil
}

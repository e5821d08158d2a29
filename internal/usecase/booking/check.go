package booking

import (
	"context"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/petcare-scheduler/internal/metrics"
)

type CheckInput struct {
	Selection
	Overrides conflict.Overrides `json:"overrides"`
}

type CheckOutput struct {
	conflict.Result
	Totals domain.Totals `json:"totals"`
}

// CheckConflicts is the advisory pre-check behind the conflict prompt. It
// takes no locks; CreateBooking checks again when committing.
type CheckConflicts struct {
	planner *planner
	metrics *metrics.BookingMetrics
}

func NewCheckConflicts(p *Planner, metrics *metrics.BookingMetrics) *CheckConflicts {
	return &CheckConflicts{planner: p.p, metrics: metrics}
}

func (uc *CheckConflicts) Execute(
	ctx context.Context,
	in CheckInput,
) (*CheckOutput, error) {

	pl, err := uc.planner.build(ctx, in.Selection, 0)
	if err != nil {
		return nil, err
	}
	start, err := uc.planner.startMinute(pl, in.Time)
	if err != nil {
		return nil, err
	}

	snap, err := snapshot(ctx, uc.planner.repo, pl.staffIDs(), pl.date.String(), uc.planner.calendar.Config().StepMinutes, pl.names)
	if err != nil {
		return nil, err
	}

	res := conflict.Validate(pl.candidate(start), snap, in.Overrides)
	uc.metrics.ObserveCheck(string(res.State))
	return &CheckOutput{Result: res, Totals: pl.totals}, nil
}

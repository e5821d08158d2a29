package booking

import (
	"context"

	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
)

// GetSlotGrid renders one state per anchor of the day for the selected
// staff and services.
type GetSlotGrid struct {
	planner *planner
}

func NewGetSlotGrid(p *Planner) *GetSlotGrid {
	return &GetSlotGrid{planner: p.p}
}

func (uc *GetSlotGrid) Execute(
	ctx context.Context,
	sel Selection,
) ([]conflict.SlotView, error) {

	pl, err := uc.planner.build(ctx, sel, 0)
	if err != nil {
		return nil, err
	}

	cal := uc.planner.calendar
	snap, err := snapshot(ctx, uc.planner.repo, pl.staffIDs(), pl.date.String(), cal.Config().StepMinutes, pl.names)
	if err != nil {
		return nil, err
	}

	today := pl.date == cal.Today()
	nowMin := cal.NowMinutes()
	dayEnd := cal.DayEnd(pl.date)

	anchors := cal.AnchorsFor(pl.date)
	out := make([]conflict.SlotView, 0, len(anchors))
	for _, anchor := range anchors {
		start, err := schedule.ParseMinutes(anchor)
		if err != nil {
			return nil, err
		}

		state := conflict.StateUnavailable
		if start+pl.totals.DurationMin <= dayEnd && !(today && start < nowMin) {
			state = conflict.Evaluate(pl.candidate(start), snap).State()
		}
		out = append(out, conflict.SlotView{Time: anchor, State: state})
	}

	return out, nil
}

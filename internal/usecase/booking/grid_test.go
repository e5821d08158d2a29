package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
)

func gridStates(views []conflict.SlotView) map[string]conflict.State {
	out := make(map[string]conflict.State, len(views))
	for _, v := range views {
		out[v.Time] = v.State
	}
	return out
}

func TestGetSlotGrid(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.request(f.sam.ID, f.bath.ID, "10:00"), staff)
	f.block(t, f.sam.ID, monday, "14:00:00")

	views, err := NewGetSlotGrid(f.planner()).Execute(context.Background(), Selection{
		Date:             monday,
		PrimaryServiceID: f.groom.ID,
		PrimaryStaffID:   f.sam.ID,
	})
	require.NoError(t, err)
	require.Len(t, views, 16)
	assert.Equal(t, "09:00:00", views[0].Time)
	assert.Equal(t, "16:30:00", views[15].Time)

	states := gridStates(views)
	assert.Equal(t, conflict.StateAvailable, states["09:30:00"])
	assert.Equal(t, conflict.StateOccupied, states["10:00:00"])
	assert.Equal(t, conflict.StateOccupied, states["10:30:00"])
	assert.Equal(t, conflict.StateAvailable, states["11:00:00"])
	assert.Equal(t, conflict.StateUnavailable, states["14:00:00"])
	assert.Equal(t, conflict.StateAvailable, states["14:30:00"])
	assert.Equal(t, conflict.StateAvailable, states["16:30:00"])

	// A 60 minute service no longer fits at 16:30, and overlaps 10:00 from 09:30.
	views, err = NewGetSlotGrid(f.planner()).Execute(context.Background(), Selection{
		Date:             monday,
		PrimaryServiceID: f.bath.ID,
		PrimaryStaffID:   f.sam.ID,
	})
	require.NoError(t, err)
	states = gridStates(views)
	assert.Equal(t, conflict.StateOccupied, states["09:30:00"])
	assert.Equal(t, conflict.StateUnavailable, states["16:30:00"])
}

func TestGetSlotGrid_OtherStaffUnaffected(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.request(f.sam.ID, f.bath.ID, "10:00"), staff)

	views, err := NewGetSlotGrid(f.planner()).Execute(context.Background(), Selection{
		Date:             monday,
		PrimaryServiceID: f.groom.ID,
		PrimaryStaffID:   f.tina.ID,
	})
	require.NoError(t, err)
	for _, v := range views {
		assert.Equal(t, conflict.StateAvailable, v.State, v.Time)
	}
}

func TestGetSlotGrid_ClosedDay(t *testing.T) {
	f := newFixture(t)
	_, err := NewGetSlotGrid(f.planner()).Execute(context.Background(), Selection{
		Date:             "2025-06-08",
		PrimaryServiceID: f.groom.ID,
		PrimaryStaffID:   f.sam.ID,
	})
	assert.True(t, httperr.IsBusiness(err, "closed_day"))
}

func TestCheckConflicts(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.request(f.sam.ID, f.bath.ID, "10:00"), staff)
	uc := NewCheckConflicts(f.planner(), nil)

	out, err := uc.Execute(context.Background(), CheckInput{Selection: Selection{
		Date:             monday,
		Time:             "10:30:00",
		PrimaryServiceID: f.groom.ID,
		PrimaryStaffID:   f.sam.ID,
		PetID:            ptr(f.rex.ID),
	}})
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.Equal(t, conflict.StateOccupied, out.State)
	assert.Contains(t, out.Reason, "Sam already has appointment")
	assert.Equal(t, 30, out.Totals.DurationMin)

	out, err = uc.Execute(context.Background(), CheckInput{
		Selection: Selection{
			Date:             monday,
			Time:             "10:30:00",
			PrimaryServiceID: f.groom.ID,
			PrimaryStaffID:   f.sam.ID,
		},
		Overrides: conflict.Overrides{Conflicts: true},
	})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.True(t, out.Overridden)

	// Advisory only: nothing was written.
	assert.Len(t, f.appointments(t, f.sam.ID), 1)
}

func TestCheckConflicts_SameServiceTwice(t *testing.T) {
	f := newFixture(t)
	_, err := NewCheckConflicts(f.planner(), nil).Execute(context.Background(), CheckInput{Selection: Selection{
		Date:               monday,
		Time:               "10:00:00",
		PrimaryServiceID:   f.groom.ID,
		PrimaryStaffID:     f.sam.ID,
		SecondaryServiceID: ptr(f.groom.ID),
		SecondaryStaffID:   ptr(f.tina.ID),
	}})
	assert.True(t, httperr.IsBusiness(err, "invalid_request"))
}

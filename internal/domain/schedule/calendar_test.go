package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timezone"
)

func mustDate(t *testing.T, s string) timezone.DateParts {
	t.Helper()
	d, err := timezone.ParseDate(s)
	require.NoError(t, err)
	return d
}

func calendarAt(now time.Time) *Calendar {
	return NewCalendar(DefaultConfig()).WithClock(func() time.Time { return now })
}

func TestGenerateAnchors(t *testing.T) {
	anchors := GenerateAnchors(9, 17, 30)
	require.Len(t, anchors, 16)
	assert.Equal(t, "09:00:00", anchors[0])
	assert.Equal(t, "09:30:00", anchors[1])
	assert.Equal(t, "16:30:00", anchors[len(anchors)-1])

	assert.Nil(t, GenerateAnchors(17, 9, 30))
	assert.Nil(t, GenerateAnchors(9, 17, 0))
}

func TestSubSlotsForAnchor(t *testing.T) {
	got, err := SubSlotsForAnchor("09:00:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00:00", "09:10:00", "09:20:00"}, got)

	got, err = SubSlotsForAnchor("09:30:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30:00", "09:40:00", "09:50:00"}, got)
}

func TestSubSlotsForAnchor_RejectsNonAnchor(t *testing.T) {
	_, err := SubSlotsForAnchor("09:10:00")
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "invalid_anchor"))

	_, err = SubSlotsForAnchor("nine")
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "invalid_time"))
}

func TestIsBookableDate(t *testing.T) {
	// Wednesday 2025-06-04, 10:00 in São Paulo.
	loc := timezone.Location(timezone.DefaultTimezone)
	cal := calendarAt(time.Date(2025, 6, 4, 10, 0, 0, 0, loc))

	tests := []struct {
		date string
		want bool
	}{
		{"2025-06-03", false}, // yesterday
		{"2025-06-04", true},  // today
		{"2025-06-05", true},
		{"2025-06-07", true},  // saturday
		{"2025-06-08", false}, // sunday
		{"2025-06-15", false}, // sunday
		{"2025-06-16", true},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.IsBookableDate(mustDate(t, tt.date)))
		})
	}
}

func TestIsBookableDate_UsesBusinessTimezone(t *testing.T) {
	// 01:30 UTC on the 5th is still 22:30 on the 4th in São Paulo, so the
	// 4th must remain bookable.
	cal := calendarAt(time.Date(2025, 6, 5, 1, 30, 0, 0, time.UTC))

	assert.True(t, cal.IsBookableDate(mustDate(t, "2025-06-04")))
	assert.Equal(t, "2025-06-04", cal.Today().String())
}

func TestCheckDate_Reasons(t *testing.T) {
	loc := timezone.Location(timezone.DefaultTimezone)
	cal := calendarAt(time.Date(2025, 5, 30, 8, 0, 0, 0, loc))

	err := cal.CheckDate(mustDate(t, "2025-06-01"))
	assert.True(t, httperr.IsBusiness(err, "closed_day"))

	err = cal.CheckDate(mustDate(t, "2025-05-29"))
	assert.True(t, httperr.IsBusiness(err, "date_in_past"))
}

func TestDayEnd_SaturdayTruncation(t *testing.T) {
	cal := NewCalendar(DefaultConfig())

	assert.Equal(t, 17*60, cal.DayEnd(mustDate(t, "2025-06-06")))
	assert.Equal(t, 12*60, cal.DayEnd(mustDate(t, "2025-06-07")))

	anchors := cal.AnchorsFor(mustDate(t, "2025-06-07"))
	require.Len(t, anchors, 6)
	assert.Equal(t, "11:30:00", anchors[len(anchors)-1])
}

func TestSubSlotsFor(t *testing.T) {
	cal := NewCalendar(DefaultConfig())

	slots := cal.SubSlotsFor(mustDate(t, "2025-06-02"), 0, 0)
	require.Len(t, slots, 48)
	assert.Equal(t, "09:00:00", slots[0])
	assert.Equal(t, "16:50:00", slots[47])

	slots = cal.SubSlotsFor(mustDate(t, "2025-06-02"), 14*60, 14*60+30)
	assert.Equal(t, []string{"14:00:00", "14:10:00", "14:20:00"}, slots)
}

func TestOnGrid(t *testing.T) {
	cal := NewCalendar(DefaultConfig())

	assert.True(t, cal.OnGrid(9*60))
	assert.True(t, cal.OnGrid(14*60+20))
	assert.True(t, cal.OnGrid(17*60))
	assert.False(t, cal.OnGrid(9*60+5))
	assert.False(t, cal.OnGrid(8*60+55))
}

func TestWithinBusinessHours(t *testing.T) {
	cal := NewCalendar(DefaultConfig())
	monday := mustDate(t, "2025-06-02")
	saturday := mustDate(t, "2025-06-07")

	assert.True(t, cal.WithinBusinessHours(monday, 9*60, 10*60))
	assert.True(t, cal.WithinBusinessHours(monday, 16*60, 17*60))
	assert.False(t, cal.WithinBusinessHours(monday, 8*60+50, 9*60+20))
	assert.False(t, cal.WithinBusinessHours(monday, 16*60+40, 17*60+10))
	assert.False(t, cal.WithinBusinessHours(saturday, 11*60+30, 12*60+30))
}

func TestParseMinutes(t *testing.T) {
	m, err := ParseMinutes("10:30")
	require.NoError(t, err)
	assert.Equal(t, 630, m)

	m, err = ParseMinutes("10:30:00")
	require.NoError(t, err)
	assert.Equal(t, 630, m)

	_, err = ParseMinutes("10:30:15")
	assert.Error(t, err)

	assert.Equal(t, "07:05:00", FormatMinutes(425))
}

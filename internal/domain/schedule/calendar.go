package schedule

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timezone"
)

// Config is the single source of business hours. Every date and slot
// decision in the service goes through a Calendar built from it.
type Config struct {
	Timezone          string         `yaml:"timezone" validate:"required"`
	BusinessStartHour int            `yaml:"business_start" validate:"min=0,max=23"`
	BusinessEndHour   int            `yaml:"business_end" validate:"min=1,max=24,gtfield=BusinessStartHour"`
	SaturdayEndHour   int            `yaml:"saturday_end" validate:"min=0,max=24"`
	StepMinutes       int            `yaml:"step_minutes" validate:"required,min=1,max=60"`
	AnchorMinutes     int            `yaml:"anchor_minutes" validate:"required,min=1,max=60"`
	ClosedWeekdays    []time.Weekday `yaml:"closed_weekdays" validate:"dive,min=0,max=6"`
}

func DefaultConfig() Config {
	return Config{
		Timezone:          timezone.DefaultTimezone,
		BusinessStartHour: 9,
		BusinessEndHour:   17,
		SaturdayEndHour:   12,
		StepMinutes:       10,
		AnchorMinutes:     30,
		ClosedWeekdays:    []time.Weekday{time.Sunday},
	}
}

type Calendar struct {
	cfg Config
	loc *time.Location
	now func() time.Time
}

func NewCalendar(cfg Config) *Calendar {
	return &Calendar{
		cfg: cfg,
		loc: timezone.Location(cfg.Timezone),
		now: time.Now,
	}
}

// WithClock replaces the wall clock, mainly for tests.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Calendar) Config() Config {
	return c.cfg
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now is the wall clock in the business timezone.
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Today is the current calendar day in the business timezone.
func (c *Calendar) Today() timezone.DateParts {
	return timezone.PartsIn(c.now(), c.loc)
}

// NowMinutes is the current minute of the business day.
func (c *Calendar) NowMinutes() int {
	t := c.now().In(c.loc)
	return t.Hour()*60 + t.Minute()
}

func (c *Calendar) IsClosedWeekday(wd time.Weekday) bool {
	for _, closed := range c.cfg.ClosedWeekdays {
		if closed == wd {
			return true
		}
	}
	return false
}

// IsBookableDate is false for days before today (business timezone) and
// for closed weekdays.
func (c *Calendar) IsBookableDate(date timezone.DateParts) bool {
	return c.CheckDate(date) == nil
}

// CheckDate is IsBookableDate with the reason attached.
func (c *Calendar) CheckDate(date timezone.DateParts) error {
	if date.Before(c.Today()) {
		return httperr.ErrValidation("date_in_past").Arg("date", date.String())
	}
	if c.IsClosedWeekday(date.Weekday()) {
		return httperr.ErrValidation("closed_day").Arg("date", date.String())
	}
	return nil
}

// DayStart is the opening minute of every business day.
func (c *Calendar) DayStart() int {
	return c.cfg.BusinessStartHour * 60
}

// DayEnd is the closing minute of date, Saturday truncation applied.
func (c *Calendar) DayEnd(date timezone.DateParts) int {
	if date.Weekday() == time.Saturday && c.cfg.SaturdayEndHour > c.cfg.BusinessStartHour {
		return c.cfg.SaturdayEndHour * 60
	}
	return c.cfg.BusinessEndHour * 60
}

// AnchorsFor returns the toggle anchors of date.
func (c *Calendar) AnchorsFor(date timezone.DateParts) []string {
	var out []string
	for m := c.DayStart(); m+c.cfg.AnchorMinutes <= c.DayEnd(date); m += c.cfg.AnchorMinutes {
		out = append(out, FormatMinutes(m))
	}
	return out
}

// SubSlotsFor returns every stored sub-slot of date between fromMin and
// toMin (exclusive). Zero bounds mean business hours.
func (c *Calendar) SubSlotsFor(date timezone.DateParts, fromMin, toMin int) []string {
	if fromMin <= 0 {
		fromMin = c.DayStart()
	}
	if toMin <= 0 {
		toMin = c.DayEnd(date)
	}
	var out []string
	for m := fromMin; m < toMin; m += c.cfg.StepMinutes {
		out = append(out, FormatMinutes(m))
	}
	return out
}

// OnGrid reports whether m is a sub-slot start counted from opening time.
func (c *Calendar) OnGrid(m int) bool {
	return (m-c.DayStart())%c.cfg.StepMinutes == 0
}

// SubSlotsOfAnchor expands an anchor using the configured granularity.
func (c *Calendar) SubSlotsOfAnchor(anchor string) ([]string, error) {
	return expandAnchor(anchor, c.cfg.AnchorMinutes, c.cfg.StepMinutes)
}

// WithinBusinessHours reports whether [startMin, endMin) fits the day.
func (c *Calendar) WithinBusinessHours(date timezone.DateParts, startMin, endMin int) bool {
	return startMin >= c.DayStart() && endMin <= c.DayEnd(date) && endMin > startMin
}

// GenerateAnchors lists anchor starts from startHour (inclusive) up to
// the last anchor that begins before endHour.
func GenerateAnchors(startHour, endHour, anchorMinutes int) []string {
	if anchorMinutes <= 0 || endHour <= startHour {
		return nil
	}
	var out []string
	for m := startHour * 60; m < endHour*60; m += anchorMinutes {
		out = append(out, FormatMinutes(m))
	}
	return out
}

// SubSlotsForAnchor expands a 30-minute anchor into its 10-minute sub-slots.
func SubSlotsForAnchor(anchor string) ([]string, error) {
	return expandAnchor(anchor, 30, 10)
}

func expandAnchor(anchor string, anchorMinutes, stepMinutes int) ([]string, error) {
	start, err := ParseMinutes(anchor)
	if err != nil {
		return nil, err
	}
	if start%anchorMinutes != 0 {
		return nil, httperr.ErrValidation("invalid_anchor").Arg("anchor", anchor)
	}
	out := make([]string, 0, anchorMinutes/stepMinutes)
	for m := start; m < start+anchorMinutes; m += stepMinutes {
		out = append(out, FormatMinutes(m))
	}
	return out, nil
}

// FormatMinutes renders minutes since midnight as "HH:MM:SS".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d:00", m/60, m%60)
}

// ParseMinutes accepts "HH:MM" or "HH:MM:SS" and returns minutes since midnight.
func ParseMinutes(s string) (int, error) {
	layouts := []string{"15:04:05", "15:04"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Second() != 0 {
				break
			}
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, httperr.ErrValidation("invalid_time").Arg("time", s)
}

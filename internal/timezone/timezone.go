package timezone

import (
	"time"
)

const DefaultTimezone = "America/Sao_Paulo"

const DateLayout = "2006-01-02"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		// tzdata missing on the host; UTC-3 matches the default zone year-round.
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// DateParts is a calendar day, free of any time-of-day component.
type DateParts struct {
	Year  int
	Month time.Month
	Day   int
}

// PartsIn extracts the calendar day that t falls on inside loc.
func PartsIn(t time.Time, loc *time.Location) DateParts {
	y, m, d := t.In(loc).Date()
	return DateParts{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (DateParts, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return DateParts{}, err
	}
	return DateParts{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// Midnight returns 00:00 of the day in loc.
func (p DateParts) Midnight(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, p.Day, 0, 0, 0, 0, loc)
}

func (p DateParts) Weekday() time.Weekday {
	return p.Midnight(time.UTC).Weekday()
}

func (p DateParts) Before(o DateParts) bool {
	return p.Midnight(time.UTC).Before(o.Midnight(time.UTC))
}

func (p DateParts) AddDays(n int) DateParts {
	t := p.Midnight(time.UTC).AddDate(0, 0, n)
	return DateParts{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (p DateParts) String() string {
	return p.Midnight(time.UTC).Format(DateLayout)
}

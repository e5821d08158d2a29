package appointment

import (
	"context"

	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// Resolution is what the pricing table knows for a service, breed and
// size. A nil field means "no specific value".
type Resolution struct {
	Price       *float64
	DurationMin *int
}

type PriceResolver interface {
	Resolve(ctx context.Context, serviceID uint, breed, size string) (Resolution, error)
}

// Line is one priced component of a booking.
type Line struct {
	ServiceID   uint    `json:"service_id"`
	Price       float64 `json:"price"`
	DurationMin int     `json:"duration_min"`
}

type Totals struct {
	Lines       []Line  `json:"lines"`
	DurationMin int     `json:"duration_min"`
	Price       float64 `json:"price"`
}

// PriceLine picks the resolved values over the service defaults. A
// resolved price of zero is a real price; a resolved duration must be
// positive to count, since it drives the conflict window.
func PriceLine(s models.Service, r Resolution) Line {
	line := Line{
		ServiceID:   s.ID,
		Price:       s.BasePrice,
		DurationMin: s.DefaultDuration,
	}
	if r.Price != nil {
		line.Price = *r.Price
	}
	if r.DurationMin != nil && *r.DurationMin > 0 {
		line.DurationMin = *r.DurationMin
	}
	return line
}

// Aggregate folds the lines into the booking totals.
func Aggregate(lines []Line, extraFee float64) Totals {
	t := Totals{Lines: lines, Price: extraFee}
	for _, l := range lines {
		t.DurationMin += l.DurationMin
		t.Price += l.Price
	}
	return t
}

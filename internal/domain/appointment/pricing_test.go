package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestPriceLine(t *testing.T) {
	svc := models.Service{ID: 3, BasePrice: 80, DefaultDuration: 60}

	tests := []struct {
		name      string
		res       Resolution
		wantPrice float64
		wantDur   int
	}{
		{"no resolution", Resolution{}, 80, 60},
		{"resolved both", Resolution{Price: ptr(120.0), DurationMin: ptr(90)}, 120, 90},
		{"zero price is a real price", Resolution{Price: ptr(0.0)}, 0, 60},
		{"zero duration falls back", Resolution{DurationMin: ptr(0)}, 80, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := PriceLine(svc, tt.res)
			assert.Equal(t, uint(3), line.ServiceID)
			assert.Equal(t, tt.wantPrice, line.Price)
			assert.Equal(t, tt.wantDur, line.DurationMin)
		})
	}
}

func TestAggregate(t *testing.T) {
	totals := Aggregate([]Line{
		{ServiceID: 1, Price: 50, DurationMin: 40},
		{ServiceID: 2, Price: 70, DurationMin: 50},
	}, 15)

	assert.Equal(t, 90, totals.DurationMin)
	assert.Equal(t, 135.0, totals.Price)
	assert.Len(t, totals.Lines, 2)
}

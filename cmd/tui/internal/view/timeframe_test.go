package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriod_Range(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		period    Period
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			period:    PeriodThisMonth,
			wantStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC),
		},
		{
			period:    PeriodLastMonth,
			wantStart: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC),
		},
		{
			period:    PeriodLast30Days,
			wantStart: time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.period.String(), func(t *testing.T) {
			start, end := tt.period.Range(now)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

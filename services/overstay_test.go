package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOverstayHours_RoundsUpToWholeHours(t *testing.T) {
	checkIn := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	contracted := decimal.NewFromInt(3)

	cases := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"within contract", 2*time.Hour + 50*time.Minute, 0},
		{"exactly on time", 3 * time.Hour, 0},
		{"seconds late are not billed", 3*time.Hour + 59*time.Second, 0},
		{"one minute late", 3*time.Hour + time.Minute, 1},
		{"just under two hours late", 4*time.Hour + 59*time.Minute, 2},
		{"exactly one hour late", 4 * time.Hour, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := OverstayHours(checkIn, checkIn.Add(tc.elapsed), contracted)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOverstayHours_FractionalContract(t *testing.T) {
	checkIn := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	// 2.5h contracted, 2h40m used: 10 minutes over is one billable hour
	got := OverstayHours(checkIn, checkIn.Add(2*time.Hour+40*time.Minute), decimal.RequireFromString("2.5"))

	assert.Equal(t, 1, got)
}

func TestExtraHoursSince(t *testing.T) {
	end := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, ExtraHoursSince(end, end.Add(-time.Minute)))
	assert.Equal(t, 0, ExtraHoursSince(end, end))
	assert.Equal(t, 1, ExtraHoursSince(end, end.Add(time.Minute)))
	assert.Equal(t, 2, ExtraHoursSince(end, end.Add(70*time.Minute)))
}

func TestUsedHoursAndExtraCharge(t *testing.T) {
	checkIn := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, UsedHours(checkIn, checkIn))
	assert.Equal(t, 1, UsedHours(checkIn, checkIn.Add(30*time.Minute)))
	assert.Equal(t, 4, UsedHours(checkIn, checkIn.Add(3*time.Hour+1*time.Minute)))

	assert.True(t, decimal.RequireFromString("37.50").Equal(ExtraCharge(3, decimal.RequireFromString("12.5"))))
	assert.True(t, ExtraCharge(0, decimal.NewFromInt(10)).IsZero())
}

func TestHoursDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, hoursDuration(decimal.RequireFromString("1.5")))
	assert.Equal(t, 3*time.Hour, hoursDuration(decimal.NewFromInt(3)))
}

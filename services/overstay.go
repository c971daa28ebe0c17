package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// Overstay billing shared by checkout, charge-extra-time and extension.
// Elapsed time is truncated to whole minutes and then always rounded UP to
// whole hours.

func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

func ceilHours(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return (minutes + 59) / 60
}

// ExtraHoursSince returns the billable hours elapsed after scheduledEnd.
func ExtraHoursSince(scheduledEnd, now time.Time) int {
	return ceilHours(wholeMinutes(now.Sub(scheduledEnd)))
}

// OverstayHours returns max(0, ceil(realHours - contractedHours)) for a stay
// that started at checkIn.
func OverstayHours(checkIn, now time.Time, contractedHours decimal.Decimal) int {
	used := wholeMinutes(now.Sub(checkIn))
	contracted := int(contractedHours.Mul(decimal.NewFromInt(60)).IntPart())
	return ceilHours(used - contracted)
}

// UsedHours is ceil(realHours) since checkIn, recorded as actual_hours.
func UsedHours(checkIn, now time.Time) int {
	return ceilHours(wholeMinutes(now.Sub(checkIn)))
}

func ExtraCharge(hours int, ratePerHour decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(hours)).Mul(ratePerHour).Round(2)
}

func hoursDuration(hours decimal.Decimal) time.Duration {
	return time.Duration(hours.Mul(decimal.NewFromInt(int64(time.Hour))).IntPart())
}

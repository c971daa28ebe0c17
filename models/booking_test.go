package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBooking_RecalculateTotals(t *testing.T) {
	b := Booking{
		TotalHours:       d("3"),
		RatePerHour:      d("10"),
		ProductsSubtotal: d("12.50"),
		DiscountAmount:   d("2.50"),
		PaidAmount:       d("20"),
	}

	b.RecalculateTotals(d("18"))

	assert.True(t, d("30").Equal(b.RoomSubtotal), b.RoomSubtotal.String())
	assert.True(t, d("42.50").Equal(b.Subtotal), b.Subtotal.String())
	assert.True(t, d("7.65").Equal(b.TaxAmount), b.TaxAmount.String())
	assert.True(t, d("47.65").Equal(b.TotalAmount), b.TotalAmount.String())
	assert.True(t, d("27.65").Equal(b.Balance()), b.Balance().String())
}

func TestBooking_BalanceMayBeNegative(t *testing.T) {
	b := Booking{TotalHours: d("1"), RatePerHour: d("10"), PaidAmount: d("15")}
	b.RecalculateTotals(decimal.Zero)

	assert.True(t, d("-5").Equal(b.Balance()))
}

func TestBooking_AddHours(t *testing.T) {
	b := Booking{TotalHours: d("3"), RatePerHour: d("12.50"), RoomSubtotal: d("37.50")}

	amount := b.AddHours(d("1.5"))

	assert.True(t, d("18.75").Equal(amount), amount.String())
	assert.True(t, d("4.5").Equal(b.TotalHours))
	assert.True(t, d("56.25").Equal(b.RoomSubtotal))

	assert.True(t, b.AddHours(decimal.Zero).IsZero())
	assert.True(t, b.AddHours(d("-2")).IsZero())
	assert.True(t, d("4.5").Equal(b.TotalHours), "total hours never decrease")
}

func TestBooking_AddHoursKeepsRoomSubtotalInLine(t *testing.T) {
	cases := []struct {
		name      string
		booking   Booking
		add       string
		wantHours string
		wantRoom  string
		wantDelta string
	}{
		{"fractional contract", Booking{TotalHours: d("2.5"), RatePerHour: d("20"), RoomSubtotal: d("60")}, "1", "3.5", "70", "10"},
		{"daily contract", Booking{TotalHours: d("24"), RatePerHour: d("100"), RoomSubtotal: d("100")}, "1", "25", "2500", "2400"},
		{"four decimal rate", Booking{TotalHours: d("3"), RatePerHour: d("8.3333"), RoomSubtotal: d("25")}, "1", "4", "33.33", "8.33"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := tc.booking

			delta := b.AddHours(d(tc.add))

			assert.True(t, d(tc.wantHours).Equal(b.TotalHours), b.TotalHours.String())
			assert.True(t, d(tc.wantRoom).Equal(b.RoomSubtotal), b.RoomSubtotal.String())
			assert.True(t, d(tc.wantDelta).Equal(delta), delta.String())
		})
	}
}

func TestBookingStatus_Transitions(t *testing.T) {
	assert.True(t, BookingConfirmed.CanTransitionTo(BookingCheckedIn))
	assert.True(t, BookingCheckedIn.CanTransitionTo(BookingCheckedOut))
	assert.True(t, BookingCheckedIn.CanTransitionTo(BookingCancelled))
	assert.False(t, BookingConfirmed.CanTransitionTo(BookingCheckedOut))
	assert.False(t, BookingCheckedOut.CanTransitionTo(BookingCancelled))
	assert.False(t, BookingCancelled.CanTransitionTo(BookingCheckedIn))
	assert.True(t, BookingCancelled.Terminal())
	assert.False(t, BookingPending.Terminal())
}

func TestRoomStatus_Transitions(t *testing.T) {
	assert.True(t, RoomAvailable.CanTransitionTo(RoomOccupied))
	assert.True(t, RoomOccupied.CanTransitionTo(RoomCleaning))
	assert.True(t, RoomOccupied.CanTransitionTo(RoomOccupied))
	assert.False(t, RoomOccupied.CanTransitionTo(RoomAvailable), "checkout always goes through cleaning")
	assert.False(t, RoomCleaning.CanTransitionTo(RoomOccupied))

	assert.True(t, RoomCleaning.ManualTransitionAllowed(RoomAvailable))
	assert.False(t, RoomAvailable.ManualTransitionAllowed(RoomOccupied))
	assert.False(t, RoomOccupied.ManualTransitionAllowed(RoomCleaning))
	assert.False(t, RoomMaintenance.ManualTransitionAllowed(RoomMaintenance))
	assert.False(t, RoomStatus("closed").Valid())
}

func TestPricingRange_HalfOpen(t *testing.T) {
	r := PricingRange{TimeFromMinutes: 60, TimeToMinutes: 180}

	assert.False(t, r.Contains(59))
	assert.True(t, r.Contains(60))
	assert.True(t, r.Contains(179))
	assert.False(t, r.Contains(180))

	assert.True(t, r.Overlaps(170, 200))
	assert.False(t, r.Overlaps(180, 240))
	assert.False(t, r.Overlaps(0, 60))
}

func TestProduct_UnitsPerPackage(t *testing.T) {
	assert.Equal(t, 1, Product{}.UnitsPerPackage())
	assert.Equal(t, 1, Product{FractionUnits: 12}.UnitsPerPackage())
	assert.Equal(t, 12, Product{IsFractionable: true, FractionUnits: 12}.UnitsPerPackage())
}

func TestBranchTaxSetting_EffectiveRate(t *testing.T) {
	var none *BranchTaxSetting
	assert.True(t, none.EffectiveRate().IsZero())
	assert.True(t, (&BranchTaxSetting{TaxPercentage: d("18"), TaxIncluded: true}).EffectiveRate().IsZero())
	assert.True(t, d("18").Equal((&BranchTaxSetting{TaxPercentage: d("18")}).EffectiveRate()))
}

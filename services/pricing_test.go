package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel-pms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPricedConfig(t *testing.T, f *fixture) *models.BranchRoomTypePrice {
	t.Helper()
	ctx := context.Background()
	cfg, err := f.pricing.CreateConfiguration(ctx, f.actor, PriceConfigInput{
		RoomTypeID:    f.roomType.ID,
		RateTypeID:    f.hourly.ID,
		EffectiveFrom: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	for _, r := range []PricingRangeInput{
		{TimeFromMinutes: 0, TimeToMinutes: 180, Price: dec("30")},
		{TimeFromMinutes: 180, TimeToMinutes: 360, Price: dec("50")},
	} {
		_, err := f.pricing.CreateRange(ctx, f.actor, cfg.ID, r)
		require.NoError(t, err)
	}
	return cfg
}

func TestPricingRanges_HalfOpenBoundaries(t *testing.T) {
	f := newFixture(t)
	cfg := newPricedConfig(t, f)
	ctx := context.Background()

	cases := []struct {
		minutes int
		price   string
	}{
		{0, "30"},
		{179, "30"},
		{180, "50"},
		{359, "50"},
	}
	for _, tc := range cases {
		pr, err := f.pricing.PriceForDuration(ctx, cfg.ID, tc.minutes)
		require.NoError(t, err, "minutes %d", tc.minutes)
		assertDecimal(t, tc.price, pr.Price, "minutes", tc.minutes)
	}

	_, err := f.pricing.PriceForDuration(ctx, cfg.ID, 360)
	assert.ErrorIs(t, err, ErrPricingNotFound)
}

func TestCreateRange_RejectsOverlap(t *testing.T) {
	f := newFixture(t)
	cfg := newPricedConfig(t, f)
	ctx := context.Background()

	_, err := f.pricing.CreateRange(ctx, f.actor, cfg.ID, PricingRangeInput{TimeFromMinutes: 120, TimeToMinutes: 240, Price: dec("40")})
	assert.ErrorIs(t, err, ErrPricingOverlap)

	// touching intervals do not overlap
	_, err = f.pricing.CreateRange(ctx, f.actor, cfg.ID, PricingRangeInput{TimeFromMinutes: 360, TimeToMinutes: 720, Price: dec("80")})
	assert.NoError(t, err)

	_, err = f.pricing.CreateRange(ctx, f.actor, cfg.ID, PricingRangeInput{TimeFromMinutes: 800, TimeToMinutes: 800, Price: dec("1")})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.pricing.CreateRange(ctx, f.actor, cfg.ID, PricingRangeInput{TimeFromMinutes: 800, TimeToMinutes: 900, Price: dec("-1")})
	assert.True(t, errors.As(err, &verr))
}

func TestUpdateRange_IgnoresItself(t *testing.T) {
	f := newFixture(t)
	cfg := newPricedConfig(t, f)
	ctx := context.Background()
	ranges, err := f.pricing.ListRanges(ctx, f.actor, cfg.ID)
	require.NoError(t, err)
	require.Len(t, ranges, 2)

	updated, err := f.pricing.UpdateRange(ctx, f.actor, ranges[0].ID, PricingRangeInput{TimeFromMinutes: 0, TimeToMinutes: 120, Price: dec("25")})
	require.NoError(t, err)
	assertDecimal(t, "25", updated.Price)

	_, err = f.pricing.UpdateRange(ctx, f.actor, ranges[0].ID, PricingRangeInput{TimeFromMinutes: 0, TimeToMinutes: 200, Price: dec("25")})
	assert.ErrorIs(t, err, ErrPricingOverlap)
}

func TestCalculatePrice_UsesEffectiveWindow(t *testing.T) {
	f := newFixture(t)
	newPricedConfig(t, f)
	ctx := context.Background()

	quote, err := f.pricing.CalculatePrice(ctx, f.actor, f.roomType.ID, f.hourly.ID, f.clock.Now(), 200)
	require.NoError(t, err)
	assertDecimal(t, "50", quote.Price)
	assert.Equal(t, 200, quote.Minutes)

	_, err = f.pricing.CalculatePrice(ctx, f.actor, f.roomType.ID, f.hourly.ID, time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC), 200)
	assert.ErrorIs(t, err, ErrPricingNotFound)

	_, err = f.pricing.CalculatePrice(ctx, f.actor, f.roomType.ID, f.hourly.ID, f.clock.Now(), -1)
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestPricingOptions_OnlyActiveRangesInOrder(t *testing.T) {
	f := newFixture(t)
	cfg := newPricedConfig(t, f)
	ctx := context.Background()
	inactive := false
	_, err := f.pricing.CreateRange(ctx, f.actor, cfg.ID, PricingRangeInput{TimeFromMinutes: 360, TimeToMinutes: 720, Price: dec("90"), IsActive: &inactive})
	require.NoError(t, err)

	opts, err := f.pricing.PricingOptions(ctx, f.actor, cfg.ID)

	require.NoError(t, err)
	require.Len(t, opts.Ranges, 2)
	assert.Equal(t, 0, opts.Ranges[0].TimeFromMinutes)
	assert.Equal(t, 180, opts.Ranges[1].TimeFromMinutes)
}

func TestDeleteConfiguration(t *testing.T) {
	f := newFixture(t)
	cfg := newPricedConfig(t, f)
	ctx := context.Background()

	require.NoError(t, f.pricing.DeleteConfiguration(ctx, f.actor, cfg.ID))

	_, err := f.pricing.ResolveConfiguration(ctx, f.branch.ID, f.roomType.ID, f.hourly.ID, f.clock.Now())
	assert.ErrorIs(t, err, ErrPricingNotFound)
	assert.ErrorIs(t, f.pricing.DeleteConfiguration(ctx, f.actor, cfg.ID), ErrPricingNotFound)
}

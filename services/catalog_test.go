package services

import (
	"context"
	"errors"
	"testing"

	"hotel-pms/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomService_ManualTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room, err := f.rooms.ChangeStatus(ctx, f.actor, f.room.ID, RoomStatusInput{Status: models.RoomMaintenance, Reason: "broken AC"})
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, room.Status)

	_, err = f.rooms.ChangeStatus(ctx, f.actor, f.room.ID, RoomStatusInput{Status: models.RoomOccupied})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr), "occupied is not an operator status")

	_, err = f.rooms.Release(ctx, f.actor, f.room.ID)
	assert.ErrorIs(t, err, ErrInvalidRoomTransition, "only cleaning rooms are released")

	_, err = f.rooms.ChangeStatus(ctx, f.actor, f.room.ID, RoomStatusInput{Status: models.RoomCleaning})
	require.NoError(t, err)
	room, err = f.rooms.Release(ctx, f.actor, f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, room.Status)

	logs, err := f.rooms.StatusLogs(ctx, f.actor, f.room.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "cleaning finished", logs[0].Reason)
	assert.Equal(t, "broken AC", logs[2].Reason)
}

func TestRoomService_OccupiedRoomIsLocked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, 2)

	_, err := f.rooms.ChangeStatus(ctx, f.actor, f.room.ID, RoomStatusInput{Status: models.RoomMaintenance})
	assert.ErrorIs(t, err, ErrInvalidRoomTransition)

	assert.ErrorIs(t, f.rooms.Delete(ctx, f.actor, f.room.ID), ErrRoomHasActiveBooking)
}

func TestRoomService_CreateListStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.rooms.Create(ctx, f.actor, RoomInput{RoomNumber: " 102 ", RoomTypeID: f.roomType.ID, Floor: "1"})
	require.NoError(t, err)
	assert.Equal(t, "102", created.RoomNumber)
	assert.Equal(t, models.RoomAvailable, created.Status)

	_, err = f.rooms.Create(ctx, f.actor, RoomInput{RoomNumber: "103", RoomTypeID: 9999})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	f.book(t, 1)
	rooms, err := f.rooms.List(ctx, f.actor, RoomFilter{Status: models.RoomAvailable})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "102", rooms[0].RoomNumber)

	stats, err := f.rooms.Stats(ctx, f.actor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[models.RoomOccupied])
	assert.Equal(t, int64(1), stats.ByStatus[models.RoomAvailable])
	assert.Equal(t, int64(0), stats.ByStatus[models.RoomCleaning])

	require.NoError(t, f.rooms.Delete(ctx, f.actor, created.ID))
	_, err = f.rooms.Get(ctx, f.actor, created.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestProductService_CreateOpensStockRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	products := NewProductService(f.db)

	p, err := products.Create(ctx, f.actor, ProductInput{Code: "BEER", Name: "Beer six-pack", Price: dec("24"), IsFractionable: true, FractionUnits: 6, MinStock: 2})
	require.NoError(t, err)

	rows, err := f.kardex.ListStock(ctx, f.actor, p.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].CurrentStock)
	assert.Equal(t, 2, rows[0].MinStock)

	_, err = products.Create(ctx, f.actor, ProductInput{Code: "BAD", Name: "Bad", Price: dec("1"), IsFractionable: true, FractionUnits: 1})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestProductService_PackageSizeFrozenWhileStocked(t *testing.T) {
	f := newFixture(t)
	products := NewProductService(f.db)

	_, err := products.Update(context.Background(), f.product.ID, ProductInput{
		Code: "WATER", Name: "Water 500ml", Price: dec("5"), IsFractionable: true, FractionUnits: 6,
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)
	assert.Equal(t, "stocked", verr.Fields["fraction_units"])

	updated, err := products.Update(context.Background(), f.product.ID, ProductInput{Code: "WATER", Name: "Water 625ml", Price: dec("6")})
	require.NoError(t, err)
	assert.Equal(t, "Water 625ml", updated.Name)
	assertDecimal(t, "6", updated.Price)
}

func TestCustomerService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customers := NewCustomerService(f.db)

	c, err := customers.Create(ctx, CustomerInput{FullName: " Mario Quispe ", DocumentType: "dni", DocumentNumber: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, "Mario Quispe", c.FullName)
	assert.Equal(t, "DNI", c.DocumentType)

	_, err = customers.Create(ctx, CustomerInput{FullName: "X", DocumentType: "SSN"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	list, total, err := customers.List(ctx, "1234", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)

	_, err = customers.Get(ctx, 9999)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestSettingsService_TaxSetting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	settings := NewSettingsService(f.db)

	s, err := settings.GetTaxSetting(ctx, f.actor)
	require.NoError(t, err)
	assert.True(t, s.TaxPercentage.IsZero())

	_, err = settings.UpdateTaxSetting(ctx, f.actor, TaxSettingInput{TaxPercentage: dec("120")})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = settings.UpdateTaxSetting(ctx, f.actor, TaxSettingInput{TaxPercentage: dec("18"), TaxIncluded: true})
	require.NoError(t, err)
	_, err = settings.UpdateTaxSetting(ctx, f.actor, TaxSettingInput{TaxPercentage: dec("18")})
	require.NoError(t, err)

	var n int64
	require.NoError(t, f.db.Model(&models.BranchTaxSetting{}).Count(&n).Error)
	assert.Equal(t, int64(1), n, "one row per branch")
	s, err = settings.GetTaxSetting(ctx, f.actor)
	require.NoError(t, err)
	assertDecimal(t, "18", s.EffectiveRate())
}

func TestPaymentService_CashSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := ActorContext{ActorID: f.actor.ActorID + 100, BranchID: f.branch.ID}

	_, err := f.payments.OpenSession(ctx, f.actor, f.register.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrCashRegisterOpen)

	_, err = f.payments.CloseSession(ctx, stranger, f.register.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrForeignCashSession)

	closed, err := f.payments.CloseSession(ctx, f.actor, f.register.ID, dec("150"))
	require.NoError(t, err)
	assert.Equal(t, models.SessionClosed, closed.Status)
	require.NotNil(t, closed.ClosingAmount)
	assertDecimal(t, "150", *closed.ClosingAmount)

	_, err = f.payments.CloseSession(ctx, f.actor, f.register.ID, decimal.Zero)
	assert.ErrorIs(t, err, ErrCashRegisterClosed)

	regs, err := f.payments.ListRegisters(ctx, f.actor)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.False(t, regs[0].IsOpen())

	// a session opened by somebody else cannot take this operator's payments
	_, err = f.payments.OpenSession(ctx, stranger, f.register.ID, decimal.Zero)
	require.NoError(t, err)
	_, err = f.bookings.CreateBooking(ctx, f.actor, CreateBookingInput{
		RoomID:      f.room.ID,
		CustomerID:  f.customer.ID,
		RateTypeID:  f.hourly.ID,
		CurrencyID:  f.currency.ID,
		RatePerHour: decPtr("10"),
		Quantity:    1,
		Payments:    []PaymentInput{{Amount: dec("10"), PaymentMethodID: f.cash.ID, CashRegisterID: &f.register.ID}},
	})
	assert.ErrorIs(t, err, ErrForeignCashSession)
}

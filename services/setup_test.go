package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"hotel-pms/config"
	"hotel-pms/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:pms_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db), "migrate")
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

// fixture is one branch with an operator holding an open cash session, an
// available room, an hourly rate, a customer and a stocked product.
type fixture struct {
	db    *gorm.DB
	clock *fixedClock
	actor ActorContext

	branch   models.Branch
	roomType models.RoomType
	room     models.Room
	hourly   models.RateType
	currency models.Currency
	cash     models.PaymentMethod
	card     models.PaymentMethod
	register models.CashRegister
	customer models.Customer
	product  models.Product

	kardex       *KardexService
	consumptions *ConsumptionService
	payments     *PaymentService
	bookings     *BookingService
	pricing      *PricingService
	rooms        *RoomService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:    db,
		clock: &fixedClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)},
	}

	f.branch = models.Branch{Code: "MAIN", Name: "Main", IsActive: true}
	require.NoError(t, db.Create(&f.branch).Error)

	operator := models.User{FullName: "Front Desk", Username: "desk@hotel.local", BranchID: f.branch.ID, IsActive: true}
	require.NoError(t, db.Create(&operator).Error)
	f.actor = ActorContext{ActorID: operator.ID, BranchID: f.branch.ID}

	f.roomType = models.RoomType{Name: "Standard", Code: "STD"}
	require.NoError(t, db.Create(&f.roomType).Error)
	f.hourly = models.RateType{Name: "Hourly", Code: models.RateHour, DurationHours: 1, IsActive: true}
	require.NoError(t, db.Create(&f.hourly).Error)
	f.currency = models.Currency{Code: "PEN", Symbol: "S/", IsBase: true}
	require.NoError(t, db.Create(&f.currency).Error)
	f.cash = models.PaymentMethod{Code: "CASH", Name: "Cash", IsActive: true}
	require.NoError(t, db.Create(&f.cash).Error)
	f.card = models.PaymentMethod{Code: "CARD", Name: "Card", RequiresReference: true, IsActive: true}
	require.NoError(t, db.Create(&f.card).Error)

	f.room = models.Room{
		BranchID:   f.branch.ID,
		RoomTypeID: f.roomType.ID,
		RoomNumber: "101",
		Floor:      "1",
		Status:     models.RoomAvailable,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&f.room).Error)

	f.customer = models.Customer{FullName: "Ana Torres", DocumentType: "DNI", DocumentNumber: "44556677"}
	require.NoError(t, db.Create(&f.customer).Error)

	f.product = models.Product{Code: "WATER", Name: "Water 500ml", Price: dec("5"), IsActive: true}
	require.NoError(t, db.Create(&f.product).Error)
	require.NoError(t, db.Create(&models.BranchProductStock{
		BranchID:        f.branch.ID,
		ProductID:       f.product.ID,
		CurrentStock:    20,
		PackagesInStock: 20,
	}).Error)

	f.register = models.CashRegister{BranchID: f.branch.ID, Name: "Front desk", IsActive: true}
	require.NoError(t, db.Create(&f.register).Error)

	f.kardex = NewKardexService(db, f.clock)
	f.consumptions = NewConsumptionService(db, f.kardex, f.clock)
	f.payments = NewPaymentService(db, f.clock)
	f.bookings = NewBookingService(db, f.kardex, f.consumptions, f.payments, f.clock)
	f.pricing = NewPricingService(db)
	f.rooms = NewRoomService(db, f.clock)

	_, err := f.payments.OpenSession(context.Background(), f.actor, f.register.ID, decimal.Zero)
	require.NoError(t, err, "open cash session")
	return f
}

func (f *fixture) cashPayment(amount string) PaymentInput {
	return PaymentInput{Amount: dec(amount), PaymentMethodID: f.cash.ID}
}

// book creates a checked-in hourly booking of the fixture room at 10.00 per
// hour, fully paid up front.
func (f *fixture) book(t *testing.T, hours int) *models.Booking {
	t.Helper()
	total := decimal.NewFromInt(int64(hours * 10))
	res, err := f.bookings.CreateBooking(context.Background(), f.actor, CreateBookingInput{
		RoomID:      f.room.ID,
		CustomerID:  f.customer.ID,
		RateTypeID:  f.hourly.ID,
		CurrencyID:  f.currency.ID,
		RatePerHour: decPtr("10"),
		Quantity:    hours,
		Payments:    []PaymentInput{{Amount: total, PaymentMethodID: f.cash.ID}},
	})
	require.NoError(t, err, "create booking")
	return res.Booking
}

func (f *fixture) reloadRoom(t *testing.T) models.Room {
	t.Helper()
	var room models.Room
	require.NoError(t, f.db.First(&room, f.room.ID).Error)
	return room
}

func (f *fixture) reloadBooking(t *testing.T, id uint) models.Booking {
	t.Helper()
	var b models.Booking
	require.NoError(t, f.db.First(&b, id).Error)
	return b
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	var s models.BranchProductStock
	require.NoError(t, f.db.Where("branch_id = ? AND product_id = ?", f.branch.ID, f.product.ID).First(&s).Error)
	return s.CurrentStock
}

func (f *fixture) eventTypes(t *testing.T, bookingID uint) []models.BookingEventType {
	t.Helper()
	events, err := f.bookings.ListEvents(context.Background(), f.actor, bookingID)
	require.NoError(t, err)
	out := make([]models.BookingEventType, 0, len(events))
	for i, e := range events {
		require.Equal(t, i+1, e.Sequence, "event sequence must be gap-free")
		out = append(out, e.EventType)
	}
	return out
}

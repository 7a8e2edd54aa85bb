package customer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/storage"
	"github.com/lodge-admin/backend/internal/storage/models"
)

var (
	t1 = time.Date(2027, 1, 10, 9, 0, 0, 0, time.UTC)
	t2 = time.Date(2027, 2, 20, 18, 0, 0, 0, time.UTC)
)

func TestAggregate(t *testing.T) {
	bookings := []models.Booking{
		{CustomerID: "x", TotalPrice: 600, Status: models.BookingStatusConfirmed, CreatedAt: t1},
		{CustomerID: "x", TotalPrice: 300, Status: models.BookingStatusCancelled, CreatedAt: t2},
		{CustomerID: "a", TotalPrice: 150, Status: models.BookingStatusCheckedOut, CreatedAt: t2},
		{CustomerID: "a", TotalPrice: 50, Status: models.BookingStatusUnconfirmed, CreatedAt: t1},
	}

	got := Aggregate(bookings)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 2, got[0].TotalBookings)
	assert.Equal(t, 200.0, got[0].TotalSpent)
	assert.Equal(t, t2, *got[0].LastBookingDate)

	assert.Equal(t, "x", got[1].ID)
	assert.Equal(t, 2, got[1].TotalBookings)
	assert.Equal(t, 600.0, got[1].TotalSpent)
	assert.Equal(t, t2, *got[1].LastBookingDate)

	assert.Empty(t, Aggregate(nil))
}

type notifierFunc func(Result)

func (f notifierFunc) CustomersReconciled(r Result) { f(r) }

func setup(t *testing.T) (*storage.BookingRepository, *storage.CustomerRepository, *clockwork.FakeClock, string) {
	t.Helper()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "lodge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = storage.RunMigrations(context.Background(), db, zap.NewNop())
	require.NoError(t, err)

	cabin := &models.Cabin{Name: "001", Capacity: 2, Price: 200}
	require.NoError(t, storage.NewCabinRepository(db).Create(context.Background(), cabin))

	clock := clockwork.NewFakeClockAt(t1)
	bookings := storage.NewBookingRepository(db)
	bookings.SetClock(clock)
	customers := storage.NewCustomerRepository(db)
	customers.SetClock(clock)

	return bookings, customers, clock, cabin.ID
}

func TestReconcilerRun(t *testing.T) {
	ctx := context.Background()
	bookings, customers, clock, cabinID := setup(t)

	require.NoError(t, bookings.CreateIfAvailable(ctx, &models.Booking{
		CabinID: cabinID, CustomerID: "x", CheckIn: t1.AddDate(0, 5, 0), CheckOut: t1.AddDate(0, 5, 3),
		NumNights: 3, NumGuests: 2, CabinPrice: 200, TotalPrice: 600, Status: models.BookingStatusConfirmed,
	}))
	clock.Advance(t2.Sub(t1))
	require.NoError(t, bookings.CreateIfAvailable(ctx, &models.Booking{
		CabinID: cabinID, CustomerID: "x", CheckIn: t1.AddDate(0, 7, 0), CheckOut: t1.AddDate(0, 7, 1),
		NumNights: 1, NumGuests: 1, CabinPrice: 300, TotalPrice: 300, Status: models.BookingStatusCancelled,
	}))

	var notified []Result
	r := NewReconciler(bookings, customers, notifierFunc(func(res Result) { notified = append(notified, res) }), zap.NewNop())

	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Bookings)
	assert.Equal(t, 1, res.Customers)
	assert.Equal(t, 1, res.Updated)
	assert.Empty(t, res.Failed)
	require.Len(t, notified, 1)

	got, err := customers.GetByID(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalBookings)
	assert.Equal(t, 600.0, got.TotalSpent)
	require.NotNil(t, got.LastBookingDate)
	assert.True(t, got.LastBookingDate.Equal(t2))
}

func TestReconcilerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	bookings, customers, clock, cabinID := setup(t)

	for i, id := range []string{"b", "a", "c", "a"} {
		clock.Advance(time.Hour)
		require.NoError(t, bookings.CreateIfAvailable(ctx, &models.Booking{
			CabinID: cabinID, CustomerID: id,
			CheckIn: t1.AddDate(0, 1, i*3), CheckOut: t1.AddDate(0, 1, i*3+2),
			NumNights: 2, NumGuests: 1, CabinPrice: 100, TotalPrice: 200,
		}))
	}

	r := NewReconciler(bookings, customers, nil, zap.NewNop())

	_, err := r.Run(ctx)
	require.NoError(t, err)
	first, err := customers.List(ctx)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	_, err = r.Run(ctx)
	require.NoError(t, err)
	second, err := customers.List(ctx)
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, first, second)
}

type flakyStore struct {
	failFor map[string]bool
	saved   []string
}

func (s *flakyStore) Upsert(_ context.Context, c *models.Customer) error {
	if s.failFor[c.ID] {
		return errors.New("write failed")
	}
	s.saved = append(s.saved, c.ID)
	return nil
}

type staticSource []models.Booking

func (s staticSource) ListAll(context.Context) ([]models.Booking, error) { return s, nil }

type brokenSource struct{}

func (brokenSource) ListAll(context.Context) ([]models.Booking, error) {
	return nil, errors.New("database unavailable")
}

func TestReconcilerIsolatesCustomerFailures(t *testing.T) {
	source := staticSource{
		{CustomerID: "a", TotalPrice: 10, CreatedAt: t1},
		{CustomerID: "b", TotalPrice: 20, CreatedAt: t1},
		{CustomerID: "c", TotalPrice: 30, CreatedAt: t1},
	}
	store := &flakyStore{failFor: map[string]bool{"b": true}}

	res, err := NewReconciler(source, store, nil, zap.NewNop()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "customer b")
	assert.Equal(t, []string{"a", "c"}, store.saved)
	assert.Equal(t, []string{"b"}, res.Failed)
	assert.Equal(t, 2, res.Updated)
}

func TestReconcilerLoadFailure(t *testing.T) {
	_, err := NewReconciler(brokenSource{}, &flakyStore{}, nil, zap.NewNop()).Run(context.Background())
	require.Error(t, err)
}

func TestScheduler(t *testing.T) {
	store := &flakyStore{}
	r := NewReconciler(staticSource{{CustomerID: "a", CreatedAt: t1}}, store, nil, zap.NewNop())

	_, err := NewScheduler(r, "whenever", zap.NewNop())
	require.Error(t, err)

	s, err := NewScheduler(r, "@daily", zap.NewNop())
	require.NoError(t, err)

	s.Start()
	assert.False(t, s.NextRun().IsZero())

	res, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	s.Stop()
}

func TestSchedulerDisabled(t *testing.T) {
	r := NewReconciler(staticSource{{CustomerID: "a", CreatedAt: t1}}, &flakyStore{}, nil, zap.NewNop())

	s, err := NewScheduler(r, "", zap.NewNop())
	require.NoError(t, err)

	s.Start()
	defer s.Stop()
	assert.True(t, s.NextRun().IsZero())

	res, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Customers)
}

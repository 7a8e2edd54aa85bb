package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodge-admin/backend/internal/storage/models"
)

func newBooking(cabinID, customerID, checkIn, checkOut, status string) *models.Booking {
	in, out := date(checkIn), date(checkOut)
	nights := models.Nights(in, out)
	return &models.Booking{
		CabinID:    cabinID,
		CustomerID: customerID,
		CheckIn:    in,
		CheckOut:   out,
		NumNights:  nights,
		NumGuests:  2,
		CabinPrice: 100,
		TotalPrice: float64(nights) * 100,
		Status:     status,
	}
}

func TestBookingRepositoryFindOverlapping(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cabin := createCabin(t, NewCabinRepository(db), "001", 100)
	other := createCabin(t, NewCabinRepository(db), "002", 100)
	repo := NewBookingRepository(db)

	june := newBooking(cabin.ID, "u1", "2027-06-01", "2027-06-04", models.BookingStatusConfirmed)
	cancelled := newBooking(cabin.ID, "u2", "2027-06-10", "2027-06-12", models.BookingStatusCancelled)
	elsewhere := newBooking(other.ID, "u3", "2027-06-01", "2027-06-04", models.BookingStatusConfirmed)
	for _, b := range []*models.Booking{june, cancelled, elsewhere} {
		insertBooking(t, repo, b)
	}

	tests := []struct {
		name       string
		start, end string
		want       []string
	}{
		{"containing range", "2027-05-01", "2027-07-01", []string{june.ID}},
		{"checkout day is free", "2027-06-04", "2027-06-08", nil},
		{"ends on check-in day", "2027-05-25", "2027-06-01", nil},
		{"last night", "2027-06-03", "2027-06-04", []string{june.ID}},
		{"cancelled never returned", "2027-06-09", "2027-06-13", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindOverlapping(ctx, cabin.ID, date(tt.start), date(tt.end))
			require.NoError(t, err)

			var ids []string
			for _, b := range got {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestBookingRepositoryCreateIfAvailable(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cabin := createCabin(t, NewCabinRepository(db), "001", 100)
	repo := NewBookingRepository(db)

	require.NoError(t, repo.CreateIfAvailable(ctx, newBooking(cabin.ID, "u1", "2027-06-01", "2027-06-04", "")))

	err := repo.CreateIfAvailable(ctx, newBooking(cabin.ID, "u2", "2027-06-03", "2027-06-05", ""))
	require.ErrorIs(t, err, ErrBookingOverlap)

	// Back-to-back stays share the turnover day.
	require.NoError(t, repo.CreateIfAvailable(ctx, newBooking(cabin.ID, "u2", "2027-06-04", "2027-06-06", "")))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.BookingStatusUnconfirmed, all[0].Status)
}

func TestBookingRepositoryCreateIfAvailableConcurrent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cabin := createCabin(t, NewCabinRepository(db), "001", 100)
	repo := NewBookingRepository(db)

	const n = 30
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			b := newBooking(cabin.ID, fmt.Sprintf("u%d", i), "2027-06-01", "2027-06-04", models.BookingStatusConfirmed)
			errs[i] = repo.CreateIfAvailable(ctx, b)
		}(i)
	}
	close(start)
	wg.Wait()

	created, overlaps := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrBookingOverlap):
			overlaps++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, overlaps)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBookingRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cabin := createCabin(t, NewCabinRepository(db), "001", 100)
	repo := NewBookingRepository(db)

	first := newBooking(cabin.ID, "u1", "2027-06-01", "2027-06-04", models.BookingStatusConfirmed)
	second := newBooking(cabin.ID, "u2", "2027-06-10", "2027-06-12", models.BookingStatusConfirmed)
	insertBooking(t, repo, first)
	insertBooking(t, repo, second)

	// Extending a stay within its own dates does not conflict with itself.
	first.CheckOut = date("2027-06-05")
	require.NoError(t, repo.Update(ctx, first))

	first.CheckOut = date("2027-06-11")
	require.ErrorIs(t, repo.Update(ctx, first), ErrBookingOverlap)

	first.Status = models.BookingStatusCancelled
	require.NoError(t, repo.Update(ctx, first))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.CheckOut.Equal(date("2027-06-11")))

	missing := newBooking(cabin.ID, "u1", "2028-01-01", "2028-01-02", models.BookingStatusConfirmed)
	missing.ID = "missing"
	require.ErrorIs(t, repo.Update(ctx, missing), ErrNotFound)
}

func TestBookingRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cabin := createCabin(t, NewCabinRepository(db), "001", 100)
	repo := NewBookingRepository(db)

	clock := clockwork.NewFakeClockAt(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	repo.SetClock(clock)

	a := newBooking(cabin.ID, "u1", "2027-06-01", "2027-06-04", models.BookingStatusConfirmed)
	insertBooking(t, repo, a)
	clock.Advance(time.Minute)
	b := newBooking(cabin.ID, "u2", "2027-07-01", "2027-07-04", models.BookingStatusUnconfirmed)
	insertBooking(t, repo, b)

	all, err := repo.List(ctx, models.BookingFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, b.ID, all[0].ID, "newest first")

	byCustomer, err := repo.List(ctx, models.BookingFilter{CustomerID: "u1"})
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)
	assert.Equal(t, a.ID, byCustomer[0].ID)

	byStatus, err := repo.List(ctx, models.BookingFilter{Status: models.BookingStatusUnconfirmed, CabinID: cabin.ID})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, b.ID, byStatus[0].ID)
}

func TestBookingRepositoryCounts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cabin := createCabin(t, NewCabinRepository(db), "001", 100)
	repo := NewBookingRepository(db)

	today := date("2027-06-10")
	tomorrow := date("2027-06-11")

	for _, b := range []*models.Booking{
		newBooking(cabin.ID, "u1", "2027-06-10", "2027-06-12", models.BookingStatusConfirmed),
		newBooking(cabin.ID, "u2", "2027-06-10", "2027-06-13", models.BookingStatusCancelled),
		newBooking(cabin.ID, "u3", "2027-06-08", "2027-06-10", models.BookingStatusCancelled),
		newBooking(cabin.ID, "u4", "2027-06-07", "2027-06-10", models.BookingStatusCheckedIn),
		newBooking(cabin.ID, "u5", "2027-06-11", "2027-06-14", models.BookingStatusUnconfirmed),
	} {
		insertBooking(t, repo, b)
	}

	checkIns, err := repo.CountCheckInsBetween(ctx, today, tomorrow)
	require.NoError(t, err)
	assert.Equal(t, 1, checkIns)

	checkOuts, err := repo.CountCheckOutsBetween(ctx, today, tomorrow)
	require.NoError(t, err)
	assert.Equal(t, 2, checkOuts)

	checkedIn, err := repo.CountByStatus(ctx, models.BookingStatusCheckedIn)
	require.NoError(t, err)
	assert.Equal(t, 1, checkedIn)
}

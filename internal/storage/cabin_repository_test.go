package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodge-admin/backend/internal/storage/models"
)

func TestCabinRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewCabinRepository(newTestDB(t))

	cabin := &models.Cabin{
		Name:      "001",
		Capacity:  2,
		Price:     250,
		Discount:  25,
		Amenities: []string{"sauna", "fireplace"},
	}
	require.NoError(t, repo.Create(ctx, cabin))
	require.NotEmpty(t, cabin.ID)
	assert.Equal(t, models.CabinStatusAvailable, cabin.Status)

	got, err := repo.GetByID(ctx, cabin.ID)
	require.NoError(t, err)
	assert.Equal(t, "001", got.Name)
	assert.Equal(t, []string{"sauna", "fireplace"}, got.Amenities)
	assert.Equal(t, 225.0, got.NightlyRate())

	got.Capacity = 3
	got.Status = models.CabinStatusMaintenance
	require.NoError(t, repo.Update(ctx, got))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].Capacity)
	assert.Equal(t, models.CabinStatusMaintenance, list[0].Status)

	require.NoError(t, repo.Delete(ctx, cabin.ID))
	_, err = repo.GetByID(ctx, cabin.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, cabin.ID), ErrNotFound)
}

func TestCabinRepositoryRejectsDiscountAtOrAbovePrice(t *testing.T) {
	ctx := context.Background()
	repo := NewCabinRepository(newTestDB(t))

	err := repo.Create(ctx, &models.Cabin{Name: "a", Capacity: 2, Price: 100, Discount: 100})
	require.ErrorIs(t, err, ErrDiscountExceedsPrice)

	cabin := createCabin(t, repo, "b", 100)
	cabin.Discount = 150
	require.ErrorIs(t, repo.Update(ctx, cabin), ErrDiscountExceedsPrice)
}

func TestCabinRepositoryDuplicateName(t *testing.T) {
	repo := NewCabinRepository(newTestDB(t))
	createCabin(t, repo, "001", 100)

	err := repo.Create(context.Background(), &models.Cabin{Name: "001", Capacity: 2, Price: 90})
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestCabinRepositoryDeleteGuardsActiveBookings(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	cabins := NewCabinRepository(db)
	bookings := NewBookingRepository(db)

	cabin := createCabin(t, cabins, "001", 100)
	booking := &models.Booking{
		CabinID: cabin.ID, CustomerID: "user-1",
		CheckIn: date("2027-06-01"), CheckOut: date("2027-06-04"),
		NumNights: 3, NumGuests: 2, CabinPrice: 100, TotalPrice: 300,
		Status: models.BookingStatusConfirmed,
	}
	insertBooking(t, bookings, booking)

	require.ErrorIs(t, cabins.Delete(ctx, cabin.ID), ErrCabinInUse)

	require.NoError(t, bookings.UpdateStatus(ctx, booking.ID, models.BookingStatusCheckedOut))
	require.NoError(t, cabins.Delete(ctx, cabin.ID))

	_, err := bookings.GetByID(ctx, booking.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCabinRepositoryBulkDiscount(t *testing.T) {
	ctx := context.Background()
	repo := NewCabinRepository(newTestDB(t))

	cheap := createCabin(t, repo, "cheap", 50)
	pricey := createCabin(t, repo, "pricey", 400)

	t.Run("all or nothing", func(t *testing.T) {
		_, err := repo.BulkDiscount(ctx, []string{cheap.ID, pricey.ID}, 60)
		require.ErrorIs(t, err, ErrDiscountExceedsPrice)

		got, err := repo.GetByID(ctx, pricey.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Discount)
	})

	t.Run("unknown cabin", func(t *testing.T) {
		_, err := repo.BulkDiscount(ctx, []string{pricey.ID, "missing"}, 10)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("applies", func(t *testing.T) {
		n, err := repo.BulkDiscount(ctx, []string{cheap.ID, pricey.ID, cheap.ID}, 20)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		got, err := repo.GetByID(ctx, cheap.ID)
		require.NoError(t, err)
		assert.Equal(t, 20.0, got.Discount)
	})
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodge-admin/backend/internal/storage/models"
)

func TestCustomerRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(newTestDB(t))

	last := time.Date(2027, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Upsert(ctx, &models.Customer{ID: "u1", TotalBookings: 1, TotalSpent: 300, LastBookingDate: &last}))
	require.NoError(t, repo.Upsert(ctx, &models.Customer{ID: "u1", TotalBookings: 2, TotalSpent: 600, LastBookingDate: &last}))
	require.NoError(t, repo.Upsert(ctx, &models.Customer{ID: "u0"}))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalBookings)
	assert.Equal(t, 600.0, got.TotalSpent)
	require.NotNil(t, got.LastBookingDate)
	assert.True(t, got.LastBookingDate.Equal(last))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u0", list[0].ID)
	assert.Nil(t, list[0].LastBookingDate)

	_, err = repo.GetByID(ctx, "nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestDB(t))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), got)

	got.MaxGuestsPerBooking = 6
	got.BreakfastPrice = 12.5
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.MaxGuestsPerBooking)
	assert.Equal(t, 12.5, updated.BreakfastPrice)
}

func TestCustomerRepositoryUpsertUnchangedKeepsRow(t *testing.T) {
	ctx := context.Background()
	repo := NewCustomerRepository(newTestDB(t))
	clock := clockwork.NewFakeClockAt(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	repo.SetClock(clock)

	require.NoError(t, repo.Upsert(ctx, &models.Customer{ID: "u1", TotalBookings: 1, TotalSpent: 100}))
	first, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	require.NoError(t, repo.Upsert(ctx, &models.Customer{ID: "u1", TotalBookings: 1, TotalSpent: 100}))
	second, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	clock.Advance(time.Hour)
	require.NoError(t, repo.Upsert(ctx, &models.Customer{ID: "u1", TotalBookings: 2, TotalSpent: 100}))
	third, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, third.UpdatedAt.After(second.UpdatedAt))
}

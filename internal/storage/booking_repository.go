package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lodge-admin/backend/internal/storage/models"
)

// ErrBookingOverlap is returned when a booking would overlap a non-cancelled
// booking of the same cabin.
var ErrBookingOverlap = errors.New("booking overlaps an existing booking")

const bookingColumns = `id, cabin_id, customer_id, check_in, check_out, num_nights, num_guests,
	cabin_price, extras_price, total_price, status, observations, created_at, updated_at`

// BookingRepository provides data access for bookings.
type BookingRepository struct {
	BaseRepository
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// CreateIfAvailable inserts a booking only if no non-cancelled booking of the
// same cabin overlaps it. The check and the insert run in one transaction.
func (r *BookingRepository) CreateIfAvailable(ctx context.Context, booking *models.Booking) error {
	return r.Transaction(ctx, func(tx *sql.Tx) error {
		overlapping, err := findOverlapping(ctx, tx, booking.CabinID, booking.CheckIn, booking.CheckOut, "")
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return ErrBookingOverlap
		}
		return r.insert(ctx, tx, booking)
	})
}

func (r *BookingRepository) insert(ctx context.Context, q Queryable, booking *models.Booking) error {
	booking.ID = GenerateID()
	booking.CreatedAt = r.Now()
	booking.UpdatedAt = booking.CreatedAt
	if booking.Status == "" {
		booking.Status = models.BookingStatusUnconfirmed
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		booking.ID, booking.CabinID, booking.CustomerID,
		FormatTime(booking.CheckIn), FormatTime(booking.CheckOut),
		booking.NumNights, booking.NumGuests, booking.CabinPrice, booking.ExtrasPrice,
		booking.TotalPrice, booking.Status, booking.Observations,
		FormatTime(booking.CreatedAt), FormatTime(booking.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by its ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	row := r.DB().QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	booking, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying booking: %w", err)
	}
	return booking, nil
}

// List retrieves bookings matching the filter, most recently created first.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.CabinID != "" {
		where = append(where, "cabin_id = ?")
		args = append(args, filter.CabinID)
	}
	if filter.CustomerID != "" {
		where = append(where, "customer_id = ?")
		args = append(args, filter.CustomerID)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return queryBookings(ctx, r.DB(), query, args...)
}

// ListAll retrieves every booking in creation order.
func (r *BookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	return queryBookings(ctx, r.DB(), `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at, id`)
}

// FindOverlapping returns the non-cancelled bookings of a cabin whose stay
// intersects [start, end), ordered by check-in.
func (r *BookingRepository) FindOverlapping(ctx context.Context, cabinID string, start, end time.Time) ([]models.Booking, error) {
	return findOverlapping(ctx, r.DB(), cabinID, start, end, "")
}

func findOverlapping(ctx context.Context, q Queryable, cabinID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	bookings, err := queryBookings(ctx, q, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE cabin_id = ? AND status != ? AND check_in < ? AND check_out > ? AND id != ?
		ORDER BY check_in, id
	`, cabinID, models.BookingStatusCancelled, FormatTime(end), FormatTime(start), excludeID)
	if err != nil {
		return nil, fmt.Errorf("querying overlapping bookings: %w", err)
	}
	return bookings, nil
}

// Update overwrites the editable fields of a booking. When the booking is
// not cancelled the new stay must not overlap another booking of the cabin.
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	booking.UpdatedAt = r.Now()

	return r.Transaction(ctx, func(tx *sql.Tx) error {
		if booking.Status != models.BookingStatusCancelled {
			overlapping, err := findOverlapping(ctx, tx, booking.CabinID, booking.CheckIn, booking.CheckOut, booking.ID)
			if err != nil {
				return err
			}
			if len(overlapping) > 0 {
				return ErrBookingOverlap
			}
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE bookings SET
				cabin_id = ?, check_in = ?, check_out = ?, num_nights = ?, num_guests = ?,
				cabin_price = ?, extras_price = ?, total_price = ?, status = ?,
				observations = ?, updated_at = ?
			WHERE id = ?
		`,
			booking.CabinID, FormatTime(booking.CheckIn), FormatTime(booking.CheckOut),
			booking.NumNights, booking.NumGuests, booking.CabinPrice, booking.ExtrasPrice,
			booking.TotalPrice, booking.Status, booking.Observations,
			FormatTime(booking.UpdatedAt), booking.ID,
		)
		if err != nil {
			return fmt.Errorf("updating booking: %w", err)
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// UpdateStatus sets the status of a booking.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id, status string) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?
	`, status, FormatTime(r.Now()), id)
	if err != nil {
		return fmt.Errorf("updating booking status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a booking by ID.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// CountCheckInsBetween counts non-cancelled bookings checking in within [start, end).
func (r *BookingRepository) CountCheckInsBetween(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.DB().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE check_in >= ? AND check_in < ? AND status != ?
	`, FormatTime(start), FormatTime(end), models.BookingStatusCancelled).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting check-ins: %w", err)
	}
	return n, nil
}

// CountCheckOutsBetween counts bookings checking out within [start, end),
// whatever their status.
func (r *BookingRepository) CountCheckOutsBetween(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.DB().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE check_out >= ? AND check_out < ?
	`, FormatTime(start), FormatTime(end)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting check-outs: %w", err)
	}
	return n, nil
}

// CountByStatus counts bookings currently in the given status.
func (r *BookingRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE status = ?", status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s bookings: %w", status, err)
	}
	return n, nil
}

func queryBookings(ctx context.Context, q Queryable, query string, args ...any) ([]models.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b                                       models.Booking
		checkIn, checkOut, createdAt, updatedAt string
	)
	if err := row.Scan(
		&b.ID, &b.CabinID, &b.CustomerID, &checkIn, &checkOut, &b.NumNights, &b.NumGuests,
		&b.CabinPrice, &b.ExtrasPrice, &b.TotalPrice, &b.Status, &b.Observations,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if b.CheckIn, err = ParseTime(checkIn); err != nil {
		return nil, err
	}
	if b.CheckOut, err = ParseTime(checkOut); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = ParseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return nil, err
	}

	return &b, nil
}

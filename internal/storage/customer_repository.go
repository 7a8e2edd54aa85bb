package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lodge-admin/backend/internal/storage/models"
)

const customerColumns = `id, total_bookings, total_spent, last_booking_date, updated_at`

// CustomerRepository provides data access for customer aggregates.
type CustomerRepository struct {
	BaseRepository
}

// NewCustomerRepository creates a new customer repository.
func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Upsert creates the customer aggregate or overwrites the existing one.
// An unchanged aggregate is left untouched, updated_at included.
func (r *CustomerRepository) Upsert(ctx context.Context, customer *models.Customer) error {
	customer.UpdatedAt = r.Now()

	var lastBooking *string
	if customer.LastBookingDate != nil {
		s := FormatTime(*customer.LastBookingDate)
		lastBooking = &s
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			total_bookings = excluded.total_bookings,
			total_spent = excluded.total_spent,
			last_booking_date = excluded.last_booking_date,
			updated_at = excluded.updated_at
		WHERE total_bookings != excluded.total_bookings
		   OR total_spent != excluded.total_spent
		   OR last_booking_date IS NOT excluded.last_booking_date
	`,
		customer.ID, customer.TotalBookings, customer.TotalSpent, lastBooking,
		FormatTime(customer.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting customer %s: %w", customer.ID, err)
	}

	return nil
}

// GetByID retrieves a customer aggregate by identity provider subject id.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	row := r.DB().QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	customer, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer: %w", err)
	}
	return customer, nil
}

// List retrieves all customer aggregates ordered by id.
func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	rows, err := r.DB().QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		customers = append(customers, *customer)
	}

	return customers, rows.Err()
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var (
		c           models.Customer
		lastBooking sql.NullString
		updatedAt   string
	)
	if err := row.Scan(&c.ID, &c.TotalBookings, &c.TotalSpent, &lastBooking, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.LastBookingDate, err = parseNullTime(lastBooking); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return nil, err
	}

	return &c, nil
}

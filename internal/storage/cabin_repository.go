package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/lodge-admin/backend/internal/storage/models"
)

var (
	// ErrDiscountExceedsPrice is returned when a cabin discount is not below its price.
	ErrDiscountExceedsPrice = errors.New("discount must be less than price")
	// ErrCabinInUse is returned when deleting a cabin that still has active bookings.
	ErrCabinInUse = errors.New("cabin has active bookings")
	// ErrDuplicate is returned when a unique column would be duplicated.
	ErrDuplicate = errors.New("duplicate value")
)

const cabinColumns = `id, name, description, capacity, price, discount, image, amenities, status, created_at, updated_at`

// CabinRepository provides data access for cabins.
type CabinRepository struct {
	BaseRepository
}

// NewCabinRepository creates a new cabin repository.
func NewCabinRepository(db *DB) *CabinRepository {
	return &CabinRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new cabin.
func (r *CabinRepository) Create(ctx context.Context, cabin *models.Cabin) error {
	if !cabin.ValidDiscount() {
		return ErrDiscountExceedsPrice
	}
	if cabin.Status == "" {
		cabin.Status = models.CabinStatusAvailable
	}

	amenities, err := encodeAmenities(cabin.Amenities)
	if err != nil {
		return err
	}

	cabin.ID = GenerateID()
	cabin.CreatedAt = r.Now()
	cabin.UpdatedAt = cabin.CreatedAt

	_, err = r.DB().ExecContext(ctx, `
		INSERT INTO cabins (`+cabinColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		cabin.ID, cabin.Name, cabin.Description, cabin.Capacity, cabin.Price,
		cabin.Discount, cabin.Image, amenities, cabin.Status,
		FormatTime(cabin.CreatedAt), FormatTime(cabin.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting cabin: %w", translateConstraint(err))
	}

	return nil
}

// GetByID retrieves a cabin by its ID.
func (r *CabinRepository) GetByID(ctx context.Context, id string) (*models.Cabin, error) {
	return getCabin(ctx, r.DB(), id)
}

func getCabin(ctx context.Context, q Queryable, id string) (*models.Cabin, error) {
	row := q.QueryRowContext(ctx, `SELECT `+cabinColumns+` FROM cabins WHERE id = ?`, id)
	cabin, err := scanCabin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying cabin: %w", err)
	}
	return cabin, nil
}

// List retrieves all cabins ordered by name.
func (r *CabinRepository) List(ctx context.Context) ([]models.Cabin, error) {
	rows, err := r.DB().QueryContext(ctx, `SELECT `+cabinColumns+` FROM cabins ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying cabins: %w", err)
	}
	defer rows.Close()

	cabins := []models.Cabin{}
	for rows.Next() {
		cabin, err := scanCabin(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cabin: %w", err)
		}
		cabins = append(cabins, *cabin)
	}

	return cabins, rows.Err()
}

// Update overwrites the editable fields of an existing cabin.
func (r *CabinRepository) Update(ctx context.Context, cabin *models.Cabin) error {
	if !cabin.ValidDiscount() {
		return ErrDiscountExceedsPrice
	}

	amenities, err := encodeAmenities(cabin.Amenities)
	if err != nil {
		return err
	}
	cabin.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE cabins SET
			name = ?, description = ?, capacity = ?, price = ?, discount = ?,
			image = ?, amenities = ?, status = ?, updated_at = ?
		WHERE id = ?
	`,
		cabin.Name, cabin.Description, cabin.Capacity, cabin.Price, cabin.Discount,
		cabin.Image, amenities, cabin.Status, FormatTime(cabin.UpdatedAt), cabin.ID,
	)
	if err != nil {
		return fmt.Errorf("updating cabin: %w", translateConstraint(err))
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a cabin unless it still has active bookings.
func (r *CabinRepository) Delete(ctx context.Context, id string) error {
	return r.Transaction(ctx, func(tx *sql.Tx) error {
		var active int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM bookings
			WHERE cabin_id = ? AND status IN (`+inPlaceholders(len(models.ActiveBookingStatuses))+`)
		`, append([]any{id}, stringArgs(models.ActiveBookingStatuses)...)...).Scan(&active)
		if err != nil {
			return fmt.Errorf("counting active bookings: %w", err)
		}
		if active > 0 {
			return ErrCabinInUse
		}

		// Finished and cancelled stays go with the cabin.
		if _, err := tx.ExecContext(ctx, "DELETE FROM bookings WHERE cabin_id = ?", id); err != nil {
			return fmt.Errorf("deleting cabin bookings: %w", err)
		}

		result, err := tx.ExecContext(ctx, "DELETE FROM cabins WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting cabin: %w", err)
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// BulkDiscount sets the same discount on every listed cabin. Either all
// cabins are updated or none: a missing cabin yields ErrNotFound and a cabin
// priced at or below the discount yields ErrDiscountExceedsPrice.
func (r *CabinRepository) BulkDiscount(ctx context.Context, ids []string, discount float64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if discount < 0 {
		return 0, ErrDiscountExceedsPrice
	}

	err := r.Transaction(ctx, func(tx *sql.Tx) error {
		args := stringArgs(ids)
		rows, err := tx.QueryContext(ctx, `
			SELECT id, price FROM cabins WHERE id IN (`+inPlaceholders(len(ids))+`)
		`, args...)
		if err != nil {
			return fmt.Errorf("querying cabin prices: %w", err)
		}

		found := 0
		for rows.Next() {
			var id string
			var price float64
			if err := rows.Scan(&id, &price); err != nil {
				rows.Close()
				return fmt.Errorf("scanning cabin price: %w", err)
			}
			if discount >= price {
				rows.Close()
				return fmt.Errorf("cabin %s: %w", id, ErrDiscountExceedsPrice)
			}
			found++
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if found != len(uniqueStrings(ids)) {
			return ErrNotFound
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE cabins SET discount = ?, updated_at = ?
			WHERE id IN (`+inPlaceholders(len(ids))+`)
		`, append([]any{discount, FormatTime(r.Now())}, args...)...)
		if err != nil {
			return fmt.Errorf("updating discounts: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(uniqueStrings(ids)), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCabin(row rowScanner) (*models.Cabin, error) {
	var (
		cabin                models.Cabin
		amenities            string
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&cabin.ID, &cabin.Name, &cabin.Description, &cabin.Capacity, &cabin.Price,
		&cabin.Discount, &cabin.Image, &amenities, &cabin.Status, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(amenities), &cabin.Amenities); err != nil {
		return nil, fmt.Errorf("decoding amenities: %w", err)
	}
	if cabin.Amenities == nil {
		cabin.Amenities = []string{}
	}

	var err error
	if cabin.CreatedAt, err = ParseTime(createdAt); err != nil {
		return nil, err
	}
	if cabin.UpdatedAt, err = ParseTime(updatedAt); err != nil {
		return nil, err
	}

	return &cabin, nil
}

func encodeAmenities(amenities []string) (string, error) {
	if amenities == nil {
		amenities = []string{}
	}
	data, err := json.Marshal(amenities)
	if err != nil {
		return "", fmt.Errorf("encoding amenities: %w", err)
	}
	return string(data), nil
}

func translateConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicate
	}
	return err
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func uniqueStrings(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/absensi-dev/absensi-api/internal/models"
)

// ErrAlreadyLinked is returned when a registration races or repeats a link.
var ErrAlreadyLinked = errors.New("device already linked to a student")

// DeviceRepository manages persistence for device records.
type DeviceRepository struct {
	db *sqlx.DB
}

// NewDeviceRepository constructs a DeviceRepository.
func NewDeviceRepository(db *sqlx.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// List returns all devices ordered by first contact.
func (r *DeviceRepository) List(ctx context.Context) ([]models.Device, error) {
	const query = `SELECT id, mac, student_id, created_at FROM devices ORDER BY created_at`
	var devices []models.Device
	if err := r.db.SelectContext(ctx, &devices, query); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// FindByID fetches a device by ID.
func (r *DeviceRepository) FindByID(ctx context.Context, id string) (*models.Device, error) {
	const query = `SELECT id, mac, student_id, created_at FROM devices WHERE id = $1`
	var device models.Device
	if err := r.db.GetContext(ctx, &device, query, id); err != nil {
		return nil, err
	}
	return &device, nil
}

// GetOrCreate returns the device for a MAC, creating it on first contact.
// The insert defers to the unique constraint on mac, so two racing callers
// converge on the same row.
func (r *DeviceRepository) GetOrCreate(ctx context.Context, mac string) (*models.Device, error) {
	const insert = `INSERT INTO devices (id, mac, created_at) VALUES ($1, $2, $3)
        ON CONFLICT (mac) DO NOTHING
        RETURNING id, mac, student_id, created_at`
	var device models.Device
	err := r.db.GetContext(ctx, &device, insert, uuid.NewString(), mac, time.Now().UTC())
	if err == nil {
		return &device, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("create device: %w", err)
	}

	const get = `SELECT id, mac, student_id, created_at FROM devices WHERE mac = $1`
	if err := r.db.GetContext(ctx, &device, get, mac); err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	return &device, nil
}

// LinkStudent sets the device's student once. A device that is already
// linked is left untouched and reported via ErrAlreadyLinked.
func (r *DeviceRepository) LinkStudent(ctx context.Context, deviceID, studentID string) error {
	const query = `UPDATE devices SET student_id = $2 WHERE id = $1 AND student_id IS NULL`
	res, err := r.db.ExecContext(ctx, query, deviceID, studentID)
	if err != nil {
		return fmt.Errorf("link device: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("link device: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyLinked
	}
	return nil
}

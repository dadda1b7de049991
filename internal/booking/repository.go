package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrDateConflict      = errors.New("vehicle already booked for an overlapping range")
	ErrInvalidTransition = errors.New("invalid booking state transition")
)

const bookingColumns = `
	id, vehicle_id, company_id, customer_id, customer_name, customer_email,
	customer_phone, national_id, driver_license, pickup_at, return_at,
	rental_days, price_per_day_cents, deposit_cents, subtotal_cents,
	pickup_mileage, return_mileage, km_driven, extra_km,
	extra_km_charge_cents, extra_charges_cents, extra_charges_description,
	total_amount_cents, status, notes, created_at, updated_at
`

// Statuses that keep a vehicle blocked for their date range.
const activeStatuses = `('pending', 'confirmed', 'picked_up', 'returned', 'completed')`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBooking(ctx context.Context, b *Booking) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// The vehicle row lock serializes concurrent creations for the same
	// vehicle, so the overlap probe below cannot race another writer.
	var vehicleID int
	err = tx.GetContext(ctx, &vehicleID, `SELECT id FROM vehicles WHERE id = $1 FOR UPDATE`, b.VehicleID)
	if err != nil {
		return nil, err
	}

	var overlaps bool
	err = tx.GetContext(ctx, &overlaps,
		`SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE vehicle_id = $1
			  AND status IN `+activeStatuses+`
			  AND pickup_at < $3 AND $2 < return_at
		)`,
		b.VehicleID, b.PickupAt, b.ReturnAt,
	)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, ErrDateConflict
	}

	var created Booking
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO bookings (
			vehicle_id, company_id, customer_id, customer_name, customer_email,
			customer_phone, national_id, driver_license, pickup_at, return_at,
			rental_days, price_per_day_cents, deposit_cents, subtotal_cents,
			total_amount_cents, status, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14, 'pending', $15)
		RETURNING `+bookingColumns,
		b.VehicleID, b.CompanyID, b.CustomerID, b.CustomerName, b.CustomerEmail,
		b.CustomerPhone, b.NationalID, b.DriverLicense, b.PickupAt, b.ReturnAt,
		b.RentalDays, b.PricePerDayCents, b.DepositCents, b.SubtotalCents,
		b.Notes,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) HasOverlap(ctx context.Context, vehicleID int, pickup, ret time.Time) (bool, error) {
	var overlaps bool
	err := r.db.GetContext(ctx, &overlaps,
		`SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE vehicle_id = $1
			  AND status IN `+activeStatuses+`
			  AND pickup_at < $3 AND $2 < return_at
		)`,
		vehicleID, pickup, ret,
	)
	if err != nil {
		return false, err
	}

	return overlaps, nil
}

// transition flips status under a from-state guard. Zero rows affected means
// either the booking is gone or it sits in a state the action does not allow.
func (r *repository) transition(ctx context.Context, id int, to BookingStatus, fromCondition string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status `+fromCondition,
		id, to,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return r.transitionStateError(ctx, id)
	}

	return nil
}

func (r *repository) transitionStateError(ctx context.Context, id int) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = $1)`, id)
	if err != nil {
		return err
	}
	if !exists {
		return ErrBookingNotFound
	}
	return ErrInvalidTransition
}

func (r *repository) Confirm(ctx context.Context, id int) error {
	return r.transition(ctx, id, StatusConfirmed, `= 'pending'`)
}

func (r *repository) Cancel(ctx context.Context, id int) error {
	return r.transition(ctx, id, StatusCancelled, `IN ('pending', 'confirmed')`)
}

func (r *repository) MarkNoShow(ctx context.Context, id int) error {
	return r.transition(ctx, id, StatusNoShow, `= 'confirmed'`)
}

func (r *repository) RecordPickup(ctx context.Context, id, mileage int, notes *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET status = 'picked_up', pickup_mileage = $2,
			 notes = COALESCE($3, notes), updated_at = NOW()
		 WHERE id = $1 AND status = 'confirmed'`,
		id, mileage, notes,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return r.transitionStateError(ctx, id)
	}

	return nil
}

func (r *repository) RecordReturn(ctx context.Context, id int, upd ReturnUpdate) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings
		 SET status = 'returned', return_mileage = $2, km_driven = $3,
			 extra_km = $4, extra_km_charge_cents = $5,
			 extra_charges_cents = $6, extra_charges_description = $7,
			 total_amount_cents = $8, notes = COALESCE($9, notes),
			 updated_at = NOW()
		 WHERE id = $1 AND status = 'picked_up'`,
		id, upd.ReturnMileage, upd.KmDriven,
		upd.ExtraKm, upd.ExtraKmChargeCents,
		upd.ExtraChargesCents, upd.ExtraChargesDescription,
		upd.TotalAmountCents, upd.Notes,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return r.transitionStateError(ctx, id)
	}

	return nil
}

func (r *repository) Complete(ctx context.Context, id int) error {
	return r.transition(ctx, id, StatusCompleted, `= 'returned'`)
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings,
		`SELECT `+bookingColumns+`
		 FROM bookings
		 WHERE customer_id = $1
		 ORDER BY created_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings,
		`SELECT `+bookingColumns+`
		 FROM bookings
		 WHERE company_id = $1
		 ORDER BY pickup_at DESC, created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListByVehicle(ctx context.Context, vehicleID int) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings,
		`SELECT `+bookingColumns+`
		 FROM bookings
		 WHERE vehicle_id = $1
		 ORDER BY pickup_at DESC`,
		vehicleID,
	)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

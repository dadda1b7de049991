package vehicle

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

const vehicleColumns = `
	id, company_id, brand, model, year, vehicle_type, transmission, fuel_type,
	price_per_day_cents, deposit_cents, mileage_limit_per_day, extra_km_price_cents,
	min_rental_days, max_rental_days, is_available, created_at, updated_at
`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, v *Vehicle) (*Vehicle, error) {
	query := `
		INSERT INTO vehicles (
			company_id, brand, model, year, vehicle_type, transmission, fuel_type,
			price_per_day_cents, deposit_cents, mileage_limit_per_day, extra_km_price_cents,
			min_rental_days, max_rental_days
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + vehicleColumns

	var created Vehicle
	err := r.db.GetContext(ctx, &created, query,
		v.CompanyID, v.Brand, v.Model, v.Year, v.VehicleType, v.Transmission, v.FuelType,
		v.PricePerDayCents, v.DepositCents, v.MileageLimitPerDay, v.ExtraKmPriceCents,
		v.MinRentalDays, v.MaxRentalDays,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	var v Vehicle
	err := r.db.GetContext(ctx, &v, query, id)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (r *repository) ListByCompany(ctx context.Context, companyID int) ([]Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE company_id = $1 ORDER BY created_at DESC`

	var vehicles []Vehicle
	err := r.db.SelectContext(ctx, &vehicles, query, companyID)
	if err != nil {
		return nil, err
	}

	return vehicles, nil
}

func (r *repository) ListAvailable(ctx context.Context) ([]Vehicle, error) {
	query := `
		SELECT
			v.id, v.company_id, v.brand, v.model, v.year, v.vehicle_type, v.transmission, v.fuel_type,
			v.price_per_day_cents, v.deposit_cents, v.mileage_limit_per_day, v.extra_km_price_cents,
			v.min_rental_days, v.max_rental_days, v.is_available, v.created_at, v.updated_at
		FROM vehicles v
		JOIN companies c ON v.company_id = c.id
		WHERE v.is_available = TRUE AND c.is_active = TRUE
		ORDER BY v.created_at DESC
	`

	var vehicles []Vehicle
	err := r.db.SelectContext(ctx, &vehicles, query)
	if err != nil {
		return nil, err
	}

	return vehicles, nil
}

func (r *repository) Update(ctx context.Context, v *Vehicle) (*Vehicle, error) {
	query := `
		UPDATE vehicles
		SET brand = $2, model = $3, year = $4, vehicle_type = $5, transmission = $6,
			fuel_type = $7, price_per_day_cents = $8, deposit_cents = $9,
			mileage_limit_per_day = $10, extra_km_price_cents = $11,
			min_rental_days = $12, max_rental_days = $13, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + vehicleColumns

	var updated Vehicle
	err := r.db.GetContext(ctx, &updated, query,
		v.ID, v.Brand, v.Model, v.Year, v.VehicleType, v.Transmission,
		v.FuelType, v.PricePerDayCents, v.DepositCents,
		v.MileageLimitPerDay, v.ExtraKmPriceCents,
		v.MinRentalDays, v.MaxRentalDays,
	)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *repository) SetAvailability(ctx context.Context, id int, available bool) error {
	query := `
		UPDATE vehicles
		SET is_available = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, available)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrVehicleNotFound
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrVehicleNotFound
	}

	return nil
}

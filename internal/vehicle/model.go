package vehicle

import "time"

type Vehicle struct {
	ID           int    `db:"id" json:"id"`
	CompanyID    int    `db:"company_id" json:"company_id"`
	Brand        string `db:"brand" json:"brand"`
	Model        string `db:"model" json:"model"`
	Year         int    `db:"year" json:"year"`
	VehicleType  string `db:"vehicle_type" json:"vehicle_type"`
	Transmission string `db:"transmission" json:"transmission"`
	FuelType     string `db:"fuel_type" json:"fuel_type"`

	PricePerDayCents int64 `db:"price_per_day_cents" json:"price_per_day_cents"`
	DepositCents     int64 `db:"deposit_cents" json:"deposit_cents"`

	// MileageLimitPerDay is km included per rental day; nil means unlimited.
	MileageLimitPerDay *int  `db:"mileage_limit_per_day" json:"mileage_limit_per_day,omitempty"`
	ExtraKmPriceCents  int64 `db:"extra_km_price_cents" json:"extra_km_price_cents"`

	MinRentalDays *int `db:"min_rental_days" json:"min_rental_days,omitempty"`
	MaxRentalDays *int `db:"max_rental_days" json:"max_rental_days,omitempty"`

	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type CreateVehicleRequest struct {
	CompanyID    int    `json:"company_id" binding:"required"`
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year" binding:"required,gte=1950"`
	VehicleType  string `json:"vehicle_type" binding:"required"`
	Transmission string `json:"transmission" binding:"required"`
	FuelType     string `json:"fuel_type" binding:"required"`

	PricePerDayCents int64 `json:"price_per_day_cents" binding:"required,gt=0"`
	DepositCents     int64 `json:"deposit_cents" binding:"gte=0"`

	MileageLimitPerDay *int  `json:"mileage_limit_per_day,omitempty"`
	ExtraKmPriceCents  int64 `json:"extra_km_price_cents" binding:"gte=0"`

	MinRentalDays *int `json:"min_rental_days,omitempty"`
	MaxRentalDays *int `json:"max_rental_days,omitempty"`
}

type UpdateVehicleRequest struct {
	Brand        string `json:"brand" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Year         int    `json:"year" binding:"required,gte=1950"`
	VehicleType  string `json:"vehicle_type" binding:"required"`
	Transmission string `json:"transmission" binding:"required"`
	FuelType     string `json:"fuel_type" binding:"required"`

	PricePerDayCents int64 `json:"price_per_day_cents" binding:"required,gt=0"`
	DepositCents     int64 `json:"deposit_cents" binding:"gte=0"`

	MileageLimitPerDay *int  `json:"mileage_limit_per_day,omitempty"`
	ExtraKmPriceCents  int64 `json:"extra_km_price_cents" binding:"gte=0"`

	MinRentalDays *int `json:"min_rental_days,omitempty"`
	MaxRentalDays *int `json:"max_rental_days,omitempty"`
}

type SetAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

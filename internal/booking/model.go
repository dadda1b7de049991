package booking

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusPickedUp  BookingStatus = "picked_up"
	StatusReturned  BookingStatus = "returned"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// Booking is one reservation of one vehicle for one date/time range.
// price_per_day and deposit are snapshotted at creation; later vehicle price
// changes never touch an existing booking.
type Booking struct {
	ID        int `db:"id" json:"id"`
	VehicleID int `db:"vehicle_id" json:"vehicle_id"`
	CompanyID int `db:"company_id" json:"company_id"`

	CustomerID    int    `db:"customer_id" json:"customer_id"`
	CustomerName  string `db:"customer_name" json:"customer_name"`
	CustomerEmail string `db:"customer_email" json:"customer_email"`
	CustomerPhone string `db:"customer_phone" json:"customer_phone"`
	NationalID    string `db:"national_id" json:"national_id"`
	DriverLicense string `db:"driver_license" json:"driver_license"`

	PickupAt   time.Time `db:"pickup_at" json:"pickup_at"`
	ReturnAt   time.Time `db:"return_at" json:"return_at"`
	RentalDays int       `db:"rental_days" json:"rental_days"`

	PricePerDayCents int64 `db:"price_per_day_cents" json:"price_per_day_cents"`
	DepositCents     int64 `db:"deposit_cents" json:"deposit_cents"`
	SubtotalCents    int64 `db:"subtotal_cents" json:"subtotal_cents"`

	PickupMileage *int `db:"pickup_mileage" json:"pickup_mileage,omitempty"`
	ReturnMileage *int `db:"return_mileage" json:"return_mileage,omitempty"`
	KmDriven      *int `db:"km_driven" json:"km_driven,omitempty"`
	ExtraKm       *int `db:"extra_km" json:"extra_km,omitempty"`

	ExtraKmChargeCents      int64   `db:"extra_km_charge_cents" json:"extra_km_charge_cents"`
	ExtraChargesCents       int64   `db:"extra_charges_cents" json:"extra_charges_cents"`
	ExtraChargesDescription *string `db:"extra_charges_description" json:"extra_charges_description,omitempty"`
	TotalAmountCents        int64   `db:"total_amount_cents" json:"total_amount_cents"`

	Status    BookingStatus `db:"status" json:"status"`
	Notes     *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// AvailabilityResult is the advisory answer of the availability check.
// Creation re-validates; a true here can still lose the race.
type AvailabilityResult struct {
	Available        bool   `json:"available"`
	Reason           string `json:"reason,omitempty"`
	RentalDays       int    `json:"rental_days"`
	PricePerDayCents int64  `json:"price_per_day_cents"`
	SubtotalCents    int64  `json:"subtotal_cents"`
	DepositCents     int64  `json:"deposit_cents"`
	TotalKmAllowed   *int   `json:"total_km_allowed,omitempty"`
}

type CreateBookingRequest struct {
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerEmail string `json:"customer_email" binding:"required,email"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	NationalID    string `json:"national_id" binding:"required"`
	DriverLicense string `json:"driver_license" binding:"required"`

	PickupDate string `json:"pickup_date" binding:"required"`
	PickupTime string `json:"pickup_time" binding:"required"`
	ReturnDate string `json:"return_date" binding:"required"`
	ReturnTime string `json:"return_time" binding:"required"`

	Notes *string `json:"notes,omitempty"`
}

type PickupRequest struct {
	Mileage *int    `json:"mileage" binding:"required"`
	Notes   *string `json:"notes,omitempty"`
}

type ReturnRequest struct {
	Mileage                 *int    `json:"mileage" binding:"required"`
	ExtraChargesCents       int64   `json:"extra_charges_cents" binding:"gte=0"`
	ExtraChargesDescription *string `json:"extra_charges_description,omitempty"`
	Notes                   *string `json:"notes,omitempty"`
}

// ParseDateTime combines the plain Y-M-D date and HH:MM clock time the
// booking surfaces send. No timezone conversion is applied.
func ParseDateTime(dateStr, timeStr string) (time.Time, error) {
	t, err := time.Parse(DateFormat+" "+TimeFormat, dateStr+" "+timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: use %s and %s", dateStr, timeStr, DateFormat, TimeFormat)
	}
	return t, nil
}

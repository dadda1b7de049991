package pricing

import (
	"errors"
	"time"

	"drivebook/internal/vehicle"
)

var (
	ErrInvalidRange   = errors.New("return must be after pickup")
	ErrRentalTooShort = errors.New("rental shorter than vehicle minimum")
	ErrRentalTooLong  = errors.New("rental longer than vehicle maximum")
	ErrInvalidMileage = errors.New("return mileage below pickup mileage")
)

// Quote is the tentative price breakdown for a candidate rental range.
type Quote struct {
	RentalDays       int    `json:"rental_days"`
	PricePerDayCents int64  `json:"price_per_day_cents"`
	SubtotalCents    int64  `json:"subtotal_cents"`
	DepositCents     int64  `json:"deposit_cents"`
	// TotalKmAllowed is nil when the vehicle has no mileage limit.
	TotalKmAllowed *int `json:"total_km_allowed,omitempty"`
}

// ReturnCharges are the derived amounts recorded when a vehicle comes back.
type ReturnCharges struct {
	KmDriven           int   `json:"km_driven"`
	ExtraKm            int   `json:"extra_km"`
	ExtraKmChargeCents int64 `json:"extra_km_charge_cents"`
	TotalAmountCents   int64 `json:"total_amount_cents"`
}

// RentalDays counts whole days in the span, rounding a partial day up.
func RentalDays(pickup, ret time.Time) (int, error) {
	if !ret.After(pickup) {
		return 0, ErrInvalidRange
	}

	span := ret.Sub(pickup)
	days := int(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		days++
	}
	return days, nil
}

// QuoteFor computes the price breakdown for renting v over [pickup, ret).
// Min/max rental-day bounds on the vehicle are hard validation failures,
// not an unavailability signal.
func QuoteFor(v *vehicle.Vehicle, pickup, ret time.Time) (*Quote, error) {
	days, err := RentalDays(pickup, ret)
	if err != nil {
		return nil, err
	}

	if v.MinRentalDays != nil && days < *v.MinRentalDays {
		return nil, ErrRentalTooShort
	}
	if v.MaxRentalDays != nil && days > *v.MaxRentalDays {
		return nil, ErrRentalTooLong
	}

	q := &Quote{
		RentalDays:       days,
		PricePerDayCents: v.PricePerDayCents,
		SubtotalCents:    v.PricePerDayCents * int64(days),
		DepositCents:     v.DepositCents,
	}

	if v.MileageLimitPerDay != nil {
		allowed := *v.MileageLimitPerDay * days
		q.TotalKmAllowed = &allowed
	}

	return q, nil
}

// ChargesForReturn derives mileage overage and the final amount at return time.
// totalKmAllowed nil means unlimited mileage. extraChargesCents are the
// manually entered damage/cleaning charges.
func ChargesForReturn(pickupMileage, returnMileage int, totalKmAllowed *int, extraKmPriceCents, subtotalCents, extraChargesCents int64) (*ReturnCharges, error) {
	if returnMileage < pickupMileage {
		return nil, ErrInvalidMileage
	}

	rc := &ReturnCharges{
		KmDriven: returnMileage - pickupMileage,
	}

	if totalKmAllowed != nil && rc.KmDriven > *totalKmAllowed {
		rc.ExtraKm = rc.KmDriven - *totalKmAllowed
		rc.ExtraKmChargeCents = int64(rc.ExtraKm) * extraKmPriceCents
	}

	rc.TotalAmountCents = subtotalCents + rc.ExtraKmChargeCents + extraChargesCents
	return rc, nil
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. A return at T and a pickup at T do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// CommissionCents splits a gross amount at a basis-point rate.
func CommissionCents(grossCents, rateBps int64) (commission, net int64) {
	commission = grossCents * rateBps / 10000
	return commission, grossCents - commission
}

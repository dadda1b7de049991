package booking

import (
	"context"
	"time"
)

type Repository interface {
	// CreateBooking re-validates the date-range overlap and inserts in one
	// transaction, serialized per vehicle by a row lock. The advisory
	// availability check can go stale between check and book; this is the
	// sole source of truth and the loser gets ErrDateConflict.
	CreateBooking(ctx context.Context, b *Booking) (*Booking, error)

	GetByID(ctx context.Context, id int) (*Booking, error)

	// HasOverlap is the advisory point-in-time overlap probe used by the
	// availability endpoint. Half-open ranges: a return at T and a pickup
	// at T do not collide.
	HasOverlap(ctx context.Context, vehicleID int, pickup, ret time.Time) (bool, error)

	Confirm(ctx context.Context, id int) error
	Cancel(ctx context.Context, id int) error
	MarkNoShow(ctx context.Context, id int) error
	RecordPickup(ctx context.Context, id, mileage int, notes *string) error
	RecordReturn(ctx context.Context, id int, upd ReturnUpdate) error
	Complete(ctx context.Context, id int) error

	ListByCustomer(ctx context.Context, customerID int) ([]Booking, error)
	ListByCompany(ctx context.Context, companyID int) ([]Booking, error)
	ListByVehicle(ctx context.Context, vehicleID int) ([]Booking, error)
}

// ReturnUpdate carries everything derived and entered at return time.
type ReturnUpdate struct {
	ReturnMileage           int
	KmDriven                int
	ExtraKm                 *int
	ExtraKmChargeCents      int64
	ExtraChargesCents       int64
	ExtraChargesDescription *string
	TotalAmountCents        int64
	Notes                   *string
}

package booking

import (
	"context"
	"errors"
	"fmt"

	"drivebook/internal/company"
	"drivebook/internal/email"
	"drivebook/internal/logger"
	"drivebook/internal/metrics"
	"drivebook/internal/pricing"
	"drivebook/internal/vehicle"
	"drivebook/internal/wallet"
)

var (
	ErrVehicleUnavailable = errors.New("vehicle is not open for booking")
	ErrNotBookingOwner    = errors.New("booking does not belong to this customer")
	ErrMileageRequired    = errors.New("mileage reading is required")
	ErrMileageNegative    = errors.New("mileage cannot be negative")
	ErrBookingNotPickedUp = errors.New("booking has not been picked up")
)

type Service interface {
	// CheckAvailability answers whether a vehicle can be booked for the
	// range, with a price quote. Advisory only; CreateBooking re-validates.
	CheckAvailability(ctx context.Context, vehicleID int, pickupDate, pickupTime, returnDate, returnTime string) (*AvailabilityResult, error)

	CreateBooking(ctx context.Context, customerID, vehicleID int, req CreateBookingRequest) (*Booking, error)
	GetBooking(ctx context.Context, userID int, role string, bookingID int) (*Booking, error)

	ConfirmBooking(ctx context.Context, ownerID, bookingID int) (*Booking, error)
	CancelBooking(ctx context.Context, userID int, role string, bookingID int) (*Booking, error)
	MarkNoShow(ctx context.Context, ownerID, bookingID int) (*Booking, error)
	RecordPickup(ctx context.Context, ownerID, bookingID int, req PickupRequest) (*Booking, error)
	RecordReturn(ctx context.Context, ownerID, bookingID int, req ReturnRequest) (*Booking, error)
	CompleteBooking(ctx context.Context, ownerID, bookingID int) (*Booking, error)

	ListMyBookings(ctx context.Context, customerID int) ([]Booking, error)
	ListCompanyBookings(ctx context.Context, ownerID, companyID int) ([]Booking, error)
	ListVehicleBookings(ctx context.Context, ownerID, vehicleID int) ([]Booking, error)
}

type service struct {
	repo        Repository
	vehicleRepo vehicle.Repository
	companyRepo company.Repository
	wallet      wallet.Service
	email       *email.Service
}

func NewService(repo Repository, vehicleRepo vehicle.Repository, companyRepo company.Repository, walletSvc wallet.Service, emailSvc *email.Service) Service {
	return &service{
		repo:        repo,
		vehicleRepo: vehicleRepo,
		companyRepo: companyRepo,
		wallet:      walletSvc,
		email:       emailSvc,
	}
}

// bookableVehicle loads the vehicle and enforces that both the vehicle and
// its company are accepting bookings.
func (s *service) bookableVehicle(ctx context.Context, vehicleID int) (*vehicle.Vehicle, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !v.IsAvailable {
		return nil, ErrVehicleUnavailable
	}

	comp, err := s.companyRepo.GetByID(ctx, v.CompanyID)
	if err != nil {
		return nil, err
	}
	if !comp.IsActive {
		return nil, ErrVehicleUnavailable
	}

	return v, nil
}

func (s *service) CheckAvailability(ctx context.Context, vehicleID int, pickupDate, pickupTime, returnDate, returnTime string) (*AvailabilityResult, error) {
	pickupAt, err := ParseDateTime(pickupDate, pickupTime)
	if err != nil {
		return nil, err
	}
	returnAt, err := ParseDateTime(returnDate, returnTime)
	if err != nil {
		return nil, err
	}

	v, err := s.bookableVehicle(ctx, vehicleID)
	if errors.Is(err, ErrVehicleUnavailable) {
		metrics.RecordAvailabilityCheck(false)
		return &AvailabilityResult{Available: false, Reason: "vehicle not available"}, nil
	}
	if err != nil {
		return nil, err
	}

	quote, err := pricing.QuoteFor(v, pickupAt, returnAt)
	if err != nil {
		return nil, err
	}

	overlap, err := s.repo.HasOverlap(ctx, vehicleID, pickupAt, returnAt)
	if err != nil {
		return nil, err
	}
	if overlap {
		metrics.RecordAvailabilityCheck(false)
		return &AvailabilityResult{Available: false, Reason: "dates conflict with an existing booking"}, nil
	}

	metrics.RecordAvailabilityCheck(true)
	return &AvailabilityResult{
		Available:        true,
		RentalDays:       quote.RentalDays,
		PricePerDayCents: quote.PricePerDayCents,
		SubtotalCents:    quote.SubtotalCents,
		DepositCents:     quote.DepositCents,
		TotalKmAllowed:   quote.TotalKmAllowed,
	}, nil
}

func (s *service) CreateBooking(ctx context.Context, customerID, vehicleID int, req CreateBookingRequest) (*Booking, error) {
	pickupAt, err := ParseDateTime(req.PickupDate, req.PickupTime)
	if err != nil {
		return nil, err
	}
	returnAt, err := ParseDateTime(req.ReturnDate, req.ReturnTime)
	if err != nil {
		return nil, err
	}

	v, err := s.bookableVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	quote, err := pricing.QuoteFor(v, pickupAt, returnAt)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		VehicleID:     v.ID,
		CompanyID:     v.CompanyID,
		CustomerID:    customerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		NationalID:    req.NationalID,
		DriverLicense: req.DriverLicense,

		PickupAt:   pickupAt,
		ReturnAt:   returnAt,
		RentalDays: quote.RentalDays,

		PricePerDayCents: quote.PricePerDayCents,
		DepositCents:     quote.DepositCents,
		SubtotalCents:    quote.SubtotalCents,

		Status: StatusPending,
		Notes:  req.Notes,
	}

	created, err := s.repo.CreateBooking(ctx, b)
	if err != nil {
		return nil, err
	}

	metrics.RecordBookingCreated()
	logger.Info("Booking created",
		"booking_id", created.ID,
		"vehicle_id", created.VehicleID,
		"customer_id", created.CustomerID,
		"subtotal_cents", created.SubtotalCents)

	if s.email != nil {
		vehicleName := fmt.Sprintf("%s %s %d", v.Brand, v.Model, v.Year)
		if err := s.email.SendBookingReceived(ctx, created.CustomerEmail, created.CustomerName, vehicleName, created.PickupAt); err != nil {
			logger.Errorf("Failed to queue booking email for booking %d: %v", created.ID, err)
		}
	}

	return created, nil
}

func (s *service) GetBooking(ctx context.Context, userID int, role string, bookingID int) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch {
	case b.CustomerID == userID:
		return b, nil
	case role == "admin":
		return b, nil
	default:
		if err := s.checkCompanyOwnership(ctx, userID, b.CompanyID); err != nil {
			return nil, err
		}
		return b, nil
	}
}

func (s *service) checkCompanyOwnership(ctx context.Context, ownerID, companyID int) error {
	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return company.ErrCompanyNotFound
	}
	if comp.OwnerID != ownerID {
		return company.ErrNotCompanyOwner
	}
	return nil
}

// ownedBooking loads a booking and verifies the caller owns the company
// behind it. All owner-side transitions go through here.
func (s *service) ownedBooking(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCompanyOwnership(ctx, ownerID, b.CompanyID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) ConfirmBooking(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	b, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Confirm(ctx, bookingID); err != nil {
		metrics.RecordBookingTransition("confirm", "rejected")
		return nil, err
	}
	metrics.RecordBookingTransition("confirm", "ok")
	logger.Info("Booking confirmed", "booking_id", bookingID)

	if s.email != nil {
		vehicleName := s.vehicleName(ctx, b.VehicleID)
		if err := s.email.SendBookingConfirmed(ctx, b.CustomerEmail, b.CustomerName, vehicleName, b.PickupAt); err != nil {
			logger.Errorf("Failed to queue confirmation email for booking %d: %v", bookingID, err)
		}
	}

	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) CancelBooking(ctx context.Context, userID int, role string, bookingID int) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Customers cancel their own bookings; owners cancel bookings against
	// their company; admins cancel anything.
	if b.CustomerID != userID && role != "admin" {
		if err := s.checkCompanyOwnership(ctx, userID, b.CompanyID); err != nil {
			return nil, ErrNotBookingOwner
		}
	}

	if err := s.repo.Cancel(ctx, bookingID); err != nil {
		metrics.RecordBookingTransition("cancel", "rejected")
		return nil, err
	}
	metrics.RecordBookingTransition("cancel", "ok")
	logger.Info("Booking cancelled", "booking_id", bookingID, "by_user", userID)

	if s.email != nil {
		vehicleName := s.vehicleName(ctx, b.VehicleID)
		if err := s.email.SendBookingCancelled(ctx, b.CustomerEmail, b.CustomerName, vehicleName); err != nil {
			logger.Errorf("Failed to queue cancellation email for booking %d: %v", bookingID, err)
		}
	}

	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) MarkNoShow(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	if _, err := s.ownedBooking(ctx, ownerID, bookingID); err != nil {
		return nil, err
	}

	if err := s.repo.MarkNoShow(ctx, bookingID); err != nil {
		metrics.RecordBookingTransition("no_show", "rejected")
		return nil, err
	}
	metrics.RecordBookingTransition("no_show", "ok")
	logger.Info("Booking marked no-show", "booking_id", bookingID)

	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) RecordPickup(ctx context.Context, ownerID, bookingID int, req PickupRequest) (*Booking, error) {
	if _, err := s.ownedBooking(ctx, ownerID, bookingID); err != nil {
		return nil, err
	}

	if req.Mileage == nil {
		return nil, ErrMileageRequired
	}
	if *req.Mileage < 0 {
		return nil, ErrMileageNegative
	}

	if err := s.repo.RecordPickup(ctx, bookingID, *req.Mileage, req.Notes); err != nil {
		metrics.RecordBookingTransition("pick_up", "rejected")
		return nil, err
	}
	metrics.RecordBookingTransition("pick_up", "ok")
	logger.Info("Vehicle picked up", "booking_id", bookingID, "mileage", *req.Mileage)

	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) RecordReturn(ctx context.Context, ownerID, bookingID int, req ReturnRequest) (*Booking, error) {
	b, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	if req.Mileage == nil {
		return nil, ErrMileageRequired
	}
	if *req.Mileage < 0 {
		return nil, ErrMileageNegative
	}
	if b.Status != StatusPickedUp || b.PickupMileage == nil {
		return nil, ErrBookingNotPickedUp
	}

	// Mileage terms come from the live vehicle record; everything priced is
	// snapshotted onto the booking row below.
	v, err := s.vehicleRepo.GetByID(ctx, b.VehicleID)
	if err != nil {
		return nil, err
	}

	var totalKmAllowed *int
	if v.MileageLimitPerDay != nil {
		total := *v.MileageLimitPerDay * b.RentalDays
		totalKmAllowed = &total
	}

	charges, err := pricing.ChargesForReturn(*b.PickupMileage, *req.Mileage, totalKmAllowed, v.ExtraKmPriceCents, b.SubtotalCents, req.ExtraChargesCents)
	if err != nil {
		return nil, err
	}

	upd := ReturnUpdate{
		ReturnMileage:           *req.Mileage,
		KmDriven:                charges.KmDriven,
		ExtraKmChargeCents:      charges.ExtraKmChargeCents,
		ExtraChargesCents:       req.ExtraChargesCents,
		ExtraChargesDescription: req.ExtraChargesDescription,
		TotalAmountCents:        charges.TotalAmountCents,
		Notes:                   req.Notes,
	}
	if totalKmAllowed != nil {
		extraKm := charges.ExtraKm
		upd.ExtraKm = &extraKm
	}

	if err := s.repo.RecordReturn(ctx, bookingID, upd); err != nil {
		metrics.RecordBookingTransition("return", "rejected")
		return nil, err
	}
	metrics.RecordBookingTransition("return", "ok")
	logger.Info("Vehicle returned",
		"booking_id", bookingID,
		"km_driven", charges.KmDriven,
		"total_amount_cents", charges.TotalAmountCents)

	return s.repo.GetByID(ctx, bookingID)
}

func (s *service) CompleteBooking(ctx context.Context, ownerID, bookingID int) (*Booking, error) {
	b, err := s.ownedBooking(ctx, ownerID, bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Complete(ctx, bookingID); err != nil {
		if errors.Is(err, ErrInvalidTransition) && b.Status == StatusCompleted {
			return s.recoverEarningCredit(ctx, b, err)
		}
		metrics.RecordBookingTransition("complete", "rejected")
		return nil, err
	}
	metrics.RecordBookingTransition("complete", "ok")

	// Completion is the only path that credits the wallet.
	if _, err := s.wallet.RecordEarning(ctx, b.CompanyID, b.ID, b.TotalAmountCents); err != nil {
		if errors.Is(err, wallet.ErrAlreadyCredited) {
			logger.Info("Earning already credited", "booking_id", b.ID)
		} else {
			logger.Error("Failed to credit earning",
				"booking_id", b.ID,
				"company_id", b.CompanyID,
				"error", err)
			return nil, err
		}
	}

	logger.Info("Booking completed",
		"booking_id", bookingID,
		"gross_cents", b.TotalAmountCents)

	return s.repo.GetByID(ctx, bookingID)
}

// recoverEarningCredit handles completion of a booking that is already in
// the completed state. The status flip and the wallet credit commit in
// separate transactions, so a failure between the two leaves a completed
// booking with no credit; the retry lands it here. The unique index on
// booking_credit rows makes the credit idempotent, so a plain replay gets
// ErrAlreadyCredited and keeps the transition error.
func (s *service) recoverEarningCredit(ctx context.Context, b *Booking, transitionErr error) (*Booking, error) {
	if _, err := s.wallet.RecordEarning(ctx, b.CompanyID, b.ID, b.TotalAmountCents); err != nil {
		if errors.Is(err, wallet.ErrAlreadyCredited) {
			metrics.RecordBookingTransition("complete", "rejected")
			return nil, transitionErr
		}
		logger.Error("Failed to credit earning",
			"booking_id", b.ID,
			"company_id", b.CompanyID,
			"error", err)
		return nil, err
	}
	metrics.RecordBookingTransition("complete", "ok")

	logger.Info("Credited earning for completed booking",
		"booking_id", b.ID,
		"gross_cents", b.TotalAmountCents)

	return s.repo.GetByID(ctx, b.ID)
}

func (s *service) ListMyBookings(ctx context.Context, customerID int) ([]Booking, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *service) ListCompanyBookings(ctx context.Context, ownerID, companyID int) ([]Booking, error) {
	if err := s.checkCompanyOwnership(ctx, ownerID, companyID); err != nil {
		return nil, err
	}
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *service) ListVehicleBookings(ctx context.Context, ownerID, vehicleID int) ([]Booking, error) {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCompanyOwnership(ctx, ownerID, v.CompanyID); err != nil {
		return nil, err
	}
	return s.repo.ListByVehicle(ctx, vehicleID)
}

func (s *service) vehicleName(ctx context.Context, vehicleID int) string {
	v, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return "your vehicle"
	}
	return fmt.Sprintf("%s %s %d", v.Brand, v.Model, v.Year)
}

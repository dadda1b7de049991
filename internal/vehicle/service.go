package vehicle

import (
	"context"
	"errors"

	"drivebook/internal/company"
)

var ErrNotCarRentalCompany = errors.New("company is not a car rental business")

type Service interface {
	CreateVehicle(ctx context.Context, ownerID int, req CreateVehicleRequest) (*Vehicle, error)
	GetVehicle(ctx context.Context, id int) (*Vehicle, error)
	ListAvailableVehicles(ctx context.Context) ([]Vehicle, error)
	ListCompanyVehicles(ctx context.Context, ownerID, companyID int) ([]Vehicle, error)
	UpdateVehicle(ctx context.Context, ownerID, vehicleID int, req UpdateVehicleRequest) (*Vehicle, error)
	SetVehicleAvailability(ctx context.Context, ownerID, vehicleID int, available bool) error
	DeleteVehicle(ctx context.Context, ownerID, vehicleID int) error
}

type service struct {
	repo        Repository
	companyRepo company.Repository
}

func NewService(repo Repository, companyRepo company.Repository) Service {
	return &service{
		repo:        repo,
		companyRepo: companyRepo,
	}
}

func (s *service) ownedCarRentalCompany(ctx context.Context, ownerID, companyID int) (*company.Company, error) {
	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, company.ErrCompanyNotFound
	}

	if comp.OwnerID != ownerID {
		return nil, company.ErrNotCompanyOwner
	}

	if comp.Type != company.TypeCarRental {
		return nil, ErrNotCarRentalCompany
	}

	return comp, nil
}

func (s *service) ownedVehicle(ctx context.Context, ownerID, vehicleID int) (*Vehicle, error) {
	v, err := s.repo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, ErrVehicleNotFound
	}

	if _, err := s.ownedCarRentalCompany(ctx, ownerID, v.CompanyID); err != nil {
		return nil, err
	}

	return v, nil
}

func (s *service) CreateVehicle(ctx context.Context, ownerID int, req CreateVehicleRequest) (*Vehicle, error) {
	if _, err := s.ownedCarRentalCompany(ctx, ownerID, req.CompanyID); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &Vehicle{
		CompanyID:          req.CompanyID,
		Brand:              req.Brand,
		Model:              req.Model,
		Year:               req.Year,
		VehicleType:        req.VehicleType,
		Transmission:       req.Transmission,
		FuelType:           req.FuelType,
		PricePerDayCents:   req.PricePerDayCents,
		DepositCents:       req.DepositCents,
		MileageLimitPerDay: req.MileageLimitPerDay,
		ExtraKmPriceCents:  req.ExtraKmPriceCents,
		MinRentalDays:      req.MinRentalDays,
		MaxRentalDays:      req.MaxRentalDays,
	})
}

func (s *service) GetVehicle(ctx context.Context, id int) (*Vehicle, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrVehicleNotFound
	}
	return v, nil
}

func (s *service) ListAvailableVehicles(ctx context.Context) ([]Vehicle, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *service) ListCompanyVehicles(ctx context.Context, ownerID, companyID int) ([]Vehicle, error) {
	if _, err := s.ownedCarRentalCompany(ctx, ownerID, companyID); err != nil {
		return nil, err
	}

	return s.repo.ListByCompany(ctx, companyID)
}

func (s *service) UpdateVehicle(ctx context.Context, ownerID, vehicleID int, req UpdateVehicleRequest) (*Vehicle, error) {
	v, err := s.ownedVehicle(ctx, ownerID, vehicleID)
	if err != nil {
		return nil, err
	}

	v.Brand = req.Brand
	v.Model = req.Model
	v.Year = req.Year
	v.VehicleType = req.VehicleType
	v.Transmission = req.Transmission
	v.FuelType = req.FuelType
	v.PricePerDayCents = req.PricePerDayCents
	v.DepositCents = req.DepositCents
	v.MileageLimitPerDay = req.MileageLimitPerDay
	v.ExtraKmPriceCents = req.ExtraKmPriceCents
	v.MinRentalDays = req.MinRentalDays
	v.MaxRentalDays = req.MaxRentalDays

	return s.repo.Update(ctx, v)
}

func (s *service) SetVehicleAvailability(ctx context.Context, ownerID, vehicleID int, available bool) error {
	if _, err := s.ownedVehicle(ctx, ownerID, vehicleID); err != nil {
		return err
	}

	return s.repo.SetAvailability(ctx, vehicleID, available)
}

func (s *service) DeleteVehicle(ctx context.Context, ownerID, vehicleID int) error {
	if _, err := s.ownedVehicle(ctx, ownerID, vehicleID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, vehicleID)
}

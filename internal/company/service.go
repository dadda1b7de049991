package company

import (
	"context"
	"errors"
)

var (
	ErrNotCompanyOwner    = errors.New("company does not belong to this owner")
	ErrInvalidCompanyType = errors.New("invalid company type")
)

type Service interface {
	CreateCompany(ctx context.Context, ownerID int, req CreateCompanyRequest) (*Company, error)
	GetCompany(ctx context.Context, id int) (*Company, error)
	GetOwnedCompany(ctx context.Context, ownerID, companyID int) (*Company, error)
	ListMyCompanies(ctx context.Context, ownerID int) ([]Company, error)
	ListAllCompanies(ctx context.Context) ([]Company, error)
	UpdateCompany(ctx context.Context, ownerID, companyID int, req UpdateCompanyRequest) (*Company, error)
	SetCompanyActive(ctx context.Context, companyID int, active bool) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCompany(ctx context.Context, ownerID int, req CreateCompanyRequest) (*Company, error) {
	ctype := CompanyType(req.Type)
	if !ctype.Valid() {
		return nil, ErrInvalidCompanyType
	}

	return s.repo.Create(ctx, ownerID, req.Name, ctype, req.Phone, req.Address)
}

func (s *service) GetCompany(ctx context.Context, id int) (*Company, error) {
	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrCompanyNotFound
	}
	return company, nil
}

// GetOwnedCompany loads a company and verifies ownership in one step. Every
// professional-console operation goes through this check.
func (s *service) GetOwnedCompany(ctx context.Context, ownerID, companyID int) (*Company, error) {
	company, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, ErrCompanyNotFound
	}

	if company.OwnerID != ownerID {
		return nil, ErrNotCompanyOwner
	}

	return company, nil
}

func (s *service) ListMyCompanies(ctx context.Context, ownerID int) ([]Company, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) ListAllCompanies(ctx context.Context) ([]Company, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) UpdateCompany(ctx context.Context, ownerID, companyID int, req UpdateCompanyRequest) (*Company, error) {
	if _, err := s.GetOwnedCompany(ctx, ownerID, companyID); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, companyID, req.Name, req.Phone, req.Address)
}

func (s *service) SetCompanyActive(ctx context.Context, companyID int, active bool) error {
	return s.repo.SetActive(ctx, companyID, active)
}

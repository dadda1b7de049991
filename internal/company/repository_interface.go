package company

import "context"

type Repository interface {
	Create(ctx context.Context, ownerID int, name string, ctype CompanyType, phone, address string) (*Company, error)
	GetByID(ctx context.Context, id int) (*Company, error)
	ListByOwner(ctx context.Context, ownerID int) ([]Company, error)
	ListAll(ctx context.Context) ([]Company, error)
	Update(ctx context.Context, id int, name, phone, address string) (*Company, error)
	SetActive(ctx context.Context, id int, active bool) error
}

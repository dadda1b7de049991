package vehicle

import "context"

type Repository interface {
	Create(ctx context.Context, v *Vehicle) (*Vehicle, error)
	GetByID(ctx context.Context, id int) (*Vehicle, error)
	ListByCompany(ctx context.Context, companyID int) ([]Vehicle, error)
	ListAvailable(ctx context.Context) ([]Vehicle, error)
	Update(ctx context.Context, v *Vehicle) (*Vehicle, error)
	SetAvailability(ctx context.Context, id int, available bool) error
	Delete(ctx context.Context, id int) error
}

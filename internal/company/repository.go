package company

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrCompanyNotFound = errors.New("company not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ownerID int, name string, ctype CompanyType, phone, address string) (*Company, error) {
	query := `
		INSERT INTO companies (owner_id, name, type, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, owner_id, name, type, phone, address, is_active, created_at, updated_at
	`

	var company Company
	err := r.db.GetContext(ctx, &company, query, ownerID, name, ctype, phone, address)
	if err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Company, error) {
	query := `
		SELECT id, owner_id, name, type, phone, address, is_active, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	var company Company
	err := r.db.GetContext(ctx, &company, query, id)
	if err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int) ([]Company, error) {
	query := `
		SELECT id, owner_id, name, type, phone, address, is_active, created_at, updated_at
		FROM companies
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	var companies []Company
	err := r.db.SelectContext(ctx, &companies, query, ownerID)
	if err != nil {
		return nil, err
	}

	return companies, nil
}

func (r *repository) ListAll(ctx context.Context) ([]Company, error) {
	query := `
		SELECT id, owner_id, name, type, phone, address, is_active, created_at, updated_at
		FROM companies
		ORDER BY created_at DESC
	`

	var companies []Company
	err := r.db.SelectContext(ctx, &companies, query)
	if err != nil {
		return nil, err
	}

	return companies, nil
}

func (r *repository) Update(ctx context.Context, id int, name, phone, address string) (*Company, error) {
	query := `
		UPDATE companies
		SET name = $2, phone = $3, address = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, owner_id, name, type, phone, address, is_active, created_at, updated_at
	`

	var company Company
	err := r.db.GetContext(ctx, &company, query, id, name, phone, address)
	if err != nil {
		return nil, err
	}

	return &company, nil
}

func (r *repository) SetActive(ctx context.Context, id int, active bool) error {
	query := `
		UPDATE companies
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrCompanyNotFound
	}

	return nil
}

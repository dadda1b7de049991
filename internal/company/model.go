package company

import "time"

type CompanyType string

const (
	TypeHotel      CompanyType = "hotel"
	TypeRestaurant CompanyType = "restaurant"
	TypeCarRental  CompanyType = "car_rental"
)

type Company struct {
	ID        int         `db:"id" json:"id"`
	OwnerID   int         `db:"owner_id" json:"owner_id"`
	Name      string      `db:"name" json:"name"`
	Type      CompanyType `db:"type" json:"type"`
	Phone     string      `db:"phone" json:"phone"`
	Address   string      `db:"address" json:"address"`
	IsActive  bool        `db:"is_active" json:"is_active"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

func (t CompanyType) Valid() bool {
	switch t {
	case TypeHotel, TypeRestaurant, TypeCarRental:
		return true
	}
	return false
}

type CreateCompanyRequest struct {
	Name    string `json:"name" binding:"required"`
	Type    string `json:"type" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
}

type UpdateCompanyRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
}

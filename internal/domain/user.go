package domain

import "time"

type UserRole string

const (
	RoleCustomer   UserRole = "customer"
	RoleBeautician UserRole = "beautician"
	RoleAdmin      UserRole = "admin"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email" validate:"required,email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Beautician links a service provider profile to its owning user account.
type Beautician struct {
	ID             int64    `json:"id"`
	UserID         int64    `json:"user_id" validate:"required"`
	Bio            string   `json:"bio,omitempty" gorm:"type:text"`
	CommissionRate *float64 `json:"commission_rate,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

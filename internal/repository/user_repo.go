package repository

import (
	"context"
	"errors"
	"time"

	"beautybook/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Email     string    `gorm:"column:email"`
	FirstName string    `gorm:"column:first_name"`
	LastName  string    `gorm:"column:last_name"`
	Phone     *string   `gorm:"column:phone"`
	Role      string    `gorm:"column:role"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	var phone string
	if m.Phone != nil {
		phone = *m.Phone
	}

	return &domain.User{
		ID:        m.ID,
		Email:     m.Email,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Phone:     phone,
		Role:      domain.UserRole(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// GetByID returns nil, nil when the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

// GetCustomers returns every user with the customer role, ordered by id.
func (r *UserRepository) GetCustomers(ctx context.Context) ([]domain.User, error) {
	var rows []userModel
	tx := r.db.WithContext(ctx).
		Where("role = ?", string(domain.RoleCustomer)).
		Order("id ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.User, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainUser(m))
	}
	return out, nil
}

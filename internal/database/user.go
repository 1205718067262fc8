package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Role is the privilege level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account.
// Emails are stored normalized (trimmed and lowercased); callers normalize
// before every lookup and insert.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"type:varchar(16);not null;default:'user'"`
	CreatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserDB is the credential store.
type UserDB interface {
	CreateUser(ctx context.Context, email, passwordHash string, role Role) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUserRole(ctx context.Context, id uint, role Role) error
}

// CreateUser inserts a new user. It returns ErrDuplicateEmail if the email is taken.
func (c *Client) CreateUser(ctx context.Context, email, passwordHash string, role Role) (*User, error) {
	user := User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		log.Error("failed to create user", "error", err)
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := c.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		log.Error("failed to get user by email", "error", err)
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id uint, role Role) error {
	result := c.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		log.Error("failed to update user role", "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a unique constraint failure. The
// string check covers drivers without gorm error translation.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

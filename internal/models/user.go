package models

import "time"

// User is a dashboard admin account.
type User struct {
	ID             int64      `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          *string    `json:"email,omitempty" db:"email"`
	HashedPassword string     `json:"-" db:"hashed_password"`
	FullName       string     `json:"full_name,omitempty" db:"full_name"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	IsSuperuser    bool       `json:"is_superuser" db:"is_superuser"`
	LastLogin      *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

package models

import "time"

// User owns assets. Deactivation flips IsActive; rows are never removed.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate carries a partial profile change. Nil fields are left as is.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}

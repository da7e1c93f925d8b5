package model

import (
	"errors"
	"time"
)

// User represents an account. Items and requests reference users by ID.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
	RoleUser  = "user"
)

// Roles lists every role from least to most privileged.
var Roles = []string{RoleUser, RoleStaff, RoleAdmin}

var roleLevels = map[string]int{
	RoleAdmin: 3,
	RoleStaff: 2,
	RoleUser:  1,
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// Unknown roles never satisfy a check.
func RoleAtLeast(role, minimum string) bool {
	have, ok := roleLevels[role]
	if !ok {
		return false
	}
	want, ok := roleLevels[minimum]
	if !ok {
		return false
	}
	return have >= want
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	_, ok := roleLevels[role]
	return ok
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// Identity is the caller of an operation: who they are and what role they act with.
type Identity struct {
	UserID   int64
	Username string
	Role     string
}

// IsZero reports whether no identity is bound.
func (id Identity) IsZero() bool {
	return id.UserID <= 0
}

// Is reports whether the identity belongs to the given user.
func (id Identity) Is(userID int64) bool {
	return !id.IsZero() && id.UserID == userID
}

// AtLeast reports whether the identity's role meets minimum.
func (id Identity) AtLeast(minimum string) bool {
	return RoleAtLeast(id.Role, minimum)
}

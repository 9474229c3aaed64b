package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleAgent   UserRole = "agent"
)

// User is a CRM operator. Active admins and managers form the eligible
// pool for round-robin lead assignment.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"  validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Role      UserRole  `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

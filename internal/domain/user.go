package domain

import "time"

// Role determines ticket visibility and mutation rights.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// Staff reports whether the role grants triage rights over other users' tickets.
func (r Role) Staff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// User is the domain model for registered accounts. Email is stored
// lowercased and trimmed; PasswordHash is a bcrypt digest, never plaintext.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Package models contains the persistent record types of the FinSight
// credential and session store.
package models

import "time"

// Roles a registered account can carry. Investors provide capital,
// investees seek it; the role decides the client-id prefix and which
// dashboard views the frontend shows.
const (
	RoleInvestor = "investor"
	RoleInvestee = "investee"
)

// ValidRole reports whether role is one of the two supported values.
func ValidRole(role string) bool {
	return role == RoleInvestor || role == RoleInvestee
}

// User is an account record, keyed by its unique username. The password
// is stored only as a one-way hash. Records are created at registration
// and afterwards mutated only to refresh LastLogin; no operation deletes
// them.
type User struct {
	Username     string    `json:"-"`
	PasswordHash string    `json:"password"`
	Role         string    `json:"role"`
	FullName     string    `json:"full_name"`
	ClientID     string    `json:"client_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
}

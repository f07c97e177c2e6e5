package domain

import "strings"

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole normalizes a role claim. Unknown values are reported as invalid.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "ROLE_"))))
	switch role {
	case RoleAdmin, RoleUser:
		return role, true
	default:
		return "", false
	}
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Authenticated is the outcome of a login or registration.
type Authenticated struct {
	Token string
	User  User
}

// Identity is what the billing API reports about the bearer of a token.
type Identity struct {
	Username      string      `json:"username"`
	Authenticated bool        `json:"authenticated"`
	Authorities   []Authority `json:"authorities"`
}

type Authority struct {
	Authority string `json:"authority"`
}

// Role returns the first recognised role among the granted authorities.
func (i Identity) Role() (Role, bool) {
	for _, a := range i.Authorities {
		if role, ok := ParseRole(a.Authority); ok {
			return role, true
		}
	}
	return "", false
}

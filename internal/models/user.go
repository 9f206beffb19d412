package models

import (
	"strings"
	"time"
)

// Role is a user's authorization level
type Role string

// Role constants
const (
	RoleVisitor Role = "visitor"
	RoleClient  Role = "client"
	RoleAdmin   Role = "admin"
)

// ParseRole converts a raw string into a known role.
// Matching is case-insensitive, unknown values report false.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleVisitor, RoleClient, RoleAdmin:
		return role, true
	default:
		return "", false
	}
}

// Rank returns an ordering used by the role gate (visitor < client < admin).
// Unknown roles rank below every real role.
func (r Role) Rank() int {
	switch r {
	case RoleVisitor:
		return 1
	case RoleClient:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// User represents a user in the system
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Contact      string    `json:"contact,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserDescriptor is the minimal user shape returned on login
type UserDescriptor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// UserListItem represents a user row in the administrative users view
type UserListItem struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Contact   string    `json:"contact,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// SignupRequest represents a signup request
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Contact  string `json:"contact"`
	// WhatsApp is the legacy name of the contact field
	WhatsApp string `json:"whatsapp"`
	Role     string `json:"role"`
}

// LoginRequest represents a login request.
// Login may hold a username or an email, Username and Email are accepted as aliases.
type LoginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identifier returns the first non-empty login identifier
func (r *LoginRequest) Identifier() string {
	for _, v := range []string{r.Login, r.Username, r.Email} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// LoginResult is returned by a successful login
type LoginResult struct {
	User  UserDescriptor `json:"user"`
	Token string         `json:"token"`
}

// UpdateUserRequest represents an administrative user update.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
}

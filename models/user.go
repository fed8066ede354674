package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleIndividual Role = "individual"
	RoleLawyer     Role = "lawyer"
	RoleBusiness   Role = "business"
	RoleJudge      Role = "judge"
	RoleResearcher Role = "researcher"
	RoleScholar    Role = "scholar"
)

// GuestEmail is shared by every guest session
const GuestEmail = "guest@legal-oracle.ai"

var validRoles = map[Role]bool{
	RoleIndividual: true,
	RoleLawyer:     true,
	RoleBusiness:   true,
	RoleJudge:      true,
	RoleResearcher: true,
	RoleScholar:    true,
}

// ParseRole normalizes s to a known role. Unknown values map to RoleIndividual.
func ParseRole(s string) Role {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if validRoles[role] {
		return role
	}
	return RoleIndividual
}

// IsValidRole reports whether s names a known role exactly
func IsValidRole(s string) bool {
	return validRoles[Role(strings.ToLower(strings.TrimSpace(s)))]
}

// User is the session identity stored under the user key
type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	IsGuest bool   `json:"isGuest"`
}

// NewGuestUser creates a guest identity whose id embeds the creation time in milliseconds
// followed by a random suffix, so guests created in the same millisecond stay distinct
func NewGuestUser(role Role, now time.Time) *User {
	return &User{
		ID:      "guest_" + formatMillis(now) + "_" + uuid.NewString()[:8],
		Email:   GuestEmail,
		Role:    role,
		IsGuest: true,
	}
}

// Profile is the persisted account row for an authenticated user
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	FullName         string    `json:"full_name"`
	AvatarURL        string    `json:"avatar_url"`
	SubscriptionTier string    `json:"subscription_tier"`
	APICredits       int       `json:"api_credits"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToUser projects the profile onto the session identity
func (p *Profile) ToUser() *User {
	return &User{
		ID:    p.ID.String(),
		Email: p.Email,
		Role:  p.Role,
	}
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GuestLoginRequest struct {
	Role string `json:"role"`
}

// AuthResponse is returned by every login flow
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
	Profile   *Profile  `json:"profile,omitempty"`
}

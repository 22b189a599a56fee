package model

import "time"

// Roles as the backend spells them in JWT claims and user records.
const (
	RoleAdmin       = "Admin"
	RoleOuvrier     = "Ouvrier"
	RoleVeterinaire = "Veterinaire"
	RoleClient      = "Client"
)

// StaffRoles covers everyone who works on the farm.
var StaffRoles = []string{RoleAdmin, RoleVeterinaire, RoleOuvrier}

// VetRoles covers veterinary dashboards (admins see everything).
var VetRoles = []string{RoleAdmin, RoleVeterinaire}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOuvrier, RoleVeterinaire, RoleClient:
		return true
	}
	return false
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// JwtResponse is the backend's login/refresh payload.
type JwtResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	Type         string `json:"type"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

type UserResponse struct {
	ID          int64      `json:"id"`
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	PhoneNumber *string    `json:"phoneNumber"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	Address     *string    `json:"address"`
	City        *string    `json:"city"`
	PostalCode  *string    `json:"postalCode"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

// SessionUser is what the console reports about the logged-in user. Every
// field is derived from the access token; nothing comes from stored state.
type SessionUser struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsExpired bool      `json:"isExpired"`
	ExpiresAt time.Time `json:"expiresAt"`
}

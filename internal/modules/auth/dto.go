package auth

import (
	"strings"

	"aloka/internal/domain"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	// Role may only pick one of the self-service roles; admin is never granted at signup.
	Role string `json:"role" validate:"omitempty,oneof=client videographer"`
}

func (r *SignupRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.TrimSpace(r.Role)
}

// UserSummary is the account shape returned next to a fresh token.
type UserSummary struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  domain.UserRole `json:"role"`
}

// Profile is the reduced account view returned by the identity check.
type Profile struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
	Avatar *string         `json:"avatar"`
}

type SignupResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

func toSummary(u *domain.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func toProfile(u *domain.User) Profile {
	p := Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
	if u.Avatar != "" {
		avatar := u.Avatar
		p.Avatar = &avatar
	}
	return p
}

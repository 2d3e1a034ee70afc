package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"fideliza/internal/domain"
)

// User is a customer, business owner or staff member.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      domain.Role
	OwnerID   *string // staff only: the owner they work for
	CreatedAt time.Time
}

func NewUser(id, email, name string, role domain.Role) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	if role == "" {
		role = domain.RoleCustomer
	}
	return &User{
		ID:        id,
		Email:     email,
		Name:      strings.TrimSpace(name),
		Role:      role,
		CreatedAt: time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// DisplayName falls back to the email when no name was given.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

package domain

// Role is the coarse permission level carried by a session.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleOwner    Role = "OWNER"
	RoleStaff    Role = "STAFF"
	RoleAdmin    Role = "ADMIN"
)

// Actor identifies who performs an operation. It is built once per request
// from the session and handed to every use case explicitly.
type Actor struct {
	UserID  string
	Email   string
	Role    Role
	OwnerID *string // set for staff acting under a business owner
}

func (a Actor) IsZero() bool { return a.UserID == "" }

// BusinessID is the owner account the actor acts for: the owner itself,
// or the owner a staff member works under.
func (a Actor) BusinessID() string {
	if a.OwnerID != nil && *a.OwnerID != "" {
		return *a.OwnerID
	}
	return a.UserID
}

// IsBusiness reports whether the actor may operate the point-of-sale flows.
func (a Actor) IsBusiness() bool {
	switch a.Role {
	case RoleOwner, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

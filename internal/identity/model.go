package identity

// Role determines which console affordances are shown. The lending API
// enforces authorization on its own.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleCustomer:
		return true
	default:
		return false
	}
}

// IsStaff reports whether r is an admin or an employee.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is the authenticated identity held by a session.
type User struct {
	ID          int64  `json:"id"`
	Role        Role   `json:"role"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Patch lists the identity fields a profile screen may change locally.
// Nil fields are left untouched.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.PhoneNumber == nil
}

// Apply returns a copy of u with the patch merged in. ID and Role never change.
func (u User) Apply(p Patch) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	return u
}

// Credentials carries a phone number and password pair.
type Credentials struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

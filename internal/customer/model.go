package customer

// Customer is a borrower record.
type Customer struct {
	ID                   int64  `json:"id"`
	UserID               int64  `json:"user_id,omitempty"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email,omitempty"`
	PhoneNumber          string `json:"phone_number,omitempty"`
	Address              string `json:"address,omitempty"`
	DateOfBirth          string `json:"date_of_birth,omitempty"`
	SocialSecurityNumber string `json:"social_security_number,omitempty"`
	IsActive             *bool  `json:"is_active,omitempty"`
	Status               string `json:"status,omitempty"`
	CreatedAt            string `json:"created_at,omitempty"`
	UpdatedAt            string `json:"updated_at,omitempty"`
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// CreateInput registers a customer together with their login.
type CreateInput struct {
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	SocialSecurityNumber string `json:"social_security_number"`
	DateOfBirth          string `json:"date_of_birth"`
	Address              string `json:"address"`
	CountryCode          string `json:"country_code"`
	PhoneNumber          string `json:"phone_number"`
	Email                string `json:"email,omitempty"`
	Password             string `json:"password"`
}

// UpdateInput edits a customer. Nil fields are left as they are.
type UpdateInput struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Address     *string `json:"address,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

package model

import "time"

// Address is the optional postal address captured at sign-up.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// User is a dashboard account profile. The password hash never leaves the
// repository layer.
type User struct {
	ID            string    `json:"_id"`
	Email         string    `json:"email"`
	Role          Role      `json:"role"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	DateOfBirth   string    `json:"dateOfBirth"`
	ContactNumber string    `json:"contactNumber"`
	Address       Address   `json:"address"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Viewer converts the profile into the identity passed to controllers.
func (u *User) Viewer() Viewer {
	return Viewer{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// SignupRequest is the payload of POST /auth/signup.
type SignupRequest struct {
	Email         string  `json:"email" validate:"required,looseemail"`
	Password      string  `json:"password" validate:"required,strongpassword"`
	Role          Role    `json:"role" validate:"required,userrole"`
	FirstName     string  `json:"firstName" validate:"required"`
	LastName      string  `json:"lastName" validate:"required"`
	DateOfBirth   string  `json:"dateOfBirth" validate:"required,isodate,notfuture"`
	ContactNumber string  `json:"contactNumber" validate:"required,number,len=10"`
	Address       Address `json:"address"`
}

// LoginRequest is the payload of POST /auth/login. Role is optional; when set
// it must match the stored role.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,looseemail"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,userrole"`
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

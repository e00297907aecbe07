package users

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the storefront role carried by an authenticated identity.
type RoleType string

const (
	RoleCustomer RoleType = "customer"
	RoleAdmin    RoleType = "admin"

	// RoleNone is reported for anonymous visitors.
	RoleNone RoleType = "none"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Address is an entry of the user's address book.
type Address struct {
	ID          string `json:"_id,omitempty"`
	HouseNumber string `json:"houseNumber"`
	Street      string `json:"street"`
	Colony      string `json:"colony,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
	PostalCode  string `json:"postalCode"`
	IsDefault   bool   `json:"isDefault"`
}

type User struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	Role         RoleType  `json:"role,omitempty"`
	Gender       Gender    `json:"gender,omitempty"`
	IsVerified   bool      `json:"isVerified,omitempty"`
	Addresses    []Address `json:"addresses,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	PasswordHash string    `json:"-"` // backend side only, never serialised
}

// UnmarshalJSON accepts both the backend's "_id" and the client's "id" key.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	aux := struct {
		*plain
		MongoID string `json:"_id,omitempty"`
	}{plain: (*plain)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate shared session state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Addresses != nil {
		c.Addresses = append([]Address(nil), u.Addresses...)
	}
	return &c
}

func (u *User) HasRole(role RoleType) bool {
	if u == nil {
		return role == RoleNone
	}
	return u.Role == role
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// DefaultAddress returns the address flagged as default, or nil.
func (u *User) DefaultAddress() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i]
		}
	}
	return nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

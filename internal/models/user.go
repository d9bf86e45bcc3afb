package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a landlord or tenant account. The lease fields on the tenant side
// are written only by the request assignment cascade.
type User struct {
	BaseModel
	Username     string  `json:"username" gorm:"unique;not null;size:50;index"`
	Email        string  `json:"email" gorm:"unique;not null;size:100;index"`
	PasswordHash string  `json:"-" gorm:"not null;size:255"`
	Name         string  `json:"name" gorm:"not null;size:100"`
	Phone        *string `json:"phone" gorm:"size:20"`
	Role         string  `json:"role" gorm:"not null;size:20;index"` // landlord/tenant
	Status       string  `json:"status" gorm:"default:'active';size:20"`

	// Tenant lease details, set when an assignment completes.
	PropertyRentedID *uint      `json:"property_rented_id" gorm:"index"`
	LeaseStartDate   *time.Time `json:"lease_start_date,omitempty"`
	LeaseEndDate     *time.Time `json:"lease_end_date,omitempty"`
	RentAmount       *float64   `json:"rent_amount,omitempty"`
	SecurityDeposit  *float64   `json:"security_deposit,omitempty"`

	PropertyRented *Property `json:"property_rented,omitempty" gorm:"foreignKey:PropertyRentedID"`
}

func (u *User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleLandlord = "landlord"
	RoleTenant   = "tenant"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// SetPassword hashes and stores the password.
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies the password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsLandlord reports whether the user holds the landlord role.
func (u *User) IsLandlord() bool {
	return u.Role == RoleLandlord
}

// IsTenant reports whether the user holds the tenant role.
func (u *User) IsTenant() bool {
	return u.Role == RoleTenant
}

// SetLease records the lease details from a completed assignment.
func (u *User) SetLease(propertyID uint, start, end *time.Time, rent, deposit float64) {
	u.PropertyRentedID = &propertyID
	u.LeaseStartDate = start
	u.LeaseEndDate = end
	u.RentAmount = &rent
	u.SecurityDeposit = &deposit
}

// ClearLease removes the lease details, e.g. when a lease ends.
func (u *User) ClearLease() {
	u.PropertyRentedID = nil
	u.LeaseStartDate = nil
	u.LeaseEndDate = nil
	u.RentAmount = nil
	u.SecurityDeposit = nil
}

package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status marks whether a document is live or soft-deleted. Reads against the
// public API only ever see active documents.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User roles.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// Address represents a postal address with a 6-digit pincode
type Address struct {
	Street  string `bson:"street" json:"street" validate:"required"`
	City    string `bson:"city" json:"city" validate:"required"`
	State   string `bson:"state" json:"state" validate:"required"`
	Pincode string `bson:"pincode" json:"pincode" validate:"required,len=6,numeric"`
}

// Image is an uploaded asset reference (CDN public id plus URL)
type Image struct {
	PublicID string `bson:"public_id,omitempty" json:"public_id,omitempty"`
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
}

// User represents a medical store account
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MedicalName         string             `bson:"medicalName" json:"medicalName"`
	OwnerName           string             `bson:"ownerName" json:"ownerName"`
	Email               string             `bson:"email" json:"email"`
	ContactNo           string             `bson:"contactNo" json:"contactNo"`
	Address             Address            `bson:"address" json:"address"`
	DrugLicenseNo       string             `bson:"drugLicenseNo" json:"drugLicenseNo"`
	DrugLicenseImage    Image              `bson:"drugLicenseImage,omitempty" json:"drugLicenseImage,omitempty"`
	Password            string             `bson:"password,omitempty" json:"-"`
	Role                string             `bson:"role" json:"role"` // owner, staff or admin
	IsVerified          bool               `bson:"isVerified" json:"isVerified"`
	Status              Status             `bson:"status" json:"status"`
	LastLogin           *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpire *time.Time         `bson:"resetPasswordExpire,omitempty" json:"-"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FullAddress joins the address parts into a single display string
func (u *User) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s - %s", u.Address.Street, u.Address.City, u.Address.State, u.Address.Pincode)
}

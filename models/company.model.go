package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company categories.
var CompanyCategories = []string{"multinational", "national", "regional", "local"}

// Specializations recognised across companies and medicines.
var Specializations = []string{
	"antibiotics", "painkillers", "vitamins", "diabetes",
	"cardiac", "oncology", "pediatrics", "general",
}

// Certification held by a company (GMP, WHO, ISO and the like)
type Certification struct {
	Name       string     `bson:"name,omitempty" json:"name,omitempty"`
	IssuedBy   string     `bson:"issuedBy,omitempty" json:"issuedBy,omitempty"`
	IssuedDate *time.Time `bson:"issuedDate,omitempty" json:"issuedDate,omitempty"`
	ExpiryDate *time.Time `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
}

// CompanyAddress is looser than Address: every part is optional
type CompanyAddress struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// ContactInfo groups a company's contact channels
type ContactInfo struct {
	Phone   string         `bson:"phone,omitempty" json:"phone,omitempty"`
	Email   string         `bson:"email,omitempty" json:"email,omitempty"`
	Address CompanyAddress `bson:"address,omitempty" json:"address"`
}

// Company represents a pharmaceutical manufacturer
type Company struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name            string               `bson:"name" json:"name"`
	ShortName       string               `bson:"shortName,omitempty" json:"shortName,omitempty"`
	Description     string               `bson:"description,omitempty" json:"description,omitempty"`
	Logo            Image                `bson:"logo,omitempty" json:"logo,omitempty"`
	Website         string               `bson:"website,omitempty" json:"website,omitempty"`
	ContactInfo     ContactInfo          `bson:"contactInfo,omitempty" json:"contactInfo"`
	LicenseNumber   string               `bson:"licenseNumber" json:"licenseNumber"`
	LicenseExpiry   time.Time            `bson:"licenseExpiry" json:"licenseExpiry"`
	Category        string               `bson:"category" json:"category"`
	Specializations []string             `bson:"specializations,omitempty" json:"specializations"`
	Certifications  []Certification      `bson:"certifications,omitempty" json:"certifications"`
	IsVerified      bool                 `bson:"isVerified" json:"isVerified"`
	Status          Status               `bson:"status" json:"status"`
	Rating          float64              `bson:"rating" json:"rating"`
	TotalRatings    int                  `bson:"totalRatings" json:"totalRatings"`
	Medicines       []primitive.ObjectID `bson:"medicines,omitempty" json:"medicines"`
	Stockists       []primitive.ObjectID `bson:"stockists,omitempty" json:"stockists"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// AddRating folds one submission into the running sum. The HTTP layer
// persists the same change with an atomic $inc; this helper keeps the
// arithmetic in one place.
func (c *Company) AddRating(rating int) {
	c.Rating += float64(rating)
	c.TotalRatings++
}

// AverageRating is the derived display rating, never stored.
func (c *Company) AverageRating() float64 {
	return AverageRating(c.Rating, c.TotalRatings)
}

// IsLicenseExpired reports whether the license expiry has passed.
func (c *Company) IsLicenseExpired() bool {
	return time.Now().After(c.LicenseExpiry)
}

// FullAddress joins the optional address parts, skipping empty ones.
func (c *Company) FullAddress() string {
	addr := c.ContactInfo.Address
	parts := make([]string, 0, 4)
	for _, p := range []string{addr.Street, addr.City, addr.State, addr.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	full := strings.Join(parts, ", ")
	if addr.Pincode != "" {
		full += " - " + addr.Pincode
	}
	return full
}

// MarshalJSON serializes the company with its computed fields attached.
func (c Company) MarshalJSON() ([]byte, error) {
	type companyAlias Company
	return json.Marshal(struct {
		companyAlias
		AverageRating    float64 `json:"averageRating"`
		FullAddress      string  `json:"fullAddress"`
		IsLicenseExpired bool    `json:"isLicenseExpired"`
	}{companyAlias(c), c.AverageRating(), c.FullAddress(), c.IsLicenseExpired()})
}

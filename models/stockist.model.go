package models

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stockist specializations are a narrower set than company ones.
var StockistSpecializations = []string{
	"antibiotics", "painkillers", "vitamins", "diabetes", "cardiac", "general",
}

// Payment terms accepted by a stockist.
var PaymentTerms = []string{"cash", "credit", "both"}

// DeliveryArea is a city a stockist delivers to, with an indicative lead time
type DeliveryArea struct {
	City         string `bson:"city,omitempty" json:"city,omitempty"`
	State        string `bson:"state,omitempty" json:"state,omitempty"`
	DeliveryTime string `bson:"deliveryTime,omitempty" json:"deliveryTime,omitempty"`
}

// Stockist represents a distributor/wholesaler
type Stockist struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name            string               `bson:"name" json:"name"`
	ContactPerson   string               `bson:"contactPerson" json:"contactPerson"`
	Phone           string               `bson:"phone" json:"phone"`
	Email           string               `bson:"email,omitempty" json:"email,omitempty"`
	Address         Address              `bson:"address" json:"address"`
	Companies       []primitive.ObjectID `bson:"companies,omitempty" json:"companies"`
	Medicines       []primitive.ObjectID `bson:"medicines,omitempty" json:"medicines"`
	LicenseNumber   string               `bson:"licenseNumber" json:"licenseNumber"`
	LicenseExpiry   time.Time            `bson:"licenseExpiry" json:"licenseExpiry"`
	Rating          float64              `bson:"rating" json:"rating"`
	TotalRatings    int                  `bson:"totalRatings" json:"totalRatings"`
	IsVerified      bool                 `bson:"isVerified" json:"isVerified"`
	Status          Status               `bson:"status" json:"status"`
	Specializations []string             `bson:"specializations,omitempty" json:"specializations"`
	DeliveryAreas   []DeliveryArea       `bson:"deliveryAreas,omitempty" json:"deliveryAreas"`
	PaymentTerms    string               `bson:"paymentTerms,omitempty" json:"paymentTerms,omitempty"`
	MinimumOrder    float64              `bson:"minimumOrder" json:"minimumOrder"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// AddRating folds one submission into the running sum.
func (s *Stockist) AddRating(rating int) {
	s.Rating += float64(rating)
	s.TotalRatings++
}

// AverageRating is the derived display rating, never stored.
func (s *Stockist) AverageRating() float64 {
	return AverageRating(s.Rating, s.TotalRatings)
}

// IsLicenseExpired reports whether the license expiry has passed.
func (s *Stockist) IsLicenseExpired() bool {
	return time.Now().After(s.LicenseExpiry)
}

// FullAddress joins the address parts into a single display string.
func (s *Stockist) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s - %s", s.Address.Street, s.Address.City, s.Address.State, s.Address.Pincode)
}

// MarshalJSON serializes the stockist with its computed fields attached.
func (s Stockist) MarshalJSON() ([]byte, error) {
	type stockistAlias Stockist
	return json.Marshal(struct {
		stockistAlias
		AverageRating    float64 `json:"averageRating"`
		FullAddress      string  `json:"fullAddress"`
		IsLicenseExpired bool    `json:"isLicenseExpired"`
	}{stockistAlias(s), s.AverageRating(), s.FullAddress(), s.IsLicenseExpired()})
}

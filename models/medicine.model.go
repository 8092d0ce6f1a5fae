package models

import (
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Medicine enums.
var (
	MedicineCategories = []string{
		"antibiotics", "painkillers", "vitamins", "diabetes",
		"cardiac", "oncology", "pediatrics", "general", "other",
	}
	DosageForms = []string{
		"tablet", "capsule", "syrup", "injection",
		"cream", "ointment", "drops", "inhaler", "other",
	}
	Schedules           = []string{"OTC", "Schedule H", "Schedule H1", "Schedule X", "Schedule G"}
	PregnancyCategories = []string{"A", "B", "C", "D", "X"}
)

// ErrNegativeStock rejects stock updates below zero.
var ErrNegativeStock = errors.New("stock cannot be negative")

// Composition is one active ingredient of a medicine
type Composition struct {
	Ingredient string `bson:"ingredient,omitempty" json:"ingredient,omitempty"`
	Strength   string `bson:"strength,omitempty" json:"strength,omitempty"`
	Unit       string `bson:"unit,omitempty" json:"unit,omitempty"`
}

// Price carries the maximum retail price plus the trade tiers
type Price struct {
	MRP         float64 `bson:"mrp" json:"mrp"`
	TradePrice  float64 `bson:"tradePrice,omitempty" json:"tradePrice,omitempty"`
	RetailPrice float64 `bson:"retailPrice,omitempty" json:"retailPrice,omitempty"`
}

// StockEntry records how many units a single stockist holds
type StockEntry struct {
	Stockist    primitive.ObjectID `bson:"stockist" json:"stockist"`
	Stock       int                `bson:"stock" json:"stock"`
	LastUpdated time.Time          `bson:"lastUpdated" json:"lastUpdated"`
}

// Review is a one-per-user rating with an optional comment
type Review struct {
	User    primitive.ObjectID `bson:"user" json:"user"`
	Rating  int                `bson:"rating" json:"rating"`
	Comment string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Date    time.Time          `bson:"date" json:"date"`
}

// Medicine represents a drug product manufactured by a company and
// distributed through stockists
type Medicine struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name                 string             `bson:"name" json:"name"`
	GenericName          string             `bson:"genericName,omitempty" json:"genericName,omitempty"`
	BrandName            string             `bson:"brandName,omitempty" json:"brandName,omitempty"`
	Company              primitive.ObjectID `bson:"company" json:"company"`
	Category             string             `bson:"category" json:"category"`
	SubCategory          string             `bson:"subCategory,omitempty" json:"subCategory,omitempty"`
	Description          string             `bson:"description,omitempty" json:"description,omitempty"`
	Composition          []Composition      `bson:"composition,omitempty" json:"composition"`
	DosageForm           string             `bson:"dosageForm" json:"dosageForm"`
	Strength             string             `bson:"strength" json:"strength"`
	PackSize             string             `bson:"packSize" json:"packSize"`
	Price                Price              `bson:"price" json:"price"`
	PrescriptionRequired bool               `bson:"prescriptionRequired" json:"prescriptionRequired"`
	Schedule             string             `bson:"schedule" json:"schedule"`
	Storage              string             `bson:"storage,omitempty" json:"storage,omitempty"`
	ExpiryDate           time.Time          `bson:"expiryDate" json:"expiryDate"`
	BatchNumber          string             `bson:"batchNumber" json:"batchNumber"`
	Image                Image              `bson:"image,omitempty" json:"image,omitempty"`
	IsVerified           bool               `bson:"isVerified" json:"isVerified"`
	Status               Status             `bson:"status" json:"status"`
	Stockists            []StockEntry       `bson:"stockists,omitempty" json:"stockists"`
	Rating               float64            `bson:"rating" json:"rating"`
	TotalRatings         int                `bson:"totalRatings" json:"totalRatings"`
	Reviews              []Review           `bson:"reviews,omitempty" json:"reviews"`
	SideEffects          []string           `bson:"sideEffects,omitempty" json:"sideEffects"`
	Contraindications    []string           `bson:"contraindications,omitempty" json:"contraindications"`
	Interactions         []string           `bson:"interactions,omitempty" json:"interactions"`
	PregnancyCategory    string             `bson:"pregnancyCategory,omitempty" json:"pregnancyCategory,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AddRating folds one submission into the running sum.
func (m *Medicine) AddRating(rating int) {
	m.Rating += float64(rating)
	m.TotalRatings++
}

// AverageRating is the derived display rating, never stored.
func (m *Medicine) AverageRating() float64 {
	return AverageRating(m.Rating, m.TotalRatings)
}

// TotalStock sums the stock held across all stockists.
func (m *Medicine) TotalStock() int {
	total := 0
	for _, entry := range m.Stockists {
		total += entry.Stock
	}
	return total
}

// IsExpired reports whether the product expiry date has passed.
func (m *Medicine) IsExpired() bool {
	return time.Now().After(m.ExpiryDate)
}

// ApplyStock upserts the stock entry for one stockist. An existing entry is
// overwritten in place so repeated updates for the same stockist never grow
// the array.
func (m *Medicine) ApplyStock(stockistID primitive.ObjectID, stock int) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	now := time.Now()
	for i := range m.Stockists {
		if m.Stockists[i].Stockist == stockistID {
			m.Stockists[i].Stock = stock
			m.Stockists[i].LastUpdated = now
			return nil
		}
	}
	m.Stockists = append(m.Stockists, StockEntry{Stockist: stockistID, Stock: stock, LastUpdated: now})
	return nil
}

// ReviewedBy reports whether the user already left a review.
func (m *Medicine) ReviewedBy(userID primitive.ObjectID) bool {
	for _, review := range m.Reviews {
		if review.User == userID {
			return true
		}
	}
	return false
}

// MarshalJSON serializes the medicine with its computed fields attached.
func (m Medicine) MarshalJSON() ([]byte, error) {
	type medicineAlias Medicine
	return json.Marshal(struct {
		medicineAlias
		AverageRating float64 `json:"averageRating"`
		TotalStock    int     `json:"totalStock"`
		IsExpired     bool    `json:"isExpired"`
	}{medicineAlias(m), m.AverageRating(), m.TotalStock(), m.IsExpired()})
}

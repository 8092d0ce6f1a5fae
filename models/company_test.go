package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCompanyFullAddress(t *testing.T) {
	tests := []struct {
		name    string
		address CompanyAddress
		want    string
	}{
		{
			"all parts",
			CompanyAddress{Street: "12 MG Road", City: "Indore", State: "MP", Country: "India", Pincode: "452001"},
			"12 MG Road, Indore, MP, India - 452001",
		},
		{
			"skips empty parts",
			CompanyAddress{City: "Indore", Country: "India"},
			"Indore, India",
		},
		{
			"pincode only",
			CompanyAddress{Pincode: "452001"},
			" - 452001",
		},
		{
			"empty",
			CompanyAddress{},
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Company{ContactInfo: ContactInfo{Address: tt.address}}
			if got := c.FullAddress(); got != tt.want {
				t.Errorf("FullAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompanyIsLicenseExpired(t *testing.T) {
	c := Company{LicenseExpiry: time.Now().Add(24 * time.Hour)}
	if c.IsLicenseExpired() {
		t.Errorf("future expiry reported as expired")
	}
	c.LicenseExpiry = time.Now().Add(-24 * time.Hour)
	if !c.IsLicenseExpired() {
		t.Errorf("past expiry not reported as expired")
	}
}

func TestCompanyMarshalJSONComputedFields(t *testing.T) {
	c := Company{
		Name:          "Cipla",
		Rating:        7,
		TotalRatings:  2,
		LicenseExpiry: time.Now().Add(365 * 24 * time.Hour),
		ContactInfo: ContactInfo{
			Address: CompanyAddress{City: "Mumbai", Country: "India"},
		},
	}

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if out["averageRating"] != 3.5 {
		t.Errorf("averageRating = %v, want 3.5", out["averageRating"])
	}
	if out["fullAddress"] != "Mumbai, India" {
		t.Errorf("fullAddress = %v, want %q", out["fullAddress"], "Mumbai, India")
	}
	if out["isLicenseExpired"] != false {
		t.Errorf("isLicenseExpired = %v, want false", out["isLicenseExpired"])
	}
	// The stored rating sum still serializes alongside the derived average.
	if out["rating"] != float64(7) {
		t.Errorf("rating = %v, want 7", out["rating"])
	}
}

func TestStockistMarshalJSONComputedFields(t *testing.T) {
	s := Stockist{
		Name:          "Mehta Distributors",
		Rating:        9,
		TotalRatings:  2,
		LicenseExpiry: time.Now().Add(-24 * time.Hour),
		Address:       Address{Street: "12 MG Road", City: "Indore", State: "MP", Pincode: "452001"},
	}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if out["averageRating"] != 4.5 {
		t.Errorf("averageRating = %v, want 4.5", out["averageRating"])
	}
	if out["fullAddress"] != "12 MG Road, Indore, MP - 452001" {
		t.Errorf("fullAddress = %v", out["fullAddress"])
	}
	if out["isLicenseExpired"] != true {
		t.Errorf("isLicenseExpired = %v, want true", out["isLicenseExpired"])
	}
}

func TestStockistAverageRatingZeroGuard(t *testing.T) {
	s := Stockist{}
	if got := s.AverageRating(); got != 0 {
		t.Errorf("AverageRating() with no ratings = %v, want 0", got)
	}
	s.AddRating(4)
	s.AddRating(5)
	if got := s.AverageRating(); got != 4.5 {
		t.Errorf("AverageRating() = %v, want 4.5", got)
	}
}

package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestResolveCompanyFilter(t *testing.T) {
	id := primitive.NewObjectID()
	dbErr := errors.New("connection reset")

	tests := []struct {
		name        string
		err         error
		wantID      primitive.ObjectID
		wantMatched bool
		wantErr     bool
	}{
		{"match restricts the filter", nil, id, true, false},
		{"no match falls through unfiltered", mongo.ErrNoDocuments, primitive.NilObjectID, false, false},
		{"wrapped no-documents falls through", fmt.Errorf("decode: %w", mongo.ErrNoDocuments), primitive.NilObjectID, false, false},
		{"lookup failure surfaces", dbErr, primitive.NilObjectID, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, matched, err := resolveCompanyFilter(id, tt.err)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if matched != tt.wantMatched {
				t.Errorf("matched = %v, want %v", matched, tt.wantMatched)
			}
			if gotID != tt.wantID {
				t.Errorf("id = %v, want %v", gotID, tt.wantID)
			}
		})
	}
}

func TestGetMedicinesRejectsBadFilters(t *testing.T) {
	// Validation runs before any database access, so a bare controller works.
	mc := &MedicineController{}

	tests := []struct {
		name  string
		query string
	}{
		{"non-boolean prescriptionRequired", "prescriptionRequired=sometimes"},
		{"negative minPrice", "minPrice=-5"},
		{"non-numeric maxPrice", "maxPrice=lots"},
		{"unknown sort field", "sortBy=batchNumber"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/medicine?"+tt.query, nil)
			w := httptest.NewRecorder()
			mc.GetMedicines(w, r)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

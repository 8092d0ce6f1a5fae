package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginStoresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != "POST" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var creds Credentials
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "store@example.com" {
			t.Errorf("email = %q", creds.Email)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "Login successful",
			"token":   "jwt-token",
			"user": map[string]interface{}{
				"id":          "u1",
				"medicalName": "City Medical",
				"email":       "store@example.com",
				"role":        "owner",
			},
		})
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))
	user, err := c.Login(context.Background(), Credentials{Email: "store@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.MedicalName != "City Medical" {
		t.Errorf("MedicalName = %q", user.MedicalName)
	}
	if !c.Session.LoggedIn() || c.Session.Token() != "jwt-token" {
		t.Error("session not populated after login")
	}
}

func TestLoginFailureSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Invalid credentials",
		})
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))
	_, err := c.Login(context.Background(), Credentials{Email: "x@y.z", Password: "bad"})
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Invalid credentials" {
		t.Errorf("got %+v", apiErr)
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Not authorized, token failed",
		})
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))
	c.Session.SetLoggedIn("stale-token", UserSnapshot{ID: "u1"})

	if _, err := c.Me(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if c.Session.LoggedIn() {
		t.Error("stale session should be cleared after a 401")
	}
}

func TestListMedicinesSendsQueryAndToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer jwt-token" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("search") != "paracetamol" || q.Get("page") != "2" || q.Get("sortBy") != "price" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"count":   1,
			"data": []map[string]interface{}{
				{"id": "m1", "name": "Paracetamol 500", "averageRating": 4.5},
			},
			"pagination": map[string]interface{}{
				"page": 2, "limit": 10, "total": 11, "pages": 2, "hasNext": false, "hasPrev": true,
			},
		})
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))
	c.Session.SetLoggedIn("jwt-token", UserSnapshot{ID: "u1"})

	medicines, pagination, err := c.ListMedicines(context.Background(), ListQuery{
		Search: "paracetamol",
		Page:   2,
		SortBy: "price",
	})
	if err != nil {
		t.Fatalf("ListMedicines: %v", err)
	}
	if len(medicines) != 1 || medicines[0].Name != "Paracetamol 500" {
		t.Errorf("medicines = %+v", medicines)
	}
	if pagination == nil || !pagination.HasPrev || pagination.HasNext {
		t.Errorf("pagination = %+v", pagination)
	}
}

func TestMalformedResponseBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))
	if _, _, err := c.ListCompanies(context.Background(), ListQuery{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadDirectoryToleratesPartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/company":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    []map[string]interface{}{{"id": "c1", "name": "Cipla"}},
			})
		case "/api/medicine":
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": "Error fetching medicines",
			})
		case "/api/stockist":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"data":    []map[string]interface{}{{"id": "s1", "name": "Mehta Distributors"}},
			})
		}
	}))
	defer server.Close()

	c := New(WithBaseURL(server.URL))
	dir := c.LoadDirectory(context.Background(), ListQuery{})

	if len(dir.Companies) != 1 {
		t.Errorf("companies = %+v", dir.Companies)
	}
	if len(dir.Medicines) != 0 {
		t.Errorf("failed collection should degrade to empty, got %+v", dir.Medicines)
	}
	if len(dir.Stockists) != 1 {
		t.Errorf("stockists = %+v", dir.Stockists)
	}

	entries := BuildDirectory(dir)
	if len(entries) != 1 || entries[0].StockistName != "Mehta Distributors" {
		t.Errorf("directory should still render the healthy collections, got %+v", entries)
	}
	if len(entries[0].Medicines) != 0 {
		t.Errorf("failed medicine fetch should leave associations empty, got %v", entries[0].Medicines)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Danish34pixel/Meditrap/utils"
)

func authedRequest(t *testing.T, role string) *http.Request {
	t.Helper()
	token, err := utils.GenerateJWT("64f1a2b3c4d5e6f7a8b9c0d1", "store@example.com", role)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	r := httptest.NewRequest("GET", "/api/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

func TestProtectRejectsMissingToken(t *testing.T) {
	handler := Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/auth/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestProtectRejectsMalformedHeader(t *testing.T) {
	handler := Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	for _, header := range []string{"Basic abc123", "Bearer", "Bearer a b"} {
		r := httptest.NewRequest("GET", "/api/auth/me", nil)
		r.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestProtectRejectsBadToken(t *testing.T) {
	handler := Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	r := httptest.NewRequest("GET", "/api/auth/me", nil)
	r.Header.Set("Authorization", "Bearer not-a-real-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestProtectAttachesClaims(t *testing.T) {
	utils.JwtKey = []byte("test-secret")

	var got *utils.Claims
	handler := Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("claims missing from context")
		}
		got = claims
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest(t, "owner"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got.Email != "store@example.com" || got.Role != "owner" {
		t.Errorf("claims = %+v", got)
	}
}

func TestAuthorize(t *testing.T) {
	utils.JwtKey = []byte("test-secret")

	chain := func(roles ...string) http.Handler {
		return Protect(Authorize(roles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))
	}

	tests := []struct {
		name     string
		userRole string
		allowed  []string
		want     int
	}{
		{"admin on admin route", "admin", []string{"admin"}, http.StatusOK},
		{"owner on admin route", "owner", []string{"admin"}, http.StatusForbidden},
		{"staff on shared route", "staff", []string{"owner", "staff"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			chain(tt.allowed...).ServeHTTP(w, authedRequest(t, tt.userRole))
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Danish34pixel/Meditrap/controllers"
	"github.com/Danish34pixel/Meditrap/utils"
	"github.com/gorilla/mux"
)

// testRouter wires the routes with bare controllers. The requests below use
// invalid object ids on purpose: a handler that is reached answers 400 before
// touching the database, so the middleware tier is observable without one.
func testRouter() *mux.Router {
	router := mux.NewRouter()
	RegisterRoutes(router, Controllers{
		Auth:     &controllers.AuthController{},
		User:     &controllers.UserController{},
		Company:  &controllers.CompanyController{},
		Medicine: &controllers.MedicineController{},
		Stockist: &controllers.StockistController{},
		Upload:   &controllers.UploadController{},
		Admin:    &controllers.AdminController{},
	})
	return router
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := utils.GenerateJWT("64f1a2b3c4d5e6f7a8b9c0d1", "store@example.com", role)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return "Bearer " + token
}

func TestStockUpdateRequiresAdmin(t *testing.T) {
	utils.JwtKey = []byte("test-secret")
	router := testRouter()

	body := strings.NewReader(`{"stockistId":"64f1a2b3c4d5e6f7a8b9c0d2","stock":5}`)

	// A staff token must be stopped by the role gate.
	r := httptest.NewRequest("PUT", "/api/medicine/not-a-valid-id/stock", body)
	r.Header.Set("Authorization", bearer(t, "staff"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("staff stock update: status = %d, want 403", w.Code)
	}

	// An admin token passes the gate and reaches the handler, which rejects
	// the malformed id.
	r = httptest.NewRequest("PUT", "/api/medicine/not-a-valid-id/stock", body)
	r.Header.Set("Authorization", bearer(t, "admin"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("admin stock update: status = %d, want 400", w.Code)
	}
}

func TestMutationTiersByRole(t *testing.T) {
	utils.JwtKey = []byte("test-secret")
	router := testRouter()

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"owner review stays authenticated", "POST", "/api/medicine/not-a-valid-id/review", "owner", http.StatusBadRequest},
		{"owner company rate stays authenticated", "POST", "/api/company/not-a-valid-id/rate", "owner", http.StatusBadRequest},
		{"owner medicine update forbidden", "PUT", "/api/medicine/not-a-valid-id", "owner", http.StatusForbidden},
		{"staff company delete forbidden", "DELETE", "/api/company/not-a-valid-id", "staff", http.StatusForbidden},
		{"staff user list forbidden", "GET", "/api/user", "staff", http.StatusForbidden},
		{"admin stockist verify reaches handler", "PUT", "/api/stockist/not-a-valid-id/verify", "admin", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"rating":4}`))
			r.Header.Set("Authorization", bearer(t, tt.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestPublicReadsNeedNoToken(t *testing.T) {
	router := testRouter()

	// The invalid id again proves the request reached the handler rather
	// than an auth gate.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/medicine/not-a-valid-id", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("public get: status = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PUT", "/api/medicine/not-a-valid-id/stock", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous stock update: status = %d, want 401", w.Code)
	}
}

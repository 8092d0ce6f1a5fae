package controllers

import (
	"net/http"

	"github.com/Danish34pixel/Meditrap/middleware"
	"github.com/Danish34pixel/Meditrap/utils"
	"go.mongodb.org/mongo-driver/bson"
)

// AdminController serves the admin panel entry point
type AdminController struct{}

// Panel confirms admin access and echoes the authenticated identity
func (ac *AdminController) Panel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	utils.Success(w, "Welcome to the admin panel", bson.M{
		"userId": claims.UserID,
		"email":  claims.Email,
		"role":   claims.Role,
	})
}

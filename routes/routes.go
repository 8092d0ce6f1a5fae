// routes/routes.go
package routes

import (
	"github.com/Danish34pixel/Meditrap/controllers"
	"github.com/Danish34pixel/Meditrap/middleware"
	"github.com/Danish34pixel/Meditrap/models"

	"github.com/gorilla/mux"
)

// Controllers bundles every controller the router needs
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Company  *controllers.CompanyController
	Medicine *controllers.MedicineController
	Stockist *controllers.StockistController
	Upload   *controllers.UploadController
	Admin    *controllers.AdminController
}

// RegisterRoutes sets up all the routes for the application under /api
func RegisterRoutes(router *mux.Router, c Controllers) {
	api := router.PathPrefix("/api").Subrouter()

	// Auth routes
	api.HandleFunc("/auth/register", c.Auth.Register).Methods("POST")
	api.HandleFunc("/auth/login", c.Auth.Login).Methods("POST")
	api.HandleFunc("/auth/forgot-password", c.Auth.ForgotPassword).Methods("POST")
	api.HandleFunc("/auth/reset-password/{token}", c.Auth.ResetPassword).Methods("PUT")

	authed := api.PathPrefix("/auth").Subrouter()
	authed.Use(middleware.Protect)
	authed.HandleFunc("/me", c.Auth.Me).Methods("GET")
	authed.HandleFunc("/profile", c.Auth.UpdateProfile).Methods("PUT")
	authed.HandleFunc("/change-password", c.Auth.ChangePassword).Methods("PUT")
	authed.HandleFunc("/logout", c.Auth.Logout).Methods("POST")

	// Company routes
	api.HandleFunc("/company", c.Company.GetCompanies).Methods("GET")
	api.HandleFunc("/company/{id}", c.Company.GetCompanyByID).Methods("GET")

	companyAuthed := api.PathPrefix("/company").Subrouter()
	companyAuthed.Use(middleware.Protect)
	companyAuthed.HandleFunc("/{id}/rate", c.Company.RateCompany).Methods("POST")

	companyAdmin := api.PathPrefix("/company").Subrouter()
	companyAdmin.Use(middleware.Protect)
	companyAdmin.Use(middleware.Authorize(models.RoleAdmin))
	companyAdmin.HandleFunc("", c.Company.CreateCompany).Methods("POST")
	companyAdmin.HandleFunc("/stats/overview", c.Company.GetCompanyStats).Methods("GET")
	companyAdmin.HandleFunc("/{id}", c.Company.UpdateCompany).Methods("PUT")
	companyAdmin.HandleFunc("/{id}", c.Company.DeleteCompany).Methods("DELETE")
	companyAdmin.HandleFunc("/{id}/verify", c.Company.VerifyCompany).Methods("PUT")

	// Medicine routes
	api.HandleFunc("/medicine", c.Medicine.GetMedicines).Methods("GET")
	api.HandleFunc("/medicine/{id}", c.Medicine.GetMedicineByID).Methods("GET")

	medicineAuthed := api.PathPrefix("/medicine").Subrouter()
	medicineAuthed.Use(middleware.Protect)
	medicineAuthed.HandleFunc("/{id}/review", c.Medicine.ReviewMedicine).Methods("POST")

	medicineAdmin := api.PathPrefix("/medicine").Subrouter()
	medicineAdmin.Use(middleware.Protect)
	medicineAdmin.Use(middleware.Authorize(models.RoleAdmin))
	medicineAdmin.HandleFunc("", c.Medicine.CreateMedicine).Methods("POST")
	medicineAdmin.HandleFunc("/stats/overview", c.Medicine.GetMedicineStats).Methods("GET")
	medicineAdmin.HandleFunc("/{id}", c.Medicine.UpdateMedicine).Methods("PUT")
	medicineAdmin.HandleFunc("/{id}", c.Medicine.DeleteMedicine).Methods("DELETE")
	medicineAdmin.HandleFunc("/{id}/stock", c.Medicine.UpdateStock).Methods("PUT")

	// Stockist routes
	api.HandleFunc("/stockist", c.Stockist.GetStockists).Methods("GET")
	api.HandleFunc("/stockist/{id}", c.Stockist.GetStockistByID).Methods("GET")

	stockistAuthed := api.PathPrefix("/stockist").Subrouter()
	stockistAuthed.Use(middleware.Protect)
	stockistAuthed.HandleFunc("/{id}/rate", c.Stockist.RateStockist).Methods("POST")

	stockistAdmin := api.PathPrefix("/stockist").Subrouter()
	stockistAdmin.Use(middleware.Protect)
	stockistAdmin.Use(middleware.Authorize(models.RoleAdmin))
	stockistAdmin.HandleFunc("", c.Stockist.CreateStockist).Methods("POST")
	stockistAdmin.HandleFunc("/stats/overview", c.Stockist.GetStockistStats).Methods("GET")
	stockistAdmin.HandleFunc("/{id}", c.Stockist.UpdateStockist).Methods("PUT")
	stockistAdmin.HandleFunc("/{id}", c.Stockist.DeleteStockist).Methods("DELETE")
	stockistAdmin.HandleFunc("/{id}/verify", c.Stockist.VerifyStockist).Methods("PUT")

	// User management routes (Admin only)
	userAdmin := api.PathPrefix("/user").Subrouter()
	userAdmin.Use(middleware.Protect)
	userAdmin.Use(middleware.Authorize(models.RoleAdmin))
	userAdmin.HandleFunc("", c.User.GetUsers).Methods("GET")
	userAdmin.HandleFunc("/stats/overview", c.User.GetUserStats).Methods("GET")
	userAdmin.HandleFunc("/{id}", c.User.GetUserByID).Methods("GET")
	userAdmin.HandleFunc("/{id}", c.User.UpdateUser).Methods("PUT")
	userAdmin.HandleFunc("/{id}", c.User.DeleteUser).Methods("DELETE")
	userAdmin.HandleFunc("/{id}/verify", c.User.VerifyUser).Methods("PUT")

	// Upload routes
	upload := api.PathPrefix("/upload").Subrouter()
	upload.Use(middleware.Protect)
	upload.HandleFunc("/image", c.Upload.UploadImage).Methods("POST")
	upload.HandleFunc("/images", c.Upload.UploadImages).Methods("POST")
	upload.HandleFunc("", c.Upload.ListFiles).Methods("GET")
	upload.HandleFunc("/{filename}", c.Upload.GetFileInfo).Methods("GET")
	upload.HandleFunc("/{filename}", c.Upload.DeleteFile).Methods("DELETE")

	// Admin panel
	adminPanel := api.PathPrefix("/admin").Subrouter()
	adminPanel.Use(middleware.Protect)
	adminPanel.Use(middleware.Authorize(models.RoleAdmin))
	adminPanel.HandleFunc("/panel", c.Admin.Panel).Methods("GET")
}

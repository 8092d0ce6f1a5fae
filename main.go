// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/Danish34pixel/Meditrap/controllers"
	"github.com/Danish34pixel/Meditrap/routes"
	"github.com/Danish34pixel/Meditrap/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))
	if len(utils.JwtKey) == 0 {
		log.Fatal("JWT_SECRET must be set")
	}

	// Initialize EmailService
	emailService := utils.NewEmailService()

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	if err := utils.EnsureIndexes(client); err != nil {
		log.Fatal("Error creating indexes: ", err)
	}

	// Initialize controllers
	uploadController := controllers.NewUploadController()
	ctrls := routes.Controllers{
		Auth:     controllers.NewAuthController(client, emailService),
		User:     controllers.NewUserController(client),
		Company:  controllers.NewCompanyController(client),
		Medicine: controllers.NewMedicineController(client),
		Stockist: controllers.NewStockistController(client),
		Upload:   uploadController,
		Admin:    &controllers.AdminController{},
	}

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, ctrls)

	// Serve locally stored uploads
	router.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadController.Dir))))

	// CORS and request logging
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	handler := handlers.LoggingHandler(os.Stdout, cors(router))

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}
	log.Printf("Server is running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

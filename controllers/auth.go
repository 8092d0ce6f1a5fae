package controllers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/Danish34pixel/Meditrap/middleware"
	"github.com/Danish34pixel/Meditrap/models"
	"github.com/Danish34pixel/Meditrap/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// AuthController handles registration, login and profile requests
type AuthController struct {
	Collection   *mongo.Collection
	EmailService *utils.EmailService
}

// NewAuthController creates a new AuthController
func NewAuthController(client *mongo.Client, emailService *utils.EmailService) *AuthController {
	collection := client.Database(utils.DatabaseName()).Collection("users")
	return &AuthController{
		Collection:   collection,
		EmailService: emailService,
	}
}

// userSummary is the login/register response shape
type userSummary struct {
	ID          primitive.ObjectID `json:"id"`
	MedicalName string             `json:"medicalName"`
	OwnerName   string             `json:"ownerName"`
	Email       string             `json:"email"`
	Role        string             `json:"role"`
	IsVerified  bool               `json:"isVerified"`
}

func summarize(user *models.User) userSummary {
	return userSummary{
		ID:          user.ID,
		MedicalName: user.MedicalName,
		OwnerName:   user.OwnerName,
		Email:       user.Email,
		Role:        user.Role,
		IsVerified:  user.IsVerified,
	}
}

type registerRequest struct {
	MedicalName      string         `json:"medicalName" validate:"required,min=2,max=100"`
	OwnerName        string         `json:"ownerName" validate:"required,min=2,max=50"`
	Email            string         `json:"email" validate:"required,email"`
	ContactNo        string         `json:"contactNo" validate:"required"`
	Address          models.Address `json:"address"`
	DrugLicenseNo    string         `json:"drugLicenseNo" validate:"required"`
	DrugLicenseImage models.Image   `json:"drugLicenseImage"`
	Password         string         `json:"password" validate:"required,min=6"`
}

// Register handles user registration
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		utils.FailValidation(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Check for an existing account before inserting so the caller gets a
	// specific message; the unique indexes remain the real guarantee.
	var existing models.User
	err := ac.Collection.FindOne(ctx, bson.M{
		"$or": []bson.M{{"email": req.Email}, {"drugLicenseNo": req.DrugLicenseNo}},
	}).Decode(&existing)
	if err == nil {
		if existing.Email == req.Email {
			utils.Fail(w, http.StatusBadRequest, "Email already registered")
		} else {
			utils.Fail(w, http.StatusBadRequest, "Drug license number already registered")
		}
		return
	} else if err != mongo.ErrNoDocuments {
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Hashing happens before the insert is even attempted; a plaintext
	// password never reaches the database.
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	now := time.Now()
	user := models.User{
		MedicalName:      req.MedicalName,
		OwnerName:        req.OwnerName,
		Email:            req.Email,
		ContactNo:        req.ContactNo,
		Address:          req.Address,
		DrugLicenseNo:    req.DrugLicenseNo,
		DrugLicenseImage: req.DrugLicenseImage,
		Password:         string(hashed),
		Role:             models.RoleOwner,
		IsVerified:       false,
		Status:           models.StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	result, err := ac.Collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.Fail(w, http.StatusBadRequest, "Email or drug license number already registered")
			return
		}
		utils.Fail(w, http.StatusInternalServerError, "Error creating user")
		return
	}
	user.ID = result.InsertedID.(primitive.ObjectID)

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.Response{
		Success: true,
		Message: "User registered successfully",
		Token:   token,
		User:    summarize(&user),
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles user authentication
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		utils.FailValidation(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := ac.Collection.FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil {
		utils.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if user.Status != models.StatusActive {
		utils.Fail(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.Fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now()
	_, err = ac.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"lastLogin": now}})
	if err != nil {
		log.Printf("Failed to record last login for %s: %v", user.Email, err)
	}

	token, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    summarize(&user),
	})
}

// Me returns the authenticated user's profile
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.currentUser(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.Response{Success: true, User: user})
}

type profileUpdateRequest struct {
	MedicalName *string         `json:"medicalName" validate:"omitempty,min=2,max=100"`
	OwnerName   *string         `json:"ownerName" validate:"omitempty,min=2,max=50"`
	ContactNo   *string         `json:"contactNo" validate:"omitempty"`
	Address     *models.Address `json:"address"`
}

// UpdateProfile updates the authenticated user's own profile fields
func (ac *AuthController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.Fail(w, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		utils.FailValidation(w, errs)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.MedicalName != nil {
		set["medicalName"] = *req.MedicalName
	}
	if req.OwnerName != nil {
		set["ownerName"] = *req.OwnerName
	}
	if req.ContactNo != nil {
		set["contactNo"] = *req.ContactNo
	}
	if req.Address != nil {
		set["address"] = *req.Address
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = ac.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "User not found")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Success: true,
		Message: "Profile updated successfully",
		User:    user,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// ChangePassword verifies the current password and stores a new hash
func (ac *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.currentUser(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		utils.FailValidation(w, errs)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	_, err = ac.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{"password": string(hashed), "updatedAt": time.Now()},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error updating password")
		return
	}

	utils.Success(w, "Password changed successfully", nil)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a short-lived reset token and mails it. The response
// is the same whether or not the account exists.
func (ac *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		utils.FailValidation(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := ac.Collection.FindOne(ctx, bson.M{"email": req.Email, "status": models.StatusActive}).Decode(&user)
	if err == nil {
		raw := make([]byte, 20)
		if _, err := rand.Read(raw); err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Error generating reset token")
			return
		}
		token := hex.EncodeToString(raw)
		expiry := time.Now().Add(10 * time.Minute)

		_, err = ac.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
			"$set": bson.M{"resetPasswordToken": token, "resetPasswordExpire": expiry},
		})
		if err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Error saving reset token")
			return
		}

		if err := ac.EmailService.SendPasswordResetEmail(user.Email, token); err != nil {
			log.Printf("Failed to send reset email to %s: %v", user.Email, err)
		}
	}

	utils.Success(w, "If that email is registered, a reset link has been sent", nil)
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

// ResetPassword consumes a reset token and stores a new password hash
func (ac *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		utils.FailValidation(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := ac.Collection.FindOne(ctx, bson.M{
		"resetPasswordToken":  token,
		"resetPasswordExpire": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error hashing password")
		return
	}

	_, err = ac.Collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set":   bson.M{"password": string(hashed), "updatedAt": time.Now()},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error updating password")
		return
	}

	utils.Success(w, "Password reset successfully", nil)
}

// Logout acknowledges logout; tokens are stateless so the client simply
// discards its copy
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, "Logged out successfully", nil)
}

// currentUser loads the full record for the authenticated claims, writing
// the error response itself on failure.
func (ac *AuthController) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.Fail(w, http.StatusUnauthorized, "Not authorized")
		return nil, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.Fail(w, http.StatusUnauthorized, "Not authorized")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := ac.Collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.Fail(w, http.StatusNotFound, "User not found")
		return nil, false
	}
	return &user, true
}

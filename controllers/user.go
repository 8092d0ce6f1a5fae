package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Danish34pixel/Meditrap/models"
	"github.com/Danish34pixel/Meditrap/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserController handles admin-side user management
type UserController struct {
	Collection *mongo.Collection
}

// NewUserController creates a new UserController
func NewUserController(client *mongo.Client) *UserController {
	collection := client.Database(utils.DatabaseName()).Collection("users")
	return &UserController{Collection: collection}
}

// GetUsers lists registered medical stores with pagination (Admin only)
func (uc *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, errs := utils.ParsePagination(r)
	sort, sortErrs := utils.ParseSort(r,
		[]string{"medicalName", "createdAt", "lastLogin"}, "createdAt", nil)
	errs = append(errs, sortErrs...)

	filter := bson.M{}
	q := r.URL.Query()
	if role := q.Get("role"); role != "" {
		filter["role"] = role
	}
	if status := q.Get("status"); status != "" {
		filter["status"] = status
	}
	if search := q.Get("search"); search != "" {
		filter["$or"] = []bson.M{
			{"medicalName": bson.M{"$regex": search, "$options": "i"}},
			{"ownerName": bson.M{"$regex": search, "$options": "i"}},
			{"email": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	if len(errs) > 0 {
		utils.FailValidation(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"password": 0, "resetPasswordToken": 0, "resetPasswordExpire": 0})

	cursor, err := uc.Collection.Find(ctx, filter, opts)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error fetching users")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error reading users")
		return
	}

	total, err := uc.Collection.CountDocuments(ctx, filter)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error counting users")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Success:    true,
		Count:      utils.IntPtr(len(users)),
		Pagination: utils.NewPagination(page, limit, total),
		Data:       users,
	})
}

// GetUserByID returns a single user (Admin only)
func (uc *UserController) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = uc.Collection.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"password": 0, "resetPasswordToken": 0, "resetPasswordExpire": 0}),
	).Decode(&user)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "User not found")
		return
	}

	utils.Success(w, "", user)
}

type adminUserUpdateRequest struct {
	MedicalName *string         `json:"medicalName" validate:"omitempty,min=2,max=100"`
	OwnerName   *string         `json:"ownerName" validate:"omitempty,min=2,max=100"`
	ContactNo   *string         `json:"contactNo" validate:"omitempty,min=10,max=15"`
	Address     *models.Address `json:"address"`
	Role        *string         `json:"role" validate:"omitempty,oneof=owner staff admin"`
	IsVerified  *bool           `json:"isVerified"`
	Status      *models.Status  `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateUser lets an admin edit account fields, including role and
// verification, that owners cannot touch themselves
func (uc *UserController) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req adminUserUpdateRequest
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
	if req.Role != nil {
		set["role"] = *req.Role
	}
	if req.IsVerified != nil {
		set["isVerified"] = *req.IsVerified
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = uc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"password": 0, "resetPasswordToken": 0, "resetPasswordExpire": 0}),
	).Decode(&user)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "User not found")
		return
	}

	utils.Success(w, "User updated successfully", user)
}

// DeleteUser deactivates an account (Admin only). The document stays
// around so the store can be reinstated later.
func (uc *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := uc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": models.StatusInactive, "updatedAt": time.Now()},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error deleting user")
		return
	}
	if result.MatchedCount == 0 {
		utils.Fail(w, http.StatusNotFound, "User not found")
		return
	}

	utils.Success(w, "User deleted successfully", nil)
}

// VerifyUser marks a store's drug license as checked (Admin only)
func (uc *UserController) VerifyUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = uc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isVerified": true, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "User not found")
		return
	}

	utils.Success(w, "User verified successfully", bson.M{
		"id":          user.ID,
		"medicalName": user.MedicalName,
		"isVerified":  user.IsVerified,
	})
}

// GetUserStats computes registration statistics fresh on every call (Admin only)
func (uc *UserController) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	total, err := uc.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	active, err := uc.Collection.CountDocuments(ctx, bson.M{"status": models.StatusActive})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	verified, err := uc.Collection.CountDocuments(ctx, bson.M{
		"status": models.StatusActive, "isVerified": true,
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	byRole, err := aggregateCounts(ctx, uc.Collection, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	recent, err := uc.Collection.CountDocuments(ctx, bson.M{
		"createdAt": bson.M{"$gte": time.Now().AddDate(0, 0, -30)},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	utils.Success(w, "", bson.M{
		"totalUsers":          total,
		"activeUsers":         active,
		"verifiedUsers":       verified,
		"usersByRole":         byRole,
		"recentRegistrations": recent,
	})
}

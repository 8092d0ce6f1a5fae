package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Danish34pixel/Meditrap/models"
	"github.com/Danish34pixel/Meditrap/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StockistController handles stockist requests
type StockistController struct {
	Collection *mongo.Collection
}

// NewStockistController creates a new StockistController
func NewStockistController(client *mongo.Client) *StockistController {
	collection := client.Database(utils.DatabaseName()).Collection("stockists")
	return &StockistController{Collection: collection}
}

// GetStockists lists active stockists with filtering, search and pagination
func (sc *StockistController) GetStockists(w http.ResponseWriter, r *http.Request) {
	page, limit, errs := utils.ParsePagination(r)
	sort, sortErrs := utils.ParseSort(r,
		[]string{"name", "rating", "createdAt", "minimumOrder"}, "name", nil)
	errs = append(errs, sortErrs...)

	filter := bson.M{"status": models.StatusActive}
	q := r.URL.Query()

	if search := q.Get("search"); search != "" {
		filter["$text"] = bson.M{"$search": search}
	}
	if city := q.Get("city"); city != "" {
		filter["address.city"] = bson.M{"$regex": city, "$options": "i"}
	}
	if state := q.Get("state"); state != "" {
		filter["address.state"] = bson.M{"$regex": state, "$options": "i"}
	}
	if specialization := q.Get("specialization"); specialization != "" {
		filter["specializations"] = bson.M{"$in": []string{specialization}}
	}
	if raw := q.Get("rating"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil || min < 0 || min > 5 {
			errs = append(errs, utils.FieldError{Param: "rating", Msg: "Rating must be between 0 and 5"})
		} else {
			filter["rating"] = bson.M{"$gte": min}
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
		SetLimit(int64(limit))

	cursor, err := sc.Collection.Find(ctx, filter, opts)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error fetching stockists")
		return
	}
	defer cursor.Close(ctx)

	stockists := []models.Stockist{}
	if err := cursor.All(ctx, &stockists); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error reading stockists")
		return
	}

	total, err := sc.Collection.CountDocuments(ctx, filter)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error counting stockists")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Success:    true,
		Count:      utils.IntPtr(len(stockists)),
		Pagination: utils.NewPagination(page, limit, total),
		Data:       stockists,
	})
}

// GetStockistByID returns a single active stockist
func (sc *StockistController) GetStockistByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid stockist ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var stockist models.Stockist
	err = sc.Collection.FindOne(ctx, bson.M{"_id": id, "status": models.StatusActive}).Decode(&stockist)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Stockist not found")
		return
	}

	utils.Success(w, "", stockist)
}

type createStockistRequest struct {
	Name            string                `json:"name" validate:"required,min=2,max=100"`
	ContactPerson   string                `json:"contactPerson" validate:"required"`
	Phone           string                `json:"phone" validate:"required,min=10,max=15"`
	Email           string                `json:"email" validate:"omitempty,email"`
	Address         models.Address        `json:"address"`
	LicenseNumber   string                `json:"licenseNumber" validate:"required"`
	LicenseExpiry   time.Time             `json:"licenseExpiry" validate:"required"`
	Specializations []string              `json:"specializations" validate:"omitempty,dive,oneof=antibiotics painkillers vitamins diabetes cardiac general"`
	DeliveryAreas   []models.DeliveryArea `json:"deliveryAreas"`
	PaymentTerms    string                `json:"paymentTerms" validate:"omitempty,oneof=cash credit both"`
	MinimumOrder    float64               `json:"minimumOrder" validate:"omitempty,gte=0"`
}

// CreateStockist handles adding a new stockist (Admin only)
func (sc *StockistController) CreateStockist(w http.ResponseWriter, r *http.Request) {
	var req createStockistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	errs := utils.ValidateStruct(req)
	errs = append(errs, utils.ValidateStruct(req.Address)...)
	if errs != nil {
		utils.FailValidation(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := sc.Collection.CountDocuments(ctx, bson.M{"licenseNumber": req.LicenseNumber})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error checking stockist")
		return
	}
	if count > 0 {
		utils.Fail(w, http.StatusBadRequest, "Stockist with this license number already exists")
		return
	}

	paymentTerms := req.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = "both"
	}

	now := time.Now()
	stockist := models.Stockist{
		Name:            req.Name,
		ContactPerson:   req.ContactPerson,
		Phone:           req.Phone,
		Email:           req.Email,
		Address:         req.Address,
		LicenseNumber:   req.LicenseNumber,
		LicenseExpiry:   req.LicenseExpiry,
		IsVerified:      false,
		Status:          models.StatusActive,
		Specializations: req.Specializations,
		DeliveryAreas:   req.DeliveryAreas,
		PaymentTerms:    paymentTerms,
		MinimumOrder:    req.MinimumOrder,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	result, err := sc.Collection.InsertOne(ctx, stockist)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.Fail(w, http.StatusBadRequest, "Stockist with this license number already exists")
			return
		}
		utils.Fail(w, http.StatusInternalServerError, "Error creating stockist")
		return
	}
	stockist.ID = result.InsertedID.(primitive.ObjectID)

	utils.Created(w, "Stockist created successfully", stockist)
}

type updateStockistRequest struct {
	Name            *string               `json:"name" validate:"omitempty,min=2,max=100"`
	ContactPerson   *string               `json:"contactPerson"`
	Phone           *string               `json:"phone" validate:"omitempty,min=10,max=15"`
	Email           *string               `json:"email" validate:"omitempty,email"`
	Address         *models.Address       `json:"address"`
	LicenseExpiry   *time.Time            `json:"licenseExpiry"`
	Specializations []string              `json:"specializations" validate:"omitempty,dive,oneof=antibiotics painkillers vitamins diabetes cardiac general"`
	DeliveryAreas   []models.DeliveryArea `json:"deliveryAreas"`
	PaymentTerms    *string               `json:"paymentTerms" validate:"omitempty,oneof=cash credit both"`
	MinimumOrder    *float64              `json:"minimumOrder" validate:"omitempty,gte=0"`
}

// UpdateStockist handles updating a stockist (Admin only)
func (sc *StockistController) UpdateStockist(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid stockist ID")
		return
	}

	var req updateStockistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := utils.ValidateStruct(req); errs != nil {
		utils.FailValidation(w, errs)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.ContactPerson != nil {
		set["contactPerson"] = *req.ContactPerson
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Address != nil {
		set["address"] = *req.Address
	}
	if req.LicenseExpiry != nil {
		set["licenseExpiry"] = *req.LicenseExpiry
	}
	if req.Specializations != nil {
		set["specializations"] = req.Specializations
	}
	if req.DeliveryAreas != nil {
		set["deliveryAreas"] = req.DeliveryAreas
	}
	if req.PaymentTerms != nil {
		set["paymentTerms"] = *req.PaymentTerms
	}
	if req.MinimumOrder != nil {
		set["minimumOrder"] = *req.MinimumOrder
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var stockist models.Stockist
	err = sc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stockist)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Stockist not found")
		return
	}

	utils.Success(w, "Stockist updated successfully", stockist)
}

// DeleteStockist soft-deletes a stockist (Admin only)
func (sc *StockistController) DeleteStockist(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid stockist ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := sc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": models.StatusInactive, "updatedAt": time.Now()},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error deleting stockist")
		return
	}
	if result.MatchedCount == 0 {
		utils.Fail(w, http.StatusNotFound, "Stockist not found")
		return
	}

	utils.Success(w, "Stockist deleted successfully", nil)
}

// RateStockist records one rating submission atomically
func (sc *StockistController) RateStockist(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid stockist ID")
		return
	}

	var req rateRequest
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

	var stockist models.Stockist
	err = sc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.StatusActive},
		bson.M{"$inc": bson.M{"rating": req.Rating, "totalRatings": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stockist)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Stockist not found")
		return
	}

	utils.Success(w, "Rating added successfully", bson.M{
		"rating":        stockist.Rating,
		"totalRatings":  stockist.TotalRatings,
		"averageRating": stockist.AverageRating(),
	})
}

// VerifyStockist marks a stockist as verified (Admin only)
func (sc *StockistController) VerifyStockist(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid stockist ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var stockist models.Stockist
	err = sc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isVerified": true, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stockist)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Stockist not found")
		return
	}

	utils.Success(w, "Stockist verified successfully", bson.M{
		"id":         stockist.ID,
		"name":       stockist.Name,
		"isVerified": stockist.IsVerified,
	})
}

// GetStockistStats computes distributor statistics fresh on every call (Admin only)
func (sc *StockistController) GetStockistStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	total, err := sc.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	active, err := sc.Collection.CountDocuments(ctx, bson.M{"status": models.StatusActive})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	verified, err := sc.Collection.CountDocuments(ctx, bson.M{
		"status": models.StatusActive, "isVerified": true,
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	byState, err := aggregateCounts(ctx, sc.Collection, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusActive}}},
		{{Key: "$group", Value: bson.M{"_id": "$address.state", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	bySpecialization, err := aggregateCounts(ctx, sc.Collection, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusActive}}},
		{{Key: "$unwind", Value: "$specializations"}},
		{{Key: "$group", Value: bson.M{"_id": "$specializations", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	topOpts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetLimit(5).
		SetProjection(bson.M{"name": 1, "rating": 1, "totalRatings": 1, "address": 1})
	cursor, err := sc.Collection.Find(ctx, bson.M{"status": models.StatusActive}, topOpts)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	topStockists := []models.Stockist{}
	if err := cursor.All(ctx, &topStockists); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	expiringSoon, err := sc.Collection.CountDocuments(ctx, bson.M{
		"status": models.StatusActive,
		"licenseExpiry": bson.M{
			"$gte": time.Now(),
			"$lte": time.Now().AddDate(0, 0, 30),
		},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	utils.Success(w, "", bson.M{
		"totalStockists":            total,
		"activeStockists":           active,
		"verifiedStockists":         verified,
		"stockistsByState":          byState,
		"stockistsBySpecialization": bySpecialization,
		"topStockists":              topStockists,
		"expiringLicenses":          expiringSoon,
	})
}

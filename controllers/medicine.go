package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Danish34pixel/Meditrap/middleware"
	"github.com/Danish34pixel/Meditrap/models"
	"github.com/Danish34pixel/Meditrap/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MedicineController handles medicine requests
type MedicineController struct {
	Collection *mongo.Collection
	Companies  *mongo.Collection
}

// NewMedicineController creates a new MedicineController
func NewMedicineController(client *mongo.Client) *MedicineController {
	db := client.Database(utils.DatabaseName())
	return &MedicineController{
		Collection: db.Collection("medicines"),
		Companies:  db.Collection("companies"),
	}
}

// GetMedicines lists active medicines with filtering, search and pagination
func (mc *MedicineController) GetMedicines(w http.ResponseWriter, r *http.Request) {
	page, limit, errs := utils.ParsePagination(r)
	sort, sortErrs := utils.ParseSort(r,
		[]string{"name", "price", "rating", "createdAt"}, "name",
		map[string]string{"price": "price.mrp"})
	errs = append(errs, sortErrs...)

	filter := bson.M{"status": models.StatusActive}
	q := r.URL.Query()

	if search := q.Get("search"); search != "" {
		filter["$text"] = bson.M{"$search": search}
	}
	if category := q.Get("category"); category != "" {
		filter["category"] = category
	}
	if dosageForm := q.Get("dosageForm"); dosageForm != "" {
		filter["dosageForm"] = dosageForm
	}
	if raw := q.Get("prescriptionRequired"); raw != "" {
		required, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, utils.FieldError{Param: "prescriptionRequired", Msg: "Prescription required must be boolean"})
		} else {
			filter["prescriptionRequired"] = required
		}
	}

	price := bson.M{}
	if raw := q.Get("minPrice"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil || min < 0 {
			errs = append(errs, utils.FieldError{Param: "minPrice", Msg: "Min price must be positive"})
		} else {
			price["$gte"] = min
		}
	}
	if raw := q.Get("maxPrice"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil || max < 0 {
			errs = append(errs, utils.FieldError{Param: "maxPrice", Msg: "Max price must be positive"})
		} else {
			price["$lte"] = max
		}
	}
	if len(price) > 0 {
		filter["price.mrp"] = price
	}

	if len(errs) > 0 {
		utils.FailValidation(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Company filter matches by name, case-insensitive, then restricts to
	// that company's id.
	if companyName := q.Get("company"); companyName != "" {
		var company models.Company
		err := mc.Companies.FindOne(ctx, bson.M{
			"name": bson.M{"$regex": companyName, "$options": "i"},
		}).Decode(&company)
		companyID, matched, err := resolveCompanyFilter(company.ID, err)
		if err != nil {
			utils.Fail(w, http.StatusInternalServerError, "Error fetching medicines")
			return
		}
		if matched {
			filter["company"] = companyID
		}
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := mc.Collection.Find(ctx, filter, opts)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error fetching medicines")
		return
	}
	defer cursor.Close(ctx)

	medicines := []models.Medicine{}
	if err := cursor.All(ctx, &medicines); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error reading medicines")
		return
	}

	total, err := mc.Collection.CountDocuments(ctx, filter)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error counting medicines")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Success:    true,
		Count:      utils.IntPtr(len(medicines)),
		Pagination: utils.NewPagination(page, limit, total),
		Data:       medicines,
	})
}

// resolveCompanyFilter interprets the company-name lookup result. No matching
// company leaves the list unfiltered; any other lookup failure must surface
// rather than silently degrade to an unfiltered list.
func resolveCompanyFilter(id primitive.ObjectID, err error) (primitive.ObjectID, bool, error) {
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return primitive.NilObjectID, false, nil
	default:
		return primitive.NilObjectID, false, err
	}
}

// GetMedicineByID returns a single active medicine
func (mc *MedicineController) GetMedicineByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid medicine ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var medicine models.Medicine
	err = mc.Collection.FindOne(ctx, bson.M{"_id": id, "status": models.StatusActive}).Decode(&medicine)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Medicine not found")
		return
	}

	utils.Success(w, "", medicine)
}

type createMedicineRequest struct {
	Name                 string               `json:"name" validate:"required,min=2,max=100"`
	GenericName          string               `json:"genericName" validate:"omitempty,max=100"`
	BrandName            string               `json:"brandName" validate:"omitempty,max=100"`
	Company              string               `json:"company" validate:"required"`
	Category             string               `json:"category" validate:"required,oneof=antibiotics painkillers vitamins diabetes cardiac oncology pediatrics general other"`
	SubCategory          string               `json:"subCategory"`
	Description          string               `json:"description" validate:"omitempty,max=1000"`
	Composition          []models.Composition `json:"composition"`
	DosageForm           string               `json:"dosageForm" validate:"required,oneof=tablet capsule syrup injection cream ointment drops inhaler other"`
	Strength             string               `json:"strength" validate:"required"`
	PackSize             string               `json:"packSize" validate:"required"`
	Price                models.Price         `json:"price"`
	PrescriptionRequired bool                 `json:"prescriptionRequired"`
	Schedule             string               `json:"schedule" validate:"omitempty,oneof=OTC 'Schedule H' 'Schedule H1' 'Schedule X' 'Schedule G'"`
	Storage              string               `json:"storage"`
	ExpiryDate           time.Time            `json:"expiryDate" validate:"required"`
	BatchNumber          string               `json:"batchNumber" validate:"required"`
	Image                models.Image         `json:"image"`
	SideEffects          []string             `json:"sideEffects"`
	Contraindications    []string             `json:"contraindications"`
	Interactions         []string             `json:"interactions"`
	PregnancyCategory    string               `json:"pregnancyCategory" validate:"omitempty,oneof=A B C D X"`
}

// CreateMedicine handles adding a new medicine (Admin only)
func (mc *MedicineController) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	var req createMedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	errs := utils.ValidateStruct(req)
	if req.Price.MRP < 0 {
		errs = append(errs, utils.FieldError{Param: "price.mrp", Msg: "MRP cannot be negative"})
	} else if req.Price.MRP == 0 {
		errs = append(errs, utils.FieldError{Param: "price.mrp", Msg: "MRP is required"})
	}
	companyID, err := primitive.ObjectIDFromHex(req.Company)
	if err != nil {
		errs = append(errs, utils.FieldError{Param: "company", Msg: "Valid company ID is required"})
	}
	if errs != nil {
		utils.FailValidation(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var company models.Company
	err = mc.Companies.FindOne(ctx, bson.M{"_id": companyID, "status": models.StatusActive}).Decode(&company)
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Company not found")
		return
	}

	schedule := req.Schedule
	if schedule == "" {
		schedule = "OTC"
	}
	pregnancy := req.PregnancyCategory
	if pregnancy == "" {
		pregnancy = "C"
	}
	storage := req.Storage
	if storage == "" {
		storage = "Store in a cool, dry place"
	}

	now := time.Now()
	medicine := models.Medicine{
		Name:                 req.Name,
		GenericName:          req.GenericName,
		BrandName:            req.BrandName,
		Company:              companyID,
		Category:             req.Category,
		SubCategory:          req.SubCategory,
		Description:          req.Description,
		Composition:          req.Composition,
		DosageForm:           req.DosageForm,
		Strength:             req.Strength,
		PackSize:             req.PackSize,
		Price:                req.Price,
		PrescriptionRequired: req.PrescriptionRequired,
		Schedule:             schedule,
		Storage:              storage,
		ExpiryDate:           req.ExpiryDate,
		BatchNumber:          req.BatchNumber,
		Image:                req.Image,
		Status:               models.StatusActive,
		SideEffects:          req.SideEffects,
		Contraindications:    req.Contraindications,
		Interactions:         req.Interactions,
		PregnancyCategory:    pregnancy,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	result, err := mc.Collection.InsertOne(ctx, medicine)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error creating medicine")
		return
	}
	medicine.ID = result.InsertedID.(primitive.ObjectID)

	// Keep the company's medicine reference list in step.
	_, err = mc.Companies.UpdateOne(ctx, bson.M{"_id": companyID}, bson.M{
		"$addToSet": bson.M{"medicines": medicine.ID},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error linking medicine to company")
		return
	}

	utils.Created(w, "Medicine created successfully", medicine)
}

type updateMedicineRequest struct {
	Name                 *string              `json:"name" validate:"omitempty,min=2,max=100"`
	GenericName          *string              `json:"genericName" validate:"omitempty,max=100"`
	BrandName            *string              `json:"brandName" validate:"omitempty,max=100"`
	Category             *string              `json:"category" validate:"omitempty,oneof=antibiotics painkillers vitamins diabetes cardiac oncology pediatrics general other"`
	SubCategory          *string              `json:"subCategory"`
	Description          *string              `json:"description" validate:"omitempty,max=1000"`
	Composition          []models.Composition `json:"composition"`
	DosageForm           *string              `json:"dosageForm" validate:"omitempty,oneof=tablet capsule syrup injection cream ointment drops inhaler other"`
	Strength             *string              `json:"strength"`
	PackSize             *string              `json:"packSize"`
	Price                *models.Price        `json:"price"`
	PrescriptionRequired *bool                `json:"prescriptionRequired"`
	Schedule             *string              `json:"schedule" validate:"omitempty,oneof=OTC 'Schedule H' 'Schedule H1' 'Schedule X' 'Schedule G'"`
	Storage              *string              `json:"storage"`
	ExpiryDate           *time.Time           `json:"expiryDate"`
	BatchNumber          *string              `json:"batchNumber"`
	Image                *models.Image        `json:"image"`
	SideEffects          []string             `json:"sideEffects"`
	Contraindications    []string             `json:"contraindications"`
	Interactions         []string             `json:"interactions"`
	PregnancyCategory    *string              `json:"pregnancyCategory" validate:"omitempty,oneof=A B C D X"`
}

// UpdateMedicine handles updating a medicine (Admin only)
func (mc *MedicineController) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid medicine ID")
		return
	}

	var req updateMedicineRequest
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
	if req.GenericName != nil {
		set["genericName"] = *req.GenericName
	}
	if req.BrandName != nil {
		set["brandName"] = *req.BrandName
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.SubCategory != nil {
		set["subCategory"] = *req.SubCategory
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Composition != nil {
		set["composition"] = req.Composition
	}
	if req.DosageForm != nil {
		set["dosageForm"] = *req.DosageForm
	}
	if req.Strength != nil {
		set["strength"] = *req.Strength
	}
	if req.PackSize != nil {
		set["packSize"] = *req.PackSize
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.PrescriptionRequired != nil {
		set["prescriptionRequired"] = *req.PrescriptionRequired
	}
	if req.Schedule != nil {
		set["schedule"] = *req.Schedule
	}
	if req.Storage != nil {
		set["storage"] = *req.Storage
	}
	if req.ExpiryDate != nil {
		set["expiryDate"] = *req.ExpiryDate
	}
	if req.BatchNumber != nil {
		set["batchNumber"] = *req.BatchNumber
	}
	if req.Image != nil {
		set["image"] = *req.Image
	}
	if req.SideEffects != nil {
		set["sideEffects"] = req.SideEffects
	}
	if req.Contraindications != nil {
		set["contraindications"] = req.Contraindications
	}
	if req.Interactions != nil {
		set["interactions"] = req.Interactions
	}
	if req.PregnancyCategory != nil {
		set["pregnancyCategory"] = *req.PregnancyCategory
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var medicine models.Medicine
	err = mc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&medicine)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Medicine not found")
		return
	}

	utils.Success(w, "Medicine updated successfully", medicine)
}

// DeleteMedicine soft-deletes a medicine (Admin only)
func (mc *MedicineController) DeleteMedicine(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid medicine ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := mc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": models.StatusInactive, "updatedAt": time.Now()},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error deleting medicine")
		return
	}
	if result.MatchedCount == 0 {
		utils.Fail(w, http.StatusNotFound, "Medicine not found")
		return
	}

	utils.Success(w, "Medicine deleted successfully", nil)
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=500"`
}

// ReviewMedicine appends a one-per-user review. The review push and the
// rating increment land in a single document update.
func (mc *MedicineController) ReviewMedicine(w http.ResponseWriter, r *http.Request) {
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

	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid medicine ID")
		return
	}

	var req reviewRequest
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

	var medicine models.Medicine
	err = mc.Collection.FindOne(ctx, bson.M{"_id": id, "status": models.StatusActive}).Decode(&medicine)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Medicine not found")
		return
	}
	if medicine.ReviewedBy(userID) {
		utils.Fail(w, http.StatusBadRequest, "You have already reviewed this medicine")
		return
	}

	review := models.Review{
		User:    userID,
		Rating:  req.Rating,
		Comment: req.Comment,
		Date:    time.Now(),
	}
	err = mc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.StatusActive},
		bson.M{
			"$push": bson.M{"reviews": review},
			"$inc":  bson.M{"rating": req.Rating, "totalRatings": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&medicine)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Medicine not found")
		return
	}

	utils.Success(w, "Review added successfully", bson.M{
		"rating":        medicine.Rating,
		"totalRatings":  medicine.TotalRatings,
		"averageRating": medicine.AverageRating(),
		"reviews":       medicine.Reviews,
	})
}

type stockUpdateRequest struct {
	StockistID string `json:"stockistId" validate:"required"`
	Stock      *int   `json:"stock" validate:"required"`
}

// UpdateStock upserts the stock level for one stockist on a medicine
func (mc *MedicineController) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid medicine ID")
		return
	}

	var req stockUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	errs := utils.ValidateStruct(req)
	stockistID, err := primitive.ObjectIDFromHex(req.StockistID)
	if err != nil {
		errs = append(errs, utils.FieldError{Param: "stockistId", Msg: "Valid stockist ID is required"})
	}
	if req.Stock != nil && *req.Stock < 0 {
		errs = append(errs, utils.FieldError{Param: "stock", Msg: "Stock must be a non-negative integer"})
	}
	if errs != nil {
		utils.FailValidation(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var medicine models.Medicine
	err = mc.Collection.FindOne(ctx, bson.M{"_id": id, "status": models.StatusActive}).Decode(&medicine)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Medicine not found")
		return
	}

	if err := medicine.ApplyStock(stockistID, *req.Stock); err != nil {
		utils.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = mc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"stockists": medicine.Stockists, "updatedAt": time.Now()},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error updating stock")
		return
	}

	utils.Success(w, "Stock updated successfully", bson.M{
		"stockists":  medicine.Stockists,
		"totalStock": medicine.TotalStock(),
	})
}

// GetMedicineStats computes catalog statistics fresh on every call (Admin only)
func (mc *MedicineController) GetMedicineStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	total, err := mc.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	active, err := mc.Collection.CountDocuments(ctx, bson.M{"status": models.StatusActive})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	prescription, err := mc.Collection.CountDocuments(ctx, bson.M{
		"status": models.StatusActive, "prescriptionRequired": true,
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	byCategory, err := aggregateCounts(ctx, mc.Collection, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusActive}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	byDosageForm, err := aggregateCounts(ctx, mc.Collection, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusActive}}},
		{{Key: "$group", Value: bson.M{"_id": "$dosageForm", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	topOpts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetLimit(5).
		SetProjection(bson.M{"name": 1, "brandName": 1, "rating": 1, "totalRatings": 1})
	cursor, err := mc.Collection.Find(ctx, bson.M{"status": models.StatusActive}, topOpts)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	topMedicines := []models.Medicine{}
	if err := cursor.All(ctx, &topMedicines); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	utils.Success(w, "", bson.M{
		"totalMedicines":        total,
		"activeMedicines":       active,
		"prescriptionMedicines": prescription,
		"medicinesByCategory":   byCategory,
		"medicinesByDosageForm": byDosageForm,
		"topMedicines":          topMedicines,
	})
}

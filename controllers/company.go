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

// CompanyController handles pharmaceutical company requests
type CompanyController struct {
	Collection *mongo.Collection
}

// NewCompanyController creates a new CompanyController
func NewCompanyController(client *mongo.Client) *CompanyController {
	collection := client.Database(utils.DatabaseName()).Collection("companies")
	return &CompanyController{Collection: collection}
}

// GetCompanies lists active companies with filtering, search and pagination
func (cc *CompanyController) GetCompanies(w http.ResponseWriter, r *http.Request) {
	page, limit, errs := utils.ParsePagination(r)
	sort, sortErrs := utils.ParseSort(r, []string{"name", "rating", "createdAt"}, "name", nil)
	errs = append(errs, sortErrs...)

	filter := bson.M{"status": models.StatusActive}
	q := r.URL.Query()

	if search := q.Get("search"); search != "" {
		filter["$text"] = bson.M{"$search": search}
	}
	if category := q.Get("category"); category != "" {
		filter["category"] = category
	}
	if spec := q.Get("specialization"); spec != "" {
		filter["specializations"] = bson.M{"$in": []string{spec}}
	}
	if raw := q.Get("rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 || rating > 5 {
			errs = append(errs, utils.FieldError{Param: "rating", Msg: "Rating must be between 0 and 5"})
		} else {
			filter["rating"] = bson.M{"$gte": rating}
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

	cursor, err := cc.Collection.Find(ctx, filter, opts)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error fetching companies")
		return
	}
	defer cursor.Close(ctx)

	companies := []models.Company{}
	if err := cursor.All(ctx, &companies); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error reading companies")
		return
	}

	total, err := cc.Collection.CountDocuments(ctx, filter)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error counting companies")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Response{
		Success:    true,
		Count:      utils.IntPtr(len(companies)),
		Pagination: utils.NewPagination(page, limit, total),
		Data:       companies,
	})
}

// GetCompanyByID returns a single active company. A soft-deleted company is
// indistinguishable from a missing one.
func (cc *CompanyController) GetCompanyByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var company models.Company
	err = cc.Collection.FindOne(ctx, bson.M{"_id": id, "status": models.StatusActive}).Decode(&company)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Company not found")
		return
	}

	utils.Success(w, "", company)
}

type createCompanyRequest struct {
	Name            string                 `json:"name" validate:"required,min=2,max=100"`
	ShortName       string                 `json:"shortName" validate:"omitempty,max=20"`
	Description     string                 `json:"description" validate:"omitempty,max=500"`
	Logo            models.Image           `json:"logo"`
	Website         string                 `json:"website" validate:"omitempty,url"`
	ContactInfo     models.ContactInfo     `json:"contactInfo"`
	LicenseNumber   string                 `json:"licenseNumber" validate:"required"`
	LicenseExpiry   time.Time              `json:"licenseExpiry" validate:"required"`
	Category        string                 `json:"category" validate:"required,oneof=multinational national regional local"`
	Specializations []string               `json:"specializations" validate:"omitempty,dive,oneof=antibiotics painkillers vitamins diabetes cardiac oncology pediatrics general"`
	Certifications  []models.Certification `json:"certifications"`
}

// CreateCompany handles adding a new company (Admin only)
func (cc *CompanyController) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
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

	var existing models.Company
	err := cc.Collection.FindOne(ctx, bson.M{
		"$or": []bson.M{{"name": req.Name}, {"licenseNumber": req.LicenseNumber}},
	}).Decode(&existing)
	if err == nil {
		if existing.Name == req.Name {
			utils.Fail(w, http.StatusBadRequest, "Company name already registered")
		} else {
			utils.Fail(w, http.StatusBadRequest, "License number already registered")
		}
		return
	} else if err != mongo.ErrNoDocuments {
		utils.Fail(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	company := models.Company{
		Name:            req.Name,
		ShortName:       req.ShortName,
		Description:     req.Description,
		Logo:            req.Logo,
		Website:         req.Website,
		ContactInfo:     req.ContactInfo,
		LicenseNumber:   req.LicenseNumber,
		LicenseExpiry:   req.LicenseExpiry,
		Category:        req.Category,
		Specializations: req.Specializations,
		Certifications:  req.Certifications,
		IsVerified:      false,
		Status:          models.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	result, err := cc.Collection.InsertOne(ctx, company)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.Fail(w, http.StatusBadRequest, "Company name or license number already registered")
			return
		}
		utils.Fail(w, http.StatusInternalServerError, "Error creating company")
		return
	}
	company.ID = result.InsertedID.(primitive.ObjectID)

	utils.Created(w, "Company created successfully", company)
}

type updateCompanyRequest struct {
	Name            *string                 `json:"name" validate:"omitempty,min=2,max=100"`
	ShortName       *string                 `json:"shortName" validate:"omitempty,max=20"`
	Description     *string                 `json:"description" validate:"omitempty,max=500"`
	Logo            *models.Image           `json:"logo"`
	Website         *string                 `json:"website" validate:"omitempty,url"`
	ContactInfo     *models.ContactInfo     `json:"contactInfo"`
	LicenseExpiry   *time.Time              `json:"licenseExpiry"`
	Category        *string                 `json:"category" validate:"omitempty,oneof=multinational national regional local"`
	Specializations []string               `json:"specializations" validate:"omitempty,dive,oneof=antibiotics painkillers vitamins diabetes cardiac oncology pediatrics general"`
	Certifications  []models.Certification `json:"certifications"`
}

// UpdateCompany handles updating a company (Admin only)
func (cc *CompanyController) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	var req updateCompanyRequest
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
	if req.ShortName != nil {
		set["shortName"] = *req.ShortName
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Logo != nil {
		set["logo"] = *req.Logo
	}
	if req.Website != nil {
		set["website"] = *req.Website
	}
	if req.ContactInfo != nil {
		set["contactInfo"] = *req.ContactInfo
	}
	if req.LicenseExpiry != nil {
		set["licenseExpiry"] = *req.LicenseExpiry
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Specializations != nil {
		set["specializations"] = req.Specializations
	}
	if req.Certifications != nil {
		set["certifications"] = req.Certifications
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var company models.Company
	err = cc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&company)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.Fail(w, http.StatusBadRequest, "Company name already registered")
			return
		}
		utils.Fail(w, http.StatusNotFound, "Company not found")
		return
	}

	utils.Success(w, "Company updated successfully", company)
}

// DeleteCompany soft-deletes a company (Admin only)
func (cc *CompanyController) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := cc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": models.StatusInactive, "updatedAt": time.Now()},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error deleting company")
		return
	}
	if result.MatchedCount == 0 {
		utils.Fail(w, http.StatusNotFound, "Company not found")
		return
	}

	utils.Success(w, "Company deleted successfully", nil)
}

type rateRequest struct {
	Rating int `json:"rating" validate:"required,gte=1,lte=5"`
}

// RateCompany adds one rating submission. The increment happens in a single
// atomic update so concurrent submissions cannot lose counts.
func (cc *CompanyController) RateCompany(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid company ID")
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

	var company models.Company
	err = cc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.StatusActive},
		bson.M{"$inc": bson.M{"rating": req.Rating, "totalRatings": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&company)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Company not found")
		return
	}

	utils.Success(w, "Rating added successfully", bson.M{
		"rating":        company.Rating,
		"totalRatings":  company.TotalRatings,
		"averageRating": company.AverageRating(),
	})
}

// VerifyCompany marks a company as verified (Admin only)
func (cc *CompanyController) VerifyCompany(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.Fail(w, http.StatusBadRequest, "Invalid company ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var company models.Company
	err = cc.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isVerified": true, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&company)
	if err != nil {
		utils.Fail(w, http.StatusNotFound, "Company not found")
		return
	}

	utils.Success(w, "Company verified successfully", bson.M{
		"id":         company.ID,
		"name":       company.Name,
		"isVerified": company.IsVerified,
	})
}

// GetCompanyStats computes directory statistics fresh on every call (Admin only)
func (cc *CompanyController) GetCompanyStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	total, err := cc.Collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	active, err := cc.Collection.CountDocuments(ctx, bson.M{"status": models.StatusActive})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	verified, err := cc.Collection.CountDocuments(ctx, bson.M{"isVerified": true})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	byCategory, err := aggregateCounts(ctx, cc.Collection, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusActive}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	bySpecialization, err := aggregateCounts(ctx, cc.Collection, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusActive}}},
		{{Key: "$unwind", Value: "$specializations"}},
		{{Key: "$group", Value: bson.M{"_id": "$specializations", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: 10}},
	})
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	topOpts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}}).
		SetLimit(5).
		SetProjection(bson.M{"name": 1, "shortName": 1, "rating": 1, "totalRatings": 1})
	cursor, err := cc.Collection.Find(ctx, bson.M{"status": models.StatusActive}, topOpts)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	topCompanies := []models.Company{}
	if err := cursor.All(ctx, &topCompanies); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	// Licenses expiring within the next 30 days.
	now := time.Now()
	expOpts := options.Find().SetProjection(bson.M{"name": 1, "licenseNumber": 1, "licenseExpiry": 1})
	cursor, err = cc.Collection.Find(ctx, bson.M{
		"status":        models.StatusActive,
		"licenseExpiry": bson.M{"$gte": now, "$lte": now.AddDate(0, 0, 30)},
	}, expOpts)
	if err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}
	expiringLicenses := []models.Company{}
	if err := cursor.All(ctx, &expiringLicenses); err != nil {
		utils.Fail(w, http.StatusInternalServerError, "Error computing statistics")
		return
	}

	utils.Success(w, "", bson.M{
		"totalCompanies":            total,
		"activeCompanies":           active,
		"verifiedCompanies":         verified,
		"companiesByCategory":       byCategory,
		"companiesBySpecialization": bySpecialization,
		"topCompanies":              topCompanies,
		"expiringLicenses":          expiringLicenses,
	})
}

// categoryCount is one bucket of a group-by aggregation
type categoryCount struct {
	ID    string `bson:"_id" json:"_id"`
	Count int    `bson:"count" json:"count"`
}

func aggregateCounts(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]categoryCount, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []categoryCount{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type couponCreateRequest struct {
	Code          string    `json:"code" binding:"required"`
	Description   string    `json:"description" binding:"required"`
	DiscountType  string    `json:"discountType" binding:"required,oneof=percentage fixed"`
	DiscountValue float64   `json:"discountValue" binding:"required,gt=0"`
	MinOrderValue float64   `json:"minOrderValue"`
	MaxDiscount   float64   `json:"maxDiscount"`
	UsageLimit    *int      `json:"usageLimit"`
	ValidFrom     time.Time `json:"validFrom" binding:"required"`
	ValidUntil    time.Time `json:"validUntil" binding:"required"`
}

type couponUpdateRequest struct {
	Code          *string    `json:"code"`
	Description   *string    `json:"description"`
	DiscountType  *string    `json:"discountType"`
	DiscountValue *float64   `json:"discountValue"`
	MinOrderValue *float64   `json:"minOrderValue"`
	MaxDiscount   *float64   `json:"maxDiscount"`
	UsageLimit    *int       `json:"usageLimit"`
	ValidFrom     *time.Time `json:"validFrom"`
	ValidUntil    *time.Time `json:"validUntil"`
	IsActive      *bool      `json:"isActive"`
}

func CreateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/coupons"
		defer handlePanic(c, route)

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var req couponCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		code := strings.ToUpper(strings.TrimSpace(req.Code))
		if code == "" {
			respondWithError(c, http.StatusBadRequest, route, "code is required")
			return
		}
		if !req.ValidUntil.After(req.ValidFrom) {
			respondWithError(c, http.StatusBadRequest, route, "validUntil must be after validFrom")
			return
		}
		if req.UsageLimit != nil && *req.UsageLimit <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "usageLimit must be greater than 0")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("coupons").CountDocuments(ctx, bson.M{"code": code})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusBadRequest, route, "coupon code already exists")
			return
		}

		now := time.Now()
		coupon := models.Coupon{
			Code:          code,
			Description:   strings.TrimSpace(req.Description),
			DiscountType:  req.DiscountType,
			DiscountValue: req.DiscountValue,
			MinOrderValue: req.MinOrderValue,
			MaxDiscount:   req.MaxDiscount,
			UsageLimit:    req.UsageLimit,
			ValidFrom:     req.ValidFrom,
			ValidUntil:    req.ValidUntil,
			IsActive:      true,
			CreatedBy:     &userID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		res, err := db.Collection("coupons").InsertOne(ctx, coupon)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, idOK := res.InsertedID.(primitive.ObjectID); idOK {
			coupon.ID = id
		}

		log.Println("[COUPON] [INFO] coupon created:", coupon.Code)
		c.JSON(http.StatusCreated, coupon)
	}
}

func GetAllCoupons(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("coupons").Find(
			ctx,
			bson.M{},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		coupons := make([]models.Coupon, 0)
		if err := cursor.All(ctx, &coupons); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		c.JSON(http.StatusOK, coupons)
	}
}

func UpdateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid coupon id"})
			return
		}

		var req couponUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		if err := db.Collection("coupons").FindOne(ctx, bson.M{"_id": couponID}).Decode(&coupon); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "coupon not found"})
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if req.Code != nil {
			set["code"] = strings.ToUpper(strings.TrimSpace(*req.Code))
		}
		if req.Description != nil {
			set["description"] = strings.TrimSpace(*req.Description)
		}
		if req.DiscountType != nil {
			if *req.DiscountType != models.DiscountTypePercentage && *req.DiscountType != models.DiscountTypeFixed {
				respondWithError(c, http.StatusBadRequest, route, "invalid discountType")
				return
			}
			set["discountType"] = *req.DiscountType
		}
		if req.DiscountValue != nil {
			if *req.DiscountValue <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "discountValue must be greater than 0")
				return
			}
			set["discountValue"] = *req.DiscountValue
		}
		if req.MinOrderValue != nil {
			set["minOrderValue"] = *req.MinOrderValue
		}
		if req.MaxDiscount != nil {
			set["maxDiscount"] = *req.MaxDiscount
		}
		if req.UsageLimit != nil {
			set["usageLimit"] = *req.UsageLimit
		}
		if req.ValidFrom != nil {
			set["validFrom"] = *req.ValidFrom
		}
		if req.ValidUntil != nil {
			set["validUntil"] = *req.ValidUntil
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}

		if _, err := db.Collection("coupons").UpdateByID(ctx, couponID, bson.M{"$set": set}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := db.Collection("coupons").FindOne(ctx, bson.M{"_id": couponID}).Decode(&coupon); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[COUPON] [INFO] coupon updated:", coupon.Code)
		c.JSON(http.StatusOK, coupon)
	}
}

// DeleteCoupon deactivates rather than removes, preserving usage history.
func DeleteCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid coupon id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").UpdateByID(ctx, couponID, bson.M{
			"$set": bson.M{"isActive": false, "updatedAt": time.Now()},
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "coupon not found"})
			return
		}

		log.Println("[COUPON] [INFO] coupon deactivated:", couponID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "coupon deactivated successfully"})
	}
}

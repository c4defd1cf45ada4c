package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type couponCheckRequest struct {
	Code        string  `json:"code" binding:"required"`
	OrderAmount float64 `json:"orderAmount" binding:"required,gt=0"`
}

// ValidateCoupon checks a code against an order amount and returns the
// discount it would grant. Shared by POST /api/coupons/validate and
// POST /api/orders/apply-coupon; no state is mutated here.
func ValidateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/coupons/validate"
		defer handlePanic(c, route)

		var req couponCheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		code := strings.ToUpper(strings.TrimSpace(req.Code))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		err := db.Collection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"message": "invalid coupon code"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		discount, err := coupon.DiscountFor(req.OrderAmount, time.Now())
		if err != nil {
			var minOrderErr models.MinOrderError
			switch {
			case errors.Is(err, models.ErrCouponInvalid):
				respondWithError(c, http.StatusBadRequest, route, "coupon is expired or not valid")
			case errors.As(err, &minOrderErr):
				respondWithError(c, http.StatusBadRequest, route, minOrderErr.Error())
			default:
				respondWithError(c, http.StatusBadRequest, route, err.Error())
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"valid":       true,
			"code":        coupon.Code,
			"description": coupon.Description,
			"discount":    discount,
			"finalAmount": req.OrderAmount - discount,
		})
	}
}

// GetActiveCoupons lists currently redeemable coupons without exposing
// usage counters.
func GetActiveCoupons(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("coupons").Find(ctx, bson.M{
			"isActive":   true,
			"validFrom":  bson.M{"$lte": now},
			"validUntil": bson.M{"$gte": now},
		}, options.Find().SetProjection(bson.M{"createdBy": 0, "usedCount": 0}))
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

func GetCouponByCode(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := strings.ToUpper(strings.TrimSpace(c.Param("code")))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon models.Coupon
		err := db.Collection("coupons").FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"message": "coupon not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		if !coupon.IsValidAt(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "coupon is not valid or has expired"})
			return
		}

		c.JSON(http.StatusOK, coupon)
	}
}

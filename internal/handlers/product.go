package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

/* =========================
   PUBLIC CATALOG
========================= */

func GetProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		filter := bson.M{"isActive": bson.M{"$ne": false}}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = category
		}
		if size := strings.TrimSpace(c.Query("size")); size != "" {
			filter["sizes"] = size
		}
		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["name"] = bson.M{"$regex": search, "$options": "i"}
		}

		priceFilter := bson.M{}
		if minPrice := strings.TrimSpace(c.Query("minPrice")); minPrice != "" {
			if value, err := strconv.ParseFloat(minPrice, 64); err == nil {
				priceFilter["$gte"] = value
			}
		}
		if maxPrice := strings.TrimSpace(c.Query("maxPrice")); maxPrice != "" {
			if value, err := strconv.ParseFloat(maxPrice, 64); err == nil {
				priceFilter["$lte"] = value
			}
		}
		if len(priceFilter) > 0 {
			filter["price"] = priceFilter
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		if pageStr, limitStr := c.Query("page"), c.Query("limit"); pageStr != "" && limitStr != "" {
			page, limit, err := parsePaginationParams(pageStr, limitStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
				return
			}
			findOptions.
				SetSkip((page - 1) * limit).
				SetLimit(limit)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("products").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		log.Printf("[%s] returning %d products", route, len(products))
		c.JSON(http.StatusOK, products)
	}
}

func GetProductByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

// GetSimilarProducts lists up to 8 active products in the same category.
func GetSimilarProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}

		cursor, err := db.Collection("products").Find(ctx, bson.M{
			"category": product.Category,
			"_id":      bson.M{"$ne": product.ID},
			"isActive": true,
		}, options.Find().SetLimit(8))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		similar := make([]models.Product, 0, 8)
		if err := cursor.All(ctx, &similar); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		c.JSON(http.StatusOK, similar)
	}
}

/* =========================
   REVIEWS
========================= */

type reviewRequest struct {
	Rating  int      `json:"rating" binding:"required,min=1,max=5"`
	Comment string   `json:"comment" binding:"required"`
	Images  []string `json:"images"`
}

func AddProductReview(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products/:id/reviews"
		defer handlePanic(c, route)

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
			return
		}

		var req reviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}

		for _, review := range product.Reviews {
			if review.User == userID {
				respondWithError(c, http.StatusBadRequest, route, "product already reviewed")
				return
			}
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}

		product.Reviews = append(product.Reviews, models.Review{
			User:      userID,
			Name:      user.Name,
			Rating:    req.Rating,
			Comment:   strings.TrimSpace(req.Comment),
			Images:    req.Images,
			CreatedAt: time.Now(),
		})
		product.RecalculateRating()

		_, err = db.Collection("products").UpdateByID(ctx, productID, bson.M{
			"$set": bson.M{
				"reviews":    product.Reviews,
				"rating":     product.Rating,
				"numReviews": product.NumReviews,
				"updatedAt":  time.Now(),
			},
		})
		if err != nil {
			log.Println("[REVIEW] [ERROR] save review failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "review added successfully"})
	}
}

func GetProductReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"reviews":    product.Reviews,
			"rating":     product.Rating,
			"numReviews": product.NumReviews,
		})
	}
}

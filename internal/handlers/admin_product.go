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

	"backend/internal/models"
)

type productCreateRequest struct {
	Name          string   `json:"name" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	Category      string   `json:"category" binding:"required"`
	Brand         string   `json:"brand"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice float64  `json:"discountPrice"`
	Sizes         []string `json:"sizes"`
	Stock         int      `json:"stock" binding:"min=0"`
	Colors        []string `json:"colors"`
	Images        []string `json:"images"`
	IsFeatured    bool     `json:"isFeatured"`
}

type productUpdateRequest struct {
	Name          *string   `json:"name"`
	Description   *string   `json:"description"`
	Category      *string   `json:"category"`
	Brand         *string   `json:"brand"`
	Price         *float64  `json:"price"`
	DiscountPrice *float64  `json:"discountPrice"`
	Sizes         *[]string `json:"sizes"`
	Stock         *int      `json:"stock"`
	Colors        *[]string `json:"colors"`
	Images        *[]string `json:"images"`
	IsActive      *bool     `json:"isActive"`
	IsFeatured    *bool     `json:"isFeatured"`
}

func validSizes(sizes []string) bool {
	allowed := map[string]bool{}
	for _, s := range models.ProductSizes {
		allowed[s] = true
	}
	for _, s := range sizes {
		if !allowed[s] {
			return false
		}
	}
	return true
}

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/products"
		defer handlePanic(c, route)

		var req productCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !validSizes(req.Sizes) {
			respondWithError(c, http.StatusBadRequest, route, "invalid size value")
			return
		}
		if req.DiscountPrice < 0 || (req.DiscountPrice > 0 && req.DiscountPrice >= req.Price) {
			respondWithError(c, http.StatusBadRequest, route, "discountPrice must be less than price")
			return
		}

		now := time.Now()
		product := models.Product{
			Name:          strings.TrimSpace(req.Name),
			Description:   strings.TrimSpace(req.Description),
			Category:      strings.TrimSpace(req.Category),
			Brand:         strings.TrimSpace(req.Brand),
			Price:         req.Price,
			DiscountPrice: req.DiscountPrice,
			Sizes:         req.Sizes,
			Stock:         req.Stock,
			Colors:        req.Colors,
			Images:        req.Images,
			Reviews:       []models.Review{},
			IsActive:      true,
			IsFeatured:    req.IsFeatured,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			product.ID = id
		}

		log.Println("[PRODUCT] [INFO] product created:", product.ID.Hex())
		c.JSON(http.StatusCreated, product)
	}
}

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/products/:id"
		defer handlePanic(c, route)

		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
			return
		}

		var req productUpdateRequest
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

		set := bson.M{"updatedAt": time.Now()}
		if req.Name != nil {
			set["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			set["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Category != nil {
			set["category"] = strings.TrimSpace(*req.Category)
		}
		if req.Brand != nil {
			set["brand"] = strings.TrimSpace(*req.Brand)
		}
		price := product.Price
		if req.Price != nil {
			if *req.Price <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "price must be greater than 0")
				return
			}
			price = *req.Price
			set["price"] = price
		}
		if req.DiscountPrice != nil {
			if *req.DiscountPrice < 0 || (*req.DiscountPrice > 0 && *req.DiscountPrice >= price) {
				respondWithError(c, http.StatusBadRequest, route, "discountPrice must be less than price")
				return
			}
			set["discountPrice"] = *req.DiscountPrice
		}
		if req.Sizes != nil {
			if !validSizes(*req.Sizes) {
				respondWithError(c, http.StatusBadRequest, route, "invalid size value")
				return
			}
			set["sizes"] = *req.Sizes
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				respondWithError(c, http.StatusBadRequest, route, "stock cannot be negative")
				return
			}
			set["stock"] = *req.Stock
		}
		if req.Colors != nil {
			set["colors"] = *req.Colors
		}
		if req.Images != nil {
			set["images"] = *req.Images
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}
		if req.IsFeatured != nil {
			set["isFeatured"] = *req.IsFeatured
		}

		if _, err := db.Collection("products").UpdateByID(ctx, productID, bson.M{"$set": set}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[PRODUCT] [INFO] product updated:", productID.Hex())
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": productID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}

		log.Println("[PRODUCT] [INFO] product removed:", productID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "product removed"})
	}
}

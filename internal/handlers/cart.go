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

type cartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Size      string `json:"size" binding:"required"`
}

func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		err := db.Collection("carts").FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// AddToCart merges on (product, size): an existing line gets its quantity
// bumped, a new combination appends a line.
func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/add"
		defer handlePanic(c, route)

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": productID, "isActive": bson.M{"$ne": false}}).Decode(&product); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "product not found"})
			return
		}
		if len(product.Sizes) > 0 && !product.HasSize(req.Size) {
			respondWithError(c, http.StatusBadRequest, route, "size not available for this product")
			return
		}

		var cart models.Cart
		err = db.Collection("carts").FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
		if err == mongo.ErrNoDocuments {
			now := time.Now()
			cart = models.Cart{
				User:      userID,
				Items:     []models.CartItem{{Product: productID, Quantity: req.Quantity, Size: req.Size}},
				CreatedAt: now,
				UpdatedAt: now,
			}
			res, err := db.Collection("carts").InsertOne(ctx, cart)
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			if id, idOK := res.InsertedID.(primitive.ObjectID); idOK {
				cart.ID = id
			}
			c.JSON(http.StatusCreated, cart)
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		merged := false
		for i := range cart.Items {
			if cart.Items[i].Product == productID && cart.Items[i].Size == req.Size {
				cart.Items[i].Quantity += req.Quantity
				merged = true
				break
			}
		}
		if !merged {
			cart.Items = append(cart.Items, models.CartItem{Product: productID, Quantity: req.Quantity, Size: req.Size})
		}
		cart.UpdatedAt = time.Now()

		_, err = db.Collection("carts").UpdateByID(ctx, cart.ID, bson.M{
			"$set": bson.M{"items": cart.Items, "updatedAt": cart.UpdatedAt},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusCreated, cart)
	}
}

func UpdateCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/cart/update"
		defer handlePanic(c, route)

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProductID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		if err := db.Collection("carts").FindOne(ctx, bson.M{"user": userID}).Decode(&cart); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "cart not found"})
			return
		}

		found := false
		for i := range cart.Items {
			if cart.Items[i].Product == productID && cart.Items[i].Size == req.Size {
				cart.Items[i].Quantity = req.Quantity
				found = true
				break
			}
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"message": "item not found in cart"})
			return
		}
		cart.UpdatedAt = time.Now()

		_, err = db.Collection("carts").UpdateByID(ctx, cart.ID, bson.M{
			"$set": bson.M{"items": cart.Items, "updatedAt": cart.UpdatedAt},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

func RemoveFromCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("productId")))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
			return
		}
		size := strings.TrimSpace(c.Query("size"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		if err := db.Collection("carts").FindOne(ctx, bson.M{"user": userID}).Decode(&cart); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "cart not found"})
			return
		}

		remaining := make([]models.CartItem, 0, len(cart.Items))
		removed := false
		for _, item := range cart.Items {
			if item.Product == productID && (size == "" || item.Size == size) {
				removed = true
				continue
			}
			remaining = append(remaining, item)
		}
		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"message": "item not found in cart"})
			return
		}

		cart.Items = remaining
		cart.UpdatedAt = time.Now()

		_, err = db.Collection("carts").UpdateByID(ctx, cart.ID, bson.M{
			"$set": bson.M{"items": cart.Items, "updatedAt": cart.UpdatedAt},
		})
		if err != nil {
			log.Println("[CART] [ERROR] remove item failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

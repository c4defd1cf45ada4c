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

func GetAdminOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{}
		if status := strings.TrimSpace(c.Query("status")); status != "" {
			filter["status"] = status
		}

		cursor, err := db.Collection("orders").Find(
			ctx,
			filter,
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// UpdateOrderStatus lets an admin move an order to any status. The status
// write appends a single timeline entry; delivered stamps the delivery
// date used by the return window.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
			return
		}

		var req statusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if !models.IsOrderStatus(req.Status) {
			respondWithError(c, http.StatusBadRequest, route, "invalid status value")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
			return
		}

		now := time.Now()
		set := bson.M{
			"status":    req.Status,
			"updatedAt": now,
		}
		if req.Status == models.StatusDelivered {
			set["deliveredDate"] = now
		}
		if tracking := strings.TrimSpace(req.TrackingNumber); tracking != "" {
			set["trackingNumber"] = tracking
		}

		update := bson.M{"$set": set}
		if req.Status != order.Status {
			update["$push"] = bson.M{"timeline": models.TimelineEntry{
				Status:    req.Status,
				Timestamp: now,
				Message:   "Order " + req.Status,
			}}
		}

		if _, err := db.Collection("orders").UpdateByID(ctx, orderID, update); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] status updated:", orderID.Hex(), "->", req.Status)
		c.JSON(http.StatusOK, gin.H{"message": "order status updated", "order": order})
	}
}

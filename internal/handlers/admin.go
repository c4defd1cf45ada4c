package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// GetDashboardStats aggregates the back-office overview: totals, revenue,
// order status breakdown, monthly revenue for the last six months and the
// top selling products.
func GetDashboardStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/stats"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		totalUsers, err := db.Collection("users").CountDocuments(ctx, bson.M{"role": models.RoleUser})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		totalOrders, err := db.Collection("orders").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		totalProducts, err := db.Collection("products").CountDocuments(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		totalRevenue, err := sumPaidRevenue(ctx, db)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		ordersByStatus, err := aggregateToMaps(ctx, db, "orders", mongo.Pipeline{
			{{Key: "$group", Value: bson.M{
				"_id":   "$status",
				"count": bson.M{"$sum": 1},
			}}},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		recentOrders, err := findRecentOrders(ctx, db, 10)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		sixMonthsAgo := time.Now().AddDate(0, -6, 0)
		monthlyRevenue, err := aggregateToMaps(ctx, db, "orders", mongo.Pipeline{
			{{Key: "$match", Value: bson.M{
				"paymentStatus": models.PaymentPaid,
				"createdAt":     bson.M{"$gte": sixMonthsAgo},
			}}},
			{{Key: "$group", Value: bson.M{
				"_id": bson.M{
					"year":  bson.M{"$year": "$createdAt"},
					"month": bson.M{"$month": "$createdAt"},
				},
				"revenue": bson.M{"$sum": "$totalAmount"},
				"orders":  bson.M{"$sum": 1},
			}}},
			{{Key: "$sort", Value: bson.D{
				{Key: "_id.year", Value: 1},
				{Key: "_id.month", Value: 1},
			}}},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		topProducts, err := aggregateToMaps(ctx, db, "orders", mongo.Pipeline{
			{{Key: "$unwind", Value: "$items"}},
			{{Key: "$group", Value: bson.M{
				"_id":       "$items.product",
				"totalSold": bson.M{"$sum": "$items.quantity"},
				"revenue": bson.M{"$sum": bson.M{
					"$multiply": bson.A{"$items.price", "$items.quantity"},
				}},
			}}},
			{{Key: "$sort", Value: bson.D{{Key: "totalSold", Value: -1}}}},
			{{Key: "$limit", Value: 10}},
			{{Key: "$lookup", Value: bson.M{
				"from":         "products",
				"localField":   "_id",
				"foreignField": "_id",
				"as":           "product",
			}}},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalUsers":     totalUsers,
			"totalOrders":    totalOrders,
			"totalProducts":  totalProducts,
			"totalRevenue":   totalRevenue,
			"ordersByStatus": ordersByStatus,
			"recentOrders":   recentOrders,
			"monthlyRevenue": monthlyRevenue,
			"topProducts":    topProducts,
		})
	}
}

func sumPaidRevenue(ctx context.Context, db *mongo.Database) (float64, error) {
	cursor, err := db.Collection("orders").Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"paymentStatus": models.PaymentPaid}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$totalAmount"},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func aggregateToMaps(ctx context.Context, db *mongo.Database, collection string, pipeline mongo.Pipeline) ([]bson.M, error) {
	cursor, err := db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := make([]bson.M, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func findRecentOrders(ctx context.Context, db *mongo.Database, limit int64) ([]models.Order, error) {
	cursor, err := db.Collection("orders").Find(
		ctx,
		bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0, limit)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

/* =========================
   USER MANAGEMENT
========================= */

func GetAllUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("users").Find(
			ctx,
			bson.M{},
			options.Find().
				SetSort(bson.D{{Key: "createdAt", Value: -1}}).
				SetProjection(bson.M{"passwordHash": 0}),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

type blockUserRequest struct {
	Reason string `json:"reason"`
}

func ToggleBlockUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/users/:id/block"
		defer handlePanic(c, route)

		targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
			return
		}

		var req blockUserRequest
		_ = c.ShouldBindJSON(&req)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": targetID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}

		set := bson.M{
			"isBlocked": !user.IsBlocked,
			"updatedAt": time.Now(),
		}
		if !user.IsBlocked {
			set["blockedReason"] = req.Reason
		} else {
			set["blockedReason"] = ""
		}

		if _, err := db.Collection("users").UpdateByID(ctx, targetID, bson.M{"$set": set}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ADMIN] [INFO] user block toggled:", targetID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "user updated", "isBlocked": !user.IsBlocked})
	}
}

type roleUpdateRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

func UpdateUserRole(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/users/:id/role"
		defer handlePanic(c, route)

		targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
			return
		}

		var req roleUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateByID(ctx, targetID, bson.M{
			"$set": bson.M{"role": req.Role, "updatedAt": time.Now()},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}

		log.Println("[ADMIN] [INFO] user role updated:", targetID.Hex(), "->", req.Role)
		c.JSON(http.StatusOK, gin.H{"message": "user role updated"})
	}
}

func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": targetID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
			return
		}

		log.Println("[ADMIN] [INFO] user deleted:", targetID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
	}
}

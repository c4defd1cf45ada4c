package handlers

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type addressRequest struct {
	Name         string `json:"name" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	AddressLine2 string `json:"addressLine2"`
	Landmark     string `json:"landmark"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	Pincode      string `json:"pincode" binding:"required"`
	Country      string `json:"country"`
	AddressType  string `json:"addressType"`
	IsDefault    bool   `json:"isDefault"`
}

var (
	phonePattern   = regexp.MustCompile(`^[0-9]{10}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

func validPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func validPincode(pincode string) bool {
	return pincodePattern.MatchString(pincode)
}

func addressFromRequest(req addressRequest, userID primitive.ObjectID) models.Address {
	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = "India"
	}
	addressType := strings.TrimSpace(req.AddressType)
	switch addressType {
	case models.AddressTypeHome, models.AddressTypeWork, models.AddressTypeOther:
	default:
		addressType = models.AddressTypeHome
	}
	return models.Address{
		User:          userID,
		Name:          strings.TrimSpace(req.Name),
		Phone:         strings.TrimSpace(req.Phone),
		AddressLine1:  strings.TrimSpace(req.AddressLine1),
		AddressLine2:  strings.TrimSpace(req.AddressLine2),
		Landmark:      strings.TrimSpace(req.Landmark),
		City:          strings.TrimSpace(req.City),
		State:         strings.TrimSpace(req.State),
		Pincode:       strings.TrimSpace(req.Pincode),
		Country:       country,
		AddressType:   addressType,
		IsDefault:     req.IsDefault,
		IsDeliverable: true,
	}
}

// clearDefaultSiblings drops the default flag on every other address the
// user owns, keeping the at-most-one-default invariant.
func clearDefaultSiblings(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, except primitive.ObjectID) error {
	filter := bson.M{"user": userID}
	if !except.IsZero() {
		filter["_id"] = bson.M{"$ne": except}
	}
	_, err := db.Collection("addresses").UpdateMany(ctx, filter, bson.M{
		"$set": bson.M{"isDefault": false},
	})
	return err
}

func GetUserAddresses(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("addresses").Find(
			ctx,
			bson.M{"user": userID},
			options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "createdAt", Value: -1}}),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		defer cursor.Close(ctx)

		addresses := make([]models.Address, 0)
		if err := cursor.All(ctx, &addresses); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}

		c.JSON(http.StatusOK, addresses)
	}
}

func GetAddressByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid address id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var address models.Address
		if err := db.Collection("addresses").FindOne(ctx, bson.M{"_id": addressID}).Decode(&address); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "address not found"})
			return
		}
		if address.User != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized"})
			return
		}

		c.JSON(http.StatusOK, address)
	}
}

func AddAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/addresses"
		defer handlePanic(c, route)

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if !validPhone(strings.TrimSpace(req.Phone)) {
			respondWithError(c, http.StatusBadRequest, route, "phone must be 10 digits")
			return
		}
		if !validPincode(strings.TrimSpace(req.Pincode)) {
			respondWithError(c, http.StatusBadRequest, route, "pincode must be 6 digits")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		address := addressFromRequest(req, userID)
		now := time.Now()
		address.CreatedAt = now
		address.UpdatedAt = now

		// First address becomes the default automatically.
		count, err := db.Collection("addresses").CountDocuments(ctx, bson.M{"user": userID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count == 0 {
			address.IsDefault = true
		}

		if address.IsDefault {
			if err := clearDefaultSiblings(ctx, db, userID, primitive.NilObjectID); err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
		}

		res, err := db.Collection("addresses").InsertOne(ctx, address)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, idOK := res.InsertedID.(primitive.ObjectID); idOK {
			address.ID = id
		}

		log.Println("[ADDRESS] [INFO] address created:", address.ID.Hex())
		c.JSON(http.StatusCreated, address)
	}
}

func UpdateAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/addresses/:id"
		defer handlePanic(c, route)

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid address id"})
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if !validPhone(strings.TrimSpace(req.Phone)) {
			respondWithError(c, http.StatusBadRequest, route, "phone must be 10 digits")
			return
		}
		if !validPincode(strings.TrimSpace(req.Pincode)) {
			respondWithError(c, http.StatusBadRequest, route, "pincode must be 6 digits")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Address
		if err := db.Collection("addresses").FindOne(ctx, bson.M{"_id": addressID}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "address not found"})
			return
		}
		if existing.User != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized"})
			return
		}

		address := addressFromRequest(req, userID)
		address.ID = addressID
		address.CreatedAt = existing.CreatedAt
		address.UpdatedAt = time.Now()

		if address.IsDefault {
			if err := clearDefaultSiblings(ctx, db, userID, addressID); err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
		}

		if _, err := db.Collection("addresses").ReplaceOne(ctx, bson.M{"_id": addressID}, address); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ADDRESS] [INFO] address updated:", addressID.Hex())
		c.JSON(http.StatusOK, address)
	}
}

func SetDefaultAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/addresses/:id/default"
		defer handlePanic(c, route)

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid address id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var address models.Address
		if err := db.Collection("addresses").FindOne(ctx, bson.M{"_id": addressID}).Decode(&address); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "address not found"})
			return
		}
		if address.User != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized"})
			return
		}

		if err := clearDefaultSiblings(ctx, db, userID, addressID); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if _, err := db.Collection("addresses").UpdateByID(ctx, addressID, bson.M{
			"$set": bson.M{"isDefault": true, "updatedAt": time.Now()},
		}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ADDRESS] [INFO] default address set:", addressID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "default address updated"})
	}
}

func DeleteAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		addressID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid address id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("addresses").DeleteOne(ctx, bson.M{"_id": addressID, "user": userID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "db error"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "address not found"})
			return
		}

		log.Println("[ADDRESS] [INFO] address deleted:", addressID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
	}
}

// CheckPincode is a public deliverability probe for the checkout form.
func CheckPincode() gin.HandlerFunc {
	return func(c *gin.Context) {
		pincode := strings.TrimSpace(c.Param("pincode"))
		if !validPincode(pincode) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "pincode must be 6 digits"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"pincode":       pincode,
			"deliverable":   true,
			"estimatedDays": 7,
		})
	}
}

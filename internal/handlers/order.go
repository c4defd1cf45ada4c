package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
	"backend/internal/notify"
	"backend/internal/payment"
	"backend/internal/pricing"
)

/* =========================
   REQUEST DTOs
========================= */

type checkoutItemRequest struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Size     string `json:"size" binding:"required"`
}

type checkoutAddressRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
	Country string `json:"country"`
}

type checkoutRequest struct {
	Items           []checkoutItemRequest  `json:"items" binding:"required"`
	Address         checkoutAddressRequest `json:"address" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	PaymentMethodID string                 `json:"paymentMethodId"`
	CouponCode      string                 `json:"couponCode"`
}

type cancelOrderRequest struct {
	Reason       string `json:"reason"`
	RefundMethod string `json:"refundMethod"`
}

type returnOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type statusUpdateRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

/* =========================
   TYPED ERRORS
========================= */

type outOfStockError struct {
	ProductID primitive.ObjectID
	Available int
	Requested int
}

func (e outOfStockError) Error() string {
	return "product out of stock"
}

type productNotFoundError struct {
	ProductID primitive.ObjectID
}

func (e productNotFoundError) Error() string {
	return "product not found"
}

type couponExhaustedError struct {
	Code string
}

func (e couponExhaustedError) Error() string {
	return "coupon is no longer available"
}

// errOrderStateChanged signals that a guarded replace found the order in a
// different status than the one read, i.e. a concurrent transition won.
var errOrderStateChanged = errors.New("order state changed")

/* =========================
   CHECKOUT
========================= */

// Checkout runs the order saga: resolve items against the catalog, apply
// the coupon, compute the quote, charge the gateway for non-COD methods,
// then commit stock decrements, coupon usage, the order document and the
// cart deletion in one transaction. A commit failure after a successful
// charge triggers a best-effort refund.
func Checkout(db *mongo.Database, gateway payment.Gateway, mailer notify.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders/checkout"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if len(req.Items) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "at least one item is required")
			return
		}
		if !models.IsPaymentMethod(req.PaymentMethod) {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment method")
			return
		}
		if req.PaymentMethod != "COD" && strings.TrimSpace(req.PaymentMethodID) == "" {
			respondWithError(c, http.StatusBadRequest, route, "paymentMethodId is required for card payments")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		// Resolve every line against the catalog. Unit prices always come
		// from the product document, never from the client.
		items := make([]models.OrderItem, 0, len(req.Items))
		lines := make([]pricing.LineItem, 0, len(req.Items))
		for _, item := range req.Items {
			productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.Product))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid product id")
				return
			}

			var product models.Product
			err = db.Collection("products").FindOne(ctx, bson.M{
				"_id":      productID,
				"isActive": bson.M{"$ne": false},
			}).Decode(&product)
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusNotFound, route, "product not found: "+productID.Hex())
				return
			}
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			if len(product.Sizes) > 0 && !product.HasSize(item.Size) {
				respondWithError(c, http.StatusBadRequest, route, "size not available for product "+product.Name)
				return
			}
			if product.Stock < item.Quantity {
				c.JSON(http.StatusBadRequest, gin.H{
					"message":   "insufficient stock",
					"productId": productID.Hex(),
					"available": product.Stock,
					"requested": item.Quantity,
				})
				return
			}

			unitPrice := product.EffectivePrice()
			items = append(items, models.OrderItem{
				Product:  productID,
				Name:     product.Name,
				Size:     item.Size,
				Quantity: item.Quantity,
				Price:    unitPrice,
			})
			lines = append(lines, pricing.LineItem{UnitPrice: unitPrice, Quantity: item.Quantity})
		}

		subtotal := pricing.Subtotal(lines)

		// Coupon validation happens up front; the usage increment is
		// deferred into the transaction, guarded by a precondition filter.
		now := time.Now()
		var discount float64
		var orderCoupon *models.OrderCoupon
		couponCode := strings.ToUpper(strings.TrimSpace(req.CouponCode))
		if couponCode != "" {
			var coupon models.Coupon
			err := db.Collection("coupons").FindOne(ctx, bson.M{"code": couponCode}).Decode(&coupon)
			if err == mongo.ErrNoDocuments {
				respondWithError(c, http.StatusBadRequest, route, "invalid coupon code")
				return
			}
			if err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}

			discount, err = coupon.DiscountFor(subtotal, now)
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
			orderCoupon = &models.OrderCoupon{Code: coupon.Code, DiscountAmount: discount}
		}

		quote := pricing.Compute(lines, discount)

		// Charge before committing anything; a decline leaves no trace.
		paymentStatus := models.PaymentPending
		paymentID := ""
		amountMinor := payment.MinorUnits(quote.Total)
		if req.PaymentMethod != "COD" {
			charge, err := gateway.Charge(ctx, amountMinor, "inr", req.PaymentMethodID)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "payment failed")
				return
			}
			paymentID = charge.ID
			if charge.Paid {
				paymentStatus = models.PaymentPaid
			}
		}

		order := models.Order{
			User:                 userID,
			Items:                items,
			Subtotal:             quote.Subtotal,
			DeliveryCharges:      quote.DeliveryCharges,
			GST:                  quote.GST,
			Discount:             quote.Discount,
			TotalAmount:          quote.Total,
			Coupon:               orderCoupon,
			PaymentStatus:        paymentStatus,
			PaymentMethod:        req.PaymentMethod,
			PaymentID:            paymentID,
			Address:              orderAddressFromRequest(req.Address),
			ExpectedDeliveryDate: now.AddDate(0, 0, 7),
			Invoice: &models.Invoice{
				InvoiceNumber: "INV-" + strings.ToUpper(uuid.NewString()[:8]),
				GeneratedAt:   now,
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		initialStatus := models.StatusPending
		if paymentStatus == models.PaymentPaid {
			initialStatus = models.StatusConfirmed
		}
		order.ApplyStatus(initialStatus, now)

		session, err := db.Client().StartSession()
		if err != nil {
			refundCharge(gateway, paymentID, amountMinor)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var orderID primitive.ObjectID
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			// Conditional stock decrement per line; the filter refuses a
			// decrement that would go negative.
			for _, item := range order.Items {
				filter := bson.M{
					"_id":   item.Product,
					"stock": bson.M{"$gte": item.Quantity},
				}
				update := bson.M{"$inc": bson.M{"stock": -item.Quantity}}

				res, err := db.Collection("products").UpdateOne(sessCtx, filter, update)
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, outOfStockError{
						ProductID: item.Product,
						Requested: item.Quantity,
					}
				}
			}

			// Guarded coupon usage increment: the filter re-checks
			// validity and remaining uses so the limit cannot overrun.
			if orderCoupon != nil {
				filter := bson.M{
					"code":       orderCoupon.Code,
					"isActive":   true,
					"validFrom":  bson.M{"$lte": now},
					"validUntil": bson.M{"$gte": now},
					"$or": []bson.M{
						{"usageLimit": nil},
						{"$expr": bson.M{"$lt": bson.A{"$usedCount", "$usageLimit"}}},
					},
				}
				update := bson.M{
					"$inc": bson.M{"usedCount": 1},
					"$set": bson.M{"updatedAt": now},
				}
				res, err := db.Collection("coupons").UpdateOne(sessCtx, filter, update)
				if err != nil {
					return nil, err
				}
				if res.MatchedCount == 0 {
					return nil, couponExhaustedError{Code: orderCoupon.Code}
				}
			}

			res, err := db.Collection("orders").InsertOne(sessCtx, order)
			if err != nil {
				return nil, err
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				orderID = id
			}

			if _, err := db.Collection("carts").DeleteOne(sessCtx, bson.M{"user": userID}); err != nil {
				return nil, err
			}
			return nil, nil
		})
		if err != nil {
			refundCharge(gateway, paymentID, amountMinor)

			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"message":   "insufficient stock",
					"productId": stockErr.ProductID.Hex(),
					"requested": stockErr.Requested,
				})
				return
			}
			var couponErr couponExhaustedError
			if errors.As(err, &couponErr) {
				respondWithError(c, http.StatusBadRequest, route, "coupon is no longer available")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		order.ID = orderID
		log.Println("[ORDER] [INFO] order created:", orderID.Hex(), "user:", userID.Hex())

		go mailer.SendOrderConfirmation(user.Email, &order)

		c.JSON(http.StatusCreated, order)
	}
}

func orderAddressFromRequest(req checkoutAddressRequest) models.OrderAddress {
	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = "India"
	}
	return models.OrderAddress{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Street:  strings.TrimSpace(req.Street),
		City:    strings.TrimSpace(req.City),
		State:   strings.TrimSpace(req.State),
		Pincode: strings.TrimSpace(req.Pincode),
		Country: country,
	}
}

// refundCharge compensates an already-captured payment when a later
// checkout step fails. Best-effort: the failure is logged, not returned.
func refundCharge(gateway payment.Gateway, chargeID string, amountMinor int64) {
	if chargeID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := gateway.Refund(ctx, chargeID, amountMinor); err != nil {
		log.Println("[ORDER] [ERROR] compensating refund failed for charge:", chargeID, err)
		return
	}
	log.Println("[ORDER] [INFO] compensating refund issued for charge:", chargeID)
}

/* =========================
   LISTING
========================= */

func GetUserOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("orders").Find(
			ctx,
			bson.M{"user": userID},
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

func GetOrderByID(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
			return
		}

		if order.User != userID && !isAdmin(c) {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized to view this order"})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   CANCEL
========================= */

// CancelOrder cancels a pending or confirmed order. Paid orders are marked
// refunded; a wallet refund is credited to the wallet ledger immediately,
// any other method stays pending for manual settlement. Stock is restored
// per line, best-effort.
func CancelOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/cancel"
		defer handlePanic(c, route)

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
			return
		}

		var req cancelOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
			return
		}
		if order.User != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized"})
			return
		}
		if !order.CanCancel() {
			respondWithError(c, http.StatusBadRequest, route, "order cannot be cancelled at this stage")
			return
		}

		now := time.Now()
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			reason = "Cancelled by user"
		}

		previousStatus := order.Status
		order.ApplyStatus(models.StatusCancelled, now)
		order.Cancellation = &models.Cancellation{
			IsCancelled: true,
			Reason:      reason,
			CancelledAt: now,
		}

		refundToWallet := false
		if order.PaymentStatus == models.PaymentPaid {
			method := models.RefundToOriginal
			if req.RefundMethod == models.RefundToWallet {
				method = models.RefundToWallet
				refundToWallet = true
			}
			order.PaymentStatus = models.PaymentRefunded
			order.Refund = &models.Refund{
				Amount:      order.TotalAmount,
				Method:      method,
				Status:      "pending",
				ProcessedAt: now,
			}
			if refundToWallet {
				order.Refund.Status = "completed"
			}
		}

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			// Replace only while the order is still cancellable, so two
			// concurrent cancellations cannot double-refund.
			res, err := db.Collection("orders").ReplaceOne(sessCtx, bson.M{
				"_id":    orderID,
				"status": previousStatus,
			}, order)
			if err != nil {
				return nil, err
			}
			if res.MatchedCount == 0 {
				return nil, errOrderStateChanged
			}

			if refundToWallet {
				_, err := db.Collection("users").UpdateByID(sessCtx, userID, bson.M{
					"$inc": bson.M{"wallet.balance": order.TotalAmount},
					"$push": bson.M{"wallet.transactions": models.WalletTransaction{
						Type:        models.WalletCredit,
						Amount:      order.TotalAmount,
						Description: "Refund for cancelled order #" + orderID.Hex(),
						OrderID:     &orderID,
						Timestamp:   now,
					}},
					"$set": bson.M{"updatedAt": now},
				})
				if err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if err != nil {
			if errors.Is(err, errOrderStateChanged) {
				respondWithError(c, http.StatusBadRequest, route, "order cannot be cancelled at this stage")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// Restore stock outside the transaction, best-effort: a product
		// deleted since purchase is skipped.
		for _, item := range order.Items {
			_, err := db.Collection("products").UpdateOne(ctx,
				bson.M{"_id": item.Product},
				bson.M{"$inc": bson.M{"stock": item.Quantity}},
			)
			if err != nil {
				log.Println("[ORDER] [ERROR] stock restore failed for product:", item.Product.Hex(), err)
			}
		}

		log.Println("[ORDER] [INFO] order cancelled:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "order cancelled successfully", "order": order})
	}
}

/* =========================
   RETURN
========================= */

func RequestReturn(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/return"
		defer handlePanic(c, route)

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
			return
		}

		var req returnOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
			return
		}
		if order.User != userID {
			c.JSON(http.StatusForbidden, gin.H{"message": "not authorized"})
			return
		}
		if order.Status != models.StatusDelivered {
			respondWithError(c, http.StatusBadRequest, route, "only delivered orders can be returned")
			return
		}

		now := time.Now()
		if !order.ReturnWindowOpen(now) {
			respondWithError(c, http.StatusBadRequest, route, "return window has expired (7 days from delivery)")
			return
		}

		order.ApplyStatus(models.StatusReturned, now)
		order.ReturnRequest = &models.ReturnRequest{
			IsRequested: true,
			Reason:      strings.TrimSpace(req.Reason),
			Status:      "pending",
			RequestedAt: now,
		}

		res, err := db.Collection("orders").ReplaceOne(ctx, bson.M{
			"_id":    orderID,
			"status": models.StatusDelivered,
		}, order)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusBadRequest, route, "only delivered orders can be returned")
			return
		}

		log.Println("[ORDER] [INFO] return requested:", orderID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "return request submitted successfully", "order": order})
	}
}

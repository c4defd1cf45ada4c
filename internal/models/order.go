package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending        = "pending"
	StatusConfirmed      = "confirmed"
	StatusPacked         = "packed"
	StatusShipped        = "shipped"
	StatusOutForDelivery = "out for delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
	StatusReturned       = "returned"
)

const (
	PaymentPending  = "Pending"
	PaymentPaid     = "Paid"
	PaymentFailed   = "Failed"
	PaymentRefunded = "Refunded"
)

const (
	RefundToOriginal = "Original Payment Method"
	RefundToWallet   = "Wallet"
)

// ReturnWindowDays is how long after delivery a return may be requested.
const ReturnWindowDays = 7

var orderStatuses = map[string]bool{
	StatusPending:        true,
	StatusConfirmed:      true,
	StatusPacked:         true,
	StatusShipped:        true,
	StatusOutForDelivery: true,
	StatusDelivered:      true,
	StatusCancelled:      true,
	StatusReturned:       true,
}

// IsOrderStatus reports whether s is a known order status value.
func IsOrderStatus(s string) bool {
	return orderStatuses[s]
}

var paymentMethods = map[string]bool{
	"Card":       true,
	"UPI":        true,
	"Wallet":     true,
	"NetBanking": true,
	"COD":        true,
}

// IsPaymentMethod reports whether s is a supported payment method.
func IsPaymentMethod(s string) bool {
	return paymentMethods[s]
}

// OrderItem is an immutable snapshot of one purchased line item. Price is
// the unit price resolved from the catalog at checkout time.
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Name     string             `bson:"name" json:"name"`
	Size     string             `bson:"size" json:"size"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

type OrderCoupon struct {
	Code           string  `bson:"code" json:"code"`
	DiscountAmount float64 `bson:"discountAmount" json:"discountAmount"`
}

type OrderAddress struct {
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone" json:"phone"`
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	Pincode string `bson:"pincode" json:"pincode"`
	Country string `bson:"country" json:"country"`
}

// TimelineEntry records one status change; the timeline is append-only.
type TimelineEntry struct {
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Message   string    `bson:"message" json:"message"`
}

type Cancellation struct {
	IsCancelled bool      `bson:"isCancelled" json:"isCancelled"`
	Reason      string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CancelledAt time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

type ReturnRequest struct {
	IsRequested bool      `bson:"isRequested" json:"isRequested"`
	Reason      string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Status      string    `bson:"status,omitempty" json:"status,omitempty"`
	RequestedAt time.Time `bson:"requestedAt,omitempty" json:"requestedAt,omitempty"`
}

type Refund struct {
	Amount      float64   `bson:"amount" json:"amount"`
	Method      string    `bson:"method" json:"method"`
	Status      string    `bson:"status" json:"status"`
	ProcessedAt time.Time `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
}

type Invoice struct {
	InvoiceNumber string    `bson:"invoiceNumber" json:"invoiceNumber"`
	GeneratedAt   time.Time `bson:"generatedAt" json:"generatedAt"`
}

type Order struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User   primitive.ObjectID `bson:"user" json:"user"`
	Items  []OrderItem        `bson:"items" json:"items"`

	Subtotal        float64 `bson:"subtotal" json:"subtotal"`
	DeliveryCharges float64 `bson:"deliveryCharges" json:"deliveryCharges"`
	GST             float64 `bson:"gst" json:"gst"`
	Discount        float64 `bson:"discount" json:"discount"`
	TotalAmount     float64 `bson:"totalAmount" json:"totalAmount"`

	Coupon *OrderCoupon `bson:"coupon,omitempty" json:"coupon,omitempty"`

	PaymentStatus string `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod string `bson:"paymentMethod" json:"paymentMethod"`
	PaymentID     string `bson:"paymentId,omitempty" json:"paymentId,omitempty"`

	Address OrderAddress `bson:"address" json:"address"`

	Status   string          `bson:"status" json:"status"`
	Timeline []TimelineEntry `bson:"timeline" json:"timeline"`

	ExpectedDeliveryDate time.Time  `bson:"expectedDeliveryDate,omitempty" json:"expectedDeliveryDate,omitempty"`
	DeliveredDate        *time.Time `bson:"deliveredDate,omitempty" json:"deliveredDate,omitempty"`
	TrackingNumber       string     `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`

	Cancellation  *Cancellation  `bson:"cancellation,omitempty" json:"cancellation,omitempty"`
	ReturnRequest *ReturnRequest `bson:"returnRequest,omitempty" json:"returnRequest,omitempty"`
	Refund        *Refund        `bson:"refund,omitempty" json:"refund,omitempty"`

	Invoice *Invoice `bson:"invoice,omitempty" json:"invoice,omitempty"`

	AdminNotes string `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ApplyStatus sets the order status and appends exactly one timeline entry.
// Moving to delivered also stamps the delivery date.
func (o *Order) ApplyStatus(status string, now time.Time) {
	o.Status = status
	o.Timeline = append(o.Timeline, TimelineEntry{
		Status:    status,
		Timestamp: now,
		Message:   "Order " + status,
	})
	if status == StatusDelivered {
		o.DeliveredDate = &now
	}
	o.UpdatedAt = now
}

// CanCancel reports whether a user cancellation is allowed from the current
// status. Only pending and confirmed orders may be cancelled.
func (o *Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// ReturnWindowOpen reports whether a return may still be requested: the
// order must be delivered and no more than seven whole days may have
// elapsed since the delivery date.
func (o *Order) ReturnWindowOpen(now time.Time) bool {
	if o.Status != StatusDelivered || o.DeliveredDate == nil {
		return false
	}
	daysSinceDelivery := int(now.Sub(*o.DeliveredDate).Hours() / 24)
	return daysSinceDelivery <= ReturnWindowDays
}

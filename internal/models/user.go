package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	WalletCredit = "credit"
	WalletDebit  = "debit"
)

// WalletTransaction is one entry in the append-only wallet ledger.
type WalletTransaction struct {
	Type        string              `bson:"type" json:"type"`
	Amount      float64             `bson:"amount" json:"amount"`
	Description string              `bson:"description" json:"description"`
	OrderID     *primitive.ObjectID `bson:"orderId,omitempty" json:"orderId,omitempty"`
	Timestamp   time.Time           `bson:"timestamp" json:"timestamp"`
}

type Wallet struct {
	Balance      float64             `bson:"balance" json:"balance"`
	Transactions []WalletTransaction `bson:"transactions" json:"transactions"`
}

type User struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Email         string               `bson:"email" json:"email"`
	PasswordHash  string               `bson:"passwordHash" json:"-"`
	Mobile        string               `bson:"mobile" json:"mobile"`
	Role          string               `bson:"role" json:"role"`
	Wallet        Wallet               `bson:"wallet" json:"wallet"`
	Wishlist      []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	IsBlocked     bool                 `bson:"isBlocked" json:"isBlocked"`
	BlockedReason string               `bson:"blockedReason,omitempty" json:"blockedReason,omitempty"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

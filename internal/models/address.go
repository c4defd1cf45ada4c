package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AddressTypeHome  = "Home"
	AddressTypeWork  = "Work"
	AddressTypeOther = "Other"
)

// Address is a saved delivery address. At most one address per user carries
// isDefault = true; the handlers clear sibling flags before setting one.
type Address struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	Name          string             `bson:"name" json:"name"`
	Phone         string             `bson:"phone" json:"phone"`
	AddressLine1  string             `bson:"addressLine1" json:"addressLine1"`
	AddressLine2  string             `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	Landmark      string             `bson:"landmark,omitempty" json:"landmark,omitempty"`
	City          string             `bson:"city" json:"city"`
	State         string             `bson:"state" json:"state"`
	Pincode       string             `bson:"pincode" json:"pincode"`
	Country       string             `bson:"country" json:"country"`
	AddressType   string             `bson:"addressType" json:"addressType"`
	IsDefault     bool               `bson:"isDefault" json:"isDefault"`
	IsDeliverable bool               `bson:"isDeliverable" json:"isDeliverable"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

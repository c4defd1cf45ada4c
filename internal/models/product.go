package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductSizes is the set of sizes a product may carry.
var ProductSizes = []string{"S", "M", "L", "XL", "XXL", "Free Size"}

type Review struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	Name      string             `bson:"name" json:"name"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	Images    []string           `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Category      string             `bson:"category" json:"category"`
	Brand         string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Price         float64            `bson:"price" json:"price"`
	DiscountPrice float64            `bson:"discountPrice,omitempty" json:"discountPrice,omitempty"`
	Sizes         []string           `bson:"sizes" json:"sizes"`
	Stock         int                `bson:"stock" json:"stock"`
	Colors        []string           `bson:"colors,omitempty" json:"colors,omitempty"`
	Images        []string           `bson:"images" json:"images"`
	Reviews       []Review           `bson:"reviews" json:"reviews"`
	Rating        float64            `bson:"rating" json:"rating"`
	NumReviews    int                `bson:"numReviews" json:"numReviews"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	IsFeatured    bool               `bson:"isFeatured" json:"isFeatured"`
	Slug          string             `bson:"slug,omitempty" json:"slug,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectivePrice is the unit price charged at checkout: the discount price
// when one is set below the list price, the list price otherwise.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice > 0 && p.DiscountPrice < p.Price {
		return p.DiscountPrice
	}
	return p.Price
}

// RecalculateRating refreshes the derived rating fields from the review list.
func (p *Product) RecalculateRating() {
	if len(p.Reviews) == 0 {
		p.Rating = 0
		p.NumReviews = 0
		return
	}

	total := 0
	for _, review := range p.Reviews {
		total += review.Rating
	}
	p.Rating = float64(total) / float64(len(p.Reviews))
	p.NumReviews = len(p.Reviews)
}

// HasSize reports whether the product is offered in the given size.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

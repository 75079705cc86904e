package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories is the fixed catalog taxonomy.
var Categories = []string{
	"Electronics",
	"Clothing",
	"Home & Garden",
	"Sports & Outdoors",
	"Health & Beauty",
	"Toys & Games",
	"Books",
	"Grocery",
	"Pet Supplies",
	"Office Supplies",
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

type ProductImage struct {
	URL       string `bson:"url" json:"url"`
	Alt       string `bson:"alt,omitempty" json:"alt,omitempty"`
	IsPrimary bool   `bson:"isPrimary" json:"isPrimary"`
}

// VariantOption is one selectable value of a variant group, with a price
// delta added on top of the base product price.
type VariantOption struct {
	Value string  `bson:"value" json:"value"`
	Price float64 `bson:"price" json:"price"`
	Stock int     `bson:"stock" json:"stock"`
}

type Variant struct {
	Name    string          `bson:"name" json:"name"`
	Options []VariantOption `bson:"options" json:"options"`
}

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Name      string             `bson:"name" json:"name"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Product struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Description       string             `bson:"description" json:"description"`
	Price             float64            `bson:"price" json:"price"`
	OriginalPrice     float64            `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Category          string             `bson:"category" json:"category"`
	Brand             string             `bson:"brand" json:"brand"`
	SKU               string             `bson:"sku" json:"sku"`
	Images            []ProductImage     `bson:"images" json:"images"`
	Stock             int                `bson:"stock" json:"stock"`
	LowStockThreshold int                `bson:"lowStockThreshold" json:"lowStockThreshold"`
	Variants          []Variant          `bson:"variants" json:"variants"`
	Rating            float64            `bson:"rating" json:"rating"`
	NumReviews        int                `bson:"numReviews" json:"numReviews"`
	Reviews           []Review           `bson:"reviews" json:"reviews"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	IsFeatured        bool               `bson:"isFeatured" json:"isFeatured"`
	Views             int                `bson:"views" json:"views"`
	Purchases         int                `bson:"purchases" json:"purchases"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Product) IsInStock(quantity int) bool {
	return p.IsActive && quantity > 0 && p.Stock >= quantity
}

func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// PrimaryImage returns the primary image URL, falling back to the first
// image. Empty string when the product has no images.
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// HasReviewed reports whether the given user already left a review.
func (p *Product) HasReviewed(userID primitive.ObjectID) bool {
	for _, r := range p.Reviews {
		if r.User == userID {
			return true
		}
	}
	return false
}

// AddReview appends a review and recomputes the derived rating fields.
func (p *Product) AddReview(review Review) {
	p.Reviews = append(p.Reviews, review)
	p.RecalculateRating()
}

// RecalculateRating rederives the average rating from the embedded reviews,
// rounded to one decimal.
func (p *Product) RecalculateRating() {
	p.NumReviews = len(p.Reviews)
	if p.NumReviews == 0 {
		p.Rating = 0
		return
	}
	sum := decimal.Zero
	for _, r := range p.Reviews {
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
	}
	p.Rating = sum.Div(decimal.NewFromInt(int64(p.NumReviews))).
		Round(1).InexactFloat64()
}

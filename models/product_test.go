package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIsInStock(t *testing.T) {
	p := &Product{IsActive: true, Stock: 5}

	assert.True(t, p.IsInStock(1))
	assert.True(t, p.IsInStock(5))
	assert.False(t, p.IsInStock(6))
	assert.False(t, p.IsInStock(0))
	assert.False(t, p.IsInStock(-1))

	p.IsActive = false
	assert.False(t, p.IsInStock(1))
}

func TestIsLowStock(t *testing.T) {
	p := &Product{Stock: 3, LowStockThreshold: 5}
	assert.True(t, p.IsLowStock())

	p.Stock = 5
	assert.True(t, p.IsLowStock())

	p.Stock = 6
	assert.False(t, p.IsLowStock())
}

func TestPrimaryImage(t *testing.T) {
	p := &Product{}
	assert.Equal(t, "", p.PrimaryImage())

	p.Images = []ProductImage{
		{URL: "https://cdn.example.com/a.jpg"},
		{URL: "https://cdn.example.com/b.jpg", IsPrimary: true},
	}
	assert.Equal(t, "https://cdn.example.com/b.jpg", p.PrimaryImage())

	p.Images[1].IsPrimary = false
	assert.Equal(t, "https://cdn.example.com/a.jpg", p.PrimaryImage())
}

func TestHasReviewed(t *testing.T) {
	userID := primitive.NewObjectID()
	p := &Product{Reviews: []Review{{User: userID, Rating: 4}}}

	assert.True(t, p.HasReviewed(userID))
	assert.False(t, p.HasReviewed(primitive.NewObjectID()))
}

func TestRecalculateRating(t *testing.T) {
	p := &Product{}
	p.AddReview(Review{User: primitive.NewObjectID(), Rating: 5})
	p.AddReview(Review{User: primitive.NewObjectID(), Rating: 4})
	p.AddReview(Review{User: primitive.NewObjectID(), Rating: 4})

	assert.Equal(t, 3, p.NumReviews)
	// 13 / 3 rounds to 4.3.
	assert.Equal(t, 4.3, p.Rating)
}

func TestRecalculateRatingEmpty(t *testing.T) {
	p := &Product{Rating: 4.5, NumReviews: 2}
	p.Reviews = nil
	p.RecalculateRating()

	assert.Equal(t, 0, p.NumReviews)
	assert.Equal(t, 0.0, p.Rating)
}

func TestIsValidCategory(t *testing.T) {
	assert.True(t, IsValidCategory("Electronics"))
	assert.True(t, IsValidCategory("Pet Supplies"))
	assert.False(t, IsValidCategory("electronics"))
	assert.False(t, IsValidCategory("Weapons"))
}

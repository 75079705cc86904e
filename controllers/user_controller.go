package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopwise/database"
	"shopwise/models"
)

func GetProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := database.UserCollection.FindOne(ctx, bson.M{"_id": currentUserID(c)}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Fetch success", "data": user})
}

func UpdateProfile(c *gin.Context) {
	var input struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.FirstName != nil && *input.FirstName != "" {
		update["firstName"] = *input.FirstName
	}
	if input.LastName != nil && *input.LastName != "" {
		update["lastName"] = *input.LastName
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := database.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": currentUserID(c)}, bson.M{"$set": update}, opts).Decode(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error updating profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile updated successfully", "data": user})
}

func AddAddress(c *gin.Context) {
	var input struct {
		Type      string `json:"type" binding:"required,oneof=home work other"`
		Street    string `json:"street" binding:"required"`
		City      string `json:"city" binding:"required"`
		State     string `json:"state" binding:"required"`
		ZipCode   string `json:"zipCode" binding:"required"`
		Country   string `json:"country"`
		Phone     string `json:"phone"`
		IsDefault bool   `json:"isDefault"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": err.Error()})
		return
	}
	if input.Country == "" {
		input.Country = "United States"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	objUserID := currentUserID(c)

	var user models.User
	if err := database.UserCollection.FindOne(ctx, bson.M{"_id": objUserID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	// A new default displaces any existing one.
	if input.IsDefault {
		for i := range user.Addresses {
			user.Addresses[i].IsDefault = false
		}
	}

	user.Addresses = append(user.Addresses, models.Address{
		ID:        primitive.NewObjectID(),
		Type:      input.Type,
		Street:    input.Street,
		City:      input.City,
		State:     input.State,
		ZipCode:   input.ZipCode,
		Country:   input.Country,
		Phone:     input.Phone,
		IsDefault: input.IsDefault,
	})

	update := bson.M{"$set": bson.M{"addresses": user.Addresses, "updatedAt": time.Now()}}
	if _, err := database.UserCollection.UpdateOne(ctx, bson.M{"_id": objUserID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error adding address"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Address added successfully", "data": user.Addresses})
}

func UpdateAddress(c *gin.Context) {
	addressID, err := primitive.ObjectIDFromHex(c.Param("addressId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid address ID"})
		return
	}

	var input struct {
		Type      *string `json:"type"`
		Street    *string `json:"street"`
		City      *string `json:"city"`
		State     *string `json:"state"`
		ZipCode   *string `json:"zipCode"`
		Country   *string `json:"country"`
		Phone     *string `json:"phone"`
		IsDefault *bool   `json:"isDefault"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	objUserID := currentUserID(c)

	var user models.User
	if err := database.UserCollection.FindOne(ctx, bson.M{"_id": objUserID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	var address *models.Address
	for i := range user.Addresses {
		if user.Addresses[i].ID == addressID {
			address = &user.Addresses[i]
			break
		}
	}
	if address == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Address not found"})
		return
	}

	if input.IsDefault != nil && *input.IsDefault {
		for i := range user.Addresses {
			user.Addresses[i].IsDefault = false
		}
		address.IsDefault = true
	}
	if input.Type != nil {
		address.Type = *input.Type
	}
	if input.Street != nil {
		address.Street = *input.Street
	}
	if input.City != nil {
		address.City = *input.City
	}
	if input.State != nil {
		address.State = *input.State
	}
	if input.ZipCode != nil {
		address.ZipCode = *input.ZipCode
	}
	if input.Country != nil {
		address.Country = *input.Country
	}
	if input.Phone != nil {
		address.Phone = *input.Phone
	}

	update := bson.M{"$set": bson.M{"addresses": user.Addresses, "updatedAt": time.Now()}}
	if _, err := database.UserCollection.UpdateOne(ctx, bson.M{"_id": objUserID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error updating address"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Address updated successfully", "data": user.Addresses})
}

func DeleteAddress(c *gin.Context) {
	addressID, err := primitive.ObjectIDFromHex(c.Param("addressId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid address ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	objUserID := currentUserID(c)

	result, err := database.UserCollection.UpdateOne(ctx,
		bson.M{"_id": objUserID},
		bson.M{
			"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error deleting address"})
		return
	}
	if result.ModifiedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Address not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Address deleted successfully"})
}

// GetOrderHistory returns the caller's orders with aggregate spend stats.
func GetOrderHistory(c *gin.Context) {
	objUserID := currentUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 50 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "orderDate", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := database.OrderCollection.Find(ctx, bson.M{"user": objUserID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching order history"})
		return
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching order history"})
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": objUserID}}},
		{{Key: "$group", Value: bson.M{
			"_id":               nil,
			"totalOrders":       bson.M{"$sum": 1},
			"totalSpent":        bson.M{"$sum": "$total"},
			"averageOrderValue": bson.M{"$avg": "$total"},
		}}},
	}
	statsCursor, err := database.OrderCollection.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching order history"})
		return
	}

	var statsRows []bson.M
	if err := statsCursor.All(ctx, &statsRows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching order history"})
		return
	}
	stats := bson.M{"totalOrders": 0, "totalSpent": 0, "averageOrderValue": 0}
	if len(statsRows) > 0 {
		stats = statsRows[0]
	}

	total, _ := database.OrderCollection.CountDocuments(ctx, bson.M{"user": objUserID})
	totalPages := (total + int64(limit) - 1) / int64(limit)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch success",
		"data": gin.H{
			"orders": orders,
			"stats":  stats,
			"pagination": gin.H{
				"currentPage": page,
				"totalPages":  totalPages,
				"totalOrders": total,
				"hasNextPage": int64(page) < totalPages,
				"hasPrevPage": page > 1,
			},
		},
	})
}

// GetRewardPoints returns the balance plus the most recent earning orders.
func GetRewardPoints(c *gin.Context) {
	objUserID := currentUserID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := database.UserCollection.FindOne(ctx, bson.M{"_id": objUserID}).Decode(&user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "orderDate", Value: -1}}).
		SetLimit(10).
		SetProjection(bson.M{
			"orderNumber":        1,
			"rewardPointsEarned": 1,
			"orderDate":          1,
			"total":              1,
		})

	cursor, err := database.OrderCollection.Find(ctx,
		bson.M{"user": objUserID, "rewardPointsEarned": bson.M{"$gt": 0}}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching reward points"})
		return
	}

	recentEarnings := []bson.M{}
	if err := cursor.All(ctx, &recentEarnings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching reward points"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch success",
		"data": gin.H{
			"currentBalance": user.RewardPoints,
			"recentEarnings": recentEarnings,
			"pointsValue":    "Each point = $1.00",
		},
	})
}

// GetBuyAgain returns the user's most frequently re-ordered products that
// are still active, most frequent first, ties broken by most recent order.
func GetBuyAgain(c *gin.Context) {
	objUserID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 20 {
		limit = 5
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": objUserID}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":             "$items.product",
			"orderCount":      bson.M{"$sum": 1},
			"totalQuantity":   bson.M{"$sum": "$items.quantity"},
			"lastOrderDate":   bson.M{"$max": "$orderDate"},
			"avgPrice":        bson.M{"$avg": "$items.itemPrice"},
			"productSnapshot": bson.M{"$first": "$items.productSnapshot"},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "orderCount", Value: -1},
			{Key: "lastOrderDate", Value: -1},
		}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "products",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "product",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$product", "preserveNullAndEmptyArrays": true}}},
	}

	cursor, err := database.OrderCollection.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching buy again products"})
		return
	}

	var rows []struct {
		ProductID       primitive.ObjectID     `bson:"_id"`
		OrderCount      int                    `bson:"orderCount"`
		TotalQuantity   int                    `bson:"totalQuantity"`
		LastOrderDate   time.Time              `bson:"lastOrderDate"`
		AvgPrice        float64                `bson:"avgPrice"`
		ProductSnapshot models.ProductSnapshot `bson:"productSnapshot"`
		Product         *models.Product        `bson:"product"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching buy again products"})
		return
	}

	// Deleted or deactivated products are excluded from the result.
	results := []gin.H{}
	for _, row := range rows {
		if row.Product == nil || !row.Product.IsActive {
			continue
		}
		results = append(results, gin.H{
			"productId": row.ProductID,
			"product":   row.Product,
			"orderStats": gin.H{
				"orderCount":    row.OrderCount,
				"totalQuantity": row.TotalQuantity,
				"lastOrderDate": row.LastOrderDate,
				"avgPrice":      row.AvgPrice,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch success",
		"data": gin.H{
			"buyAgainProducts": results,
			"totalFound":       len(results),
		},
	})
}

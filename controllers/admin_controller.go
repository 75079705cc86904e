package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopwise/database"
	"shopwise/models"
)

// GetDashboard returns headline counters, revenue, low-stock products and
// the latest orders for the admin landing page.
func GetDashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userCount, err := database.UserCollection.CountDocuments(ctx, bson.M{"role": models.RoleUser})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching dashboard"})
		return
	}
	productCount, _ := database.ProductCollection.CountDocuments(ctx, bson.M{"isActive": true})
	orderCount, _ := database.OrderCollection.CountDocuments(ctx, bson.M{})

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$in": []models.OrderStatus{models.StatusDelivered, models.StatusShipped}}}}},
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"total":         bson.M{"$sum": "$total"},
			"orders":        bson.M{"$sum": 1},
			"avgOrderValue": bson.M{"$avg": "$total"},
		}}},
	}
	revCursor, err := database.OrderCollection.Aggregate(ctx, pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching dashboard"})
		return
	}
	var revRows []bson.M
	if err := revCursor.All(ctx, &revRows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching dashboard"})
		return
	}
	revenue := bson.M{"total": 0, "orders": 0, "avgOrderValue": 0}
	if len(revRows) > 0 {
		revenue = revRows[0]
	}

	lowStockCursor, err := database.ProductCollection.Find(ctx,
		bson.M{"isActive": true, "$expr": bson.M{"$lte": bson.A{"$stock", "$lowStockThreshold"}}},
		options.Find().SetSort(bson.D{{Key: "stock", Value: 1}}).SetLimit(10),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching dashboard"})
		return
	}
	lowStock := []models.Product{}
	if err := lowStockCursor.All(ctx, &lowStock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching dashboard"})
		return
	}

	recentCursor, err := database.OrderCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}).SetLimit(10))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching dashboard"})
		return
	}
	recentOrders := []models.Order{}
	if err := recentCursor.All(ctx, &recentOrders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching dashboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch success",
		"data": gin.H{
			"counts": gin.H{
				"users":    userCount,
				"products": productCount,
				"orders":   orderCount,
			},
			"revenue":      revenue,
			"lowStock":     lowStock,
			"recentOrders": recentOrders,
		},
	})
}

func GetUsersAdmin(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := bson.M{}
	if search := c.Query("search"); search != "" {
		filter["$or"] = []bson.M{
			{"email": bson.M{"$regex": search, "$options": "i"}},
			{"firstName": bson.M{"$regex": search, "$options": "i"}},
			{"lastName": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := database.UserCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching users"})
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := database.UserCollection.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching users"})
		return
	}

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching users"})
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch success",
		"data":    users,
		"pagination": gin.H{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalUsers":  total,
		},
	})
}

// UpdateUserStatus toggles account activation. Users are never hard-deleted.
func UpdateUserStatus(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var input struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = database.UserCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"isActive": *input.IsActive, "updatedAt": time.Now()}},
		opts,
	).Decode(&user)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User status updated", "data": user})
}

func GetOrdersAdmin(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	total, err := database.OrderCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching orders"})
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "orderDate", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := database.OrderCollection.Find(ctx, filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching orders"})
		return
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching orders"})
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch success",
		"data":    orders,
		"pagination": gin.H{
			"currentPage": page,
			"totalPages":  totalPages,
			"totalOrders": total,
		},
	})
}

// UpdateOrderStatusAdmin advances an order through the lifecycle; the
// transition table applies to admins too.
func UpdateOrderStatusAdmin(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order ID"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": err.Error()})
		return
	}

	next := models.OrderStatus(input.Status)
	if !models.IsValidStatus(next) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status value"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := database.OrderCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&order); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		return
	}

	// Returns go through the customer flow with its window check.
	if next == models.StatusReturned && !order.CanBeReturned() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Order cannot be returned"})
		return
	}

	note := input.Note
	if note == "" {
		note = "Status updated by admin"
	}
	if err := order.UpdateStatus(next, note); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	update := bson.M{"$set": bson.M{
		"status":        order.Status,
		"statusHistory": order.StatusHistory,
		"updatedAt":     order.UpdatedAt,
	}}
	if order.ShippedDate != nil {
		update["$set"].(bson.M)["shippedDate"] = order.ShippedDate
	}
	if order.DeliveredDate != nil {
		update["$set"].(bson.M)["deliveredDate"] = order.DeliveredDate
	}
	if _, err := database.OrderCollection.UpdateOne(ctx, bson.M{"_id": objID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error updating order"})
		return
	}

	// Admin cancellations restore stock and points the same way customer
	// cancellations do.
	if next == models.StatusCancelled {
		compensateCancellation(ctx, &order)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated", "data": order})
}

func GetProductsAdmin(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := database.ProductCollection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching products"})
		return
	}

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch success",
		"data":    products,
		"count":   len(products),
	})
}

func CreateProduct(c *gin.Context) {
	var input struct {
		Name              string                `json:"name" binding:"required"`
		Description       string                `json:"description" binding:"required"`
		Price             float64               `json:"price" binding:"required,gt=0"`
		OriginalPrice     float64               `json:"originalPrice"`
		Category          string                `json:"category" binding:"required"`
		Brand             string                `json:"brand" binding:"required"`
		SKU               string                `json:"sku" binding:"required"`
		Images            []models.ProductImage `json:"images"`
		Stock             int                   `json:"stock" binding:"min=0"`
		LowStockThreshold int                   `json:"lowStockThreshold"`
		Variants          []models.Variant      `json:"variants"`
		IsFeatured        bool                  `json:"isFeatured"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": err.Error()})
		return
	}

	if !models.IsValidCategory(input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid category"})
		return
	}
	if input.LowStockThreshold <= 0 {
		input.LowStockThreshold = 10
	}
	if input.Images == nil {
		input.Images = []models.ProductImage{}
	}
	if input.Variants == nil {
		input.Variants = []models.Variant{}
	}

	now := time.Now()
	product := models.Product{
		ID:                primitive.NewObjectID(),
		Name:              input.Name,
		Description:       input.Description,
		Price:             input.Price,
		OriginalPrice:     input.OriginalPrice,
		Category:          input.Category,
		Brand:             input.Brand,
		SKU:               strings.ToUpper(input.SKU),
		Images:            input.Images,
		Stock:             input.Stock,
		LowStockThreshold: input.LowStockThreshold,
		Variants:          input.Variants,
		Reviews:           []models.Review{},
		IsActive:          true,
		IsFeatured:        input.IsFeatured,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := database.ProductCollection.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "SKU already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error creating product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product created successfully", "data": product})
}

func UpdateProduct(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product ID"})
		return
	}

	var input struct {
		Name              *string                `json:"name"`
		Description       *string                `json:"description"`
		Price             *float64               `json:"price"`
		OriginalPrice     *float64               `json:"originalPrice"`
		Category          *string                `json:"category"`
		Brand             *string                `json:"brand"`
		Images            *[]models.ProductImage `json:"images"`
		Stock             *int                   `json:"stock"`
		LowStockThreshold *int                   `json:"lowStockThreshold"`
		Variants          *[]models.Variant      `json:"variants"`
		IsActive          *bool                  `json:"isActive"`
		IsFeatured        *bool                  `json:"isFeatured"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if input.Name != nil {
		update["name"] = *input.Name
	}
	if input.Description != nil {
		update["description"] = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Price must be positive"})
			return
		}
		update["price"] = *input.Price
	}
	if input.OriginalPrice != nil {
		update["originalPrice"] = *input.OriginalPrice
	}
	if input.Category != nil {
		if !models.IsValidCategory(*input.Category) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid category"})
			return
		}
		update["category"] = *input.Category
	}
	if input.Brand != nil {
		update["brand"] = *input.Brand
	}
	if input.Images != nil {
		update["images"] = *input.Images
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Stock cannot be negative"})
			return
		}
		update["stock"] = *input.Stock
	}
	if input.LowStockThreshold != nil {
		update["lowStockThreshold"] = *input.LowStockThreshold
	}
	if input.Variants != nil {
		update["variants"] = *input.Variants
	}
	if input.IsActive != nil {
		update["isActive"] = *input.IsActive
	}
	if input.IsFeatured != nil {
		update["isFeatured"] = *input.IsFeatured
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err = database.ProductCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": objID}, bson.M{"$set": update}, opts).Decode(&product)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated successfully", "data": product})
}

// DeleteProduct soft-deactivates; order and cart snapshots keep referencing
// the document, so products are never removed outright.
func DeleteProduct(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := database.ProductCollection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error deleting product"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deactivated", "id": objID.Hex()})
}

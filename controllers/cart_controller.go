package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shopwise/database"
	"shopwise/models"
)

// loadOrCreateCart fetches the caller's cart, creating an empty one on
// first use.
func loadOrCreateCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := database.CartCollection.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	cart = *models.NewCart(userID)
	if _, err := database.CartCollection.InsertOne(ctx, cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// saveCart persists the full cart document and refreshes its TTL expiry.
func saveCart(ctx context.Context, cart *models.Cart) error {
	cart.Touch()
	_, err := database.CartCollection.ReplaceOne(ctx, bson.M{"_id": cart.ID}, cart)
	return err
}

func currentUserID(c *gin.Context) primitive.ObjectID {
	userID, _ := c.Get("userId")
	objID, _ := primitive.ObjectIDFromHex(userID.(string))
	return objID
}

func GetCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cart, err := loadOrCreateCart(ctx, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching cart"})
		return
	}

	// Totals are rederived on every read so snapshot prices stay honest
	// even after partial writes.
	cart.CalculateTotals()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Fetch success", "data": cart})
}

// AddToCart resolves the product, checks stock, builds the snapshot and
// variant-adjusted unit price, and recomputes totals.
func AddToCart(c *gin.Context) {
	var input struct {
		ProductID        string                   `json:"productId" binding:"required"`
		Quantity         int                      `json:"quantity" binding:"required,min=1"`
		SelectedVariants []models.SelectedVariant `json:"selectedVariants"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": err.Error()})
		return
	}

	objProductID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var product models.Product
	if err := database.ProductCollection.FindOne(ctx, bson.M{"_id": objProductID, "isActive": true}).Decode(&product); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
		return
	}

	if !product.IsInStock(input.Quantity) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient stock available"})
		return
	}

	itemPrice := product.Price
	for _, v := range input.SelectedVariants {
		itemPrice += v.Price
	}

	snapshot := models.ProductSnapshot{
		Name:  product.Name,
		Price: product.Price,
		Image: product.PrimaryImage(),
		SKU:   product.SKU,
	}

	cart, err := loadOrCreateCart(ctx, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching cart"})
		return
	}

	cart.AddItem(objProductID, input.Quantity, snapshot, input.SelectedVariants, itemPrice)

	if err := saveCart(ctx, cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error updating cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item added to cart successfully", "data": cart})
}

// UpdateCartItem changes a line's quantity; zero removes the line.
func UpdateCartItem(c *gin.Context) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid item ID"})
		return
	}

	var input struct {
		Quantity *int `json:"quantity" binding:"required,min=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	if err := database.CartCollection.FindOne(ctx, bson.M{"user": currentUserID(c)}).Decode(&cart); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cart not found"})
		return
	}

	item := cart.FindItem(itemID)
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Item not found in cart"})
		return
	}

	// Only re-check stock when the quantity goes up.
	if *input.Quantity > item.Quantity {
		var product models.Product
		if err := database.ProductCollection.FindOne(ctx, bson.M{"_id": item.Product}).Decode(&product); err != nil || !product.IsInStock(*input.Quantity) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient stock available"})
			return
		}
	}

	if err := cart.UpdateItemQuantity(itemID, *input.Quantity); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Item not found in cart"})
		return
	}

	if err := saveCart(ctx, &cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error updating cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart updated successfully", "data": cart})
}

func RemoveCartItem(c *gin.Context) {
	itemID, err := primitive.ObjectIDFromHex(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid item ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	if err := database.CartCollection.FindOne(ctx, bson.M{"user": currentUserID(c)}).Decode(&cart); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cart not found"})
		return
	}

	if err := cart.RemoveItem(itemID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Item not found in cart"})
		return
	}

	if err := saveCart(ctx, &cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error updating cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart successfully", "data": cart})
}

func ClearCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	if err := database.CartCollection.FindOne(ctx, bson.M{"user": currentUserID(c)}).Decode(&cart); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cart not found"})
		return
	}

	cart.Clear()

	if err := saveCart(ctx, &cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error clearing cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared successfully", "data": cart})
}

func ApplyDiscount(c *gin.Context) {
	var input struct {
		DiscountCode string `json:"discountCode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	if err := database.CartCollection.FindOne(ctx, bson.M{"user": currentUserID(c)}).Decode(&cart); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cart not found"})
		return
	}

	if err := cart.ApplyDiscount(input.DiscountCode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := saveCart(ctx, &cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error applying discount"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Discount applied successfully", "data": cart})
}

func RemoveDiscount(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cart models.Cart
	if err := database.CartCollection.FindOne(ctx, bson.M{"user": currentUserID(c)}).Decode(&cart); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cart not found"})
		return
	}

	cart.RemoveDiscount(c.Param("code"))

	if err := saveCart(ctx, &cart); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error removing discount"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Discount removed successfully", "data": cart})
}

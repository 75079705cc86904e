package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopwise/database"
	"shopwise/models"
)

type stockReservation struct {
	ProductID primitive.ObjectID
	Quantity  int
}

// rollbackStock compensates already-applied stock decrements when a later
// checkout step fails.
func rollbackStock(ctx context.Context, reserved []stockReservation) {
	for _, r := range reserved {
		_, err := database.ProductCollection.UpdateOne(ctx,
			bson.M{"_id": r.ProductID},
			bson.M{"$inc": bson.M{"stock": r.Quantity, "purchases": -r.Quantity}},
		)
		if err != nil {
			log.Printf("stock rollback failed for product %s: %v", r.ProductID.Hex(), err)
		}
	}
}

// CreateOrder converts the caller's cart into an order: stock check,
// reward-point validation, snapshot freeze, stock decrement, point moves,
// cart clear.
//
// Known gap: these steps do not run in one transaction. A crash between the
// stock decrement and the cart clear leaves stock reserved for an order
// that was never recorded; only the insert-failure path compensates.
func CreateOrder(c *gin.Context) {
	var input struct {
		ShippingAddress  models.OrderAddress  `json:"shippingAddress" binding:"required"`
		BillingAddress   *models.OrderAddress `json:"billingAddress"`
		PaymentMethod    models.PaymentMethod `json:"paymentMethod" binding:"required"`
		CustomerNotes    string               `json:"customerNotes"`
		RewardPointsUsed int                  `json:"rewardPointsUsed" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": err.Error()})
		return
	}

	if input.ShippingAddress.FirstName == "" || input.ShippingAddress.Street == "" ||
		input.ShippingAddress.City == "" || input.ShippingAddress.State == "" ||
		input.ShippingAddress.ZipCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Incomplete shipping address"})
		return
	}
	if !models.IsValidPaymentMethod(input.PaymentMethod.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valid payment method is required"})
		return
	}
	if input.ShippingAddress.Country == "" {
		input.ShippingAddress.Country = "United States"
	}

	objUserID := currentUserID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var cart models.Cart
	err := database.CartCollection.FindOne(ctx, bson.M{"user": objUserID}).Decode(&cart)
	if err != nil || len(cart.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cart is empty"})
		return
	}
	cart.CalculateTotals()

	// Verify stock for every line before touching anything.
	products := make(map[primitive.ObjectID]models.Product, len(cart.Items))
	for _, item := range cart.Items {
		var product models.Product
		if err := database.ProductCollection.FindOne(ctx, bson.M{"_id": item.Product}).Decode(&product); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("Product %s is no longer available", item.ProductSnapshot.Name),
			})
			return
		}
		if !product.IsInStock(item.Quantity) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("Insufficient stock for %s", product.Name),
			})
			return
		}
		products[item.Product] = product
	}

	var user models.User
	if err := database.UserCollection.FindOne(ctx, bson.M{"_id": objUserID}).Decode(&user); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not found"})
		return
	}
	if !user.CanSpendPoints(input.RewardPointsUsed) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient reward points"})
		return
	}

	orderItems := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product := products[item.Product]
		orderItems = append(orderItems, models.OrderItem{
			Product:  item.Product,
			Quantity: item.Quantity,
			ProductSnapshot: models.ProductSnapshot{
				Name:  product.Name,
				Price: product.Price,
				Image: product.PrimaryImage(),
				SKU:   product.SKU,
			},
			Category:         product.Category,
			SelectedVariants: item.SelectedVariants,
			ItemPrice:        item.ItemPrice,
			TotalPrice: decimal.NewFromFloat(item.ItemPrice).
				Mul(decimal.NewFromInt(int64(item.Quantity))).
				Round(2).InexactFloat64(),
		})
	}

	// Spent points count as an extra discount at $1 per point, then tax
	// and shipping are rederived on the discounted base.
	subtotal := decimal.NewFromFloat(cart.Subtotal)
	discountAmount := decimal.NewFromFloat(cart.DiscountAmount).
		Add(decimal.NewFromInt(int64(input.RewardPointsUsed)))
	discounted := subtotal.Sub(discountAmount)
	tax := discounted.Mul(decimal.NewFromFloat(models.TaxRate)).Round(2)
	shipping := decimal.Zero
	if discounted.LessThan(decimal.NewFromFloat(models.FreeShippingThreshold)) {
		shipping = decimal.NewFromFloat(models.FlatShippingFee)
	}
	for _, d := range cart.Discounts {
		if d.Type == models.DiscountShipping {
			shipping = shipping.Sub(decimal.NewFromFloat(d.Value))
			if shipping.IsNegative() {
				shipping = decimal.Zero
			}
		}
	}
	total := discounted.Add(tax).Add(shipping).Round(2)

	billing := input.ShippingAddress
	if input.BillingAddress != nil {
		billing = *input.BillingAddress
	}

	now := time.Now()
	order := models.Order{
		ID:               primitive.NewObjectID(),
		OrderNumber:      models.NewOrderNumber(),
		User:             objUserID,
		Items:            orderItems,
		Subtotal:         cart.Subtotal,
		Tax:              tax.InexactFloat64(),
		Shipping:         shipping.Round(2).InexactFloat64(),
		DiscountAmount:   discountAmount.Round(2).InexactFloat64(),
		Total:            total.InexactFloat64(),
		Discounts:        cart.Discounts,
		ShippingAddress:  input.ShippingAddress,
		BillingAddress:   billing,
		PaymentMethod:    input.PaymentMethod,
		Status:           models.StatusPending,
		RewardPointsUsed: input.RewardPointsUsed,
		CustomerNotes:    input.CustomerNotes,
		OrderDate:        now,
		CreatedAt:        now,
		UpdatedAt:        now,
		StatusHistory: []models.StatusEntry{
			{Status: models.StatusPending, Timestamp: now, Note: "Order created"},
		},
	}
	order.RewardPointsEarned = order.CalculateRewardPoints()

	// Reserve stock line by line, guarded so a failing update never
	// oversells, with compensation on any later failure.
	reserved := []stockReservation{}
	for _, item := range cart.Items {
		result, err := database.ProductCollection.UpdateOne(ctx,
			bson.M{"_id": item.Product, "stock": bson.M{"$gte": item.Quantity}},
			bson.M{"$inc": bson.M{"stock": -item.Quantity, "purchases": item.Quantity}},
		)
		if err != nil || result.ModifiedCount == 0 {
			rollbackStock(ctx, reserved)
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("Insufficient stock for %s", item.ProductSnapshot.Name),
			})
			return
		}
		reserved = append(reserved, stockReservation{ProductID: item.Product, Quantity: item.Quantity})
	}

	if _, err := database.OrderCollection.InsertOne(ctx, order); err != nil {
		rollbackStock(ctx, reserved)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error creating order"})
		return
	}

	pointsDelta := order.RewardPointsEarned - order.RewardPointsUsed
	if pointsDelta != 0 {
		_, err = database.UserCollection.UpdateOne(ctx,
			bson.M{"_id": objUserID},
			bson.M{"$inc": bson.M{"rewardPoints": pointsDelta}},
		)
		if err != nil {
			log.Printf("reward point update failed for order %s: %v", order.OrderNumber, err)
		}
	}

	cart.Clear()
	if err := saveCart(ctx, &cart); err != nil {
		log.Printf("cart clear failed after order %s: %v", order.OrderNumber, err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Order created successfully", "data": order})
}

func GetOrders(c *gin.Context) {
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

	filter := bson.M{"user": objUserID}

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
			"hasNextPage": int64(page) < totalPages,
			"hasPrevPage": page > 1,
		},
	})
}

func GetOrderByID(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := database.OrderCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&order); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		return
	}

	role, _ := c.Get("role")
	if order.User != currentUserID(c) && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to access this order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Fetch success", "data": order})
}

// CancelOrder cancels a pending or confirmed order, restoring reserved
// stock, reversing purchase counters and refunding spent points.
// compensateCancellation undoes a cancelled order's side effects: stock
// goes back on the shelf and the checkout point movement is reversed
// (spent points refunded, earned points taken away).
func compensateCancellation(ctx context.Context, order *models.Order) {
	for _, item := range order.Items {
		_, err := database.ProductCollection.UpdateOne(ctx,
			bson.M{"_id": item.Product},
			bson.M{"$inc": bson.M{"stock": item.Quantity, "purchases": -item.Quantity}},
		)
		if err != nil {
			log.Printf("stock restore failed for product %s: %v", item.Product.Hex(), err)
		}
	}

	pointsDelta := order.RewardPointsUsed - order.RewardPointsEarned
	if pointsDelta != 0 {
		_, err := database.UserCollection.UpdateOne(ctx,
			bson.M{"_id": order.User},
			bson.M{"$inc": bson.M{"rewardPoints": pointsDelta}},
		)
		if err != nil {
			log.Printf("reward point refund failed for order %s: %v", order.OrderNumber, err)
		}
	}
}

func CancelOrder(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order ID"})
		return
	}

	objUserID := currentUserID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	if err := database.OrderCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&order); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		return
	}
	if order.User != objUserID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to cancel this order"})
		return
	}
	if !order.CanBeCancelled() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Order cannot be cancelled at this stage"})
		return
	}

	if err := order.UpdateStatus(models.StatusCancelled, "Cancelled by customer"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	update := bson.M{"$set": bson.M{
		"status":        order.Status,
		"statusHistory": order.StatusHistory,
		"updatedAt":     order.UpdatedAt,
	}}
	if _, err := database.OrderCollection.UpdateOne(ctx, bson.M{"_id": objID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error cancelling order"})
		return
	}

	compensateCancellation(ctx, &order)

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order cancelled successfully", "data": order})
}

// ReturnOrder requests a return for a delivered order inside the 30-day
// window.
func ReturnOrder(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order ID"})
		return
	}

	var input struct {
		ReturnReason string `json:"returnReason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation failed", "errors": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var order models.Order
	if err := database.OrderCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&order); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
		return
	}
	if order.User != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to return this order"})
		return
	}
	if !order.CanBeReturned() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Order cannot be returned (outside return window or not delivered)",
		})
		return
	}

	order.ReturnRequested = true
	order.ReturnReason = input.ReturnReason
	if err := order.UpdateStatus(models.StatusReturned, "Return requested: "+input.ReturnReason); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	update := bson.M{"$set": bson.M{
		"status":          order.Status,
		"statusHistory":   order.StatusHistory,
		"returnRequested": order.ReturnRequested,
		"returnReason":    order.ReturnReason,
		"updatedAt":       order.UpdatedAt,
	}}
	if _, err := database.OrderCollection.UpdateOne(ctx, bson.M{"_id": objID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error processing return"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Return request submitted successfully", "data": order})
}

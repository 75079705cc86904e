package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"shopwise/database"
	"shopwise/models"
)

// revenueStatuses are the order states that count toward revenue.
var revenueStatuses = []models.OrderStatus{models.StatusDelivered, models.StatusShipped}

// periodStart maps a reporting period to its window start.
func periodStart(period string, now time.Time) time.Time {
	switch period {
	case "7days":
		return now.Add(-7 * 24 * time.Hour)
	case "30days":
		return now.Add(-30 * 24 * time.Hour)
	case "90days":
		return now.Add(-90 * 24 * time.Hour)
	case "3months":
		return time.Date(now.Year(), now.Month()-3, 1, 0, 0, 0, 0, now.Location())
	case "6months":
		return time.Date(now.Year(), now.Month()-6, 1, 0, 0, 0, 0, now.Location())
	default: // 12months
		return time.Date(now.Year(), now.Month()-12, 1, 0, 0, 0, 0, now.Location())
	}
}

func revenueMatch(start time.Time) bson.D {
	return bson.D{{Key: "$match", Value: bson.M{
		"orderDate": bson.M{"$gte": start},
		"status":    bson.M{"$in": revenueStatuses},
	}}}
}

func aggregateAll(ctx context.Context, pipeline mongo.Pipeline) ([]bson.M, error) {
	cursor, err := database.OrderCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	rows := []bson.M{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetAnalyticsDashboard returns the full rollup set for a period: monthly
// revenue, category revenue, top products, overall totals and order status
// distribution. Recomputed on every request.
func GetAnalyticsDashboard(c *gin.Context) {
	period := c.DefaultQuery("period", "12months")
	now := time.Now()
	start := periodStart(period, now)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	monthly, err := aggregateAll(ctx, mongo.Pipeline{
		revenueMatch(start),
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$orderDate"},
				"month": bson.M{"$month": "$orderDate"},
			},
			"revenue": bson.M{"$sum": "$total"},
			"orders":  bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching analytics"})
		return
	}

	categories, err := aggregateAll(ctx, mongo.Pipeline{
		revenueMatch(start),
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$items.category",
			"revenue":  bson.M{"$sum": bson.M{"$multiply": bson.A{"$items.quantity", "$items.itemPrice"}}},
			"quantity": bson.M{"$sum": "$items.quantity"},
			"orders":   bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "revenue", Value: -1}}}},
		{{Key: "$limit", Value: 10}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching analytics"})
		return
	}

	topProducts, err := aggregateAll(ctx, mongo.Pipeline{
		revenueMatch(start),
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$items.product",
			"productName":   bson.M{"$first": "$items.productSnapshot.name"},
			"category":      bson.M{"$first": "$items.category"},
			"totalQuantity": bson.M{"$sum": "$items.quantity"},
			"totalRevenue":  bson.M{"$sum": bson.M{"$multiply": bson.A{"$items.quantity", "$items.itemPrice"}}},
			"orders":        bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalQuantity", Value: -1}}}},
		{{Key: "$limit", Value: 10}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching analytics"})
		return
	}

	totals, err := aggregateAll(ctx, mongo.Pipeline{
		revenueMatch(start),
		{{Key: "$group", Value: bson.M{
			"_id":           nil,
			"total":         bson.M{"$sum": "$total"},
			"orders":        bson.M{"$sum": 1},
			"avgOrderValue": bson.M{"$avg": "$total"},
		}}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching analytics"})
		return
	}
	overall := bson.M{"total": 0, "orders": 0, "avgOrderValue": 0}
	if len(totals) > 0 {
		overall = totals[0]
	}

	statusDist, err := aggregateAll(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"orderDate": bson.M{"$gte": start}}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch success",
		"data": gin.H{
			"period": period,
			"dateRange": gin.H{
				"start": start,
				"end":   now,
			},
			"revenue": gin.H{
				"monthly": monthly,
				"total":   overall,
			},
			"categories":  categories,
			"topProducts": topProducts,
			"orderStatus": statusDist,
		},
	})
}

// GetRevenueAnalytics returns revenue bucketed by month, or by day for the
// short periods when day granularity is requested.
func GetRevenueAnalytics(c *gin.Context) {
	period := c.DefaultQuery("period", "12months")
	granularity := c.DefaultQuery("granularity", "month")
	start := periodStart(period, time.Now())

	groupBy := bson.M{
		"year":  bson.M{"$year": "$orderDate"},
		"month": bson.M{"$month": "$orderDate"},
	}
	if granularity == "day" && (period == "7days" || period == "30days" || period == "90days") {
		groupBy["day"] = bson.M{"$dayOfMonth": "$orderDate"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := aggregateAll(ctx, mongo.Pipeline{
		revenueMatch(start),
		{{Key: "$group", Value: bson.M{
			"_id":           groupBy,
			"revenue":       bson.M{"$sum": "$total"},
			"orders":        bson.M{"$sum": 1},
			"avgOrderValue": bson.M{"$avg": "$total"},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: 1},
			{Key: "_id.month", Value: 1},
			{Key: "_id.day", Value: 1},
		}}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching revenue data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch success",
		"data": gin.H{
			"period":      period,
			"granularity": granularity,
			"revenue":     rows,
		},
	})
}

// GetProductAnalytics returns per-product sales performance over a period.
func GetProductAnalytics(c *gin.Context) {
	period := c.DefaultQuery("period", "30days")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	start := periodStart(period, time.Now())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := aggregateAll(ctx, mongo.Pipeline{
		revenueMatch(start),
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$items.product",
			"productName":   bson.M{"$first": "$items.productSnapshot.name"},
			"category":      bson.M{"$first": "$items.category"},
			"totalQuantity": bson.M{"$sum": "$items.quantity"},
			"totalRevenue":  bson.M{"$sum": bson.M{"$multiply": bson.A{"$items.quantity", "$items.itemPrice"}}},
			"orders":        bson.M{"$sum": 1},
			"avgPrice":      bson.M{"$avg": "$items.itemPrice"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalRevenue", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error fetching product analytics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetch success",
		"data": gin.H{
			"period":   period,
			"products": rows,
		},
	})
}

package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"shopwise/config"
	"shopwise/database"
	"shopwise/routes"
)

func main() {

	config.LoadEnv()

	database.ConnectMongo()
	database.InitCollections()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to create indexes:", err)
	}

	r := gin.Default()
	r.SetTrustedProxies(nil)
	routes.RegisterRoutes(r)

	port := config.GetEnv("PORT", "8080")
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Server error:", err)
	}
}

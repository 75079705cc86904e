package main

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"shopwise/config"
	"shopwise/database"
	"shopwise/models"
)

func main() {
	log.Println("Starting database seeder...")

	config.LoadEnv()
	database.ConnectMongo()
	database.InitCollections()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := database.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	seedAdmin(ctx)
	seedProducts(ctx)

	log.Println("Database seeding completed")
}

func seedAdmin(ctx context.Context) {
	email := config.GetEnv("ADMIN_EMAIL", "admin@shopwise.com")
	password := config.GetEnv("ADMIN_PASSWORD", "admin123")

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	now := time.Now()
	update := bson.M{
		"$setOnInsert": models.User{
			ID:        primitive.NewObjectID(),
			FirstName: "Admin",
			LastName:  "User",
			Email:     email,
			Password:  string(hashed),
			Role:      models.RoleAdmin,
			Addresses: []models.Address{},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	result, err := database.UserCollection.UpdateOne(ctx,
		bson.M{"email": email}, update, options.Update().SetUpsert(true))
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}
	if result.UpsertedCount > 0 {
		log.Printf("Admin account created: %s", email)
	} else {
		log.Println("Admin account already exists")
	}
}

func seedProducts(ctx context.Context) {
	count, err := database.ProductCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		log.Fatalf("Failed to count products: %v", err)
	}
	if count > 0 {
		log.Printf("Products collection already has %d documents, skipping", count)
		return
	}

	now := time.Now()
	products := []interface{}{
		models.Product{
			ID:          primitive.NewObjectID(),
			Name:        "Wireless Noise-Cancelling Headphones",
			Description: "Over-ear headphones with active noise cancellation and 30-hour battery life.",
			Price:       129.99,
			Category:    "Electronics",
			Brand:       "AudioMax",
			SKU:         "AM-WH-001",
			Images: []models.ProductImage{
				{URL: "/images/headphones.jpg", IsPrimary: true},
			},
			Stock:             50,
			LowStockThreshold: 10,
			Variants: []models.Variant{
				{Name: "Color", Options: []models.VariantOption{
					{Value: "Black", Price: 0, Stock: 30},
					{Value: "Silver", Price: 10, Stock: 20},
				}},
			},
			Reviews:    []models.Review{},
			IsActive:   true,
			IsFeatured: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		models.Product{
			ID:          primitive.NewObjectID(),
			Name:        "Organic Cotton T-Shirt",
			Description: "Soft, breathable crew-neck tee in organic cotton.",
			Price:       19.99,
			Category:    "Clothing",
			Brand:       "EverWear",
			SKU:         "EW-TS-014",
			Images: []models.ProductImage{
				{URL: "/images/tshirt.jpg", IsPrimary: true},
			},
			Stock:             200,
			LowStockThreshold: 25,
			Variants: []models.Variant{
				{Name: "Size", Options: []models.VariantOption{
					{Value: "S", Price: 0, Stock: 60},
					{Value: "M", Price: 0, Stock: 80},
					{Value: "L", Price: 2, Stock: 60},
				}},
			},
			Reviews:   []models.Review{},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		models.Product{
			ID:                primitive.NewObjectID(),
			Name:              "Stainless Steel Water Bottle",
			Description:       "Insulated 750ml bottle, keeps drinks cold for 24 hours.",
			Price:             24.50,
			Category:          "Sports & Outdoors",
			Brand:             "HydroPeak",
			SKU:               "HP-WB-750",
			Images:            []models.ProductImage{{URL: "/images/bottle.jpg", IsPrimary: true}},
			Stock:             120,
			LowStockThreshold: 15,
			Variants:          []models.Variant{},
			Reviews:           []models.Review{},
			IsActive:          true,
			IsFeatured:        true,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		models.Product{
			ID:                primitive.NewObjectID(),
			Name:              "Ceramic Pour-Over Coffee Set",
			Description:       "Dripper, carafe and two mugs in matte ceramic.",
			Price:             42.00,
			Category:          "Home & Garden",
			Brand:             "Brewline",
			SKU:               "BL-CS-002",
			Images:            []models.ProductImage{{URL: "/images/coffee-set.jpg", IsPrimary: true}},
			Stock:             35,
			LowStockThreshold: 8,
			Variants:          []models.Variant{},
			Reviews:           []models.Review{},
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
	}

	if _, err := database.ProductCollection.InsertMany(ctx, products); err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}
	log.Printf("Seeded %d products", len(products))
}

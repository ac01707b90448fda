package main

import (
	"context"
	"flag"
	"log"
	"time"

	"commerce-backend/config"
	"commerce-backend/internal/models"
	"commerce-backend/internal/store"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// Seeds the database with fake users, products and orders for local
// runs and load experiments.
func main() {
	users := flag.Int("users", 20, "number of users to create")
	products := flag.Int("products", 30, "number of products to create")
	orders := flag.Int("orders", 50, "number of orders to attempt")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	cfg := config.Load()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()

	categories := []string{"Electronics", "Books", "Clothing", "Home", "Sports"}

	seededUsers := make([]*models.User, 0, *users)
	for i := 0; i < *users; i++ {
		user := &models.User{
			Name:  gofakeit.Name(),
			Email: gofakeit.Email(),
			Phone: gofakeit.Phone(),
		}
		if err := db.CreateUser(ctx, user); err != nil {
			log.Printf("Skipping user %s: %v", user.Email, err)
			continue
		}
		seededUsers = append(seededUsers, user)
	}
	log.Printf("Created %d users", len(seededUsers))

	seededProducts := make([]*models.Product, 0, *products)
	for i := 0; i < *products; i++ {
		category, err := db.FindOrCreateCategory(ctx, categories[gofakeit.Number(0, len(categories)-1)])
		if err != nil {
			log.Fatalf("Failed to resolve category: %v", err)
		}

		product := &models.Product{
			Name:       gofakeit.ProductName(),
			CategoryID: category.ID,
			Price:      decimal.NewFromFloat(gofakeit.Price(1, 500)),
			Stock:      gofakeit.Number(0, 100),
		}
		if err := db.CreateProduct(ctx, product); err != nil {
			log.Printf("Skipping product %s: %v", product.Name, err)
			continue
		}
		seededProducts = append(seededProducts, product)
	}
	log.Printf("Created %d products", len(seededProducts))

	if len(seededUsers) == 0 || len(seededProducts) == 0 {
		log.Println("Nothing to order against, done")
		return
	}

	placed := 0
	for i := 0; i < *orders; i++ {
		user := seededUsers[gofakeit.Number(0, len(seededUsers)-1)]
		product := seededProducts[gofakeit.Number(0, len(seededProducts)-1)]

		order := &models.Order{
			UserID:    user.ID,
			ProductID: product.ID,
			Quantity:  gofakeit.Number(1, 5),
			OrderDate: gofakeit.DateRange(time.Now().AddDate(0, 0, -14), time.Now()),
			Status:    models.OrderStatusPlaced,
		}

		ok, err := db.CreateOrder(ctx, order)
		if err != nil {
			log.Printf("Skipping order: %v", err)
			continue
		}
		if !ok {
			continue
		}
		placed++
	}
	log.Printf("Placed %d orders", placed)
}

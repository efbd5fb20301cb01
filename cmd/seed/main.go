package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/jordanhale/storefront-backend/internal/catalog"
	"github.com/jordanhale/storefront-backend/pkg/config"
	"github.com/jordanhale/storefront-backend/pkg/db"
	"github.com/jordanhale/storefront-backend/pkg/db/models"
	"github.com/jordanhale/storefront-backend/pkg/logger"
)

// Seeds the catalog with demo products. Idempotent enough for dev use: rows
// are keyed by generated uuids, so re-running duplicates names but never
// breaks anything.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	repo := catalog.NewRepository(dbClient.DB())
	ctx := context.Background()

	for _, product := range demoProducts() {
		p := product
		if _, err := repo.Create(ctx, &p); err != nil {
			logg.Error(logg.WithField(ctx, "product", p.Name), "failed to seed product", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "product", p.Name), "seeded product")
	}
}

func demoProducts() []models.Product {
	return []models.Product{
		{
			Name:          "Walnut Desk Organizer",
			Description:   ptr("Five-slot organizer milled from solid walnut."),
			Price:         decimal.RequireFromString("49.99"),
			StockQuantity: 40,
			Tags:          []string{"office", "wood"},
		},
		{
			Name:          "Ceramic Pour-Over Set",
			Description:   ptr("Dripper, carafe, and two cups in matte stoneware."),
			Price:         decimal.RequireFromString("89.00"),
			StockQuantity: 25,
			Tags:          []string{"kitchen", "coffee"},
		},
		{
			Name:          "Wool Throw Blanket",
			Description:   ptr("Merino throw, 130x180cm."),
			Price:         decimal.RequireFromString("129.50"),
			StockQuantity: 18,
			Tags:          []string{"home", "textiles"},
		},
		{
			Name:          "Brass Desk Lamp",
			Description:   ptr("Adjustable arm, warm LED, fabric cord."),
			Price:         decimal.RequireFromString("199.99"),
			StockQuantity: 12,
			Tags:          []string{"office", "lighting"},
		},
		{
			Name:          "Canvas Weekender Bag",
			Description:   ptr("Waxed canvas with leather trim, fits under a seat."),
			Price:         decimal.RequireFromString("159.00"),
			StockQuantity: 30,
			Tags:          []string{"travel"},
		},
	}
}

func ptr(s string) *string {
	return &s
}

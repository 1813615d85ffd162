package db

import (
	"context"
	"fmt"

	"github.com/zulandar/mandi/internal/catalog"
	"github.com/zulandar/mandi/internal/config"
	"github.com/zulandar/mandi/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Commodity{},
		&models.Negotiation{},
		&models.NegotiationMessage{},
		&models.Preference{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every table AutoMigrate creates.
func DropAll(db *gorm.DB) error {
	if err := db.Migrator().DropTable(AllModels()...); err != nil {
		return fmt.Errorf("db: drop tables: %w", err)
	}
	return nil
}

// SeedListings upserts the configured market board.
func SeedListings(ctx context.Context, db *gorm.DB, listings []config.ListingConfig) (int, error) {
	store, err := catalog.NewStore(db)
	if err != nil {
		return 0, err
	}
	seed := make([]catalog.Listing, len(listings))
	for i, l := range listings {
		seed[i] = catalog.Listing{
			Name:     l.Name,
			Quantity: l.Quantity,
			Location: l.Location,
			Price:    l.Price,
			Vendor:   l.Vendor,
		}
	}
	n, err := store.Seed(ctx, seed)
	if err != nil {
		return n, fmt.Errorf("db: seed listings: %w", err)
	}
	return n, nil
}

// Init migrates the schema and seeds configured listings.
func Init(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}
	_, err := SeedListings(ctx, db, cfg.Listings)
	return err
}

// Package catalog is the market board: the commodities vendors have listed
// and the listing form that prices new ones.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zulandar/mandi/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned for an unknown listing ID.
var ErrNotFound = errors.New("listing not found")

// Categories.
const (
	CategoryVegetables = "vegetables"
	CategoryGrains     = "grains"
	CategoryOther      = "other"
)

// Filter selects listings by category.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterVegetables Filter = CategoryVegetables
	FilterGrains     Filter = CategoryGrains
)

var categories = map[string]string{
	"Tomatoes": CategoryVegetables,
	"Potatoes": CategoryVegetables,
	"Onions":   CategoryVegetables,
	"Rice":     CategoryGrains,
	"Wheat":    CategoryGrains,
}

// CategoryOf returns the board category of a commodity name.
func CategoryOf(name string) string {
	if c, ok := categories[name]; ok {
		return c
	}
	return CategoryOther
}

// ParseFilter maps a query parameter to a Filter. Unknown values mean all.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterVegetables:
		return FilterVegetables
	case FilterGrains:
		return FilterGrains
	default:
		return FilterAll
	}
}

// Listing is a configured demo listing.
type Listing struct {
	Name     string
	Quantity string
	Location string
	Price    int
	Vendor   string
}

// seedNamespace derives stable IDs for configured listings so that
// re-seeding updates rows in place.
var seedNamespace = uuid.MustParse("6f1c2a7e-52b4-4f0e-9a53-6d616e646900")

// SeedID returns the stable ID of a configured listing.
func SeedID(l Listing) string {
	key := strings.Join([]string{l.Name, l.Location, l.Vendor}, "\x00")
	return uuid.NewSHA1(seedNamespace, []byte(key)).String()
}

// Store is the GORM-backed catalog.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store.
func NewStore(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("catalog: db is required")
	}
	return &Store{db: db}, nil
}

// List returns listings whose name or location contains query
// (case-insensitive) and that fall in filter. Configured listings come
// first, then vendor listings in the order they were added.
func (s *Store) List(ctx context.Context, query string, filter Filter) ([]models.Commodity, error) {
	q := s.db.WithContext(ctx).Model(&models.Commodity{})
	if query = strings.ToLower(strings.TrimSpace(query)); query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(location) LIKE ?", like, like)
	}
	if filter == FilterVegetables || filter == FilterGrains {
		q = q.Where("category = ?", string(filter))
	}
	var out []models.Commodity
	if err := q.Order("seeded DESC").Order("created_at ASC").Order("name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return out, nil
}

// Get returns one listing.
func (s *Store) Get(ctx context.Context, id string) (*models.Commodity, error) {
	var c models.Commodity
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("catalog: get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", id, err)
	}
	return &c, nil
}

// Add stores a new vendor listing, assigning its ID and category.
func (s *Store) Add(ctx context.Context, c *models.Commodity) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("catalog: add: name is required")
	}
	if c.Price <= 0 {
		return fmt.Errorf("catalog: add %s: price must be positive", c.Name)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Category = CategoryOf(c.Name)
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("catalog: add %s: %w", c.Name, err)
	}
	return nil
}

// Remove deletes a listing.
func (s *Store) Remove(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Commodity{})
	if result.Error != nil {
		return fmt.Errorf("catalog: remove %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("catalog: remove %s: %w", id, ErrNotFound)
	}
	return nil
}

// Seed upserts configured listings and returns how many were written.
func (s *Store) Seed(ctx context.Context, listings []Listing) (int, error) {
	for i, l := range listings {
		c := models.Commodity{
			ID:         SeedID(l),
			Name:       l.Name,
			Quantity:   l.Quantity,
			Location:   l.Location,
			Price:      l.Price,
			Category:   CategoryOf(l.Name),
			VendorName: l.Vendor,
			Seeded:     true,
		}
		result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "price", "category", "updated_at"}),
		}).Create(&c)
		if result.Error != nil {
			return i, fmt.Errorf("catalog: seed %q: %w", l.Name, result.Error)
		}
	}
	return len(listings), nil
}

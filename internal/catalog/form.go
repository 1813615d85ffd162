package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/zulandar/mandi/internal/models"
	"github.com/zulandar/mandi/internal/pricing"
)

// Listing form defaults.
const (
	DefaultQuantityKg = 100
	DefaultVendorName = "You"
)

// ListingForm is a vendor's new listing as typed (or spoken) into the form.
// Quantity is free text; its leading number is taken as kilograms.
type ListingForm struct {
	Name     string `json:"name" binding:"required"`
	Quantity string `json:"quantity"`
	Location string `json:"location"`
	Vendor   string `json:"vendor"`
	Price    int    `json:"price"` // optional; suggested price when zero
}

// ParseQuantity returns the leading integer of s, or DefaultQuantityKg when
// s does not start with one.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(s)
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return DefaultQuantityKg
	}
	return n
}

// Build turns the form into a commodity priced by q. An explicit price
// overrides the suggestion; the suggested range is kept either way.
func (f ListingForm) Build(q pricing.PriceQuoter) (models.Commodity, pricing.PriceQuote) {
	quote := q.Quote(f.Name, f.Location)
	vendor := strings.TrimSpace(f.Vendor)
	if vendor == "" {
		vendor = DefaultVendorName
	}
	price := f.Price
	if price <= 0 {
		price = quote.Suggested
	}
	return models.Commodity{
		Name:       strings.TrimSpace(f.Name),
		Quantity:   fmt.Sprintf("%d kg", ParseQuantity(f.Quantity)),
		Location:   strings.TrimSpace(f.Location),
		Price:      price,
		PriceMin:   quote.Min,
		PriceMax:   quote.Max,
		Category:   CategoryOf(strings.TrimSpace(f.Name)),
		VendorName: vendor,
	}, quote
}

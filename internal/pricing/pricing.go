// Package pricing suggests commodity prices for vendor listings. Prices are a
// table lookup scaled by a location multiplier and a bounded random seasonal
// factor; they are demo values, not market data.
package pricing

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultBasePrice is the base price (₹/kg) for commodities not in the table.
const DefaultBasePrice = 40

// seasonalCenter and seasonalSpread bound the seasonal multiplier to
// [1.00, 1.10).
const (
	seasonalCenter = 1.05
	seasonalSpread = 0.05
)

var basePrices = map[string]int{
	"Tomatoes": 35,
	"Potatoes": 25,
	"Onions":   30,
	"Rice":     45,
	"Wheat":    28,
	"Cotton":   55,
}

var locationMultipliers = map[string]float64{
	"Nashik":    1.1,
	"Pune":      1.15,
	"Mumbai":    1.2,
	"Delhi":     1.12,
	"Bangalore": 1.18,
}

// Factors records the inputs that produced a quote.
type Factors struct {
	Base               int     `json:"base"`
	LocationMultiplier float64 `json:"location"`
	SeasonalMultiplier float64 `json:"seasonal"`
}

// PriceQuote is a suggested price with its acceptable range.
// Min <= Suggested <= Max always holds.
type PriceQuote struct {
	Suggested int     `json:"suggested_price"`
	Min       int     `json:"min"`
	Max       int     `json:"max"`
	Factors   Factors `json:"factors"`
}

// PriceQuoter produces quotes. Engine is the built-in implementation; a real
// pricing model can be substituted behind this interface.
type PriceQuoter interface {
	Quote(commodity, location string) PriceQuote
}

// Engine is the demo price engine. It is safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// EngineOpts holds parameters for creating an Engine.
type EngineOpts struct {
	Rand *rand.Rand       // defaults to a time-seeded source
	Now  func() time.Time // defaults to time.Now
}

// NewEngine creates a price Engine.
func NewEngine(opts EngineOpts) *Engine {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{rng: rng, now: now}
}

// BasePrice returns the table base price for commodity.
func BasePrice(commodity string) int {
	if p, ok := basePrices[commodity]; ok {
		return p
	}
	return DefaultBasePrice
}

// LocationMultiplier returns the premium applied for location.
func LocationMultiplier(location string) float64 {
	if m, ok := locationMultipliers[location]; ok {
		return m
	}
	return 1.0
}

// Locations returns the locations with a known multiplier, sorted by name.
func Locations() []string {
	out := make([]string, 0, len(locationMultipliers))
	for l := range locationMultipliers {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Quote computes a suggested price for commodity sold at location.
func (e *Engine) Quote(commodity, location string) PriceQuote {
	base := BasePrice(commodity)
	loc := LocationMultiplier(location)
	seasonal := seasonalCenter + (e.float64()*2*seasonalSpread - seasonalSpread)

	suggested := roundInt(decimal.NewFromInt(int64(base)).
		Mul(decimal.NewFromFloat(loc)).
		Mul(decimal.NewFromFloat(seasonal)))

	return PriceQuote{
		Suggested: suggested,
		Min:       Scale(suggested, 0.9),
		Max:       Scale(suggested, 1.1),
		Factors: Factors{
			Base:               base,
			LocationMultiplier: loc,
			SeasonalMultiplier: seasonal,
		},
	}
}

// Scale returns round(price × factor), rounding half away from zero.
func Scale(price int, factor float64) int {
	return roundInt(decimal.NewFromInt(int64(price)).Mul(decimal.NewFromFloat(factor)))
}

// Midpoint returns round((a + b) / 2).
func Midpoint(a, b int) int {
	return roundInt(decimal.NewFromInt(int64(a + b)).Div(decimal.NewFromInt(2)))
}

func roundInt(d decimal.Decimal) int {
	return int(d.Round(0).IntPart())
}

// float64 draws from the engine's random source under its lock.
func (e *Engine) float64() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}

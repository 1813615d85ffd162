package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultHistoryDays is used when History is asked for a non-positive span.
const DefaultHistoryDays = 7

// historyBase is the centre of the simulated price series.
const historyBase = 40

// PricePoint is one day of simulated price history.
type PricePoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Price int    `json:"price"`
}

// LocationPrice is a suggested price at one location.
type LocationPrice struct {
	Location string `json:"location"`
	Price    int    `json:"price"`
}

// History returns a simulated daily series for the trailing days calendar
// days, today included, oldest first. Each price is 40 ± 5.
func (e *Engine) History(commodity string, days int) []PricePoint {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	today := e.now().UTC()
	out := make([]PricePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		variance := e.float64()*10 - 5
		out = append(out, PricePoint{
			Date:  today.AddDate(0, 0, -i).Format(time.DateOnly),
			Price: roundFloat(historyBase + variance),
		})
	}
	return out
}

// Compare quotes commodity at each location, in the order given.
func (e *Engine) Compare(commodity string, locations []string) []LocationPrice {
	out := make([]LocationPrice, len(locations))
	for i, loc := range locations {
		out[i] = LocationPrice{Location: loc, Price: e.Quote(commodity, loc).Suggested}
	}
	return out
}

func roundFloat(f float64) int {
	return roundInt(decimal.NewFromFloat(f))
}

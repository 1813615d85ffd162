// Package notify reports accepted deals to chat channels.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Deal is a completed negotiation.
type Deal struct {
	SessionID   string
	Commodity   string
	Quantity    string
	ListedPrice int
	FinalPrice  int
}

// Discount is the price reduction from the listed price, in ₹/kg.
func (d Deal) Discount() int {
	return d.ListedPrice - d.FinalPrice
}

// Summary is a one-line description of the deal.
func (d Deal) Summary() string {
	s := fmt.Sprintf("Deal closed: %s", d.Commodity)
	if d.Quantity != "" {
		s += fmt.Sprintf(" (%s)", d.Quantity)
	}
	s += fmt.Sprintf(" at ₹%d/kg", d.FinalPrice)
	if d.ListedPrice > 0 && d.Discount() != 0 {
		s += fmt.Sprintf(", listed at ₹%d/kg", d.ListedPrice)
	}
	return s
}

// Notifier delivers deal notifications.
type Notifier interface {
	DealAccepted(ctx context.Context, d Deal) error
}

// Nop discards notifications.
type Nop struct{}

// DealAccepted implements Notifier.
func (Nop) DealAccepted(context.Context, Deal) error { return nil }

// Multi fans a notification out to every notifier. All notifiers are
// attempted; their errors are joined.
type Multi []Notifier

// DealAccepted implements Notifier.
func (m Multi) DealAccepted(ctx context.Context, d Deal) error {
	var errs []error
	for _, n := range m {
		if err := n.DealAccepted(ctx, d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

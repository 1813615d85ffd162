package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/mandi/internal/pricing"
)

func newHistoryCmd() *cobra.Command {
	var (
		days int
		seed int64
	)

	cmd := &cobra.Command{
		Use:   "history <commodity>",
		Short: "Show simulated daily price history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args[0], days, seed)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", pricing.DefaultHistoryDays, "number of days, today included")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for repeatable output")
	cmd.Flags().MarkHidden("seed")
	return cmd
}

func runHistory(cmd *cobra.Command, commodity string, days int, seed int64) error {
	out := cmd.OutOrStdout()
	if days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}

	points := newEngine(seed).History(commodity, days)
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s, last %d days", commodity, days)))

	lo, hi := points[0].Price, points[0].Price
	for _, p := range points {
		lo = min(lo, p.Price)
		hi = max(hi, p.Price)
	}
	rows := make([][]string, len(points))
	for i, p := range points {
		rows[i] = []string{p.Date, fmt.Sprintf("₹%d", p.Price), bar(p.Price, lo, hi)}
	}
	fmt.Fprint(out, renderTable([]string{"DATE", "PRICE", ""}, rows))
	return nil
}

// bar draws a price as a bar scaled between lo and hi.
func bar(price, lo, hi int) string {
	const width = 20
	n := width
	if hi > lo {
		n = 1 + (price-lo)*(width-1)/(hi-lo)
	}
	return mutedStyle.Render(strings.Repeat("█", n))
}

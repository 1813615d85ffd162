package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/mandi/internal/i18n"
	"github.com/zulandar/mandi/internal/pricing"
)

func newQuoteCmd() *cobra.Command {
	var (
		location string
		lang     string
		compare  bool
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "quote <commodity>",
		Short: "Suggest a price for a commodity",
		Long: `Prints the suggested price and acceptable range for a commodity at a
location, with the localized rationale. --compare quotes every known location.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, args[0], location, lang, compare, seed)
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "", "market location (e.g. Nashik)")
	cmd.Flags().StringVar(&lang, "lang", i18n.Default, "language for the explanation")
	cmd.Flags().BoolVar(&compare, "compare", false, "compare prices across all known locations")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for repeatable output")
	cmd.Flags().MarkHidden("seed")
	return cmd
}

func runQuote(cmd *cobra.Command, commodity, location, lang string, compare bool, seed int64) error {
	out := cmd.OutOrStdout()
	commodity = strings.TrimSpace(commodity)
	if commodity == "" {
		return fmt.Errorf("commodity is required")
	}
	engine := newEngine(seed)

	if compare {
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s across markets (%s)", commodity, today())))
		var rows [][]string
		for _, lp := range engine.Compare(commodity, pricing.Locations()) {
			rows = append(rows, []string{lp.Location, fmt.Sprintf("₹%d/kg", lp.Price)})
		}
		fmt.Fprint(out, renderTable([]string{"LOCATION", "PRICE"}, rows))
		return nil
	}

	q := engine.Quote(commodity, location)
	where := location
	if where == "" {
		where = "any market"
	}
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s at %s (%s)", commodity, where, today())))
	fmt.Fprint(out, renderTable(
		[]string{"SUGGESTED", "MIN", "MAX", "BASE", "LOCATION ×", "SEASONAL ×"},
		[][]string{{
			fmt.Sprintf("₹%d/kg", q.Suggested),
			fmt.Sprintf("₹%d", q.Min),
			fmt.Sprintf("₹%d", q.Max),
			fmt.Sprintf("₹%d", q.Factors.Base),
			strconv.FormatFloat(q.Factors.LocationMultiplier, 'f', 2, 64),
			strconv.FormatFloat(q.Factors.SeasonalMultiplier, 'f', 3, 64),
		}},
	))
	fmt.Fprintln(out)
	for _, line := range pricing.Explain(q, commodity, where, lang) {
		fmt.Fprintln(out, mutedStyle.Render(line))
	}
	return nil
}

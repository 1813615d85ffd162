package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/mandi/internal/catalog"
	"github.com/zulandar/mandi/internal/report"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export market data as XLSX workbooks",
	}

	cmd.AddCommand(newExportCatalogCmd())
	cmd.AddCommand(newExportHistoryCmd())
	return cmd
}

func newExportCatalogCmd() *cobra.Command {
	var (
		configPath string
		output     string
		filter     string
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Export the market board",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportCatalog(cmd, configPath, output, filter)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Mandi config file")
	cmd.Flags().StringVarP(&output, "output", "o", "catalog.xlsx", "output file")
	cmd.Flags().StringVar(&filter, "filter", string(catalog.FilterAll), "category filter: all, vegetables, grains")
	return cmd
}

func runExportCatalog(cmd *cobra.Command, configPath, output, filter string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	store, err := catalog.NewStore(gormDB)
	if err != nil {
		return err
	}
	listings, err := store.List(context.Background(), "", catalog.ParseFilter(filter))
	if err != nil {
		return err
	}

	if err := writeFile(output, func(f *os.File) error { return report.WriteCatalog(f, listings) }); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d listings to %s\n", len(listings), output)
	return nil
}

func newExportHistoryCmd() *cobra.Command {
	var (
		output string
		days   int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "history <commodity>",
		Short: "Export simulated price history for a commodity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportHistory(cmd, args[0], output, days, seed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "history.xlsx", "output file")
	cmd.Flags().IntVarP(&days, "days", "d", 30, "number of days, today included")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for repeatable output")
	cmd.Flags().MarkHidden("seed")
	return cmd
}

func runExportHistory(cmd *cobra.Command, commodity, output string, days int, seed int64) error {
	if days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", days)
	}
	points := newEngine(seed).History(commodity, days)
	if err := writeFile(output, func(f *os.File) error { return report.WriteHistory(f, commodity, points) }); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d days of %s prices to %s\n", len(points), commodity, output)
	return nil
}

// writeFile creates path and hands it to write, removing the file if write
// fails.
func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

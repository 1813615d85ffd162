// Package report exports the market board and price history as XLSX
// workbooks.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/zulandar/mandi/internal/models"
	"github.com/zulandar/mandi/internal/pricing"
)

// Sheet names.
const (
	CatalogSheet = "Catalog"
	HistorySheet = "History"
)

const maxSheetName = 31

var catalogHeader = []string{"ID", "Commodity", "Category", "Quantity", "Location", "Price (₹/kg)", "Min", "Max", "Vendor"}

var historyHeader = []string{"Date", "Price (₹/kg)"}

// WriteCatalog writes one row per listing.
func WriteCatalog(w io.Writer, listings []models.Commodity) error {
	rows := make([][]interface{}, 0, len(listings))
	for _, c := range listings {
		rows = append(rows, []interface{}{
			c.ID, c.Name, c.Category, c.Quantity, c.Location, c.Price, c.PriceMin, c.PriceMax, c.VendorName,
		})
	}
	return write(w, CatalogSheet, catalogHeader, rows)
}

// WriteHistory writes a commodity's price history, oldest first.
func WriteHistory(w io.Writer, commodity string, points []pricing.PricePoint) error {
	rows := make([][]interface{}, 0, len(points)+2)
	for _, p := range points {
		rows = append(rows, []interface{}{p.Date, p.Price})
	}
	return write(w, HistorySheet+" "+commodity, historyHeader, rows)
}

func write(w io.Writer, sheet string, header []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet = sheetName(sheet)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("report: name sheet %q: %w", sheet, err)
	}

	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("report: header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("report: write header: %w", err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report: header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("report: header style: %w", err)
	}

	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("report: cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("report: write row %d: %w", r+1, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}

// sheetName strips characters Excel forbids and trims to 31 runes.
func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return ' '
		}
		return r
	}, s)
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}

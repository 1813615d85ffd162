package report

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
	"github.com/zulandar/mandi/internal/models"
	"github.com/zulandar/mandi/internal/pricing"
)

func TestWriteCatalog(t *testing.T) {
	var buf bytes.Buffer
	listings := []models.Commodity{
		{ID: "a", Name: "Tomatoes", Category: "vegetables", Quantity: "100 kg", Location: "Nashik", Price: 40, VendorName: "Ramesh"},
		{ID: "b", Name: "Rice", Category: "grains", Quantity: "500 kg", Location: "Pune", Price: 48, PriceMin: 43, PriceMax: 53, VendorName: "You"},
	}
	if err := WriteCatalog(&buf, listings); err != nil {
		t.Fatalf("WriteCatalog: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(CatalogSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][1] != "Commodity" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][1] != "Rice" || rows[2][5] != "48" || rows[2][8] != "You" {
		t.Errorf("row 2 = %v", rows[2])
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	points := []pricing.PricePoint{
		{Date: "2026-03-09", Price: 38},
		{Date: "2026-03-10", Price: 42},
	}
	if err := WriteHistory(&buf, "Onions", points); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("History Onions")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "2026-03-09" || rows[2][1] != "42" {
		t.Errorf("rows = %v", rows)
	}
}

func TestWriteHistory_LongNameTruncated(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, "A Very Long Commodity Name Indeed", nil); err != nil {
		t.Fatalf("WriteHistory: %v", err)
	}
	f, _ := excelize.OpenReader(&buf)
	defer f.Close()
	if name := f.GetSheetName(0); len(name) != 31 {
		t.Errorf("sheet name %q has %d chars, want 31", name, len(name))
	}
}

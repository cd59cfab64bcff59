// Package export renders inventory reports as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"medshop/internal/model"

	"github.com/xuri/excelize/v2"
)

const inventorySheet = "Inventory"

// ContentTypeXLSX is the MIME type of the generated workbook
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var inventoryHeaders = []string{
	"ID", "SKU", "Name", "Generic Name", "Category", "Manufacturer", "Strength",
	"Dosage Form", "Barcode", "Cost Price", "Selling Price", "Quantity",
	"Reorder Level", "Low Stock", "Expiry Date", "Location", "Status",
}

// InventoryWorkbook builds a single-sheet workbook with one row per item
func InventoryWorkbook(items []model.InventoryItem) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(inventorySheet, "A1", &inventoryHeaders); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(inventoryHeaders))
	if err := f.SetCellStyle(inventorySheet, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}

	for i, item := range items {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := inventoryRow(item)
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(inventorySheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteInventory streams the workbook to w
func WriteInventory(w io.Writer, items []model.InventoryItem) error {
	f, err := InventoryWorkbook(items)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func inventoryRow(item model.InventoryItem) []interface{} {
	barcode := ""
	if item.Barcode != nil {
		barcode = *item.Barcode
	}
	expiry := ""
	if item.ExpiryDate != nil && !item.ExpiryDate.IsZero() {
		expiry = item.ExpiryDate.String()
	}
	cost, _ := item.CostPrice.Float64()
	price, _ := item.SellingPrice.Float64()
	lowStock := "no"
	if item.IsLowStock() {
		lowStock = "yes"
	}

	return []interface{}{
		item.ID, item.SKU, item.Name, item.GenericName, item.CategoryName, item.Manufacturer,
		item.Strength, item.DosageForm, barcode, cost, price, item.Quantity,
		item.ReorderLevel, lowStock, expiry, item.Location, item.Status,
	}
}

package export

import (
	"bytes"
	"testing"

	"medshop/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteInventory(t *testing.T) {
	expiry := mustParse(t, "2027-03-01")
	items := []model.InventoryItem{
		{
			ID: 1, SKU: "SKU-AAAA1111", Name: "Paracetamol 500mg", CategoryName: "Pain Relief",
			CostPrice: decimal.RequireFromString("1.20"), SellingPrice: decimal.RequireFromString("2.50"),
			Quantity: 4, ReorderLevel: 10, ExpiryDate: &expiry, Status: model.StatusActive,
		},
		{
			ID: 2, SKU: "SKU-BBBB2222", Name: "Vitamin C",
			CostPrice: decimal.Zero, SellingPrice: decimal.RequireFromString("3"),
			Quantity: 50, ReorderLevel: 10, Status: model.StatusActive,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, items))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(inventorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "SKU", rows[0][1])
	assert.Equal(t, "Paracetamol 500mg", rows[1][2])
	assert.Equal(t, "yes", rows[1][13])
	assert.Equal(t, "2027-03-01", rows[1][14])
	assert.Equal(t, "no", rows[2][13])
}

func TestWriteInventory_EmptyHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(inventorySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func mustParse(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

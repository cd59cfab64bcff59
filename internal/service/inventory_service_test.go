package service

import (
	"bytes"
	"context"
	"testing"

	"medshop/internal/apperror"
	"medshop/internal/model"
	"medshop/internal/repository"
	ws "medshop/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryService_CreateDefaults(t *testing.T) {
	env := newTestEnv(t)

	item, err := env.inventory.Create(context.Background(), InventoryRequest{
		Name:         "Paracetamol 500mg",
		CostPrice:    dec("1.20"),
		SellingPrice: dec("2.50"),
	})
	require.NoError(t, err)

	assert.NotZero(t, item.ID)
	assert.Regexp(t, `^SKU-[0-9A-F]{8}$`, item.SKU)
	assert.Equal(t, 0, item.Quantity)
	assert.Equal(t, model.DefaultReorderLevel, item.ReorderLevel)
	assert.Equal(t, model.StatusActive, item.Status)
	assert.True(t, item.IsLowStock)
	assertDecimal(t, "2.50", item.SellingPrice)
}

func TestInventoryService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := map[string]InventoryRequest{
		"missing name":        {CostPrice: dec("1"), SellingPrice: dec("2")},
		"missing cost price":  {Name: "X", SellingPrice: dec("2")},
		"negative sell price": {Name: "X", CostPrice: dec("1"), SellingPrice: dec("-2")},
		"negative quantity":   {Name: "X", CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: intPtr(-1)},
		"bad status":          {Name: "X", CostPrice: dec("1"), SellingPrice: dec("2"), Status: "gone"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.inventory.Create(ctx, req)
			assertCode(t, err, apperror.CodeValidation)
		})
	}

	items, err := env.inventory.List(ctx, repository.InventoryFilter{}, pageAll())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestInventoryService_CreateUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	missing := uint(999)

	_, err := env.inventory.Create(context.Background(), InventoryRequest{
		Name: "X", CostPrice: dec("1"), SellingPrice: dec("2"), CategoryID: &missing,
	})
	assertCode(t, err, apperror.CodeValidation)
}

func TestInventoryService_DuplicateSKU(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := InventoryRequest{Name: "A", SKU: "SKU-FIXED001", CostPrice: dec("1"), SellingPrice: dec("2")}

	_, err := env.inventory.Create(ctx, req)
	require.NoError(t, err)

	req.Name = "B"
	_, err = env.inventory.Create(ctx, req)
	assertCode(t, err, apperror.CodeDuplicate)
	assert.Equal(t, 400, apperror.GetHTTPStatus(err))
}

func TestInventoryService_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	category, err := env.categories.Create(ctx, CategoryRequest{Name: "Pain Relief"})
	require.NoError(t, err)

	_, err = env.inventory.Create(ctx, InventoryRequest{
		Name: "Paracetamol", GenericName: "Acetaminophen", CategoryID: &category.ID,
		CostPrice: dec("1"), SellingPrice: dec("2"), Quantity: intPtr(50),
	})
	require.NoError(t, err)
	env.createItem(t, "Amoxicillin", 3, 10, "5.00")

	items, err := env.inventory.List(ctx, repository.InventoryFilter{Search: "ACETA"}, pageAll())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Paracetamol", items[0].Name)
	assert.Equal(t, "Pain Relief", items[0].CategoryName)

	items, err = env.inventory.List(ctx, repository.InventoryFilter{LowStock: true}, pageAll())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Amoxicillin", items[0].Name)

	items, err = env.inventory.List(ctx, repository.InventoryFilter{CategoryID: &category.ID}, pageAll())
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestInventoryService_UpdateStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Ibuprofen", 12, 10, "3.00")

	res, err := env.inventory.UpdateStock(ctx, item.ID, StockUpdateRequest{Quantity: 5, Type: "add"})
	require.NoError(t, err)
	assert.Equal(t, 12, res.PreviousQuantity)
	assert.Equal(t, 17, res.NewQuantity)

	res, err = env.inventory.UpdateStock(ctx, item.ID, StockUpdateRequest{Quantity: 10, Type: "decrease"})
	require.NoError(t, err)
	assert.Equal(t, 7, res.NewQuantity)
	assert.Contains(t, env.events.names(), ws.EventLowStock)

	_, err = env.inventory.UpdateStock(ctx, item.ID, StockUpdateRequest{Quantity: 8, Type: "subtract"})
	assertCode(t, err, apperror.CodeInsufficientStock)
	assert.Equal(t, 7, env.quantity(t, item.ID))

	_, err = env.inventory.UpdateStock(ctx, item.ID, StockUpdateRequest{Quantity: 1, Type: "sideways"})
	assertCode(t, err, apperror.CodeValidation)

	_, err = env.inventory.UpdateStock(ctx, 9999, StockUpdateRequest{Quantity: 1, Type: "increase"})
	assertCode(t, err, apperror.CodeNotFound)
}

func TestInventoryService_ExpiringIncludesExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	today := model.Today()

	mk := func(name string, expiry *model.Date) {
		_, err := env.inventory.Create(ctx, InventoryRequest{
			Name: name, CostPrice: dec("1"), SellingPrice: dec("2"), ExpiryDate: expiry,
		})
		require.NoError(t, err)
	}
	expired := today.AddDays(-3)
	soon := today.AddDays(10)
	later := today.AddDays(90)
	mk("Expired", &expired)
	mk("Soon", &soon)
	mk("Later", &later)
	mk("NoExpiry", nil)

	items, err := env.inventory.Expiring(ctx, DefaultExpiryWindow)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Expired", items[0].Name)
	assert.Equal(t, -3, items[0].DaysUntilExpiry)
	assert.Equal(t, "Soon", items[1].Name)
	assert.Equal(t, 10, items[1].DaysUntilExpiry)

	_, err = env.inventory.Expiring(ctx, 0)
	assertCode(t, err, apperror.CodeValidation)
	_, err = env.inventory.Expiring(ctx, MaxExpiryWindow+1)
	assertCode(t, err, apperror.CodeValidation)
}

func TestInventoryService_DeleteReferencedItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Cetirizine", 20, 5, "1.50")
	customer := env.createCustomer(t, "Jane")

	_, err := env.invoices.Create(ctx, nil, CreateInvoiceRequest{
		CustomerID:  customer.ID,
		InvoiceDate: date(t, "2026-01-10"),
		Items:       []InvoiceItemRequest{{InventoryID: item.ID, Quantity: 1, UnitPrice: dec("1.50")}},
	})
	require.NoError(t, err)

	err = env.inventory.Delete(ctx, item.ID)
	assertCode(t, err, apperror.CodeConflict)

	other := env.createItem(t, "Loratadine", 1, 5, "1.00")
	require.NoError(t, env.inventory.Delete(ctx, other.ID))
	_, err = env.inventory.Get(ctx, other.ID)
	assertCode(t, err, apperror.CodeNotFound)

	assertCode(t, env.inventory.Delete(ctx, other.ID), apperror.CodeNotFound)
}

func TestInventoryService_Export(t *testing.T) {
	env := newTestEnv(t)
	env.createItem(t, "Paracetamol", 5, 10, "2.50")

	var buf bytes.Buffer
	require.NoError(t, env.inventory.Export(context.Background(), repository.InventoryFilter{}, &buf))
	// xlsx files are zip archives
	assert.Equal(t, []byte("PK"), buf.Bytes()[:2])
}

func (e *testEnv) sell(t *testing.T, customerID, itemID uint, qty int) {
	t.Helper()
	_, err := e.invoices.Create(context.Background(), nil, CreateInvoiceRequest{
		CustomerID:  customerID,
		InvoiceDate: date(t, "2026-03-01"),
		Items:       []InvoiceItemRequest{{InventoryID: itemID, Quantity: qty, UnitPrice: dec("1.00")}},
	})
	require.NoError(t, err)
}

func TestInventoryService_UpdateKeepsStockWhenQuantityOmitted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Amoxicillin", 100, 10, "3.00")
	customer := env.createCustomer(t, "Walk-in")

	env.sell(t, customer.ID, item.ID, 20)
	require.Equal(t, 80, env.quantity(t, item.ID))
	published := len(env.events.names())

	updated, err := env.inventory.Update(ctx, item.ID, InventoryRequest{
		Name:         "Amoxicillin 250mg",
		CostPrice:    dec("1.10"),
		SellingPrice: dec("3.20"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Amoxicillin 250mg", updated.Name)
	assert.Equal(t, 80, updated.Quantity)
	assert.Equal(t, 10, updated.ReorderLevel)
	assertDecimal(t, "3.20", updated.SellingPrice)
	assert.NotContains(t, env.events.names()[published:], ws.EventStockUpdated)
}

func TestInventoryRepository_UpdateDetailsIgnoresStaleQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Ibuprofen", 100, 10, "2.00")
	customer := env.createCustomer(t, "Walk-in")

	snapshot, err := env.inventoryRepo.FindByID(ctx, item.ID)
	require.NoError(t, err)

	// a sale commits after the snapshot was read
	env.sell(t, customer.ID, item.ID, 20)

	snapshot.Name = "Ibuprofen 400mg"
	require.NoError(t, env.inventoryRepo.UpdateDetails(ctx, snapshot))

	stored, err := env.inventoryRepo.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ibuprofen 400mg", stored.Name)
	assert.Equal(t, 80, stored.Quantity)
}

func TestInventoryService_UpdateExplicitQuantity(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "Cetirizine", 40, 10, "1.50")

	updated, err := env.inventory.Update(context.Background(), item.ID, InventoryRequest{
		Name:         "Cetirizine",
		CostPrice:    dec("1.00"),
		SellingPrice: dec("1.50"),
		Quantity:     intPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, 5, updated.Quantity)
	assert.True(t, updated.IsLowStock)
	assert.Contains(t, env.events.names(), ws.EventStockUpdated)
	assert.Contains(t, env.events.names(), ws.EventLowStock)
}

func TestInventoryService_UpdateMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.inventory.Update(context.Background(), 4242, InventoryRequest{
		Name: "Ghost", CostPrice: dec("1"), SellingPrice: dec("2"),
	})
	assertCode(t, err, apperror.CodeNotFound)
}

package service

import (
	"context"
	"testing"

	"medshop/internal/apperror"
	"medshop/internal/model"
	"medshop/internal/repository"
	ws "medshop/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPO(t *testing.T, env *testEnv, wholesalerID uint, items ...PurchaseOrderItemRequest) *model.PurchaseOrder {
	t.Helper()
	po, err := env.purchaseOrder.Create(context.Background(), nil, CreatePurchaseOrderRequest{
		WholesalerID: wholesalerID,
		OrderDate:    date(t, "2026-04-01"),
		Items:        items,
	})
	require.NoError(t, err)
	return po
}

func TestPurchaseOrderService_CreateHasNoStockEffect(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, "Vitamin D", 5, 10, "4.00")
	supplier := env.createWholesaler(t, "MedSupply")

	po := createPO(t, env, supplier.ID,
		PurchaseOrderItemRequest{InventoryID: item.ID, Quantity: 10, UnitCost: dec("1.25")},
		PurchaseOrderItemRequest{InventoryID: item.ID, Quantity: 2, UnitCost: dec("1.00")},
	)

	assert.Regexp(t, `^PO-\d+-[0-9A-F]{4}$`, po.PONumber)
	assert.Equal(t, model.POStatusPending, po.Status)
	assert.Equal(t, "MedSupply", po.WholesalerName)
	assert.Equal(t, 2, po.ItemCount)
	assertDecimal(t, "14.50", po.TotalAmount)
	require.Len(t, po.Items, 2)
	assert.Equal(t, "Vitamin D", po.Items[0].ItemName)
	assert.Equal(t, 5, env.quantity(t, item.ID))
}

func TestPurchaseOrderService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Vitamin D", 5, 10, "4.00")
	supplier := env.createWholesaler(t, "MedSupply")

	_, err := env.purchaseOrder.Create(ctx, nil, CreatePurchaseOrderRequest{
		WholesalerID: supplier.ID, OrderDate: date(t, "2026-04-01"),
	})
	assertCode(t, err, apperror.CodeValidation)

	_, err = env.purchaseOrder.Create(ctx, nil, CreatePurchaseOrderRequest{
		WholesalerID: 777, OrderDate: date(t, "2026-04-01"),
		Items: []PurchaseOrderItemRequest{{InventoryID: item.ID, Quantity: 1, UnitCost: dec("1")}},
	})
	assertCode(t, err, apperror.CodeValidation)

	_, err = env.purchaseOrder.Create(ctx, nil, CreatePurchaseOrderRequest{
		WholesalerID: supplier.ID, OrderDate: date(t, "2026-04-01"),
		Items: []PurchaseOrderItemRequest{{InventoryID: 777, Quantity: 1, UnitCost: dec("1")}},
	})
	assertCode(t, err, apperror.CodeValidation)

	orders, err := env.purchaseOrder.List(ctx, repository.PurchaseOrderFilter{}, pageAll())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPurchaseOrderService_ReceiveIsMonotonicAndBounded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Amoxicillin", 3, 10, "4.00")
	supplier := env.createWholesaler(t, "PharmaDist")
	po := createPO(t, env, supplier.ID, PurchaseOrderItemRequest{InventoryID: item.ID, Quantity: 10, UnitCost: dec("2.00")})

	received, err := env.purchaseOrder.Receive(ctx, po.ID, ReceivePurchaseOrderRequest{
		ReceivedItems: []ReceiveItemRequest{{ItemID: item.ID, ReceivedQuantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.POStatusReceived, received.Status)
	assert.Equal(t, 4, received.Items[0].ReceivedQuantity)
	assert.Equal(t, 7, env.quantity(t, item.ID))
	assert.Contains(t, env.events.names(), ws.EventPurchaseOrderReceived)

	received, err = env.purchaseOrder.Receive(ctx, po.ID, ReceivePurchaseOrderRequest{
		ReceivedItems: []ReceiveItemRequest{{ItemID: item.ID, ReceivedQuantity: 6}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, received.Items[0].ReceivedQuantity)
	assert.Equal(t, 13, env.quantity(t, item.ID))

	_, err = env.purchaseOrder.Receive(ctx, po.ID, ReceivePurchaseOrderRequest{
		ReceivedItems: []ReceiveItemRequest{{ItemID: item.ID, ReceivedQuantity: 1}},
	})
	assertCode(t, err, apperror.CodeValidation)
	assert.Equal(t, 13, env.quantity(t, item.ID))

	current, err := env.purchaseOrder.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, current.Items[0].ReceivedQuantity)
}

func TestPurchaseOrderService_ReceiveRejectsWholeCallOnOverReceipt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.createItem(t, "Item A", 0, 1, "1.00")
	b := env.createItem(t, "Item B", 0, 1, "1.00")
	supplier := env.createWholesaler(t, "Supplier")
	po := createPO(t, env, supplier.ID,
		PurchaseOrderItemRequest{InventoryID: a.ID, Quantity: 5, UnitCost: dec("1")},
		PurchaseOrderItemRequest{InventoryID: b.ID, Quantity: 2, UnitCost: dec("1")},
	)

	_, err := env.purchaseOrder.Receive(ctx, po.ID, ReceivePurchaseOrderRequest{
		ReceivedItems: []ReceiveItemRequest{
			{ItemID: a.ID, ReceivedQuantity: 5},
			{ItemID: b.ID, ReceivedQuantity: 3},
		},
	})
	assertCode(t, err, apperror.CodeValidation)

	assert.Equal(t, 0, env.quantity(t, a.ID))
	assert.Equal(t, 0, env.quantity(t, b.ID))
	current, err := env.purchaseOrder.Get(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, model.POStatusPending, current.Status)
	for _, line := range current.Items {
		assert.Zero(t, line.ReceivedQuantity)
	}
}

func TestPurchaseOrderService_ReceiveSpreadsOverDuplicateLines(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Gauze", 0, 1, "1.00")
	supplier := env.createWholesaler(t, "Supplier")
	po := createPO(t, env, supplier.ID,
		PurchaseOrderItemRequest{InventoryID: item.ID, Quantity: 3, UnitCost: dec("1")},
		PurchaseOrderItemRequest{InventoryID: item.ID, Quantity: 4, UnitCost: dec("1")},
	)

	received, err := env.purchaseOrder.Receive(ctx, po.ID, ReceivePurchaseOrderRequest{
		ReceivedItems: []ReceiveItemRequest{{ItemID: item.ID, ReceivedQuantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, received.Items[0].ReceivedQuantity)
	assert.Equal(t, 2, received.Items[1].ReceivedQuantity)
	assert.Equal(t, 5, env.quantity(t, item.ID))
}

func TestPurchaseOrderService_ReceiveEdgeCases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Syringe", 0, 1, "1.00")
	stranger := env.createItem(t, "Not ordered", 0, 1, "1.00")
	supplier := env.createWholesaler(t, "Supplier")
	po := createPO(t, env, supplier.ID, PurchaseOrderItemRequest{InventoryID: item.ID, Quantity: 3, UnitCost: dec("1")})

	_, err := env.purchaseOrder.Receive(ctx, po.ID, ReceivePurchaseOrderRequest{})
	assertCode(t, err, apperror.CodeValidation)

	_, err = env.purchaseOrder.Receive(ctx, po.ID, ReceivePurchaseOrderRequest{
		ReceivedItems: []ReceiveItemRequest{{ItemID: stranger.ID, ReceivedQuantity: 1}},
	})
	assertCode(t, err, apperror.CodeValidation)

	_, err = env.purchaseOrder.Receive(ctx, 9999, ReceivePurchaseOrderRequest{
		ReceivedItems: []ReceiveItemRequest{{ItemID: item.ID, ReceivedQuantity: 1}},
	})
	assertCode(t, err, apperror.CodeNotFound)

	_, err = env.purchaseOrder.UpdateStatus(ctx, po.ID, model.POStatusCancelled)
	require.NoError(t, err)
	_, err = env.purchaseOrder.Receive(ctx, po.ID, ReceivePurchaseOrderRequest{
		ReceivedItems: []ReceiveItemRequest{{ItemID: item.ID, ReceivedQuantity: 1}},
	})
	assertCode(t, err, apperror.CodeValidation)
	assert.Equal(t, 0, env.quantity(t, item.ID))
}

func TestPurchaseOrderService_DeleteKeepsReceivedStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Bandage", 0, 1, "1.00")
	supplier := env.createWholesaler(t, "Supplier")
	po := createPO(t, env, supplier.ID, PurchaseOrderItemRequest{InventoryID: item.ID, Quantity: 3, UnitCost: dec("1")})

	_, err := env.purchaseOrder.Receive(ctx, po.ID, ReceivePurchaseOrderRequest{
		ReceivedItems: []ReceiveItemRequest{{ItemID: item.ID, ReceivedQuantity: 3}},
	})
	require.NoError(t, err)

	require.NoError(t, env.purchaseOrder.Delete(ctx, po.ID))
	assert.Equal(t, 3, env.quantity(t, item.ID))

	_, err = env.purchaseOrder.Get(ctx, po.ID)
	assertCode(t, err, apperror.CodeNotFound)
	assertCode(t, env.purchaseOrder.Delete(ctx, po.ID), apperror.CodeNotFound)

	var lines int64
	require.NoError(t, env.db.Model(&model.PurchaseOrderItem{}).Count(&lines).Error)
	assert.Zero(t, lines)
}

func TestPurchaseOrderService_UpdateStatusAndStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.createItem(t, "Mask", 0, 1, "1.00")
	supplier := env.createWholesaler(t, "Supplier")
	first := createPO(t, env, supplier.ID, PurchaseOrderItemRequest{InventoryID: item.ID, Quantity: 2, UnitCost: dec("3")})
	createPO(t, env, supplier.ID, PurchaseOrderItemRequest{InventoryID: item.ID, Quantity: 1, UnitCost: dec("4")})

	_, err := env.purchaseOrder.UpdateStatus(ctx, first.ID, "lost")
	assertCode(t, err, apperror.CodeValidation)

	updated, err := env.purchaseOrder.UpdateStatus(ctx, first.ID, model.POStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.POStatusConfirmed, updated.Status)

	stats, err := env.purchaseOrder.Stats(ctx, repository.DateRange{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalOrders)
	assert.EqualValues(t, 1, stats.PendingOrders)
	assert.EqualValues(t, 1, stats.ConfirmedOrders)
	assertDecimal(t, "10.00", stats.TotalValue)

	later, err := env.purchaseOrder.Stats(ctx, repository.DateRange{Start: date(t, "2026-04-02")})
	require.NoError(t, err)
	assert.Zero(t, later.TotalOrders)
	assertDecimal(t, "0", later.TotalValue)

	april, err := env.purchaseOrder.Stats(ctx, repository.DateRange{End: date(t, "2026-04-01")})
	require.NoError(t, err)
	assert.EqualValues(t, 2, april.TotalOrders)

	filtered, err := env.purchaseOrder.List(ctx, repository.PurchaseOrderFilter{Status: model.POStatusConfirmed}, pageAll())
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, 1, filtered[0].ItemCount)
}

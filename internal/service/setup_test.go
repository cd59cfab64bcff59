package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"medshop/internal/apperror"
	"medshop/internal/auth"
	"medshop/internal/cache"
	"medshop/internal/config"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/testutil"
	"medshop/pkg/logger"
	"medshop/pkg/pagination"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.SetDefault(logger.Nop())
	os.Exit(m.Run())
}

type publishedEvent struct {
	Name string
	Data any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(event string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Name: event, Data: data})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

// testEnv wires every service over one in-memory database
type testEnv struct {
	db     *gorm.DB
	events *recordingPublisher
	cache  *cache.Memory

	inventoryRepo repository.InventoryRepository
	customerRepo  repository.CustomerRepository
	poRepo        repository.PurchaseOrderRepository

	inventory     InventoryService
	categories    CategoryService
	customers     CustomerService
	wholesalers   WholesalerService
	staff         StaffService
	bills         BillService
	invoices      InvoiceService
	purchaseOrder PurchaseOrderService
	dashboard     DashboardService
	users         UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	events := &recordingPublisher{}
	stats := cache.NewMemory(0)
	tx := repository.NewTransactionManager(db)

	inventoryRepo := repository.NewInventoryRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	wholesalerRepo := repository.NewWholesalerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)

	return &testEnv{
		db:            db,
		events:        events,
		cache:         stats,
		inventoryRepo: inventoryRepo,
		customerRepo:  customerRepo,
		poRepo:        poRepo,
		inventory:     NewInventoryService(inventoryRepo, categoryRepo, tx, events, stats),
		categories:    NewCategoryService(categoryRepo),
		customers:     NewCustomerService(customerRepo),
		wholesalers:   NewWholesalerService(wholesalerRepo),
		staff:         NewStaffService(repository.NewStaffRepository(db)),
		bills:         NewBillService(repository.NewBillRepository(db), events),
		invoices:      NewInvoiceService(invoiceRepo, inventoryRepo, customerRepo, tx, events, stats),
		purchaseOrder: NewPurchaseOrderService(poRepo, inventoryRepo, wholesalerRepo, tx, events, stats),
		dashboard:     NewDashboardService(repository.NewDashboardRepository(db), invoiceRepo, poRepo, stats),
		users: NewUserService(repository.NewUserRepository(db), tx,
			auth.NewTokenManager(config.JWTConfig{Secret: "test-secret", TTL: time.Hour})),
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(i int) *int { return &i }

func date(t *testing.T, s string) *model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.Truef(t, ok, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}

func (e *testEnv) createItem(t *testing.T, name string, qty, reorder int, price string) *InventoryResponse {
	t.Helper()
	item, err := e.inventory.Create(context.Background(), InventoryRequest{
		Name:         name,
		CostPrice:    dec("1.00"),
		SellingPrice: dec(price),
		Quantity:     intPtr(qty),
		ReorderLevel: intPtr(reorder),
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) createCustomer(t *testing.T, name string) *model.Customer {
	t.Helper()
	c, err := e.customers.Create(context.Background(), CustomerRequest{Name: name})
	require.NoError(t, err)
	return c
}

func (e *testEnv) createWholesaler(t *testing.T, name string) *model.Wholesaler {
	t.Helper()
	w, err := e.wholesalers.Create(context.Background(), WholesalerRequest{Name: name})
	require.NoError(t, err)
	return w
}

func (e *testEnv) quantity(t *testing.T, id uint) int {
	t.Helper()
	item, err := e.inventoryRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return item.Quantity
}

func pageAll() pagination.Params { return pagination.Params{} }

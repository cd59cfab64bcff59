package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"medshop/internal/auth"
	"medshop/internal/cache"
	"medshop/internal/config"
	"medshop/internal/export"
	"medshop/internal/repository"
	"medshop/internal/service"
	"medshop/internal/testutil"
	"medshop/internal/validation"
	"medshop/internal/websocket"
	"medshop/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

type RouterSuite struct {
	suite.Suite
	router *gin.Engine
	admin  string
}

func TestRouterSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validation.Register()
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	db := testutil.NewDB(s.T())
	log := logger.Nop()
	tokens := auth.NewTokenManager(config.JWTConfig{Secret: "router-secret", TTL: time.Hour})
	hub := websocket.NewHub(log)
	stats := cache.NewMemory(0)
	tx := repository.NewTransactionManager(db)

	inventoryRepo := repository.NewInventoryRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	wholesalerRepo := repository.NewWholesalerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	poRepo := repository.NewPurchaseOrderRepository(db)

	h := Handlers{
		Auth:          NewAuthHandler(service.NewUserService(repository.NewUserRepository(db), tx, tokens), tokens),
		Health:        NewHealthHandler(db),
		Inventory:     NewInventoryHandler(service.NewInventoryService(inventoryRepo, categoryRepo, tx, hub, stats)),
		Categories:    NewCategoryHandler(service.NewCategoryService(categoryRepo)),
		Customers:     NewCustomerHandler(service.NewCustomerService(customerRepo)),
		Wholesalers:   NewWholesalerHandler(service.NewWholesalerService(wholesalerRepo)),
		Staff:         NewStaffHandler(service.NewStaffService(repository.NewStaffRepository(db))),
		Bills:         NewBillHandler(service.NewBillService(repository.NewBillRepository(db), hub)),
		Invoices:      NewInvoiceHandler(service.NewInvoiceService(invoiceRepo, inventoryRepo, customerRepo, tx, hub, stats)),
		PurchaseOrder: NewPurchaseOrderHandler(service.NewPurchaseOrderService(poRepo, inventoryRepo, wholesalerRepo, tx, hub, stats)),
		Dashboard:     NewDashboardHandler(service.NewDashboardService(repository.NewDashboardRepository(db), invoiceRepo, poRepo, stats)),
	}
	s.router = NewRouter(RouterConfig{CORSOrigins: []string{"http://localhost:5173"}}, log, tokens, hub, h)

	w, res := s.call(http.MethodPost, "/api/auth/setup", "", map[string]any{
		"username": "admin", "email": "admin@shop.test", "password": "secret1",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var authRes service.AuthResponse
	s.Require().NoError(json.Unmarshal(res.Data, &authRes))
	s.admin = authRes.Token
}

func (s *RouterSuite) TearDownTest() {
	SetErrorDetail(false)
}

func (s *RouterSuite) call(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var res envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	}
	return w, res
}

// created posts body and returns the id of the new resource
func (s *RouterSuite) created(path string, body any) uint {
	w, res := s.call(http.MethodPost, path, s.admin, body)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var entity struct {
		ID uint `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(res.Data, &entity))
	return entity.ID
}

func (s *RouterSuite) staffToken() string {
	w, _ := s.call(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "clerk", "email": "clerk@shop.test", "password": "secret1",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, res := s.call(http.MethodPost, "/api/auth/login", "", map[string]any{"username": "clerk", "password": "secret1"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var authRes service.AuthResponse
	s.Require().NoError(json.Unmarshal(res.Data, &authRes))
	return authRes.Token
}

// rows fetches a list endpoint and returns the number of rows in data
func (s *RouterSuite) rows(path string) int {
	w, res := s.call(http.MethodGet, path, s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var list []json.RawMessage
	s.Require().NoError(json.Unmarshal(res.Data, &list))
	return len(list)
}

func (s *RouterSuite) TestHealth() {
	w, _ := s.call(http.MethodGet, "/api/health", "", nil)
	s.Equal(http.StatusOK, w.Code)

	var body HealthResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("OK", body.Status)
	s.Equal("connected", body.Database)
}

func (s *RouterSuite) TestAuthRequired() {
	w, res := s.call(http.MethodGet, "/api/inventory", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.False(res.Success)

	w, _ = s.call(http.MethodGet, "/api/inventory", "bogus", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w, res = s.call(http.MethodGet, "/api/inventory", s.admin, nil)
	s.Equal(http.StatusOK, w.Code)
	s.True(res.Success)
	s.JSONEq(`[]`, string(res.Data))
}

func (s *RouterSuite) TestSetupOnlyOnceAndMe() {
	w, _ := s.call(http.MethodPost, "/api/auth/setup", "", map[string]any{
		"username": "second", "email": "second@shop.test", "password": "secret1",
	})
	s.Equal(http.StatusForbidden, w.Code)

	w, res := s.call(http.MethodGet, "/api/auth/me", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var me service.UserResponse
	s.Require().NoError(json.Unmarshal(res.Data, &me))
	s.Equal("admin", me.Username)
	s.Equal("admin", me.Role)
	s.NotContains(string(res.Data), "password")
}

func (s *RouterSuite) TestRegisterAdminNeedsAdminToken() {
	body := map[string]any{"username": "boss", "email": "boss@shop.test", "password": "secret1", "role": "admin"}

	w, _ := s.call(http.MethodPost, "/api/auth/register", "", body)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.call(http.MethodPost, "/api/auth/register", s.admin, body)
	s.Equal(http.StatusCreated, w.Code)

	w, _ = s.call(http.MethodPost, "/api/auth/login", "", map[string]any{"username": "boss", "password": "wrong1"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestValidationErrors() {
	w, res := s.call(http.MethodPost, "/api/inventory", s.admin, map[string]any{"name": "No prices"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.False(res.Success)
	s.Contains(res.Message, "required")
	s.Empty(res.Error)

	w, _ = s.call(http.MethodPost, "/api/inventory", s.admin, map[string]any{
		"name": "Negative", "cost_price": "-1", "selling_price": "1",
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.call(http.MethodGet, "/api/inventory/abc", s.admin, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.call(http.MethodGet, "/api/inventory/999", s.admin, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.call(http.MethodGet, "/api/dashboard/stats?startDate=2026-02-01&endDate=2026-01-01", s.admin, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.call(http.MethodGet, "/api/inventory/expiring/items?days=0", s.admin, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestErrorDetailInDevelopment() {
	SetErrorDetail(true)
	w, res := s.call(http.MethodGet, "/api/customers/999", s.admin, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.NotEmpty(res.Error)
}

func (s *RouterSuite) TestAdminOnlyDeletes() {
	staff := s.staffToken()
	id := s.created("/api/categories", map[string]any{"name": "Vitamins"})
	path := fmt.Sprintf("/api/categories/%d", id)

	w, _ := s.call(http.MethodDelete, path, staff, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.call(http.MethodPost, "/api/staff", staff, map[string]any{"name": "Sam", "email": "sam@shop.test"})
	s.Equal(http.StatusForbidden, w.Code)

	w, _ = s.call(http.MethodGet, path, staff, nil)
	s.Equal(http.StatusOK, w.Code)

	w, res := s.call(http.MethodDelete, path, s.admin, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Category deleted successfully", res.Message)
}

func (s *RouterSuite) TestInvoiceLifecycle() {
	itemID := s.created("/api/inventory", map[string]any{
		"name": "Paracetamol", "cost_price": "1.00", "selling_price": "2.50", "quantity": 100, "reorder_level": 10,
	})
	customerID := s.created("/api/customers", map[string]any{"name": "Jane"})

	w, res := s.call(http.MethodPost, "/api/invoices", s.admin, map[string]any{
		"customer_id":  customerID,
		"invoice_date": "2026-03-01",
		"items":        []map[string]any{{"inventory_id": itemID, "quantity": 500, "unit_price": "2.50"}},
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(res.Message, "Insufficient stock")

	invoiceID := s.created("/api/invoices", map[string]any{
		"customer_id":     customerID,
		"invoice_date":    "2026-03-01",
		"tax_amount":      "1.00",
		"discount_amount": "0.50",
		"items":           []map[string]any{{"inventory_id": itemID, "quantity": 10, "unit_price": "2.50"}},
	})

	w, res = s.call(http.MethodGet, fmt.Sprintf("/api/inventory/%d", itemID), s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var item service.InventoryResponse
	s.Require().NoError(json.Unmarshal(res.Data, &item))
	s.Equal(90, item.Quantity)

	w, res = s.call(http.MethodPost, fmt.Sprintf("/api/invoices/%d/pay", invoiceID), s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var paid service.InvoiceResponse
	s.Require().NoError(json.Unmarshal(res.Data, &paid))
	s.Equal("paid", paid.Status)
	s.Equal("25.5", paid.TotalAmount.String())

	w, _ = s.call(http.MethodPatch, fmt.Sprintf("/api/invoices/%d/status", invoiceID), s.admin, map[string]any{"status": "lost"})
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.call(http.MethodDelete, fmt.Sprintf("/api/invoices/%d", invoiceID), s.admin, nil)
	s.Equal(http.StatusOK, w.Code)

	w, res = s.call(http.MethodGet, fmt.Sprintf("/api/inventory/%d", itemID), s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(res.Data, &item))
	s.Equal(100, item.Quantity)
}

func (s *RouterSuite) TestPurchaseOrderReceive() {
	itemID := s.created("/api/inventory", map[string]any{
		"name": "Ibuprofen", "cost_price": "1.00", "selling_price": "2.00", "quantity": 0, "reorder_level": 5,
	})
	wholesalerID := s.created("/api/wholesalers", map[string]any{"name": "MedSupply"})
	poID := s.created("/api/purchase-orders", map[string]any{
		"wholesaler_id": wholesalerID,
		"order_date":    "2026-03-01",
		"items":         []map[string]any{{"inventory_id": itemID, "quantity": 10, "unit_cost": "1.00"}},
	})
	receive := fmt.Sprintf("/api/purchase-orders/%d/receive", poID)

	w, _ := s.call(http.MethodPost, receive, s.admin, map[string]any{
		"received_items": []map[string]any{{"item_id": itemID, "received_quantity": 11}},
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.call(http.MethodPost, receive, s.admin, map[string]any{"received_items": []map[string]any{}})
	s.Equal(http.StatusBadRequest, w.Code)

	w, res := s.call(http.MethodPost, receive, s.admin, map[string]any{
		"received_items": []map[string]any{{"item_id": itemID, "received_quantity": 10}},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(string(res.Data), `"status":"received"`)

	w, res = s.call(http.MethodGet, "/api/inventory/low-stock/items", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, string(res.Data))
}

func (s *RouterSuite) TestExportInventory() {
	s.created("/api/inventory", map[string]any{"name": "Amoxicillin", "cost_price": "1.00", "selling_price": "3.00"})

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/export", nil)
	req.Header.Set("Authorization", "Bearer "+s.admin)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(export.ContentTypeXLSX, w.Header().Get("Content-Type"))
	s.Contains(w.Header().Get("Content-Disposition"), "inventory-")
	s.True(bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func (s *RouterSuite) TestDashboard() {
	s.created("/api/inventory", map[string]any{
		"name": "Low", "cost_price": "1", "selling_price": "1", "quantity": 1, "reorder_level": 5,
	})

	w, res := s.call(http.MethodGet, "/api/dashboard/stats", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(res.Data), `"low_stock_items":1`)

	w, res = s.call(http.MethodGet, "/api/dashboard/recent-activity", s.admin, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, string(res.Data))
}

func (s *RouterSuite) TestWebsocketRequiresToken() {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterSuite) TestListFilters() {
	categoryID := s.created("/api/categories", map[string]any{"name": "Respiratory"})
	lowID := s.created("/api/inventory", map[string]any{
		"name": "Salbutamol", "cost_price": "1", "selling_price": "2", "quantity": 30, "reorder_level": 10,
		"category_id": categoryID,
	})
	otherID := s.created("/api/inventory", map[string]any{
		"name": "Zinc", "cost_price": "1", "selling_price": "2", "quantity": 50, "reorder_level": 10,
	})
	retailID := s.created("/api/customers", map[string]any{"name": "Jane"})
	s.created("/api/customers", map[string]any{"name": "City Clinic", "customer_type": "wholesale"})
	clinicID := s.created("/api/customers", map[string]any{"name": "North Clinic", "customer_type": "insurance"})

	s.created("/api/invoices", map[string]any{
		"customer_id": retailID, "invoice_date": "2026-01-10",
		"items": []map[string]any{{"inventory_id": lowID, "quantity": 25, "unit_price": "2"}},
	})
	s.created("/api/invoices", map[string]any{
		"customer_id": clinicID, "invoice_date": "2026-02-10",
		"items": []map[string]any{{"inventory_id": otherID, "quantity": 5, "unit_price": "2"}},
	})

	firstSupplier := s.created("/api/wholesalers", map[string]any{"name": "MedSupply"})
	secondSupplier := s.created("/api/wholesalers", map[string]any{"name": "PharmaHub"})
	for _, po := range []struct {
		wholesaler uint
		day        string
	}{{firstSupplier, "2026-01-05"}, {secondSupplier, "2026-02-05"}, {secondSupplier, "2026-03-05"}} {
		s.created("/api/purchase-orders", map[string]any{
			"wholesaler_id": po.wholesaler, "order_date": po.day,
			"items": []map[string]any{{"inventory_id": otherID, "quantity": 1, "unit_cost": "4"}},
		})
	}

	s.created("/api/bills", map[string]any{"bill_date": "2026-01-01", "amount": "100", "category": "rent"})
	s.created("/api/bills", map[string]any{"bill_date": "2026-02-01", "amount": "50", "category": "utilities"})

	// inventory: Salbutamol is down to 5, at or below its reorder level
	s.Equal(2, s.rows("/api/inventory"))
	s.Equal(1, s.rows("/api/inventory?lowStock=true"))
	s.Equal(1, s.rows(fmt.Sprintf("/api/inventory?category=%d", categoryID)))
	s.Equal(1, s.rows("/api/inventory?low_stock=true"))

	s.Equal(1, s.rows("/api/customers?type=wholesale"))
	s.Equal(1, s.rows("/api/customers?customer_type=insurance"))

	s.Equal(1, s.rows(fmt.Sprintf("/api/invoices?customer=%d", retailID)))
	s.Equal(1, s.rows("/api/invoices?startDate=2026-02-01"))
	s.Equal(1, s.rows("/api/invoices?endDate=2026-01-31"))
	s.Equal(0, s.rows("/api/invoices?startDate=2026-03-01&endDate=2026-03-31"))

	s.Equal(2, s.rows(fmt.Sprintf("/api/purchase-orders?wholesaler=%d", secondSupplier)))
	s.Equal(1, s.rows(fmt.Sprintf("/api/purchase-orders?wholesaler=%d&startDate=2026-03-01", secondSupplier)))

	s.Equal(1, s.rows("/api/bills?startDate=2026-01-15&endDate=2026-02-15"))
	s.Equal(1, s.rows("/api/bills?category=rent"))

	w, _ := s.call(http.MethodGet, "/api/invoices?customer=abc", s.admin, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	w, _ = s.call(http.MethodGet, "/api/bills?startDate=01-02-2026", s.admin, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestStatsSummaryPeriod() {
	itemID := s.created("/api/inventory", map[string]any{
		"name": "Vitamin C", "cost_price": "1", "selling_price": "3", "quantity": 20, "reorder_level": 2,
	})
	customerID := s.created("/api/customers", map[string]any{"name": "Jane"})
	wholesalerID := s.created("/api/wholesalers", map[string]any{"name": "MedSupply"})

	for _, day := range []string{"2026-01-15", "2026-02-15"} {
		s.created("/api/invoices", map[string]any{
			"customer_id": customerID, "invoice_date": day,
			"items": []map[string]any{{"inventory_id": itemID, "quantity": 1, "unit_price": "3"}},
		})
		s.created("/api/purchase-orders", map[string]any{
			"wholesaler_id": wholesalerID, "order_date": day,
			"items": []map[string]any{{"inventory_id": itemID, "quantity": 2, "unit_cost": "1"}},
		})
		s.created("/api/bills", map[string]any{"bill_date": day, "amount": "10"})
	}

	const february = "?startDate=2026-02-01&endDate=2026-02-28"
	for _, tc := range []struct {
		path string
		want string
	}{
		{"/api/invoices/stats/summary", `"total_invoices":2`},
		{"/api/invoices/stats/summary" + february, `"total_invoices":1`},
		{"/api/purchase-orders/stats/summary", `"total_orders":2`},
		{"/api/purchase-orders/stats/summary" + february, `"total_orders":1`},
		{"/api/bills/stats/summary", `"total_bills":2`},
		{"/api/bills/stats/summary" + february, `"total_bills":1`},
	} {
		w, res := s.call(http.MethodGet, tc.path, s.admin, nil)
		s.Require().Equal(http.StatusOK, w.Code, tc.path)
		s.Contains(string(res.Data), tc.want, tc.path)
	}

	w, _ := s.call(http.MethodGet, "/api/bills/stats/summary?startDate=2026-03-01&endDate=2026-01-01", s.admin, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

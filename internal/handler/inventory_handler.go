package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"medshop/internal/apperror"
	"medshop/internal/export"
	"medshop/internal/middleware"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/service"
	"medshop/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

func (h *InventoryHandler) RegisterRoutes(api *gin.RouterGroup) {
	inventory := api.Group("/inventory")
	{
		inventory.GET("", h.List)
		inventory.POST("", h.Create)
		inventory.GET("/export", h.Export)
		inventory.GET("/low-stock/items", h.LowStock)
		inventory.GET("/expiring/items", h.Expiring)
		inventory.GET("/:id", h.Get)
		inventory.PUT("/:id", h.Update)
		inventory.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
		inventory.PATCH("/:id/stock", h.UpdateStock)
	}
}

func (h *InventoryHandler) filter(c *gin.Context) (repository.InventoryFilter, bool) {
	categoryID, ok := queryUint(c, "category", "category_id")
	if !ok {
		return repository.InventoryFilter{}, false
	}
	return repository.InventoryFilter{
		Search:     c.Query("search"),
		CategoryID: categoryID,
		Status:     c.Query("status"),
		LowStock:   queryBool(c, "lowStock", "low_stock"),
	}, true
}

// List returns inventory items
// @Summary      List inventory
// @Description  Lists inventory items ordered by name, with optional filters and pagination
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        search       query     string  false  "Name, generic name, barcode or SKU"
// @Param        category     query     int     false  "Category"
// @Param        status       query     string  false  "active or inactive"
// @Param        lowStock     query     bool    false  "Only items at or below their reorder level"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Items per page"
// @Success      200  {object}  response.Response{data=[]service.InventoryResponse}
// @Failure      401  {object}  response.Response
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}

	items, err := h.inventoryService.List(c.Request.Context(), filter, pagination.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, items)
}

// Get returns one inventory item
// @Summary      Get inventory item
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response{data=service.InventoryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.inventoryService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

// Create adds an inventory item
// @Summary      Create inventory item
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.InventoryRequest  true  "Item"
// @Success      201      {object}  response.Response{data=service.InventoryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req service.InventoryRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, item)
}

// Update replaces an inventory item's details
// @Summary      Update inventory item
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                       true  "Item ID"
// @Param        payload  body      service.InventoryRequest  true  "Item"
// @Success      200      {object}  response.Response{data=service.InventoryResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/inventory/{id} [put]
func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.InventoryRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.inventoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, item)
}

// Delete removes an inventory item
// @Summary      Delete inventory item
// @Description  Admin only. Items referenced by invoices or purchase orders cannot be deleted.
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.inventoryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Inventory item deleted successfully")
}

// UpdateStock adjusts the on-hand quantity
// @Summary      Adjust stock
// @Description  Adds or removes stock. A decrease below zero is rejected.
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                         true  "Item ID"
// @Param        payload  body      service.StockUpdateRequest  true  "Adjustment"
// @Success      200      {object}  response.Response{data=service.StockUpdateResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/inventory/{id}/stock [patch]
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.StockUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.inventoryService.UpdateStock(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, res)
}

// LowStock lists active items at or below their reorder level
// @Summary      Low stock items
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.InventoryResponse}
// @Router       /api/inventory/low-stock/items [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.inventoryService.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, items)
}

// Expiring lists active items expiring within the window
// @Summary      Expiring items
// @Description  Items whose expiry date falls within the next N days, already expired ones included
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        days  query     int  false  "Window in days (default 30)"
// @Success      200   {object}  response.Response{data=[]service.ExpiringItemResponse}
// @Failure      400   {object}  response.Response
// @Router       /api/inventory/expiring/items [get]
func (h *InventoryHandler) Expiring(c *gin.Context) {
	days := service.DefaultExpiryWindow
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperror.NewValidation("days must be an integer"))
			return
		}
		days = v
	}

	items, err := h.inventoryService.Expiring(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, items)
}

// Export downloads the inventory as an Excel workbook
// @Summary      Export inventory
// @Description  Same filters as the list, rendered as xlsx
// @Tags         inventory
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        search       query  string  false  "Name, generic name, barcode or SKU"
// @Param        category     query  int     false  "Category"
// @Param        status       query  string  false  "active or inactive"
// @Param        lowStock     query  bool    false  "Only low stock items"
// @Success      200  {file}    file
// @Failure      500  {object}  response.Response
// @Router       /api/inventory/export [get]
func (h *InventoryHandler) Export(c *gin.Context) {
	filter, ok := h.filter(c)
	if !ok {
		return
	}

	// render fully before writing so a failure can still produce a JSON error
	var buf bytes.Buffer
	if err := h.inventoryService.Export(c.Request.Context(), filter, &buf); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentTypeXLSX, buf.Bytes())
}

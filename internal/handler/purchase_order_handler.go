package handler

import (
	"medshop/internal/middleware"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/service"
	"medshop/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type PurchaseOrderHandler struct {
	poService service.PurchaseOrderService
}

func NewPurchaseOrderHandler(poService service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{poService: poService}
}

func (h *PurchaseOrderHandler) RegisterRoutes(api *gin.RouterGroup) {
	orders := api.Group("/purchase-orders")
	{
		orders.GET("", h.List)
		orders.POST("", h.Create)
		orders.GET("/stats/summary", h.Stats)
		orders.GET("/:id", h.Get)
		orders.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
		orders.PATCH("/:id/status", h.UpdateStatus)
		orders.POST("/:id/receive", h.Receive)
	}
}

// List returns purchase orders, newest first
// @Summary      List purchase orders
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        status         query     string  false  "pending, confirmed, shipped, received or cancelled"
// @Param        wholesaler     query     int     false  "Wholesaler"
// @Param        startDate      query     string  false  "Order date from (YYYY-MM-DD)"
// @Param        endDate        query     string  false  "Order date to (YYYY-MM-DD)"
// @Param        page           query     int     false  "Page number"
// @Param        limit          query     int     false  "Items per page"
// @Success      200  {object}  response.Response{data=[]model.PurchaseOrder}
// @Failure      400  {object}  response.Response
// @Router       /api/purchase-orders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	wholesalerID, ok := queryUint(c, "wholesaler", "wholesaler_id")
	if !ok {
		return
	}
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	filter := repository.PurchaseOrderFilter{
		Status:       c.Query("status"),
		WholesalerID: wholesalerID,
		StartDate:    period.Start,
		EndDate:      period.End,
	}
	orders, err := h.poService.List(c.Request.Context(), filter, pagination.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, orders)
}

// Get returns one purchase order with its lines
// @Summary      Get purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Purchase order ID"
// @Success      200  {object}  response.Response{data=model.PurchaseOrder}
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.poService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// Create places a purchase order. Stock changes only when goods are received.
// @Summary      Create purchase order
// @Tags         purchase-orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePurchaseOrderRequest  true  "Purchase order"
// @Success      201      {object}  response.Response{data=model.PurchaseOrder}
// @Failure      400      {object}  response.Response
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req service.CreatePurchaseOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.poService.Create(c.Request.Context(), middleware.UserIDPtr(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, order)
}

// Receive books delivered quantities into stock
// @Summary      Receive purchase order items
// @Description  Received quantities add up per line and may never exceed the ordered quantity.
// @Tags         purchase-orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                                  true  "Purchase order ID"
// @Param        payload  body      service.ReceivePurchaseOrderRequest  true  "Received items"
// @Success      200      {object}  response.Response{data=model.PurchaseOrder}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/purchase-orders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.ReceivePurchaseOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.poService.Receive(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// UpdateStatus sets the purchase order status without touching stock
// @Summary      Update purchase order status
// @Tags         purchase-orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                          true  "Purchase order ID"
// @Param        payload  body      service.UpdateStatusRequest  true  "Status"
// @Success      200      {object}  response.Response{data=model.PurchaseOrder}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/purchase-orders/{id}/status [patch]
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := h.poService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, order)
}

// Delete removes a purchase order. Stock already received stays.
// @Summary      Delete purchase order
// @Description  Admin only
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Purchase order ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-orders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.poService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Purchase order deleted successfully")
}

// Stats summarises purchase order counts and spend
// @Summary      Purchase order summary
// @Tags         purchase-orders
// @Security     BearerAuth
// @Produce      json
// @Param        startDate  query     string  false  "From (YYYY-MM-DD)"
// @Param        endDate    query     string  false  "To (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=model.PurchaseOrderSummary}
// @Failure      400  {object}  response.Response
// @Router       /api/purchase-orders/stats/summary [get]
func (h *PurchaseOrderHandler) Stats(c *gin.Context) {
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	summary, err := h.poService.Stats(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}

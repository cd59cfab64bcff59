package handler

import (
	"medshop/internal/middleware"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/service"
	"medshop/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(api *gin.RouterGroup) {
	invoices := api.Group("/invoices")
	{
		invoices.GET("", h.List)
		invoices.POST("", h.Create)
		invoices.GET("/stats/summary", h.Stats)
		invoices.GET("/:id", h.Get)
		invoices.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
		invoices.PATCH("/:id/status", h.UpdateStatus)
		invoices.POST("/:id/pay", h.MarkPaid)
	}
}

// List returns invoices, newest first
// @Summary      List invoices
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status       query     string  false  "pending, paid, cancelled or overdue"
// @Param        customer     query     int     false  "Customer"
// @Param        startDate    query     string  false  "Invoice date from (YYYY-MM-DD)"
// @Param        endDate      query     string  false  "Invoice date to (YYYY-MM-DD)"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Items per page"
// @Success      200  {object}  response.Response{data=[]service.InvoiceResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	customerID, ok := queryUint(c, "customer", "customer_id")
	if !ok {
		return
	}
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	filter := repository.InvoiceFilter{
		Status:     c.Query("status"),
		CustomerID: customerID,
		StartDate:  period.Start,
		EndDate:    period.End,
	}
	invoices, err := h.invoiceService.List(c.Request.Context(), filter, pagination.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, invoices)
}

// Get returns one invoice with its lines
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, invoice)
}

// Create issues an invoice and takes its quantities out of stock
// @Summary      Create invoice
// @Description  All lines are checked against stock; any shortfall rejects the whole invoice.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Invoice"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.Create(c.Request.Context(), middleware.UserIDPtr(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, invoice)
}

// Delete removes an invoice and puts its quantities back in stock
// @Summary      Delete invoice
// @Description  Admin only
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Invoice deleted successfully")
}

// UpdateStatus sets the invoice status without touching stock
// @Summary      Update invoice status
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                          true  "Invoice ID"
// @Param        payload  body      service.UpdateStatusRequest  true  "Status"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, invoice)
}

// MarkPaid records the payment of an invoice
// @Summary      Pay invoice
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                      true  "Invoice ID"
// @Param        payload  body      service.MarkPaidRequest  false  "Payment"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	// the body is optional
	var req service.MarkPaidRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoiceService.MarkPaid(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, invoice)
}

// Stats summarises invoice counts and revenue
// @Summary      Invoice summary
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        startDate  query     string  false  "From (YYYY-MM-DD)"
// @Param        endDate    query     string  false  "To (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=model.InvoiceSummary}
// @Failure      400  {object}  response.Response
// @Router       /api/invoices/stats/summary [get]
func (h *InvoiceHandler) Stats(c *gin.Context) {
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	summary, err := h.invoiceService.Stats(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}

package handler

import (
	"medshop/internal/middleware"
	"medshop/internal/repository"
	"medshop/internal/service"
	"medshop/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type BillHandler struct {
	billService service.BillService
}

func NewBillHandler(billService service.BillService) *BillHandler {
	return &BillHandler{billService: billService}
}

func (h *BillHandler) RegisterRoutes(api *gin.RouterGroup) {
	bills := api.Group("/bills")
	{
		bills.GET("", h.List)
		bills.POST("", h.Create)
		bills.GET("/stats/summary", h.Stats)
		bills.GET("/:id", h.Get)
		bills.PUT("/:id", h.Update)
		bills.DELETE("/:id", h.Delete)
	}
}

// List returns operating bills, newest first
// @Summary      List bills
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        status      query     string  false  "pending, paid or overdue"
// @Param        category    query     string  false  "Expense category"
// @Param        startDate   query     string  false  "Bill date from (YYYY-MM-DD)"
// @Param        endDate     query     string  false  "Bill date to (YYYY-MM-DD)"
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Items per page"
// @Success      200  {object}  response.Response{data=[]model.Bill}
// @Failure      400  {object}  response.Response
// @Router       /api/bills [get]
func (h *BillHandler) List(c *gin.Context) {
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	filter := repository.BillFilter{
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		StartDate: period.Start,
		EndDate:   period.End,
	}
	bills, err := h.billService.List(c.Request.Context(), filter, pagination.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bills)
}

// Get returns one bill
// @Summary      Get bill
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Bill ID"
// @Success      200  {object}  response.Response{data=model.Bill}
// @Failure      404  {object}  response.Response
// @Router       /api/bills/{id} [get]
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	bill, err := h.billService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bill)
}

// Create records a bill
// @Summary      Create bill
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BillRequest  true  "Bill"
// @Success      201      {object}  response.Response{data=model.Bill}
// @Failure      400      {object}  response.Response
// @Router       /api/bills [post]
func (h *BillHandler) Create(c *gin.Context) {
	var req service.BillRequest
	if !bindJSON(c, &req) {
		return
	}
	bill, err := h.billService.Create(c.Request.Context(), middleware.UserIDPtr(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, bill)
}

// Update replaces a bill's details
// @Summary      Update bill
// @Tags         bills
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Bill ID"
// @Param        payload  body      service.BillRequest  true  "Bill"
// @Success      200      {object}  response.Response{data=model.Bill}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/bills/{id} [put]
func (h *BillHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.BillRequest
	if !bindJSON(c, &req) {
		return
	}
	bill, err := h.billService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, bill)
}

// Delete removes a bill
// @Summary      Delete bill
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Bill ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/bills/{id} [delete]
func (h *BillHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.billService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Bill deleted successfully")
}

// Stats summarises bill counts and amounts
// @Summary      Bill summary
// @Tags         bills
// @Security     BearerAuth
// @Produce      json
// @Param        startDate  query     string  false  "From (YYYY-MM-DD)"
// @Param        endDate    query     string  false  "To (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=model.BillSummary}
// @Failure      400  {object}  response.Response
// @Router       /api/bills/stats/summary [get]
func (h *BillHandler) Stats(c *gin.Context) {
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	summary, err := h.billService.Stats(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, summary)
}

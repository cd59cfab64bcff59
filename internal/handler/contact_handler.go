package handler

import (
	"medshop/internal/middleware"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/service"
	"medshop/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// contactFilter reads the search term and the kind column (customer_type or status)
func contactFilter(c *gin.Context, kindParams ...string) repository.ContactFilter {
	return repository.ContactFilter{
		Search: c.Query("search"),
		Kind:   queryValue(c, kindParams...),
	}
}

type CustomerHandler struct {
	customerService service.CustomerService
}

func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) RegisterRoutes(api *gin.RouterGroup) {
	customers := api.Group("/customers")
	{
		customers.GET("", h.List)
		customers.POST("", h.Create)
		customers.GET("/:id", h.Get)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
	}
}

// List returns customers
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        search         query     string  false  "Name, email or phone"
// @Param        type           query     string  false  "retail, wholesale or insurance"
// @Param        page           query     int     false  "Page number"
// @Param        limit          query     int     false  "Items per page"
// @Success      200  {object}  response.Response{data=[]model.Customer}
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.customerService.List(c.Request.Context(), contactFilter(c, "type", "customer_type"), pagination.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, customers)
}

// Get returns one customer
// @Summary      Get customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  response.Response{data=model.Customer}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	customer, err := h.customerService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, customer)
}

// Create adds a customer
// @Summary      Create customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CustomerRequest  true  "Customer"
// @Success      201      {object}  response.Response{data=model.Customer}
// @Failure      400      {object}  response.Response
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req service.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, customer)
}

// Update replaces a customer's details
// @Summary      Update customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                      true  "Customer ID"
// @Param        payload  body      service.CustomerRequest  true  "Customer"
// @Success      200      {object}  response.Response{data=model.Customer}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.CustomerRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, customer)
}

// Delete removes a customer without invoices
// @Summary      Delete customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Customer deleted successfully")
}

type WholesalerHandler struct {
	wholesalerService service.WholesalerService
}

func NewWholesalerHandler(wholesalerService service.WholesalerService) *WholesalerHandler {
	return &WholesalerHandler{wholesalerService: wholesalerService}
}

func (h *WholesalerHandler) RegisterRoutes(api *gin.RouterGroup) {
	wholesalers := api.Group("/wholesalers")
	{
		wholesalers.GET("", h.List)
		wholesalers.POST("", h.Create)
		wholesalers.GET("/:id", h.Get)
		wholesalers.PUT("/:id", h.Update)
		wholesalers.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.Delete)
	}
}

// List returns wholesalers
// @Summary      List wholesalers
// @Tags         wholesalers
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Name, contact person, email or phone"
// @Param        status  query     string  false  "active or inactive"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Success      200  {object}  response.Response{data=[]model.Wholesaler}
// @Router       /api/wholesalers [get]
func (h *WholesalerHandler) List(c *gin.Context) {
	wholesalers, err := h.wholesalerService.List(c.Request.Context(), contactFilter(c, "status"), pagination.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, wholesalers)
}

// Get returns one wholesaler
// @Summary      Get wholesaler
// @Tags         wholesalers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Wholesaler ID"
// @Success      200  {object}  response.Response{data=model.Wholesaler}
// @Failure      404  {object}  response.Response
// @Router       /api/wholesalers/{id} [get]
func (h *WholesalerHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	wholesaler, err := h.wholesalerService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, wholesaler)
}

// Create adds a wholesaler
// @Summary      Create wholesaler
// @Tags         wholesalers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.WholesalerRequest  true  "Wholesaler"
// @Success      201      {object}  response.Response{data=model.Wholesaler}
// @Failure      400      {object}  response.Response
// @Router       /api/wholesalers [post]
func (h *WholesalerHandler) Create(c *gin.Context) {
	var req service.WholesalerRequest
	if !bindJSON(c, &req) {
		return
	}
	wholesaler, err := h.wholesalerService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, wholesaler)
}

// Update replaces a wholesaler's details
// @Summary      Update wholesaler
// @Tags         wholesalers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Wholesaler ID"
// @Param        payload  body      service.WholesalerRequest  true  "Wholesaler"
// @Success      200      {object}  response.Response{data=model.Wholesaler}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/wholesalers/{id} [put]
func (h *WholesalerHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.WholesalerRequest
	if !bindJSON(c, &req) {
		return
	}
	wholesaler, err := h.wholesalerService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, wholesaler)
}

// Delete removes a wholesaler without purchase orders
// @Summary      Delete wholesaler
// @Tags         wholesalers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Wholesaler ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/wholesalers/{id} [delete]
func (h *WholesalerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.wholesalerService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Wholesaler deleted successfully")
}

type StaffHandler struct {
	staffService service.StaffService
}

func NewStaffHandler(staffService service.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

func (h *StaffHandler) RegisterRoutes(api *gin.RouterGroup) {
	staff := api.Group("/staff")
	admin := middleware.RequireRole(model.RoleAdmin)
	{
		staff.GET("", h.List)
		staff.GET("/:id", h.Get)
		staff.POST("", admin, h.Create)
		staff.PUT("/:id", admin, h.Update)
		staff.DELETE("/:id", admin, h.Delete)
	}
}

// List returns staff members
// @Summary      List staff
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Name, email, phone or position"
// @Param        status  query     string  false  "active or inactive"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Items per page"
// @Success      200  {object}  response.Response{data=[]model.Staff}
// @Router       /api/staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	staff, err := h.staffService.List(c.Request.Context(), contactFilter(c, "status"), pagination.Parse(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, staff)
}

// Get returns one staff member
// @Summary      Get staff member
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Staff ID"
// @Success      200  {object}  response.Response{data=model.Staff}
// @Failure      404  {object}  response.Response
// @Router       /api/staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	member, err := h.staffService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, member)
}

// Create adds a staff member
// @Summary      Create staff member
// @Description  Admin only
// @Tags         staff
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.StaffRequest  true  "Staff member"
// @Success      201      {object}  response.Response{data=model.Staff}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req service.StaffRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.staffService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, member)
}

// Update replaces a staff member's details
// @Summary      Update staff member
// @Description  Admin only
// @Tags         staff
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true  "Staff ID"
// @Param        payload  body      service.StaffRequest  true  "Staff member"
// @Success      200      {object}  response.Response{data=model.Staff}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.StaffRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.staffService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, member)
}

// Delete removes a staff member
// @Summary      Delete staff member
// @Description  Admin only
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Staff ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/staff/{id} [delete]
func (h *StaffHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.staffService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Staff member deleted successfully")
}

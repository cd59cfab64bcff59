package handler

import (
	"medshop/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(api *gin.RouterGroup) {
	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/stats", h.Stats)
		dashboard.GET("/recent-activity", h.RecentActivity)
	}
}

// Stats aggregates the dashboard figures
// @Summary      Dashboard statistics
// @Description  Inventory and customer totals, plus sales and purchases within the optional date range
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Param        startDate  query     string  false  "From (YYYY-MM-DD)"
// @Param        endDate    query     string  false  "To (YYYY-MM-DD)"
// @Success      200  {object}  response.Response{data=model.DashboardStats}
// @Failure      400  {object}  response.Response
// @Router       /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	period, ok := queryPeriod(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetStats(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

// RecentActivity lists the latest invoices and purchase orders
// @Summary      Recent activity
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Activity}
// @Router       /api/dashboard/recent-activity [get]
func (h *DashboardHandler) RecentActivity(c *gin.Context) {
	activity, err := h.dashboardService.RecentActivity(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, activity)
}

package handler

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"medshop/internal/apperror"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/validation"
	"medshop/pkg/logger"
	"medshop/pkg/response"

	"github.com/gin-gonic/gin"
)

// exposeErrorDetail adds the error cause to responses (development only)
var exposeErrorDetail atomic.Bool

// SetErrorDetail toggles the "error" field of failed responses
func SetErrorDetail(enabled bool) {
	exposeErrorDetail.Store(enabled)
}

// respondError maps err onto its HTTP status and writes the error envelope
func respondError(c *gin.Context, err error) {
	status := apperror.GetHTTPStatus(err)
	message := "Internal server error"
	if appErr, ok := apperror.AsAppError(err); ok {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	_ = c.Error(err)

	if exposeErrorDetail.Load() {
		c.JSON(status, response.ErrorWithDetail(message, err.Error()))
		return
	}
	c.JSON(status, response.Error(message))
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, response.Success(data))
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, response.Success(data))
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, response.SuccessMessage(message))
}

// bindJSON decodes the body into req, answering 400 itself on failure
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, apperror.NewValidation(validation.Describe(err)))
		return false
	}
	return true
}

// parseID reads the :id path parameter
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperror.NewValidationf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return uint(id), true
}

// queryValue returns the first non-blank value among names. The first name is
// the documented parameter and the rest are accepted spellings of it.
func queryValue(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			return v
		}
	}
	return ""
}

// queryUint reads an optional numeric query parameter
func queryUint(c *gin.Context, names ...string) (*uint, bool) {
	raw := queryValue(c, names...)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondError(c, apperror.NewValidationf("%s must be a positive integer", names[0]))
		return nil, false
	}
	id := uint(v)
	return &id, true
}

// queryDate reads an optional YYYY-MM-DD query parameter
func queryDate(c *gin.Context, names ...string) (*model.Date, bool) {
	raw := queryValue(c, names...)
	if raw == "" {
		return nil, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		respondError(c, apperror.NewValidationf("%s must be a date (YYYY-MM-DD)", names[0]))
		return nil, false
	}
	return &d, true
}

// queryPeriod reads the optional startDate/endDate pair
func queryPeriod(c *gin.Context) (repository.DateRange, bool) {
	start, ok := queryDate(c, "startDate", "start_date")
	if !ok {
		return repository.DateRange{}, false
	}
	end, ok := queryDate(c, "endDate", "end_date")
	if !ok {
		return repository.DateRange{}, false
	}
	return repository.DateRange{Start: start, End: end}, true
}

func queryBool(c *gin.Context, names ...string) bool {
	v, _ := strconv.ParseBool(queryValue(c, names...))
	return v
}

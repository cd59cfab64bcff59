package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 500
	MinLimit     = 1
)

// Params holds validated pagination parameters. A zero Limit means "no pagination".
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Enabled reports whether the caller asked for a page
func (p Params) Enabled() bool {
	return p.Limit > 0
}

// Parse extracts page/limit from query parameters. Lists are unpaginated
// unless at least one of them is present.
func Parse(c *gin.Context) Params {
	pageStr, hasPage := c.GetQuery("page")
	limitStr, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return Params{}
	}

	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)
	return New(page, limit)
}

// New clamps page and limit into the allowed range
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

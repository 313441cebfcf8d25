package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is the page window requested by the client.
type Params struct {
	Page  int
	Limit int
	Skip  int
}

// Metadata describes the full result set a page was cut from.
type Metadata struct {
	TotalItems  int64 `json:"totalItems"`
	CurrentPage int   `json:"currentPage"`
	PageSize    int   `json:"pageSize"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// Extract reads page and limit from the query string, clamping both to
// sane bounds. Unparseable values fall back to the defaults.
func Extract(c *gin.Context) Params {
	page := queryInt(c, "page", DefaultPage)
	limit := queryInt(c, "limit", DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

// MetadataFrom derives page metadata for a list response.
func MetadataFrom(total int64, params Params) Metadata {
	pages := 0
	if params.Limit > 0 && total > 0 {
		pages = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}

	return Metadata{
		TotalItems:  total,
		CurrentPage: params.Page,
		PageSize:    params.Limit,
		TotalPages:  pages,
		HasNextPage: params.Page < pages,
		HasPrevPage: params.Page > 1,
	}
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

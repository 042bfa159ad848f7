package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// a window into an ordered list
type Params struct {
	Limit  int
	Offset int
}

// describes the window returned alongside a page of items
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func NewMeta(params Params, total int) Meta {
	return Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+params.Limit < total,
	}
}

// reads limit and offset query parameters, clamping them into range.
// malformed values fall back to the defaults
func FromQuery(c *gin.Context, defaultLimit, maxLimit int) Params {
	limit, _ := strconv.Atoi(c.Query("limit"))   //nolint:errcheck // zero selects the default
	offset, _ := strconv.Atoi(c.Query("offset")) //nolint:errcheck // zero is the first page

	if limit <= 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// returns the items inside the window; never nil
func Slice[T any](items []T, params Params) []T {
	if params.Offset >= len(items) {
		return []T{}
	}

	end := min(params.Offset+params.Limit, len(items))

	return items[params.Offset:end]
}

package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
)

// bindFilter builds a repository filter from the common list query parameters
func bindFilter(c *gin.Context) (shared.Filter, error) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, err
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter, nil
}

// uuidQuery parses an optional uuid query parameter into the filter map
func uuidQuery(c *gin.Context, filter *shared.Filter, param, key string) error {
	value := c.Query(param)
	if value == "" {
		return nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return err
	}
	filter.Filters[key] = id
	return nil
}

// optionalWarehouseQuery parses an optional warehouse_id query parameter
func optionalWarehouseQuery(c *gin.Context) (*uuid.UUID, error) {
	value := c.Query("warehouse_id")
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseDateTime parses RFC3339 or plain dates
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-api/pkg/pagination"
)

const dateLayout = "2006-01-02"

// uuidParam parses a path parameter, answering 400 when it is malformed
func uuidParam(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// sessionAndRow parses the :id and :row_id parameters of a row endpoint
func sessionAndRow(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, ok := uuidParam(c, "id", "session")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	rowID, ok := uuidParam(c, "row_id", "row")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return id, rowID, true
}

// parseDay reads an optional YYYY-MM-DD value
func parseDay(c *gin.Context, field, value string) (*time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		response.BadRequest(c, "Invalid "+field+" date, expected YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}

func pageParams(page, perPage int) *pagination.PaginationParams {
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

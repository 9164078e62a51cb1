package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Page size bounds for the /user and /role listings.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100
)

// ParsePagination reads the offset and limit query parameters. A missing
// offset is 0 and a missing limit is DefaultPageLimit.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageLimit)))
	if err != nil || limit < 1 || limit > MaxPageLimit {
		return 0, 0, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxPageLimit)
	}

	return offset, limit, nil
}

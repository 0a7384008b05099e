// Package httpx holds small helpers shared by the HTTP handlers.
package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/FleetDesk/FleetDesk/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// WriteError maps a taxonomy error onto a JSON error response. Storage
// faults are reported without driver details.
func WriteError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	msg := err.Error()
	var se *apperrors.StorageError
	if errors.As(err, &se) {
		if se.Transient {
			msg = "temporary storage failure, retry later"
		} else {
			msg = "internal error"
		}
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": msg})
}

// PageParams reads page/page_size query parameters with sane bounds.
func PageParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 20
	}
	return page, size
}

// Unauthorized writes the standard missing-principal response.
func Unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
}

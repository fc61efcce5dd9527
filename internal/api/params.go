package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID parses a positive path parameter that fits a Postgres INTEGER
// column. On failure it writes a 400 response and returns false.
func ParamID(c *gin.Context, name, label string) (int, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + label})
		return 0, false
	}
	return int(id), true
}

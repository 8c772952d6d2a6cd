// Package handlers holds the gin handlers of the site, its JSON API and the
// health probes.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaratCompare/pkg/errors"
)

const maxListLimit = 1200

// ErrorResponse is the JSON body of a failed API request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeJSON writes data with status.
func writeJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// writeError maps err to its HTTP status. Server-side failures are masked.
func writeError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	resp := ErrorResponse{Code: errors.GetCode(err).String()}
	var ae *errors.AppError
	if errors.As(err, &ae) {
		resp.Message, resp.Detail = ae.Message, ae.Detail
	}
	if status >= http.StatusInternalServerError || resp.Message == "" {
		resp = ErrorResponse{Code: errors.ErrCodeInternal.String(), Message: "internal server error"}
	}
	c.AbortWithStatusJSON(status, resp)
}

// parseLimit reads ?limit=, clamped to [1, maxListLimit]. Absent or invalid
// values yield def.
func parseLimit(c *gin.Context, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

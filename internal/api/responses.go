package api

import (
	"net/http"

	"github.com/Puru-codes/parking-lot/internal/apperr"
	"github.com/Puru-codes/parking-lot/internal/logger"
	"github.com/Puru-codes/parking-lot/internal/metrics"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status      string `json:"status" example:"ok"`
	Database    string `json:"database" example:"ok"`
	EmailQueue  string `json:"email_queue" example:"ok"`
	QueueLength int64  `json:"queue_length" example:"0"`
}

// RespondError writes err with the status of its kind. Internal errors are
// logged and replaced by fallback so storage details never reach the client.
func RespondError(c *gin.Context, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	metrics.RecordError(apperr.Kind(err))
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(status, ErrorResponse{Error: fallback})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

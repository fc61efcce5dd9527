package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Puru-codes/parking-lot/internal/api"
	"github.com/Puru-codes/parking-lot/internal/email"
	"github.com/Puru-codes/parking-lot/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthTimeout = 2 * time.Second

type dbPinger interface {
	PingContext(ctx context.Context) error
}

type queueChecker interface {
	Ping(ctx context.Context) error
	QueueLength(ctx context.Context) int64
}

// @Summary      Health check
// @Description  Reports database and email queue reachability. A broken database yields 503; a broken queue only degrades.
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Failure      503 {object} api.HealthResponse
// @Router       /health [get]
func Health(db dbPinger, queue queueChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		resp := api.HealthResponse{Status: "ok", Database: "ok", EmailQueue: "ok"}
		status := http.StatusOK

		if err := db.PingContext(ctx); err != nil {
			logger.Error("health: database unreachable", "error", err)
			resp.Status = "unavailable"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}

		if err := queue.Ping(ctx); err != nil {
			logger.Warn("health: email queue unreachable", "error", err)
			resp.EmailQueue = "unreachable"
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		} else {
			resp.QueueLength = queue.QueueLength(ctx)
		}

		c.JSON(status, resp)
	}
}

type emailSender interface {
	Send(ctx context.Context, kind, to, name, subject, body string) error
}

// @Summary      Queue a test email
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        email query string true "Recipient email"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/test-email [get]
func TestEmail(sender emailSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		to := c.Query("email")
		if to == "" {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "email parameter required"})
			return
		}

		if err := sender.Send(c.Request.Context(), email.KindTest, to, "Parking Admin", "Test email from Parking", "Email delivery is working."); err != nil {
			api.RespondError(c, err, "Failed to queue email")
			return
		}

		c.JSON(http.StatusOK, api.MessageResponse{Message: "Email queued successfully"})
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

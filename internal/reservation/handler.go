package reservation

import (
	"net/http"
	"time"

	"github.com/Puru-codes/parking-lot/internal/api"
	"github.com/Puru-codes/parking-lot/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Book a spot
// @Description  Occupies the given spot for the current user. 409 if the spot is not available.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        spotID path int true "Spot ID"
// @Param        request body reservation.BookRequest true "Vehicle"
// @Success      201 {object} reservation.Reservation
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /spots/{spotID}/book [post]
func (h *Handler) BookSpot(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	spotID, ok := api.ParamID(c, "spotID", "spot ID")
	if !ok {
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	res, err := h.service.BookSpot(c.Request.Context(), userID, spotID, req.VehicleNumber)
	if err != nil {
		api.RespondError(c, err, "Failed to book spot")
		return
	}

	c.JSON(http.StatusCreated, res)
}

// @Summary      Reserve any spot in a lot
// @Description  Allocates the lowest-numbered available spot. 409 when the lot is full.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        lotID path int true "Lot ID"
// @Param        request body reservation.BookRequest true "Vehicle"
// @Success      201 {object} reservation.Reservation
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /lots/{lotID}/reserve [post]
func (h *Handler) BookInLot(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	lotID, ok := api.ParamID(c, "lotID", "lot ID")
	if !ok {
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	res, err := h.service.BookInLot(c.Request.Context(), userID, lotID, req.VehicleNumber)
	if err != nil {
		api.RespondError(c, err, "Failed to reserve spot")
		return
	}

	c.JSON(http.StatusCreated, res)
}

// @Summary      Release a spot
// @Description  Closes the caller's reservation and returns the charge
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        reservationID path int true "Reservation ID"
// @Success      200 {object} reservation.Receipt
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /reservations/{reservationID}/release [post]
func (h *Handler) ReleaseSpot(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	reservationID, ok := api.ParamID(c, "reservationID", "reservation ID")
	if !ok {
		return
	}

	receipt, err := h.service.ReleaseSpot(c.Request.Context(), userID, reservationID)
	if err != nil {
		api.RespondError(c, err, "Failed to release spot")
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// @Summary      My reservations
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} reservation.Details
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /reservations [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	list, err := h.service.GetUserReservations(c.Request.Context(), userID)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch reservations")
		return
	}

	c.JSON(http.StatusOK, list)
}

// @Summary      Reservations of a lot
// @Tags         admin,reservations
// @Produce      json
// @Security     BearerAuth
// @Param        lotID path int true "Lot ID"
// @Success      200 {array} reservation.Details
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/lots/{lotID}/reservations [get]
func (h *Handler) ListByLot(c *gin.Context) {
	lotID, ok := api.ParamID(c, "lotID", "lot ID")
	if !ok {
		return
	}

	list, err := h.service.GetLotReservations(c.Request.Context(), lotID)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch reservations")
		return
	}

	c.JSON(http.StatusOK, list)
}

// @Summary      Reservation analytics
// @Description  Admin-only: reservations started in [from, to) with releases and revenue, grouped by day or lot
// @Tags         admin,reservations
// @Produce      json
// @Security     BearerAuth
// @Param        group_by query string false "day or lot" default(day)
// @Param        from     query string true  "Start (RFC3339)"
// @Param        to       query string true  "End (RFC3339)"
// @Success      200 {object} reservation.Analytics
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/analytics/reservations [get]
func (h *Handler) GetAnalytics(c *gin.Context) {
	groupBy := c.DefaultQuery("group_by", GroupByDay)
	fromStr := c.Query("from")
	toStr := c.Query("to")

	if fromStr == "" || toStr == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from and to query params are required"})
		return
	}

	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid from format, use RFC3339"})
		return
	}

	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid to format, use RFC3339"})
		return
	}

	stats, err := h.service.Analytics(c.Request.Context(), groupBy, from, to)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch analytics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

package lot

import (
	"net/http"

	"github.com/Puru-codes/parking-lot/internal/api"

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

// @Summary      Create a parking lot
// @Description  Admin-only: creates the lot and spots 1..N, all available
// @Tags         admin,lots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body lot.CreateLotRequest true "Lot payload"
// @Success      201 {object} lot.ParkingLot
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/lots [post]
func (h *Handler) CreateLot(c *gin.Context) {
	var req CreateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	lot, err := h.service.CreateLot(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err, "Failed to create parking lot")
		return
	}

	c.JSON(http.StatusCreated, lot)
}

// @Summary      List parking lots
// @Description  Lots with available and occupied spot counts. q filters by name, address or pin code.
// @Tags         lots,admin
// @Produce      json
// @Security     BearerAuth
// @Param        q query string false "Search text"
// @Success      200 {array} lot.LotWithOccupancy
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /lots [get]
// @Router       /admin/lots [get]
func (h *Handler) ListLots(c *gin.Context) {
	lots, err := h.service.ListLots(c.Request.Context(), c.Query("q"))
	if err != nil {
		api.RespondError(c, err, "Failed to fetch parking lots")
		return
	}

	c.JSON(http.StatusOK, lots)
}

// @Summary      Update a parking lot
// @Description  Admin-only: name, price, address and pin code. Capacity cannot change.
// @Tags         admin,lots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        lotID path int true "Lot ID"
// @Param        request body lot.UpdateLotRequest true "Lot payload"
// @Success      200 {object} lot.ParkingLot
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/lots/{lotID} [put]
func (h *Handler) UpdateLot(c *gin.Context) {
	lotID, ok := api.ParamID(c, "lotID", "lot ID")
	if !ok {
		return
	}

	var req UpdateLotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.RespondBindError(c, err)
		return
	}

	lot, err := h.service.UpdateLot(c.Request.Context(), lotID, req)
	if err != nil {
		api.RespondError(c, err, "Failed to update parking lot")
		return
	}

	c.JSON(http.StatusOK, lot)
}

// @Summary      Delete a parking lot
// @Description  Admin-only: fails with 409 while any spot is occupied
// @Tags         admin,lots
// @Produce      json
// @Security     BearerAuth
// @Param        lotID path int true "Lot ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/lots/{lotID} [delete]
func (h *Handler) DeleteLot(c *gin.Context) {
	lotID, ok := api.ParamID(c, "lotID", "lot ID")
	if !ok {
		return
	}

	if err := h.service.DeleteLot(c.Request.Context(), lotID); err != nil {
		api.RespondError(c, err, "Failed to delete parking lot")
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Parking lot deleted"})
}

// @Summary      List spots of a lot
// @Tags         lots,admin
// @Produce      json
// @Security     BearerAuth
// @Param        lotID path int true "Lot ID"
// @Success      200 {array} lot.ParkingSpot
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /lots/{lotID}/spots [get]
// @Router       /admin/lots/{lotID}/spots [get]
func (h *Handler) ListSpots(c *gin.Context) {
	lotID, ok := api.ParamID(c, "lotID", "lot ID")
	if !ok {
		return
	}

	spots, err := h.service.ListSpots(c.Request.Context(), lotID)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch spots")
		return
	}

	c.JSON(http.StatusOK, spots)
}

// @Summary      Spot detail
// @Description  Admin-only: the spot and its open reservation, if any
// @Tags         admin,lots
// @Produce      json
// @Security     BearerAuth
// @Param        spotID path int true "Spot ID"
// @Success      200 {object} lot.SpotDetail
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/spots/{spotID} [get]
func (h *Handler) GetSpot(c *gin.Context) {
	spotID, ok := api.ParamID(c, "spotID", "spot ID")
	if !ok {
		return
	}

	spot, err := h.service.GetSpot(c.Request.Context(), spotID)
	if err != nil {
		api.RespondError(c, err, "Failed to fetch spot")
		return
	}

	c.JSON(http.StatusOK, spot)
}

// @Summary      Delete a spot
// @Description  Admin-only: fails with 409 while the spot is occupied
// @Tags         admin,lots
// @Produce      json
// @Security     BearerAuth
// @Param        spotID path int true "Spot ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/spots/{spotID} [delete]
func (h *Handler) DeleteSpot(c *gin.Context) {
	spotID, ok := api.ParamID(c, "spotID", "spot ID")
	if !ok {
		return
	}

	if err := h.service.DeleteSpot(c.Request.Context(), spotID); err != nil {
		api.RespondError(c, err, "Failed to delete spot")
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Spot deleted"})
}

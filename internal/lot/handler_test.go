package lot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateLot(ctx context.Context, req CreateLotRequest) (*ParkingLot, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ParkingLot), args.Error(1)
}

func (m *MockService) UpdateLot(ctx context.Context, id int, req UpdateLotRequest) (*ParkingLot, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ParkingLot), args.Error(1)
}

func (m *MockService) DeleteLot(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockService) DeleteSpot(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockService) GetLot(ctx context.Context, id int) (*ParkingLot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ParkingLot), args.Error(1)
}

func (m *MockService) ListLots(ctx context.Context, search string) ([]LotWithOccupancy, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]LotWithOccupancy), args.Error(1)
}

func (m *MockService) ListSpots(ctx context.Context, lotID int) ([]ParkingSpot, error) {
	args := m.Called(ctx, lotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ParkingSpot), args.Error(1)
}

func (m *MockService) GetSpot(ctx context.Context, spotID int) (*SpotDetail, error) {
	args := m.Called(ctx, spotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SpotDetail), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	r := gin.New()
	r.GET("/lots", h.ListLots)
	r.GET("/lots/:lotID/spots", h.ListSpots)
	r.POST("/admin/lots", h.CreateLot)
	r.PUT("/admin/lots/:lotID", h.UpdateLot)
	r.DELETE("/admin/lots/:lotID", h.DeleteLot)
	r.GET("/admin/spots/:spotID", h.GetSpot)
	r.DELETE("/admin/spots/:spotID", h.DeleteSpot)
	return r
}

func perform(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateLot(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockService)
		svc.On("CreateLot", mock.Anything, sampleCreate()).Return(&ParkingLot{ID: 1, PrimeLocationName: "Central", MaximumNumberOfSpots: 3}, nil)

		w := perform(setupRouter(svc), http.MethodPost, "/admin/lots", sampleCreate())
		require.Equal(t, http.StatusCreated, w.Code)

		var lot ParkingLot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lot))
		assert.Equal(t, 3, lot.MaximumNumberOfSpots)
	})

	t.Run("zero capacity rejected by binding", func(t *testing.T) {
		svc := new(MockService)
		req := sampleCreate()
		req.MaximumNumberOfSpots = 0

		w := perform(setupRouter(svc), http.MethodPost, "/admin/lots", req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "CreateLot", mock.Anything, mock.Anything)
	})

	t.Run("duplicate name", func(t *testing.T) {
		svc := new(MockService)
		svc.On("CreateLot", mock.Anything, mock.Anything).Return(nil, ErrLotNameTaken)

		w := perform(setupRouter(svc), http.MethodPost, "/admin/lots", sampleCreate())
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandler_ListLots_PassesQuery(t *testing.T) {
	svc := new(MockService)
	svc.On("ListLots", mock.Anything, "central").Return([]LotWithOccupancy{
		{ParkingLot: ParkingLot{ID: 1}, AvailableSpots: 2, OccupiedSpots: 1},
	}, nil)

	w := perform(setupRouter(svc), http.MethodGet, "/lots?q=central", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available_spots":2`)
	svc.AssertExpectations(t)
}

func TestHandler_UpdateLot_BadID(t *testing.T) {
	svc := new(MockService)
	w := perform(setupRouter(svc), http.MethodPut, "/admin/lots/abc", UpdateLotRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_DeleteLot(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"deleted", nil, http.StatusOK},
		{"occupied", ErrLotOccupied, http.StatusConflict},
		{"missing", ErrLotNotFound, http.StatusNotFound},
		{"history kept", ErrHistoryPresent, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("DeleteLot", mock.Anything, 3).Return(tt.err)

			w := perform(setupRouter(svc), http.MethodDelete, "/admin/lots/3", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandler_DeleteSpot_Occupied(t *testing.T) {
	svc := new(MockService)
	svc.On("DeleteSpot", mock.Anything, 8).Return(ErrSpotOccupied)

	w := perform(setupRouter(svc), http.MethodDelete, "/admin/spots/8", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "spot is occupied")
}

func TestHandler_GetSpot(t *testing.T) {
	svc := new(MockService)
	svc.On("GetSpot", mock.Anything, 8).Return(&SpotDetail{
		ParkingSpot: ParkingSpot{ID: 8, Status: SpotAvailable},
		LotName:     "Central",
	}, nil)

	w := perform(setupRouter(svc), http.MethodGet, "/admin/spots/8", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "occupant")
	assert.Contains(t, w.Body.String(), `"status":"A"`)
}

func TestHandler_ListSpots_NotFound(t *testing.T) {
	svc := new(MockService)
	svc.On("ListSpots", mock.Anything, 5).Return(nil, ErrLotNotFound)

	w := perform(setupRouter(svc), http.MethodGet, "/lots/5/spots", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CreateLot_CapacityOverLimit(t *testing.T) {
	svc := new(MockService)
	req := sampleCreate()
	req.MaximumNumberOfSpots = 3000000000

	w := perform(setupRouter(svc), http.MethodPost, "/admin/lots", req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at most 10000")
	svc.AssertNotCalled(t, "CreateLot", mock.Anything, mock.Anything)
}

func TestHandler_DeleteLot_IDBeyondInteger(t *testing.T) {
	svc := new(MockService)

	w := perform(setupRouter(svc), http.MethodDelete, "/admin/lots/3000000000", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "DeleteLot", mock.Anything, mock.Anything)
}

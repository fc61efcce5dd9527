package lot

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Puru-codes/parking-lot/internal/apperr"
	"github.com/Puru-codes/parking-lot/internal/billing"
	"github.com/Puru-codes/parking-lot/internal/config"
	"github.com/Puru-codes/parking-lot/internal/logger"
	"github.com/Puru-codes/parking-lot/internal/metrics"
)

var (
	ErrInvalidName     = fmt.Errorf("%w: prime location name is required", apperr.ErrValidation)
	ErrInvalidPrice    = fmt.Errorf("%w: price must be a positive number", apperr.ErrValidation)
	ErrInvalidAddress  = fmt.Errorf("%w: address and pin code are required", apperr.ErrValidation)
	ErrInvalidCapacity = fmt.Errorf("%w: maximum number of spots must be between 1 and %d", apperr.ErrValidation, MaxSpotsPerLot)
)

// MaxSpotsPerLot bounds the spots provisioned by a single CreateLot.
const MaxSpotsPerLot = 10000

type Service interface {
	CreateLot(ctx context.Context, req CreateLotRequest) (*ParkingLot, error)
	UpdateLot(ctx context.Context, id int, req UpdateLotRequest) (*ParkingLot, error)
	DeleteLot(ctx context.Context, id int) error
	DeleteSpot(ctx context.Context, id int) error
	GetLot(ctx context.Context, id int) (*ParkingLot, error)
	ListLots(ctx context.Context, search string) ([]LotWithOccupancy, error)
	ListSpots(ctx context.Context, lotID int) ([]ParkingSpot, error)
	GetSpot(ctx context.Context, spotID int) (*SpotDetail, error)
}

type service struct {
	repo           Repository
	cascadeHistory bool
	billing        billing.Policy
	now            func() time.Time
}

// NewService builds the lot service. historyPolicy is one of
// config.HistoryCascade or config.HistoryRestrict.
func NewService(repo Repository, historyPolicy string, policy billing.Policy) Service {
	return &service{
		repo:           repo,
		cascadeHistory: historyPolicy != config.HistoryRestrict,
		billing:        policy,
		now:            time.Now,
	}
}

func (s *service) CreateLot(ctx context.Context, req CreateLotRequest) (*ParkingLot, error) {
	req.PrimeLocationName = strings.TrimSpace(req.PrimeLocationName)
	req.Address = strings.TrimSpace(req.Address)
	req.PinCode = strings.TrimSpace(req.PinCode)

	if err := validateFields(req.PrimeLocationName, req.Address, req.PinCode, req.Price); err != nil {
		return nil, err
	}
	if req.MaximumNumberOfSpots <= 0 || req.MaximumNumberOfSpots > MaxSpotsPerLot {
		return nil, ErrInvalidCapacity
	}

	lot, err := s.repo.CreateLot(ctx, req)
	if err != nil {
		return nil, err
	}

	metrics.RecordLotCreated()
	logger.Info("parking lot created",
		"lot_id", lot.ID,
		"name", lot.PrimeLocationName,
		"spots", lot.MaximumNumberOfSpots,
	)
	return lot, nil
}

func (s *service) UpdateLot(ctx context.Context, id int, req UpdateLotRequest) (*ParkingLot, error) {
	req.PrimeLocationName = strings.TrimSpace(req.PrimeLocationName)
	req.Address = strings.TrimSpace(req.Address)
	req.PinCode = strings.TrimSpace(req.PinCode)

	if err := validateFields(req.PrimeLocationName, req.Address, req.PinCode, req.Price); err != nil {
		return nil, err
	}

	return s.repo.UpdateLot(ctx, id, req)
}

func (s *service) DeleteLot(ctx context.Context, id int) error {
	if err := s.repo.DeleteLot(ctx, id, s.cascadeHistory); err != nil {
		return err
	}

	metrics.RecordLotDeleted()
	logger.Info("parking lot deleted", "lot_id", id, "cascade_history", s.cascadeHistory)
	return nil
}

func (s *service) DeleteSpot(ctx context.Context, id int) error {
	if err := s.repo.DeleteSpot(ctx, id, s.cascadeHistory); err != nil {
		return err
	}

	metrics.RecordSpotDeleted()
	logger.Info("parking spot deleted", "spot_id", id, "cascade_history", s.cascadeHistory)
	return nil
}

func (s *service) GetLot(ctx context.Context, id int) (*ParkingLot, error) {
	return s.repo.GetLot(ctx, id)
}

func (s *service) ListLots(ctx context.Context, search string) ([]LotWithOccupancy, error) {
	return s.repo.ListLots(ctx, search)
}

func (s *service) ListSpots(ctx context.Context, lotID int) ([]ParkingSpot, error) {
	if _, err := s.repo.GetLot(ctx, lotID); err != nil {
		return nil, err
	}

	return s.repo.ListSpots(ctx, lotID)
}

// GetSpot returns the spot and, when occupied, the running cost of its open
// reservation.
func (s *service) GetSpot(ctx context.Context, spotID int) (*SpotDetail, error) {
	detail, err := s.repo.GetSpotDetail(ctx, spotID)
	if err != nil {
		return nil, err
	}

	if o := detail.Occupant; o != nil {
		now := s.now()
		o.EstimatedCost = s.billing.ComputeCost(o.ParkingTimestamp, now, detail.Price)
		o.Duration = billing.FormatDuration(billing.Elapsed(o.ParkingTimestamp, now))
	}

	return detail, nil
}

func validateFields(name, address, pinCode string, price float64) error {
	if name == "" {
		return ErrInvalidName
	}
	if address == "" || pinCode == "" {
		return ErrInvalidAddress
	}
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return ErrInvalidPrice
	}
	return nil
}

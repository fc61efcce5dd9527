package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Puru-codes/parking-lot/internal/apperr"
	"github.com/Puru-codes/parking-lot/internal/billing"
	"github.com/Puru-codes/parking-lot/internal/logger"
	"github.com/Puru-codes/parking-lot/internal/metrics"
)

const maxVehicleNumberLength = 20

var (
	ErrInvalidVehicle = fmt.Errorf("%w: vehicle number must be 1-%d characters", apperr.ErrValidation, maxVehicleNumberLength)
	ErrNotOwner       = fmt.Errorf("%w: reservation belongs to another user", apperr.ErrUnauthorized)
)

// Notifier delivers booking and release messages to the driver.
type Notifier interface {
	SendBookingConfirmation(ctx context.Context, to, name, lotName string, spotNumber int, vehicleNumber string, at time.Time) error
	SendReleaseReceipt(ctx context.Context, to, name, lotName string, spotNumber int, vehicleNumber, duration string, cost float64) error
}

type Service interface {
	BookSpot(ctx context.Context, userID, spotID int, vehicleNumber string) (*Reservation, error)
	BookInLot(ctx context.Context, userID, lotID int, vehicleNumber string) (*Reservation, error)
	ReleaseSpot(ctx context.Context, userID, reservationID int) (*Receipt, error)
	GetUserReservations(ctx context.Context, userID int) ([]Details, error)
	GetLotReservations(ctx context.Context, lotID int) ([]Details, error)
	Analytics(ctx context.Context, groupBy string, from, to time.Time) (*Analytics, error)
}

type service struct {
	repo     Repository
	billing  billing.Policy
	notifier Notifier
	now      func() time.Time
}

// NewService wires the reservation service. notifier may be nil.
func NewService(repo Repository, policy billing.Policy, notifier Notifier) Service {
	return &service{
		repo:     repo,
		billing:  policy,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *service) BookSpot(ctx context.Context, userID, spotID int, vehicleNumber string) (*Reservation, error) {
	vehicleNumber, err := normalizeVehicle(vehicleNumber)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.Book(ctx, userID, spotID, vehicleNumber, s.now())
	s.recordBooking(err)
	if err != nil {
		return nil, err
	}

	logger.Info("spot booked",
		"reservation_id", res.ID,
		"spot_id", res.SpotID,
		"user_id", userID,
	)
	s.notifyBooked(ctx, res)
	return res, nil
}

func (s *service) BookInLot(ctx context.Context, userID, lotID int, vehicleNumber string) (*Reservation, error) {
	vehicleNumber, err := normalizeVehicle(vehicleNumber)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.BookInLot(ctx, userID, lotID, vehicleNumber, s.now())
	s.recordBooking(err)
	if err != nil {
		return nil, err
	}

	logger.Info("spot allocated in lot",
		"reservation_id", res.ID,
		"lot_id", lotID,
		"spot_id", res.SpotID,
		"user_id", userID,
	)
	s.notifyBooked(ctx, res)
	return res, nil
}

// ReleaseSpot closes the caller's open reservation and charges for the
// elapsed time at the lot's hourly price.
func (s *service) ReleaseSpot(ctx context.Context, userID, reservationID int) (*Receipt, error) {
	details, err := s.repo.GetDetails(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	if details.UserID != userID {
		return nil, ErrNotOwner
	}
	if !details.Open() {
		return nil, ErrAlreadyReleased
	}

	now := s.now()
	cost := s.billing.ComputeCost(details.ParkingTimestamp, now, details.Price)

	res, err := s.repo.Close(ctx, reservationID, now, cost)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{
		Reservation: *res,
		LotName:     details.LotName,
		SpotNumber:  details.SpotNumber,
		Price:       details.Price,
		Cost:        cost,
		Duration:    billing.FormatDuration(billing.Elapsed(res.ParkingTimestamp, now)),
	}

	metrics.RecordRelease(cost)
	logger.Info("spot released",
		"reservation_id", res.ID,
		"spot_id", res.SpotID,
		"user_id", userID,
		"cost", cost,
	)

	if s.notifier != nil && details.Email.Valid {
		err := s.notifier.SendReleaseReceipt(ctx, details.Email.String, displayName(details),
			receipt.LotName, receipt.SpotNumber, res.VehicleNumber, receipt.Duration, cost)
		if err != nil {
			logger.Warn("failed to queue release receipt", "reservation_id", res.ID, "error", err)
		}
	}

	return receipt, nil
}

func (s *service) GetUserReservations(ctx context.Context, userID int) ([]Details, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetLotReservations(ctx context.Context, lotID int) ([]Details, error) {
	return s.repo.ListByLot(ctx, lotID)
}

func (s *service) recordBooking(err error) {
	switch {
	case err == nil:
		metrics.RecordReservation(metrics.OutcomeBooked)
	case errors.Is(err, ErrLotFull):
		metrics.RecordReservation(metrics.OutcomeLotFull)
	case errors.Is(err, apperr.ErrConflict):
		metrics.RecordReservation(metrics.OutcomeConflict)
	default:
		metrics.RecordReservation(metrics.OutcomeFailed)
	}
}

// notifyBooked is best effort; the booking stands even if the message
// cannot be queued.
func (s *service) notifyBooked(ctx context.Context, res *Reservation) {
	if s.notifier == nil {
		return
	}

	details, err := s.repo.GetDetails(ctx, res.ID)
	if err != nil {
		logger.Warn("failed to load reservation for confirmation", "reservation_id", res.ID, "error", err)
		return
	}
	if !details.Email.Valid {
		return
	}

	err = s.notifier.SendBookingConfirmation(ctx, details.Email.String, displayName(details),
		details.LotName, details.SpotNumber, res.VehicleNumber, res.ParkingTimestamp)
	if err != nil {
		logger.Warn("failed to queue booking confirmation", "reservation_id", res.ID, "error", err)
	}
}

func normalizeVehicle(v string) (string, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" || utf8.RuneCountInString(v) > maxVehicleNumberLength {
		return "", ErrInvalidVehicle
	}
	return v, nil
}

func displayName(d *Details) string {
	if d.Name.Valid && d.Name.String != "" {
		return d.Name.String
	}
	return d.Username
}

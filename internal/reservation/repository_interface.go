package reservation

import (
	"context"
	"time"
)

type Repository interface {
	Book(ctx context.Context, userID, spotID int, vehicleNumber string, at time.Time) (*Reservation, error)
	BookInLot(ctx context.Context, userID, lotID int, vehicleNumber string, at time.Time) (*Reservation, error)
	GetDetails(ctx context.Context, id int) (*Details, error)
	Close(ctx context.Context, id int, leftAt time.Time, cost float64) (*Reservation, error)
	ListByUser(ctx context.Context, userID int) ([]Details, error)
	ListByLot(ctx context.Context, lotID int) ([]Details, error)
	StatsByDay(ctx context.Context, from, to time.Time) ([]DayStats, error)
	StatsByLot(ctx context.Context, from, to time.Time) ([]LotStats, error)
}

package lot

import "context"

type Repository interface {
	CreateLot(ctx context.Context, req CreateLotRequest) (*ParkingLot, error)
	UpdateLot(ctx context.Context, id int, req UpdateLotRequest) (*ParkingLot, error)
	DeleteLot(ctx context.Context, id int, cascadeHistory bool) error
	DeleteSpot(ctx context.Context, id int, cascadeHistory bool) error
	GetLot(ctx context.Context, id int) (*ParkingLot, error)
	ListLots(ctx context.Context, search string) ([]LotWithOccupancy, error)
	ListSpots(ctx context.Context, lotID int) ([]ParkingSpot, error)
	GetSpotDetail(ctx context.Context, spotID int) (*SpotDetail, error)
}

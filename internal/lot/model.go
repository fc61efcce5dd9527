package lot

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type SpotStatus string

const (
	SpotAvailable SpotStatus = "A"
	SpotOccupied  SpotStatus = "O"
)

type ParkingLot struct {
	ID                   int       `db:"id" json:"id"`
	PrimeLocationName    string    `db:"prime_location_name" json:"prime_location_name"`
	Price                float64   `db:"price" json:"price"`
	Address              string    `db:"address" json:"address"`
	PinCode              string    `db:"pin_code" json:"pin_code"`
	MaximumNumberOfSpots int       `db:"maximum_number_of_spots" json:"maximum_number_of_spots"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// LotWithOccupancy is a lot together with its current spot counts.
type LotWithOccupancy struct {
	ParkingLot
	AvailableSpots int `db:"available_spots" json:"available_spots"`
	OccupiedSpots  int `db:"occupied_spots" json:"occupied_spots"`
}

type ParkingSpot struct {
	ID         int        `db:"id" json:"id"`
	LotID      int        `db:"lot_id" json:"lot_id"`
	SpotNumber int        `db:"spot_number" json:"spot_number"`
	Status     SpotStatus `db:"status" json:"status"`
}

func (s ParkingSpot) Available() bool {
	return s.Status == SpotAvailable
}

// Occupant describes the open reservation holding a spot.
type Occupant struct {
	ReservationID    int       `json:"reservation_id"`
	UserID           int       `json:"user_id"`
	Username         string    `json:"username"`
	VehicleNumber    string    `json:"vehicle_number"`
	ParkingTimestamp time.Time `json:"parking_timestamp"`
	EstimatedCost    float64   `json:"estimated_cost"`
	Duration         string    `json:"duration"`
}

type SpotDetail struct {
	ParkingSpot
	LotName  string    `json:"lot_name"`
	Price    float64   `json:"price"`
	Occupant *Occupant `json:"occupant,omitempty"`
}

// spotDetailRow is the flat join row behind SpotDetail.
type spotDetailRow struct {
	ParkingSpot
	LotName          string      `db:"prime_location_name"`
	Price            float64     `db:"price"`
	ReservationID    null.Int    `db:"reservation_id"`
	UserID           null.Int    `db:"user_id"`
	Username         null.String `db:"username"`
	VehicleNumber    null.String `db:"vehicle_number"`
	ParkingTimestamp null.Time   `db:"parking_timestamp"`
}

type CreateLotRequest struct {
	PrimeLocationName    string  `json:"prime_location_name" binding:"required,max=100"`
	Price                float64 `json:"price" binding:"required,gt=0"`
	Address              string  `json:"address" binding:"required,max=200"`
	PinCode              string  `json:"pin_code" binding:"required,max=10"`
	MaximumNumberOfSpots int     `json:"maximum_number_of_spots" binding:"required,gt=0,max=10000"`
}

// UpdateLotRequest carries the editable lot fields. Capacity is fixed at
// creation.
type UpdateLotRequest struct {
	PrimeLocationName string  `json:"prime_location_name" binding:"required,max=100"`
	Price             float64 `json:"price" binding:"required,gt=0"`
	Address           string  `json:"address" binding:"required,max=200"`
	PinCode           string  `json:"pin_code" binding:"required,max=10"`
}

package reservation

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type Reservation struct {
	ID               int        `db:"id" json:"id"`
	UserID           int        `db:"user_id" json:"user_id"`
	SpotID           int        `db:"spot_id" json:"spot_id"`
	VehicleNumber    string     `db:"vehicle_number" json:"vehicle_number"`
	ParkingTimestamp time.Time  `db:"parking_timestamp" json:"parking_timestamp"`
	LeavingTimestamp null.Time  `db:"leaving_timestamp" json:"leaving_timestamp"`
	ParkingCost      null.Float `db:"parking_cost" json:"parking_cost"`
}

// Open reports whether the reservation still holds its spot.
func (r Reservation) Open() bool {
	return !r.LeavingTimestamp.Valid
}

// Details is a reservation joined with its spot, lot and owner.
type Details struct {
	Reservation
	SpotNumber int         `db:"spot_number" json:"spot_number"`
	LotID      int         `db:"lot_id" json:"lot_id"`
	LotName    string      `db:"prime_location_name" json:"lot_name"`
	Price      float64     `db:"price" json:"price"`
	Username   string      `db:"username" json:"username"`
	Name       null.String `db:"name" json:"-"`
	Email      null.String `db:"email" json:"-"`
}

// Receipt is returned when a spot is released.
type Receipt struct {
	Reservation Reservation `json:"reservation"`
	LotName     string      `json:"lot_name"`
	SpotNumber  int         `json:"spot_number"`
	Price       float64     `json:"price"`
	Cost        float64     `json:"cost"`
	Duration    string      `json:"duration"`
}

type BookRequest struct {
	VehicleNumber string `json:"vehicle_number" binding:"required,max=20"`
}

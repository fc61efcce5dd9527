package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Puru-codes/parking-lot/internal/apperr"
	"github.com/Puru-codes/parking-lot/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSpotNotFound        = fmt.Errorf("%w: parking spot not found", apperr.ErrNotFound)
	ErrLotNotFound         = fmt.Errorf("%w: parking lot not found", apperr.ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("%w: reservation not found", apperr.ErrNotFound)
	ErrSpotOccupied        = fmt.Errorf("%w: spot is not available", apperr.ErrConflict)
	ErrLotFull             = fmt.Errorf("%w: no available spots in this lot", apperr.ErrConflict)
	ErrAlreadyReleased     = fmt.Errorf("%w: reservation already released", apperr.ErrAlreadyClosed)
)

const reservationColumns = `id, user_id, spot_id, vehicle_number, parking_timestamp, leaving_timestamp, parking_cost`

const detailsSelect = `
	SELECT r.id, r.user_id, r.spot_id, r.vehicle_number, r.parking_timestamp,
	       r.leaving_timestamp, r.parking_cost,
	       s.spot_number, s.lot_id, l.prime_location_name, l.price,
	       u.username, u.name, u.email
	FROM reservations r
	JOIN parking_spots s ON s.id = r.spot_id
	JOIN parking_lots l ON l.id = s.lot_id
	JOIN users u ON u.id = r.user_id`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Book occupies the spot and opens a reservation in one transaction. The
// status flip only succeeds while the spot is available, so of several
// concurrent bookings exactly one wins.
func (r *repository) Book(ctx context.Context, userID, spotID int, vehicleNumber string, at time.Time) (*Reservation, error) {
	var res *Reservation
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := occupy(ctx, tx, spotID); err != nil {
			return err
		}

		var err error
		res, err = insertReservation(ctx, tx, userID, spotID, vehicleNumber, at)
		return err
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// BookInLot takes the lowest-numbered available spot of the lot. Rows locked
// by concurrent bookings are skipped rather than waited on.
func (r *repository) BookInLot(ctx context.Context, userID, lotID int, vehicleNumber string, at time.Time) (*Reservation, error) {
	var res *Reservation
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var spotID int
		err := tx.GetContext(ctx, &spotID, `
			SELECT id FROM parking_spots
			WHERE lot_id = $1 AND status = 'A'
			ORDER BY spot_number
			LIMIT 1
			FOR UPDATE SKIP LOCKED`, lotID)
		if errors.Is(err, sql.ErrNoRows) {
			exists, err := db.Exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM parking_lots WHERE id = $1)`, lotID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrLotNotFound
			}
			return ErrLotFull
		}
		if err != nil {
			return err
		}

		if err := occupy(ctx, tx, spotID); err != nil {
			return err
		}

		res, err = insertReservation(ctx, tx, userID, spotID, vehicleNumber, at)
		return err
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func occupy(ctx context.Context, tx *sqlx.Tx, spotID int) error {
	result, err := tx.ExecContext(ctx, `UPDATE parking_spots SET status = 'O' WHERE id = $1 AND status = 'A'`, spotID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}

	exists, err := db.Exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM parking_spots WHERE id = $1)`, spotID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSpotNotFound
	}
	return ErrSpotOccupied
}

func insertReservation(ctx context.Context, tx *sqlx.Tx, userID, spotID int, vehicleNumber string, at time.Time) (*Reservation, error) {
	query := `
		INSERT INTO reservations (user_id, spot_id, vehicle_number, parking_timestamp)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + reservationColumns

	var res Reservation
	if err := tx.GetContext(ctx, &res, query, userID, spotID, vehicleNumber, at); err != nil {
		if db.IsUniqueViolation(err, "reservations_open_spot_key") {
			return nil, ErrSpotOccupied
		}
		return nil, err
	}

	return &res, nil
}

func (r *repository) GetDetails(ctx context.Context, id int) (*Details, error) {
	query := detailsSelect + ` WHERE r.id = $1`

	var d Details
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	return &d, nil
}

// Close ends an open reservation and frees its spot. Only one caller can
// close a given reservation; the rest get ErrAlreadyReleased.
func (r *repository) Close(ctx context.Context, id int, leftAt time.Time, cost float64) (*Reservation, error) {
	var res Reservation
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE reservations
			SET leaving_timestamp = $2, parking_cost = $3
			WHERE id = $1 AND leaving_timestamp IS NULL
			RETURNING ` + reservationColumns

		if err := tx.GetContext(ctx, &res, query, id, leftAt, cost); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrAlreadyReleased
			}
			return err
		}

		_, err := tx.ExecContext(ctx, `UPDATE parking_spots SET status = 'A' WHERE id = $1`, res.SpotID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &res, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Details, error) {
	query := detailsSelect + `
		WHERE r.user_id = $1
		ORDER BY r.parking_timestamp DESC, r.id DESC`

	list := []Details{}
	if err := r.db.SelectContext(ctx, &list, query, userID); err != nil {
		return nil, err
	}

	return list, nil
}

func (r *repository) ListByLot(ctx context.Context, lotID int) ([]Details, error) {
	exists, err := db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM parking_lots WHERE id = $1)`, lotID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrLotNotFound
	}

	query := detailsSelect + `
		WHERE s.lot_id = $1
		ORDER BY r.parking_timestamp DESC, r.id DESC`

	list := []Details{}
	if err := r.db.SelectContext(ctx, &list, query, lotID); err != nil {
		return nil, err
	}

	return list, nil
}

package lot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Puru-codes/parking-lot/internal/apperr"
	"github.com/Puru-codes/parking-lot/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrLotNotFound    = fmt.Errorf("%w: parking lot not found", apperr.ErrNotFound)
	ErrSpotNotFound   = fmt.Errorf("%w: parking spot not found", apperr.ErrNotFound)
	ErrLotNameTaken   = fmt.Errorf("%w: a lot with this location name already exists", apperr.ErrConflict)
	ErrLotOccupied    = fmt.Errorf("%w: lot has occupied spots", apperr.ErrConflict)
	ErrSpotOccupied   = fmt.Errorf("%w: spot is occupied", apperr.ErrConflict)
	ErrHistoryPresent = fmt.Errorf("%w: reservation history exists", apperr.ErrConflict)
)

const lotColumns = `id, prime_location_name, price, address, pin_code, maximum_number_of_spots, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateLot inserts the lot and its spots 1..N in one transaction.
func (r *repository) CreateLot(ctx context.Context, req CreateLotRequest) (*ParkingLot, error) {
	var lot ParkingLot
	err := db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO parking_lots (prime_location_name, price, address, pin_code, maximum_number_of_spots)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + lotColumns

		err := tx.GetContext(ctx, &lot, query,
			req.PrimeLocationName,
			req.Price,
			req.Address,
			req.PinCode,
			req.MaximumNumberOfSpots,
		)
		if err != nil {
			return translate(err, ErrLotNotFound)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO parking_spots (lot_id, spot_number, status)
			SELECT $1, g, 'A' FROM generate_series(1, $2) AS g`,
			lot.ID, lot.MaximumNumberOfSpots,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &lot, nil
}

func (r *repository) UpdateLot(ctx context.Context, id int, req UpdateLotRequest) (*ParkingLot, error) {
	query := `
		UPDATE parking_lots
		SET prime_location_name = $2, price = $3, address = $4, pin_code = $5
		WHERE id = $1
		RETURNING ` + lotColumns

	var lot ParkingLot
	err := r.db.GetContext(ctx, &lot, query, id, req.PrimeLocationName, req.Price, req.Address, req.PinCode)
	if err != nil {
		return nil, translate(err, ErrLotNotFound)
	}

	return &lot, nil
}

// DeleteLot removes the lot and its spots. Spot rows are locked while the
// occupancy check runs so no booking can slip in between.
func (r *repository) DeleteLot(ctx context.Context, id int, cascadeHistory bool) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var lockedID int
		if err := tx.GetContext(ctx, &lockedID, `SELECT id FROM parking_lots WHERE id = $1 FOR UPDATE`, id); err != nil {
			return translate(err, ErrLotNotFound)
		}

		var statuses []SpotStatus
		if err := tx.SelectContext(ctx, &statuses, `SELECT status FROM parking_spots WHERE lot_id = $1 FOR UPDATE`, id); err != nil {
			return err
		}
		for _, s := range statuses {
			if s == SpotOccupied {
				return ErrLotOccupied
			}
		}

		err := clearHistory(ctx, tx, `spot_id IN (SELECT id FROM parking_spots WHERE lot_id = $1)`, id, cascadeHistory)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = $1`, id)
		return err
	})
}

func (r *repository) DeleteSpot(ctx context.Context, id int, cascadeHistory bool) error {
	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var status SpotStatus
		if err := tx.GetContext(ctx, &status, `SELECT status FROM parking_spots WHERE id = $1 FOR UPDATE`, id); err != nil {
			return translate(err, ErrSpotNotFound)
		}
		if status == SpotOccupied {
			return ErrSpotOccupied
		}

		if err := clearHistory(ctx, tx, `spot_id = $1`, id, cascadeHistory); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE id = $1`, id)
		return err
	})
}

// clearHistory deletes the reservations matched by cond, or refuses with
// ErrHistoryPresent when history must be kept.
func clearHistory(ctx context.Context, tx *sqlx.Tx, cond string, arg int, cascade bool) error {
	if cascade {
		_, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE `+cond, arg)
		return err
	}

	exists, err := db.Exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE `+cond+`)`, arg)
	if err != nil {
		return err
	}
	if exists {
		return ErrHistoryPresent
	}
	return nil
}

func (r *repository) GetLot(ctx context.Context, id int) (*ParkingLot, error) {
	query := `SELECT ` + lotColumns + ` FROM parking_lots WHERE id = $1`

	var lot ParkingLot
	if err := r.db.GetContext(ctx, &lot, query, id); err != nil {
		return nil, translate(err, ErrLotNotFound)
	}

	return &lot, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListLots returns all lots with their spot counts. A non-empty search
// matches name, address or pin code case-insensitively.
func (r *repository) ListLots(ctx context.Context, search string) ([]LotWithOccupancy, error) {
	query := `
		SELECT l.id, l.prime_location_name, l.price, l.address, l.pin_code,
		       l.maximum_number_of_spots, l.created_at,
		       COUNT(s.id) FILTER (WHERE s.status = 'A') AS available_spots,
		       COUNT(s.id) FILTER (WHERE s.status = 'O') AS occupied_spots
		FROM parking_lots l
		LEFT JOIN parking_spots s ON s.lot_id = l.id`
	args := []interface{}{}

	if search = strings.TrimSpace(search); search != "" {
		query += `
		WHERE l.prime_location_name ILIKE $1 OR l.address ILIKE $1 OR l.pin_code ILIKE $1`
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
	}

	query += `
		GROUP BY l.id
		ORDER BY l.id`

	lots := []LotWithOccupancy{}
	if err := r.db.SelectContext(ctx, &lots, query, args...); err != nil {
		return nil, err
	}

	return lots, nil
}

func (r *repository) ListSpots(ctx context.Context, lotID int) ([]ParkingSpot, error) {
	query := `
		SELECT id, lot_id, spot_number, status
		FROM parking_spots
		WHERE lot_id = $1
		ORDER BY spot_number`

	spots := []ParkingSpot{}
	if err := r.db.SelectContext(ctx, &spots, query, lotID); err != nil {
		return nil, err
	}

	return spots, nil
}

func (r *repository) GetSpotDetail(ctx context.Context, spotID int) (*SpotDetail, error) {
	query := `
		SELECT s.id, s.lot_id, s.spot_number, s.status,
		       l.prime_location_name, l.price,
		       r.id AS reservation_id, r.user_id, u.username,
		       r.vehicle_number, r.parking_timestamp
		FROM parking_spots s
		JOIN parking_lots l ON l.id = s.lot_id
		LEFT JOIN reservations r ON r.spot_id = s.id AND r.leaving_timestamp IS NULL
		LEFT JOIN users u ON u.id = r.user_id
		WHERE s.id = $1`

	var row spotDetailRow
	if err := r.db.GetContext(ctx, &row, query, spotID); err != nil {
		return nil, translate(err, ErrSpotNotFound)
	}

	detail := &SpotDetail{
		ParkingSpot: row.ParkingSpot,
		LotName:     row.LotName,
		Price:       row.Price,
	}
	if row.ReservationID.Valid {
		detail.Occupant = &Occupant{
			ReservationID:    int(row.ReservationID.Int64),
			UserID:           int(row.UserID.Int64),
			Username:         row.Username.String,
			VehicleNumber:    row.VehicleNumber.String,
			ParkingTimestamp: row.ParkingTimestamp.Time,
		}
	}

	return detail, nil
}

func translate(err error, notFound error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case db.IsUniqueViolation(err, "parking_lots_prime_location_name_key"):
		return ErrLotNameTaken
	default:
		return err
	}
}

package reservation

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resCols = []string{"id", "user_id", "spot_id", "vehicle_number", "parking_timestamp", "leaving_timestamp", "parking_cost"}

var detailCols = append(append([]string{}, resCols...),
	"spot_number", "lot_id", "prime_location_name", "price", "username", "name", "email")

const (
	occupyQuery       = "UPDATE parking_spots SET status = 'O' WHERE id = $1 AND status = 'A'"
	spotExistsQuery   = "SELECT EXISTS(SELECT 1 FROM parking_spots WHERE id = $1)"
	lotExistsQuery    = "SELECT EXISTS(SELECT 1 FROM parking_lots WHERE id = $1)"
	insertQuery       = "INSERT INTO reservations (user_id, spot_id, vehicle_number, parking_timestamp) VALUES ($1, $2, $3, $4)"
	pickSpotQuery     = "SELECT id FROM parking_spots WHERE lot_id = $1 AND status = 'A' ORDER BY spot_number LIMIT 1 FOR UPDATE SKIP LOCKED"
	closeQuery        = "UPDATE reservations SET leaving_timestamp = $2, parking_cost = $3 WHERE id = $1 AND leaving_timestamp IS NULL"
	freeSpotQuery     = "UPDATE parking_spots SET status = 'A' WHERE id = $1"
	testVehicleNumber = "KA01AB1234"
)

func setupReservationMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

func TestBook_Success(t *testing.T) {
	repo, mock, close := setupReservationMock(t)
	defer close()

	at := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(occupyQuery)).WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
		WithArgs(3, 5, testVehicleNumber, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(resCols).AddRow(1, 3, 5, testVehicleNumber, at, nil, nil))
	mock.ExpectCommit()

	res, err := repo.Book(context.Background(), 3, 5, testVehicleNumber, at)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ID)
	assert.True(t, res.Open())
	assert.False(t, res.ParkingCost.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBook_SpotNotAvailable(t *testing.T) {
	tests := []struct {
		name    string
		exists  bool
		wantErr error
	}{
		{"occupied", true, ErrSpotOccupied},
		{"missing", false, ErrSpotNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, close := setupReservationMock(t)
			defer close()

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(occupyQuery)).WithArgs(5).
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectQuery(regexp.QuoteMeta(spotExistsQuery)).WithArgs(5).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(tt.exists))
			mock.ExpectRollback()

			_, err := repo.Book(context.Background(), 3, 5, testVehicleNumber, time.Now())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBook_OpenReservationIndexBackstop(t *testing.T) {
	repo, mock, close := setupReservationMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(occupyQuery)).WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "reservations_open_spot_key"})
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), 3, 5, testVehicleNumber, time.Now())
	assert.ErrorIs(t, err, ErrSpotOccupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookInLot(t *testing.T) {
	t.Run("takes lowest free spot", func(t *testing.T) {
		repo, mock, close := setupReservationMock(t)
		defer close()

		at := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(pickSpotQuery)).WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
		mock.ExpectExec(regexp.QuoteMeta(occupyQuery)).WithArgs(12).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
			WithArgs(3, 12, testVehicleNumber, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(resCols).AddRow(2, 3, 12, testVehicleNumber, at, nil, nil))
		mock.ExpectCommit()

		res, err := repo.BookInLot(context.Background(), 3, 1, testVehicleNumber, at)
		require.NoError(t, err)
		assert.Equal(t, 12, res.SpotID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("full lot", func(t *testing.T) {
		repo, mock, close := setupReservationMock(t)
		defer close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(pickSpotQuery)).WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(regexp.QuoteMeta(lotExistsQuery)).WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectRollback()

		_, err := repo.BookInLot(context.Background(), 3, 1, testVehicleNumber, time.Now())
		assert.ErrorIs(t, err, ErrLotFull)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown lot", func(t *testing.T) {
		repo, mock, close := setupReservationMock(t)
		defer close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(pickSpotQuery)).WithArgs(9).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectQuery(regexp.QuoteMeta(lotExistsQuery)).WithArgs(9).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		_, err := repo.BookInLot(context.Background(), 3, 9, testVehicleNumber, time.Now())
		assert.ErrorIs(t, err, ErrLotNotFound)
	})
}

func TestClose(t *testing.T) {
	parked := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	left := parked.Add(2 * time.Hour)

	t.Run("frees spot", func(t *testing.T) {
		repo, mock, close := setupReservationMock(t)
		defer close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(closeQuery)).
			WithArgs(7, sqlmock.AnyArg(), 20.0).
			WillReturnRows(sqlmock.NewRows(resCols).AddRow(7, 3, 5, testVehicleNumber, parked, left, 20.0))
		mock.ExpectExec(regexp.QuoteMeta(freeSpotQuery)).WithArgs(5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		res, err := repo.Close(context.Background(), 7, left, 20.0)
		require.NoError(t, err)
		assert.False(t, res.Open())
		assert.Equal(t, 20.0, res.ParkingCost.Float64)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already closed", func(t *testing.T) {
		repo, mock, close := setupReservationMock(t)
		defer close()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(closeQuery)).
			WithArgs(7, sqlmock.AnyArg(), 20.0).
			WillReturnRows(sqlmock.NewRows(resCols))
		mock.ExpectRollback()

		_, err := repo.Close(context.Background(), 7, left, 20.0)
		assert.ErrorIs(t, err, ErrAlreadyReleased)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetDetails(t *testing.T) {
	repo, mock, close := setupReservationMock(t)
	defer close()

	parked := time.Now().Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN users u ON u.id = r.user_id WHERE r.id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(detailCols).
			AddRow(7, 3, 5, testVehicleNumber, parked, nil, nil, 2, 1, "Central", 10.0, "driver", nil, "d@example.com"))

	d, err := repo.GetDetails(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Central", d.LotName)
	assert.Equal(t, 10.0, d.Price)
	assert.True(t, d.Open())
	assert.Equal(t, "d@example.com", d.Email.String)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.id = $1")).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows(detailCols))

	_, err = repo.GetDetails(context.Background(), 8)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestListByLot(t *testing.T) {
	t.Run("unknown lot", func(t *testing.T) {
		repo, mock, close := setupReservationMock(t)
		defer close()

		mock.ExpectQuery(regexp.QuoteMeta(lotExistsQuery)).WithArgs(4).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.ListByLot(context.Background(), 4)
		assert.ErrorIs(t, err, ErrLotNotFound)
	})

	t.Run("history", func(t *testing.T) {
		repo, mock, close := setupReservationMock(t)
		defer close()

		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta(lotExistsQuery)).WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(regexp.QuoteMeta("WHERE s.lot_id = $1 ORDER BY r.parking_timestamp DESC, r.id DESC")).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(detailCols).
				AddRow(2, 3, 5, "B", now, nil, nil, 2, 1, "Central", 10.0, "driver", nil, nil).
				AddRow(1, 4, 6, "A", now.Add(-3*time.Hour), now.Add(-time.Hour), 20.0, 3, 1, "Central", 10.0, "other", nil, nil))

		list, err := repo.ListByLot(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, list[0].Open())
		assert.False(t, list[1].Open())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListByUser_Empty(t *testing.T) {
	repo, mock, close := setupReservationMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.user_id = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(detailCols))

	list, err := repo.ListByUser(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

package reservation

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Puru-codes/parking-lot/internal/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	statsFrom = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	statsTo   = time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)
)

func TestStatsByDay(t *testing.T) {
	repo, sqlMock, close := setupReservationMock(t)
	defer close()

	sqlMock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE parking_timestamp >= $1 AND parking_timestamp < $2 GROUP BY bucket")).
		WithArgs(statsFrom, statsTo).
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "started", "released", "revenue"}).
			AddRow("2024-03-01", 3, 2, 35.5).
			AddRow("2024-03-02", 1, 0, 0))

	stats, err := repo.StatsByDay(context.Background(), statsFrom, statsTo)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, DayStats{Bucket: "2024-03-01", Started: 3, Released: 2, Revenue: 35.5}, stats[0])
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestStatsByLot_KeepsEmptyLots(t *testing.T) {
	repo, sqlMock, close := setupReservationMock(t)
	defer close()

	sqlMock.ExpectQuery(regexp.QuoteMeta("FROM parking_lots l LEFT JOIN parking_spots s ON s.lot_id = l.id LEFT JOIN reservations r")).
		WithArgs(statsFrom, statsTo).
		WillReturnRows(sqlmock.NewRows([]string{"lot_id", "lot_name", "started", "released", "revenue"}).
			AddRow(1, "Central", 4, 4, 80.0).
			AddRow(2, "Harbour", 0, 0, 0))

	stats, err := repo.StatsByLot(context.Background(), statsFrom, statsTo)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Harbour", stats[1].LotName)
	assert.Zero(t, stats[1].Started)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestStatsByDay_Empty(t *testing.T) {
	repo, sqlMock, close := setupReservationMock(t)
	defer close()

	sqlMock.ExpectQuery("FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"bucket", "started", "released", "revenue"}))

	stats, err := repo.StatsByDay(context.Background(), statsFrom, statsTo)
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Empty(t, stats)
}

func TestService_Analytics(t *testing.T) {
	t.Run("by day sums revenue", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("StatsByDay", mock.Anything, statsFrom, statsTo).Return([]DayStats{
			{Bucket: "2024-03-01", Started: 2, Released: 2, Revenue: 10.126},
			{Bucket: "2024-03-02", Started: 1, Released: 1, Revenue: 5.5},
		}, nil)

		got, err := newTestService(repo, nil, t0).Analytics(context.Background(), GroupByDay, statsFrom, statsTo)
		require.NoError(t, err)
		assert.Equal(t, GroupByDay, got.GroupBy)
		assert.Equal(t, 10.13, got.Days[0].Revenue)
		assert.InDelta(t, 15.63, got.Revenue, 1e-9)
		assert.Nil(t, got.Lots)
	})

	t.Run("by lot", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("StatsByLot", mock.Anything, statsFrom, statsTo).Return([]LotStats{{LotID: 1, LotName: "Central", Started: 4, Released: 3, Revenue: 60}}, nil)

		got, err := newTestService(repo, nil, t0).Analytics(context.Background(), GroupByLot, statsFrom, statsTo)
		require.NoError(t, err)
		require.Len(t, got.Lots, 1)
		assert.Equal(t, 60.0, got.Revenue)
	})

	t.Run("unknown grouping", func(t *testing.T) {
		repo := new(MockRepository)
		_, err := newTestService(repo, nil, t0).Analytics(context.Background(), "week", statsFrom, statsTo)
		assert.ErrorIs(t, err, ErrInvalidGroupBy)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("inverted range", func(t *testing.T) {
		repo := new(MockRepository)
		_, err := newTestService(repo, nil, t0).Analytics(context.Background(), GroupByDay, statsTo, statsFrom)
		assert.ErrorIs(t, err, ErrInvalidRange)
		repo.AssertNotCalled(t, "StatsByDay", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("StatsByLot", mock.Anything, statsFrom, statsTo).Return(nil, errors.New("pq: timeout"))

		_, err := newTestService(repo, nil, t0).Analytics(context.Background(), GroupByLot, statsFrom, statsTo)
		assert.Error(t, err)
	})
}

package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/Puru-codes/parking-lot/internal/apperr"
)

const (
	GroupByDay = "day"
	GroupByLot = "lot"
)

var (
	ErrInvalidGroupBy = fmt.Errorf("%w: group_by must be %q or %q", apperr.ErrValidation, GroupByDay, GroupByLot)
	ErrInvalidRange   = fmt.Errorf("%w: to must be after from", apperr.ErrValidation)
)

// DayStats counts reservations by the day they started.
type DayStats struct {
	Bucket   string  `db:"bucket" json:"bucket"`
	Started  int     `db:"started" json:"started"`
	Released int     `db:"released" json:"released"`
	Revenue  float64 `db:"revenue" json:"revenue"`
}

type LotStats struct {
	LotID    int     `db:"lot_id" json:"lot_id"`
	LotName  string  `db:"lot_name" json:"lot_name"`
	Started  int     `db:"started" json:"started"`
	Released int     `db:"released" json:"released"`
	Revenue  float64 `db:"revenue" json:"revenue"`
}

type Analytics struct {
	GroupBy string     `json:"group_by"`
	From    time.Time  `json:"from"`
	To      time.Time  `json:"to"`
	Revenue float64    `json:"revenue"`
	Days    []DayStats `json:"days,omitempty"`
	Lots    []LotStats `json:"lots,omitempty"`
}

func (r *repository) StatsByDay(ctx context.Context, from, to time.Time) ([]DayStats, error) {
	query := `
		SELECT to_char(date_trunc('day', parking_timestamp), 'YYYY-MM-DD') AS bucket,
		       COUNT(*) AS started,
		       COUNT(*) FILTER (WHERE leaving_timestamp IS NOT NULL) AS released,
		       COALESCE(SUM(parking_cost), 0) AS revenue
		FROM reservations
		WHERE parking_timestamp >= $1 AND parking_timestamp < $2
		GROUP BY bucket
		ORDER BY bucket`

	stats := []DayStats{}
	if err := r.db.SelectContext(ctx, &stats, query, from, to); err != nil {
		return nil, err
	}
	return stats, nil
}

// StatsByLot reports every lot, including lots without reservations in the
// window.
func (r *repository) StatsByLot(ctx context.Context, from, to time.Time) ([]LotStats, error) {
	query := `
		SELECT l.id AS lot_id, l.prime_location_name AS lot_name,
		       COUNT(r.id) AS started,
		       COUNT(r.id) FILTER (WHERE r.leaving_timestamp IS NOT NULL) AS released,
		       COALESCE(SUM(r.parking_cost), 0) AS revenue
		FROM parking_lots l
		LEFT JOIN parking_spots s ON s.lot_id = l.id
		LEFT JOIN reservations r ON r.spot_id = s.id
		     AND r.parking_timestamp >= $1 AND r.parking_timestamp < $2
		GROUP BY l.id, l.prime_location_name
		ORDER BY l.id`

	stats := []LotStats{}
	if err := r.db.SelectContext(ctx, &stats, query, from, to); err != nil {
		return nil, err
	}
	return stats, nil
}

// Analytics aggregates reservations started in [from, to).
func (s *service) Analytics(ctx context.Context, groupBy string, from, to time.Time) (*Analytics, error) {
	if !to.After(from) {
		return nil, ErrInvalidRange
	}

	out := &Analytics{GroupBy: groupBy, From: from, To: to}
	switch groupBy {
	case GroupByDay:
		days, err := s.repo.StatsByDay(ctx, from, to)
		if err != nil {
			return nil, err
		}
		for i := range days {
			days[i].Revenue = s.billing.Round(days[i].Revenue)
			out.Revenue += days[i].Revenue
		}
		out.Days = days
	case GroupByLot:
		lots, err := s.repo.StatsByLot(ctx, from, to)
		if err != nil {
			return nil, err
		}
		for i := range lots {
			lots[i].Revenue = s.billing.Round(lots[i].Revenue)
			out.Revenue += lots[i].Revenue
		}
		out.Lots = lots
	default:
		return nil, ErrInvalidGroupBy
	}

	out.Revenue = s.billing.Round(out.Revenue)
	return out, nil
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/spots/:spotID/book", "201", 0.05)
	RecordHTTPRequest("POST", "/spots/:spotID/book", "201", 0.07)
	RecordHTTPRequest("POST", "/spots/:spotID/book", "409", 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/spots/:spotID/book", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/spots/:spotID/book", "409")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordReservation(t *testing.T) {
	ReservationsTotal.Reset()

	RecordReservation(OutcomeBooked)
	RecordReservation(OutcomeBooked)
	RecordReservation(OutcomeConflict)

	assert.Equal(t, float64(2), testutil.ToFloat64(ReservationsTotal.WithLabelValues(OutcomeBooked)))
	assert.Equal(t, float64(1), testutil.ToFloat64(ReservationsTotal.WithLabelValues(OutcomeConflict)))
	assert.Equal(t, float64(0), testutil.ToFloat64(ReservationsTotal.WithLabelValues(OutcomeLotFull)))
}

func TestRecordRelease(t *testing.T) {
	testCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parking_releases_total_test",
		Help: "Total number of released spots",
	})
	testHist := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "parking_release_cost_test",
		Help: "Parking cost charged on release",
	})

	oldCounter, oldHist := ReleasesTotal, ReleaseCost
	ReleasesTotal, ReleaseCost = testCounter, testHist
	defer func() { ReleasesTotal, ReleaseCost = oldCounter, oldHist }()

	RecordRelease(20)
	RecordRelease(7.5)

	assert.Equal(t, float64(2), testutil.ToFloat64(testCounter))
	assert.Equal(t, 1, testutil.CollectAndCount(testHist))
}

func TestLotCounters(t *testing.T) {
	created := testutil.ToFloat64(LotsCreatedTotal)
	deleted := testutil.ToFloat64(LotsDeletedTotal)
	spots := testutil.ToFloat64(SpotsDeletedTotal)

	RecordLotCreated()
	RecordLotCreated()
	RecordLotDeleted()
	RecordSpotDeleted()

	assert.Equal(t, created+2, testutil.ToFloat64(LotsCreatedTotal))
	assert.Equal(t, deleted+1, testutil.ToFloat64(LotsDeletedTotal))
	assert.Equal(t, spots+1, testutil.ToFloat64(SpotsDeletedTotal))
}

func TestRecordEmailMultipleTypes(t *testing.T) {
	EmailsSentTotal.Reset()

	RecordEmail("booking_confirmation", "success")
	RecordEmail("booking_confirmation", "failed")
	RecordEmail("release_receipt", "success")

	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_confirmation", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_confirmation", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(EmailsSentTotal.WithLabelValues("release_receipt", "success")))
}

func TestEmailQueueLength(t *testing.T) {
	SetEmailQueueLength(10)
	assert.Equal(t, float64(10), testutil.ToFloat64(EmailQueueLength))

	SetEmailQueueLength(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(EmailQueueLength))
}

func TestRecordError(t *testing.T) {
	ErrorsTotal.Reset()

	RecordError("conflict")
	RecordError("conflict")
	RecordError("not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(ErrorsTotal.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(ErrorsTotal.WithLabelValues("not_found")))
}

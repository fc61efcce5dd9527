// Package billing computes parking charges from elapsed time and hourly price.
//
// Costs are the exact product of fractional hours and price, rounded half away
// from zero to Policy.Digits decimal places. A negative Digits disables
// rounding. Rounding to a fixed precision keeps the cost non-decreasing in
// elapsed time.
package billing

import (
	"fmt"
	"math"
	"time"
)

const DefaultDigits = 2

type Policy struct {
	Digits int
}

func DefaultPolicy() Policy {
	return Policy{Digits: DefaultDigits}
}

// Elapsed returns the time between start and now, floored at zero when the
// clock reads earlier than start.
func Elapsed(start, now time.Time) time.Duration {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

// ComputeCost returns the charge for a stay that began at start and ends at now.
func (p Policy) ComputeCost(start, now time.Time, pricePerHour float64) float64 {
	hours := Elapsed(start, now).Hours()
	return p.Round(hours * pricePerHour)
}

func (p Policy) Round(amount float64) float64 {
	if p.Digits < 0 {
		return amount
	}
	scale := math.Pow(10, float64(p.Digits))
	return math.Round(amount*scale) / scale
}

// ComputeCost applies the default policy.
func ComputeCost(start, now time.Time, pricePerHour float64) float64 {
	return DefaultPolicy().ComputeCost(start, now, pricePerHour)
}

// FormatDuration renders d as "2h 05m", or "45m" under an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

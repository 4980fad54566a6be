package battery

import (
	"math"
	"time"

	"github.com/roelvg/fleetpulse-tui/internal/models"
)

const (
	// minForecastReadings is the minimum number of readings needed to fit
	// a trend, both overall and within the chosen segment.
	minForecastReadings = 3

	msPerDay = 24 * 60 * 60 * 1000
)

// Prediction is a depletion forecast fitted to one drainage segment.
type Prediction struct {
	// DepletionTime is the instant at which the fitted trend reaches 0%.
	DepletionTime time.Time
	// DrainRatePerDay is the fitted drain speed as a positive magnitude,
	// in percent per day.
	DrainRatePerDay float64
	// DataPoints is the number of readings in the segment the fit used.
	DataPoints int
}

// segment is an index range [start, end) into a sorted reading slice.
type segment struct {
	start, end int
}

func (s segment) size() int {
	return s.end - s.start
}

// PredictDepletion fits a linear trend to the longest uninterrupted drainage
// run and projects when it reaches 0% charge. It returns nil when there is
// no usable signal: fewer than three readings overall or in the chosen
// segment, a flat or rising trend, or a projected depletion so far out that
// the slope is indistinguishable from noise.
func (a *Analyzer) PredictDepletion(readings []models.BatteryReading, now time.Time) *Prediction {
	if len(readings) < minForecastReadings {
		return nil
	}

	sorted := sortReadings(readings)
	seg := a.longestDrainageSegment(sorted)
	if seg.size() < minForecastReadings {
		return nil
	}

	slope, intercept, ok := fitTrend(sorted[seg.start:seg.end])
	if !ok || slope >= 0 {
		return nil
	}

	// Zero crossing of percent = slope*x + intercept, with x measured in
	// milliseconds from the segment's first reading. slope is strictly
	// negative here, so the division is safe.
	offsetMs := intercept / -slope

	// Horizon check happens in float64 before converting the offset to
	// int64. A near-flat slope yields an offset far outside int64 range,
	// and converting it first would wrap the depletion time into the past.
	t0 := sorted[seg.start].Timestamp
	horizonMs := float64(now.UnixMilli()-t0) + float64(a.cfg.MaxHorizon.Milliseconds())
	if offsetMs > horizonMs {
		return nil
	}
	depletion := time.UnixMilli(t0 + int64(offsetMs))

	return &Prediction{
		DepletionTime:   depletion,
		DrainRatePerDay: math.Abs(slope) * msPerDay,
		DataPoints:      seg.size(),
	}
}

// longestDrainageSegment partitions sorted readings into contiguous runs
// split after every charging jump; the reading that follows a jump opens
// the next run. Of the runs, the longest wins; among equal lengths the most
// recent one wins, since it reflects current behavior.
func (a *Analyzer) longestDrainageSegment(sorted []models.BatteryReading) segment {
	best := segment{}
	cur := segment{start: 0}
	for i := 0; i < len(sorted)-1; i++ {
		delta := sorted[i+1].PercentCharged - sorted[i].PercentCharged
		if delta > a.cfg.ChargeJumpThreshold {
			cur.end = i + 1
			if cur.size() >= best.size() {
				best = cur
			}
			cur = segment{start: i + 1}
		}
	}
	cur.end = len(sorted)
	if cur.size() >= best.size() {
		best = cur
	}
	return best
}

// fitTrend computes an ordinary least squares fit of percent charged against
// time. The independent variable is milliseconds since the segment's first
// reading, which keeps the sums well conditioned. Returns ok=false when the
// readings share a single timestamp and no slope can be determined.
func fitTrend(seg []models.BatteryReading) (slope, intercept float64, ok bool) {
	n := float64(len(seg))
	t0 := seg[0].Timestamp

	var sumX, sumY, sumXY, sumX2 float64
	for _, r := range seg {
		x := float64(r.Timestamp - t0)
		y := r.PercentCharged
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if math.Abs(denom) < 1e-10 {
		return 0, 0, false
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, true
}

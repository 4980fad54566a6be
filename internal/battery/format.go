package battery

import (
	"fmt"
	"strings"
	"time"
)

// Duration units for the human-readable breakdown. Months are 30-day
// units and weeks 7-day units, matching how people read "about 2 months".
const (
	formatDay   = 24 * time.Hour
	formatWeek  = 7 * formatDay
	formatMonth = 30 * formatDay
)

// DepletedLabel is returned when the forecast depletion time has passed.
const DepletedLabel = "Battery depleted"

// LessThanDayLabel is returned when the remaining time is under one day.
const LessThanDayLabel = "Less than a day"

// FormatTimeRemaining renders the time between now and the predicted
// depletion as a compact clause list, e.g. "2 months, 3 weeks, 4 days".
// Zero-valued components are omitted.
func FormatTimeRemaining(p *Prediction, now time.Time) string {
	if p == nil || !p.DepletionTime.After(now) {
		return DepletedLabel
	}

	// time.Duration saturates around 292 years. PredictDepletion caps the
	// depletion time at MaxHorizon past now, which keeps this subtraction
	// well inside that range.
	remaining := p.DepletionTime.Sub(now)

	months := int(remaining / formatMonth)
	remaining -= time.Duration(months) * formatMonth
	weeks := int(remaining / formatWeek)
	remaining -= time.Duration(weeks) * formatWeek
	days := int(remaining / formatDay)

	var clauses []string
	if months > 0 {
		clauses = append(clauses, pluralize(months, "month"))
	}
	if weeks > 0 {
		clauses = append(clauses, pluralize(weeks, "week"))
	}
	if days > 0 {
		clauses = append(clauses, pluralize(days, "day"))
	}

	if len(clauses) == 0 {
		return LessThanDayLabel
	}
	return strings.Join(clauses, ", ")
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

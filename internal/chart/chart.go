// Package chart reshapes normalized energy records into the consumption/cost
// series the dashboard plots and tabulates.
package chart

import (
	"energy_dashboard/internal/model"
)

// RateFunc returns the tariff (currency per kWh) in force at the given
// SendDate, or false when none is known.
type RateFunc func(sendDate string) (float64, bool)

// FlatRate charges the same rate at every timestamp.
func FlatRate(rate float64) RateFunc {
	return func(string) (float64, bool) { return rate, true }
}

// LatestRate uses the newest entry of a time-of-use history (index 0) for
// every point. An empty history yields nil.
func LatestRate(history []model.TOURate) RateFunc {
	if len(history) == 0 {
		return nil
	}
	return FlatRate(history[0].Rate)
}

// Project maps each record to a ConsumptionPoint: time from SendDate,
// consumption as-is, cost as consumption times the rate. Cost is NaN when
// rates is nil or has no rate for the point.
func Project(records []model.EnergyRecord, rates RateFunc) []model.ConsumptionPoint {
	points := make([]model.ConsumptionPoint, len(records))
	for i, r := range records {
		cost := model.NaN()
		if rates != nil {
			if rate, ok := rates(r.SendDate); ok {
				cost = model.Measure(r.Consumption.Float() * rate)
			}
		}
		points[i] = model.ConsumptionPoint{
			Time:        r.SendDate,
			Consumption: r.Consumption,
			Cost:        cost,
		}
	}
	return points
}

// Package consumption derives per-vehicle fuel efficiency from fill-up records.
//
// Consumption for an interval is taken to be the liters bought at the end of
// the interval. This assumes every fill-up tops the tank up to full: the fuel
// bought at a stop replaces exactly what was burned since the previous stop.
// If a driver does not fill to full each time, the derived rates are silently
// mis-estimated. No attempt is made to track tank capacity.
package consumption

import (
	"math"
	"slices"

	"github.com/rm-hull/fleet-fuel-api/internal/models"
)

const (
	// MaxIntervalDistanceKm caps the distance between two fill-ups. It is
	// applied to the whole interval, whatever the number of days it spans.
	MaxIntervalDistanceKm = 2000.0

	// MaxLitersPerKm is 100 L/100km.
	MaxLitersPerKm = 1.0
)

// Analyze groups fuel charges per vehicle, orders them by purchase date and
// classifies each interval between consecutive fill-ups. Charges that are not
// in the fuel category, or lack a vehicle, purchase date, liter quantity or
// odometer reading, are ignored. Charges on the same date keep their input order.
//
// Analyze does not modify records and keeps no state between calls.
func Analyze(records []models.FuelCharge) map[string]*models.VehicleConsumptionSummary {
	byVehicle := make(map[string][]models.FuelCharge)
	order := make([]string, 0)

	for _, record := range records {
		if !qualifies(record) {
			continue
		}
		if _, seen := byVehicle[record.VehicleId]; !seen {
			order = append(order, record.VehicleId)
		}
		byVehicle[record.VehicleId] = append(byVehicle[record.VehicleId], record)
	}

	summaries := make(map[string]*models.VehicleConsumptionSummary, len(order))
	for _, vehicleId := range order {
		summaries[vehicleId] = summarize(vehicleId, byVehicle[vehicleId])
	}
	return summaries
}

// AnalyzeVehicle is Analyze restricted to a single vehicle. A vehicle with no
// qualifying records still gets an (insufficient data) summary.
func AnalyzeVehicle(vehicleId string, records []models.FuelCharge) *models.VehicleConsumptionSummary {
	charges := make([]models.FuelCharge, 0, len(records))
	for _, record := range records {
		if record.VehicleId == vehicleId && qualifies(record) {
			charges = append(charges, record)
		}
	}
	return summarize(vehicleId, charges)
}

func qualifies(record models.FuelCharge) bool {
	return record.Category == models.CategoryFuel &&
		record.VehicleId != "" &&
		!record.PurchaseDate.IsZero() &&
		record.Liters != nil &&
		record.OdometerKm != nil
}

func summarize(vehicleId string, charges []models.FuelCharge) *models.VehicleConsumptionSummary {
	// charges is owned here: it was built by the caller, never the input slice.
	slices.SortStableFunc(charges, func(a, b models.FuelCharge) int {
		return a.PurchaseDate.Compare(b.PurchaseDate.Time)
	})

	summary := &models.VehicleConsumptionSummary{
		VehicleId:        vehicleId,
		OrderedIntervals: make([]models.ConsumptionInterval, 0, max(len(charges)-1, 0)),
	}

	sum := 0.0
	valid := 0
	for i := 1; i < len(charges); i++ {
		interval := classify(charges[i-1], charges[i])
		if interval.Valid {
			sum += *interval.ConsumptionRate
			valid++
		}
		summary.OrderedIntervals = append(summary.OrderedIntervals, interval)
	}

	if valid > 0 {
		avg := round2(sum / float64(valid))
		summary.AverageConsumptionRate = &avg
	}
	return summary
}

// classify evaluates the checks in priority order; the first failing check
// gives the reason.
func classify(previous, current models.FuelCharge) models.ConsumptionInterval {
	distance := *current.OdometerKm - *previous.OdometerKm
	liters := *current.Liters

	interval := models.ConsumptionInterval{
		StartRecord:    previous,
		EndRecord:      current,
		DistanceKm:     distance,
		LitersConsumed: liters,
	}

	litersPerKm := liters / distance
	switch {
	case *current.OdometerKm <= *previous.OdometerKm:
		interval.InvalidReason = models.DecreasingOdometer
	case liters <= 0:
		interval.InvalidReason = models.MissingLiters
	case distance <= 0:
		interval.InvalidReason = models.NoDistanceTraveled
	case distance > MaxIntervalDistanceKm:
		interval.InvalidReason = models.UnrealisticMileage
	case litersPerKm > MaxLitersPerKm:
		interval.InvalidReason = models.UnrealisticConsumption
	case distance > 0 && liters > 0 && litersPerKm <= MaxLitersPerKm:
		rate := round2(litersPerKm * 100)
		interval.Valid = true
		interval.ConsumptionRate = &rate
	default:
		// Only reachable with NaN readings, which slip through every comparison above.
		interval.InvalidReason = models.InconsistentData
	}

	return interval
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package stats

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/rm-hull/fleet-fuel-api/internal/models"
)

// Derive summarises analyzer output across the fleet. Only vehicles with an
// average consumption rate contribute to the rate figures; interval counts
// cover every vehicle.
func Derive(summaries []*models.VehicleConsumptionSummary, bucketSize int) *models.FleetStatistics {
	if bucketSize <= 0 {
		bucketSize = 3
	}
	stats := &models.FleetStatistics{
		VehiclesAnalysed: len(summaries),
		RateDistribution: make(map[string]int),
		InvalidReasons:   make(map[models.InvalidReason]int),
	}

	rates := make([]float64, 0, len(summaries))
	vehicles := make([]string, 0, len(summaries))

	for _, summary := range summaries {
		for _, interval := range summary.OrderedIntervals {
			if interval.Valid {
				stats.ValidIntervals++
			} else {
				stats.InvalidIntervals++
				stats.InvalidReasons[interval.InvalidReason]++
			}
		}

		if summary.AverageConsumptionRate != nil {
			rates = append(rates, *summary.AverageConsumptionRate)
			vehicles = append(vehicles, summary.VehicleId)
		}
	}

	stats.VehiclesWithAverage = len(rates)
	if len(rates) == 0 {
		return stats
	}

	lowest, highest := 0, 0
	sum := 0.0
	for i, r := range rates {
		if r < rates[lowest] {
			lowest = i
		}
		if r > rates[highest] {
			highest = i
		}
		sum += r
	}
	stats.MostEfficientVehicle = vehicles[lowest]
	stats.LeastEfficientVehicle = vehicles[highest]

	avgRate := sum / float64(len(rates))
	fleetAverage := math.Round(avgRate*100) / 100
	stats.FleetAverageRate = &fleetAverage

	// Standard deviation
	if len(rates) > 1 {
		variance := 0.0
		for _, r := range rates {
			variance += math.Pow(r-avgRate, 2)
		}
		variance /= float64(len(rates))
		stdDev := math.Round(math.Sqrt(variance)*100) / 100
		stats.StandardDeviation = &stdDev
	}

	for _, r := range rates {
		rate := int(r)
		bucketStart := (rate / bucketSize) * bucketSize
		bucketEnd := bucketStart + bucketSize - 1
		bucketKey := fmt.Sprintf("%d-%d", bucketStart, bucketEnd)
		stats.RateDistribution[bucketKey]++
	}

	return stats
}

// Sorted returns the summaries ordered by vehicle id.
func Sorted(summaries map[string]*models.VehicleConsumptionSummary) []*models.VehicleConsumptionSummary {
	sorted := make([]*models.VehicleConsumptionSummary, 0, len(summaries))
	for _, summary := range summaries {
		sorted = append(sorted, summary)
	}
	slices.SortFunc(sorted, func(a, b *models.VehicleConsumptionSummary) int {
		return strings.Compare(a.VehicleId, b.VehicleId)
	})
	return sorted
}

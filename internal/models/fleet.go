package models

import "time"

type FleetStatistics struct {
	VehiclesAnalysed      int                   `json:"vehicles_analysed"`
	VehiclesWithAverage   int                   `json:"vehicles_with_average"`
	FleetAverageRate      *float64              `json:"fleet_average_rate,omitempty"`
	StandardDeviation     *float64              `json:"standard_deviation,omitempty"`
	MostEfficientVehicle  string                `json:"most_efficient_vehicle,omitempty"`
	LeastEfficientVehicle string                `json:"least_efficient_vehicle,omitempty"`
	RateDistribution      map[string]int        `json:"rate_distribution"`
	ValidIntervals        int                   `json:"valid_intervals"`
	InvalidIntervals      int                   `json:"invalid_intervals"`
	InvalidReasons        map[InvalidReason]int `json:"invalid_reasons"`
}

// VehicleConsumption is a summary decorated for display.
type VehicleConsumption struct {
	*VehicleConsumptionSummary
	Registration       string                   `json:"registration,omitempty"`
	Name               string                   `json:"name,omitempty"`
	Status             SummaryStatus            `json:"status"`
	ValidIntervals     int                      `json:"valid_intervals"`
	ReasonDescriptions map[InvalidReason]string `json:"invalid_reason_descriptions,omitempty"`
}

type ConsumptionResponse struct {
	Vehicles    []VehicleConsumption `json:"vehicles"`
	Statistics  *FleetStatistics     `json:"statistics"`
	LastUpdated *time.Time           `json:"last_updated,omitempty"`
}

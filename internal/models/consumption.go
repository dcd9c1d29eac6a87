package models

// InvalidReason explains why a consumption interval cannot be trusted.
type InvalidReason string

const (
	DecreasingOdometer     InvalidReason = "DecreasingOdometer"
	MissingLiters          InvalidReason = "MissingLiters"
	NoDistanceTraveled     InvalidReason = "NoDistanceTraveled"
	UnrealisticMileage     InvalidReason = "UnrealisticMileage"
	UnrealisticConsumption InvalidReason = "UnrealisticConsumption"
	InconsistentData       InvalidReason = "InconsistentData"
)

var InvalidReasons = []InvalidReason{
	DecreasingOdometer,
	MissingLiters,
	NoDistanceTraveled,
	UnrealisticMileage,
	UnrealisticConsumption,
	InconsistentData,
}

func (r InvalidReason) Description() string {
	switch r {
	case DecreasingOdometer:
		return "odometer reading did not increase since the previous fill-up"
	case MissingLiters:
		return "no fuel quantity recorded for the fill-up"
	case NoDistanceTraveled:
		return "no distance travelled between fill-ups"
	case UnrealisticMileage:
		return "distance between fill-ups exceeds 2000 km"
	case UnrealisticConsumption:
		return "consumption exceeds 100 L/100km"
	case InconsistentData:
		return "inconsistent fill-up data"
	default:
		return string(r)
	}
}

type SummaryStatus string

const (
	StatusOK               SummaryStatus = "ok"
	StatusInsufficientData SummaryStatus = "insufficient_data"
	StatusNoValidIntervals SummaryStatus = "no_valid_intervals"
)

// ConsumptionInterval spans two chronologically adjacent fill-ups of one vehicle.
// ConsumptionRate is only set when Valid is true, InvalidReason only when it is false.
type ConsumptionInterval struct {
	StartRecord     FuelCharge    `json:"start_record"`
	EndRecord       FuelCharge    `json:"end_record"`
	DistanceKm      float64       `json:"distance_km"`
	LitersConsumed  float64       `json:"liters_consumed"`
	ConsumptionRate *float64      `json:"consumption_rate,omitempty"`
	Valid           bool          `json:"valid"`
	InvalidReason   InvalidReason `json:"invalid_reason,omitempty"`
}

// VehicleConsumptionSummary holds the chronologically ascending intervals of a
// vehicle and the average rate over the valid ones. AverageConsumptionRate is nil
// when no interval is valid.
type VehicleConsumptionSummary struct {
	VehicleId              string                `json:"vehicle_id"`
	OrderedIntervals       []ConsumptionInterval `json:"ordered_intervals"`
	AverageConsumptionRate *float64              `json:"average_consumption_rate,omitempty"`
}

func (s *VehicleConsumptionSummary) Status() SummaryStatus {
	switch {
	case len(s.OrderedIntervals) == 0:
		return StatusInsufficientData
	case s.AverageConsumptionRate == nil:
		return StatusNoValidIntervals
	default:
		return StatusOK
	}
}

func (s *VehicleConsumptionSummary) ValidIntervals() int {
	count := 0
	for _, interval := range s.OrderedIntervals {
		if interval.Valid {
			count++
		}
	}
	return count
}

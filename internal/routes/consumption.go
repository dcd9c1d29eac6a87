package routes

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kofalt/go-memoize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rm-hull/fleet-fuel-api/internal"
	"github.com/rm-hull/fleet-fuel-api/internal/consumption"
	"github.com/rm-hull/fleet-fuel-api/internal/models"
	"github.com/rm-hull/fleet-fuel-api/internal/stats"
)

const VEHICLE_CACHE_TTL = 5 * time.Minute

var intervalsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fleet_fuel_consumption_intervals_total",
	Help: "Fuel consumption intervals classified, by outcome (valid or invalid reason).",
}, []string{"outcome"})

type ConsumptionHandlers struct {
	repo     internal.FleetRepository
	client   internal.DataServiceClient
	vehicles *memoize.Memoizer
}

func NewConsumptionHandlers(repo internal.FleetRepository, client internal.DataServiceClient) *ConsumptionHandlers {
	return &ConsumptionHandlers{
		repo:     repo,
		client:   client,
		vehicles: memoize.NewMemoizer(VEHICLE_CACHE_TTL, 2*VEHICLE_CACHE_TTL),
	}
}

// Fleet analyses every vehicle, optionally narrowed with ?vehicle=, ?from= and ?to=.
func (h *ConsumptionHandlers) Fleet(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter.VehicleId = c.Query("vehicle")

	charges, err := h.repo.ListCharges(filter)
	if err != nil {
		log.Printf("error while fetching fuel charges: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
		return
	}

	summaries := stats.Sorted(consumption.Analyze(charges))
	c.JSON(http.StatusOK, models.ConsumptionResponse{
		Vehicles:    h.decorate(summaries),
		Statistics:  stats.Derive(summaries, 3),
		LastUpdated: h.lastUpdated(),
	})
}

// Vehicle analyses a single vehicle. Unknown vehicles or vehicles without
// enough fill-ups get an insufficient data summary rather than a 404.
func (h *ConsumptionHandlers) Vehicle(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter.VehicleId = c.Param("vehicleId")

	charges, err := h.repo.ListCharges(filter)
	if err != nil {
		log.Printf("error while fetching fuel charges for %s: %v", filter.VehicleId, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
		return
	}

	summary := consumption.AnalyzeVehicle(filter.VehicleId, charges)
	c.JSON(http.StatusOK, h.decorate([]*models.VehicleConsumptionSummary{summary})[0])
}

func (h *ConsumptionHandlers) decorate(summaries []*models.VehicleConsumptionSummary) []models.VehicleConsumption {
	vehicles := h.vehicleIndex()

	decorated := make([]models.VehicleConsumption, 0, len(summaries))
	for _, summary := range summaries {
		countOutcomes(summary)

		vc := models.VehicleConsumption{
			VehicleConsumptionSummary: summary,
			Status:                    summary.Status(),
			ValidIntervals:            summary.ValidIntervals(),
		}
		for _, interval := range summary.OrderedIntervals {
			if interval.Valid {
				continue
			}
			if vc.ReasonDescriptions == nil {
				vc.ReasonDescriptions = make(map[models.InvalidReason]string)
			}
			vc.ReasonDescriptions[interval.InvalidReason] = interval.InvalidReason.Description()
		}
		if v, ok := vehicles[summary.VehicleId]; ok {
			vc.Registration = v.Registration
			vc.Name = v.Name
		}
		decorated = append(decorated, vc)
	}
	return decorated
}

// vehicleIndex is best effort: a failed lookup only drops registrations from the response.
func (h *ConsumptionHandlers) vehicleIndex() map[string]models.Vehicle {
	result, err, cached := h.vehicles.Memoize("vehicles", func() (any, error) {
		vehicles, err := h.repo.ListVehicles()
		if err != nil {
			return nil, err
		}
		index := make(map[string]models.Vehicle, len(vehicles))
		for _, v := range vehicles {
			index[v.Id] = v
		}
		return index, nil
	})
	if err != nil {
		log.Printf("failed to load vehicles (cached=%t): %v", cached, err)
		return nil
	}
	return result.(map[string]models.Vehicle)
}

func (h *ConsumptionHandlers) lastUpdated() *time.Time {
	if h.client == nil {
		return nil
	}
	return h.client.LastUpdated()
}

func countOutcomes(summary *models.VehicleConsumptionSummary) {
	for _, interval := range summary.OrderedIntervals {
		outcome := "valid"
		if !interval.Valid {
			outcome = string(interval.InvalidReason)
		}
		intervalsClassified.WithLabelValues(outcome).Inc()
	}
}

func parseFilter(c *gin.Context) (models.ChargeFilter, error) {
	var filter models.ChargeFilter
	var err error

	if filter.From, err = parseDateParam(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = parseDateParam(c, "to"); err != nil {
		return filter, err
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From.Time) {
		return filter, fmt.Errorf("'to' date must not be before 'from' date")
	}
	return filter, nil
}

func parseDateParam(c *gin.Context, name string) (models.Date, error) {
	value := c.Query(name)
	if value == "" {
		return models.Date{}, nil
	}
	d, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return models.Date{}, fmt.Errorf("invalid %s parameter '%s': expected YYYY-MM-DD", name, value)
	}
	return models.Date{Time: d}, nil
}

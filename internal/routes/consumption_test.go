package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tavsec/gin-healthcheck/checks"

	"github.com/rm-hull/fleet-fuel-api/internal/models"
)

type fakeRepository struct {
	charges      []models.FuelCharge
	vehicles     []models.Vehicle
	err          error
	filters      []models.ChargeFilter
	vehicleCalls int
}

func (f *fakeRepository) InsertVehicles(batch []models.Vehicle) (int, error) {
	return len(batch), nil
}

func (f *fakeRepository) InsertCharges(batch []models.FuelCharge) (int, error) {
	return len(batch), nil
}

func (f *fakeRepository) ListVehicles() ([]models.Vehicle, error) {
	f.vehicleCalls++
	return f.vehicles, nil
}

func (f *fakeRepository) ListCharges(filter models.ChargeFilter) ([]models.FuelCharge, error) {
	f.filters = append(f.filters, filter)
	if f.err != nil {
		return nil, f.err
	}
	result := make([]models.FuelCharge, 0, len(f.charges))
	for _, c := range f.charges {
		if filter.VehicleId == "" || c.VehicleId == filter.VehicleId {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeRepository) Check() checks.Check {
	return nil
}

func (f *fakeRepository) Close() error {
	return nil
}

func ptr(v float64) *float64 {
	return &v
}

func charge(id, vehicleId string, day int, odometerKm, liters float64) models.FuelCharge {
	return models.FuelCharge{
		Id:           id,
		VehicleId:    vehicleId,
		Category:     models.CategoryFuel,
		PurchaseDate: models.NewDate(2024, time.January, day),
		OdometerKm:   ptr(odometerKm),
		Liters:       ptr(liters),
	}
}

func setupTestRouter(repo *fakeRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := NewConsumptionHandlers(repo, nil)
	router.GET("/v1/fuel-consumption", handlers.Fleet)
	router.GET("/v1/fuel-consumption/:vehicleId", handlers.Vehicle)
	return router
}

func get(t *testing.T, router *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)
	return w
}

type vehicleResponse struct {
	VehicleId              string            `json:"vehicle_id"`
	Registration           string            `json:"registration"`
	Status                 string            `json:"status"`
	ValidIntervals         int               `json:"valid_intervals"`
	ReasonDescriptions     map[string]string `json:"invalid_reason_descriptions"`
	AverageConsumptionRate *float64          `json:"average_consumption_rate"`
	OrderedIntervals       []struct {
		DistanceKm      float64  `json:"distance_km"`
		ConsumptionRate *float64 `json:"consumption_rate"`
		Valid           bool     `json:"valid"`
		InvalidReason   string   `json:"invalid_reason"`
	} `json:"ordered_intervals"`
}

type fleetResponse struct {
	Vehicles   []vehicleResponse `json:"vehicles"`
	Statistics struct {
		VehiclesAnalysed int            `json:"vehicles_analysed"`
		FleetAverageRate *float64       `json:"fleet_average_rate"`
		InvalidReasons   map[string]int `json:"invalid_reasons"`
	} `json:"statistics"`
}

func TestFleetConsumption(t *testing.T) {
	repo := &fakeRepository{
		charges: []models.FuelCharge{
			charge("b2", "V2", 8, 14900, 50),
			charge("a1", "V1", 1, 10000, 40),
			charge("a2", "V1", 10, 10500, 45),
			charge("b1", "V2", 1, 15000, 60),
		},
		vehicles: []models.Vehicle{{Id: "V1", Registration: "AB-123-CD"}},
	}
	router := setupTestRouter(repo)

	w := get(t, router, "/v1/fuel-consumption")
	require.Equal(t, http.StatusOK, w.Code)

	var response fleetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Vehicles, 2)

	v1 := response.Vehicles[0]
	assert.Equal(t, "V1", v1.VehicleId)
	assert.Equal(t, "AB-123-CD", v1.Registration)
	assert.Equal(t, "ok", v1.Status)
	require.Len(t, v1.OrderedIntervals, 1)
	assert.Equal(t, 500.0, v1.OrderedIntervals[0].DistanceKm)
	assert.Equal(t, 9.0, *v1.OrderedIntervals[0].ConsumptionRate)
	assert.Equal(t, 9.0, *v1.AverageConsumptionRate)
	assert.Equal(t, 1, v1.ValidIntervals)
	assert.Empty(t, v1.ReasonDescriptions)

	v2 := response.Vehicles[1]
	assert.Equal(t, "V2", v2.VehicleId)
	assert.Empty(t, v2.Registration)
	assert.Equal(t, "no_valid_intervals", v2.Status)
	assert.Nil(t, v2.AverageConsumptionRate)
	require.Len(t, v2.OrderedIntervals, 1)
	assert.False(t, v2.OrderedIntervals[0].Valid)
	assert.Equal(t, "DecreasingOdometer", v2.OrderedIntervals[0].InvalidReason)
	assert.Nil(t, v2.OrderedIntervals[0].ConsumptionRate)
	assert.Zero(t, v2.ValidIntervals)
	assert.Equal(t, map[string]string{
		"DecreasingOdometer": models.DecreasingOdometer.Description(),
	}, v2.ReasonDescriptions)

	assert.Equal(t, 2, response.Statistics.VehiclesAnalysed)
	assert.Equal(t, 9.0, *response.Statistics.FleetAverageRate)
	assert.Equal(t, map[string]int{"DecreasingOdometer": 1}, response.Statistics.InvalidReasons)

	t.Run("Vehicle lookup is memoized", func(t *testing.T) {
		w := get(t, router, "/v1/fuel-consumption")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, repo.vehicleCalls)
	})
}

func TestFleetConsumptionFilters(t *testing.T) {
	repo := &fakeRepository{}
	router := setupTestRouter(repo)

	w := get(t, router, "/v1/fuel-consumption?vehicle=V1&from=2024-01-01&to=2024-01-31")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.filters, 1)
	assert.Equal(t, "V1", repo.filters[0].VehicleId)
	assert.Equal(t, "2024-01-01", repo.filters[0].From.String())
	assert.Equal(t, "2024-01-31", repo.filters[0].To.String())

	var response fleetResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.Vehicles)
	assert.Nil(t, response.Statistics.FleetAverageRate)
}

func TestBadRequests(t *testing.T) {
	router := setupTestRouter(&fakeRepository{})

	for _, url := range []string{
		"/v1/fuel-consumption?from=01/01/2024",
		"/v1/fuel-consumption?from=2024-02-01&to=2024-01-01",
		"/v1/fuel-consumption/V1?to=tomorrow",
	} {
		t.Run(url, func(t *testing.T) {
			w := get(t, router, url)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestRepositoryFailure(t *testing.T) {
	router := setupTestRouter(&fakeRepository{err: errors.New("database is locked")})

	w := get(t, router, "/v1/fuel-consumption")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database is locked")
}

func TestVehicleConsumption(t *testing.T) {
	repo := &fakeRepository{
		charges: []models.FuelCharge{
			charge("a1", "V1", 1, 10000, 40),
			charge("a3", "V1", 10, 10500, 45),
			charge("a2", "V1", 5, 10200, 30),
			charge("b1", "V2", 1, 15000, 60),
		},
	}
	router := setupTestRouter(repo)

	t.Run("Known vehicle", func(t *testing.T) {
		w := get(t, router, "/v1/fuel-consumption/V1")
		require.Equal(t, http.StatusOK, w.Code)

		var response vehicleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "V1", response.VehicleId)
		require.Len(t, response.OrderedIntervals, 2)
		assert.Equal(t, 200.0, response.OrderedIntervals[0].DistanceKm)
		assert.Equal(t, 300.0, response.OrderedIntervals[1].DistanceKm)
		assert.Equal(t, 15.0, *response.AverageConsumptionRate)
	})

	t.Run("Single fill-up", func(t *testing.T) {
		w := get(t, router, "/v1/fuel-consumption/V2")
		require.Equal(t, http.StatusOK, w.Code)

		var response vehicleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "insufficient_data", response.Status)
		assert.Empty(t, response.OrderedIntervals)
		assert.Nil(t, response.AverageConsumptionRate)
	})

	t.Run("Unknown vehicle", func(t *testing.T) {
		w := get(t, router, "/v1/fuel-consumption/V9")
		require.Equal(t, http.StatusOK, w.Code)

		var response vehicleResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "V9", response.VehicleId)
		assert.Equal(t, "insufficient_data", response.Status)
	})
}

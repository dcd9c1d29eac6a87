package internal

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	neturl "net/url"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rm-hull/fleet-fuel-api/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPStatusError is returned when the remote server responds with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	Status     string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status response from %s: %s", e.URL, e.Status)
}

type BatchCallback[T any] func([]T) (int, error)

// DataServiceClient pulls fleet records from the remote data service.
type DataServiceClient interface {
	GetVehicles(BatchCallback[models.Vehicle]) (int, error)
	GetFuelCharges(BatchCallback[models.FuelCharge]) (int, error)
	LastUpdated() *time.Time
}

type timeTracker struct {
	mu               sync.Mutex
	lastVehicleFetch time.Time
	lastChargesFetch time.Time
}

type dataServiceManager struct {
	baseUrl     string
	apiKey      string
	timeTracker timeTracker
	client      *http.Client
}

func NewDataServiceClient(baseUrl, apiKey string) (DataServiceClient, error) {
	if baseUrl == "" {
		return nil, errors.New("data service URL is not configured")
	}
	if _, err := neturl.ParseRequestURI(baseUrl); err != nil {
		return nil, fmt.Errorf("invalid data service URL: %w", err)
	}

	return &dataServiceManager{
		baseUrl: strings.TrimSuffix(baseUrl, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

func (mgr *dataServiceManager) GetVehicles(callback BatchCallback[models.Vehicle]) (int, error) {
	decode := func(body io.Reader) ([]models.Vehicle, int, error) {
		var resp models.VehiclesResponse
		if err := json.NewDecoder(body).Decode(&resp); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if !resp.Success {
			return nil, 0, fmt.Errorf("API error: %s", resp.Message)
		}
		return resp.Data, resp.MetaData.TotalPages, nil
	}

	return fetchPaged(mgr, "vehicles", &mgr.timeTracker.lastVehicleFetch, decode, callback)
}

func (mgr *dataServiceManager) GetFuelCharges(callback BatchCallback[models.FuelCharge]) (int, error) {
	decode := func(body io.Reader) ([]models.FuelCharge, int, error) {
		var resp models.FuelChargesResponse
		if err := json.NewDecoder(body).Decode(&resp); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if !resp.Success {
			return nil, 0, fmt.Errorf("API error: %s", resp.Message)
		}
		return resp.Data, resp.MetaData.TotalPages, nil
	}

	return fetchPaged(mgr, "charges", &mgr.timeTracker.lastChargesFetch, decode, callback)
}

// LastUpdated reports when fuel charges were last pulled successfully.
func (mgr *dataServiceManager) LastUpdated() *time.Time {
	mgr.timeTracker.mu.Lock()
	defer mgr.timeTracker.mu.Unlock()

	if mgr.timeTracker.lastChargesFetch.IsZero() {
		return nil
	}
	lastUpdated := mgr.timeTracker.lastChargesFetch
	return &lastUpdated
}

func fetchPaged[T any](
	mgr *dataServiceManager,
	path string,
	lastFetch *time.Time,
	decode func(io.Reader) ([]T, int, error),
	callback BatchCallback[T],
) (int, error) {
	mgr.timeTracker.mu.Lock()
	previous := *lastFetch
	mgr.timeTracker.mu.Unlock()

	pageNo := 1
	count := 0

	startTime := time.Now().UTC()
	updatedSince := ""
	if !previous.IsZero() {
		log.Printf("time since last fetch for %s: %s", path, time.Since(previous))
		updatedSince = previous.Format(time.RFC3339)
	}

	for {
		url := fmt.Sprintf("%s/%s?page=%d", mgr.baseUrl, path, pageNo)
		if updatedSince != "" {
			url += "&updated-since=" + neturl.QueryEscape(updatedSince)
		}
		body, err := mgr.get(url)
		if err != nil {
			var stErr *HTTPStatusError
			if errors.As(err, &stErr) && (stErr.StatusCode == http.StatusBadRequest || stErr.StatusCode == http.StatusNotFound) && pageNo > 1 {
				log.Printf("no more pages available for %s, stopping at page %d", path, pageNo-1)
				break
			}
			return 0, err
		}

		data, totalPages, err := decode(body)
		_ = body.Close()
		if err != nil {
			return 0, err
		}

		numRecords, err := callback(data)
		if err != nil {
			return 0, fmt.Errorf("callback error: %w", err)
		}
		count += numRecords
		pageNo++

		if len(data) == 0 || (totalPages > 0 && pageNo > totalPages) {
			break
		}
	}

	mgr.timeTracker.mu.Lock()
	*lastFetch = startTime
	mgr.timeTracker.mu.Unlock()
	return count, nil
}

func (mgr *dataServiceManager) get(url string) (io.ReadCloser, error) {

	log.Printf("GET %s", url)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if mgr.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+mgr.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := mgr.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", url, err)
	}

	if resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &HTTPStatusError{URL: url, Status: resp.Status, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

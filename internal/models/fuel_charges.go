package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const CategoryFuel = "fuel"

// FuelCharge is a driver expense record held by the remote data service. Only
// charges in the fuel category with both an odometer reading and a liter
// quantity take part in consumption analysis.
type FuelCharge struct {
	Id           string   `json:"id"`
	VehicleId    string   `json:"vehicle_id"`
	Category     string   `json:"category"`
	PurchaseDate Date     `json:"purchase_date"`
	OdometerKm   *float64 `json:"odometer_km"`
	Liters       *float64 `json:"liters"`
	Amount       *float64 `json:"amount,omitempty"`
	Description  string   `json:"description,omitempty"`
}

type ChargeFilter struct {
	VehicleId string
	From      Date
	To        Date
}

type PageMetaData struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

type FuelChargesResponse struct {
	Success  bool         `json:"success"`
	Data     []FuelCharge `json:"data"`
	Message  string       `json:"message,omitempty"`
	MetaData PageMetaData `json:"metadata"`
}

func (fc *FuelCharge) ToTuple() []any {
	return []any{
		fc.Id,
		fc.VehicleId,
		fc.Category,
		fc.PurchaseDate.String(),
		fc.OdometerKm,
		fc.Liters,
		fc.Amount,
		fc.Description,
		time.Now().UTC(),
	}
}

var chargeColumns = []string{"id", "vehicle_id", "category", "purchase_date", "odometer_km", "liters", "amount", "description"}

// FuelChargeFromCSV maps a CSV row onto a charge. When headers are given,
// columns are located by name; otherwise they are read positionally in the
// order of the export format.
func FuelChargeFromCSV(record, headers []string) (*FuelCharge, error) {
	index := make(map[string]int, len(chargeColumns))
	if len(headers) > 0 {
		for i, h := range headers {
			index[strings.ToLower(strings.TrimSpace(h))] = i
		}
	} else {
		for i, col := range chargeColumns {
			index[col] = i
		}
	}

	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	charge := &FuelCharge{
		Id:          field("id"),
		VehicleId:   field("vehicle_id"),
		Category:    field("category"),
		Description: field("description"),
	}
	if charge.Id == "" || charge.VehicleId == "" {
		return nil, errors.Newf("charge row is missing id or vehicle_id: %v", record)
	}

	var err error
	if charge.PurchaseDate, err = ParseDate(field("purchase_date")); err != nil {
		return nil, errors.Wrapf(err, "charge %s: purchase_date", charge.Id)
	}
	if charge.OdometerKm, err = optionalFloat(field("odometer_km")); err != nil {
		return nil, errors.Wrapf(err, "charge %s: odometer_km", charge.Id)
	}
	if charge.Liters, err = optionalFloat(field("liters")); err != nil {
		return nil, errors.Wrapf(err, "charge %s: liters", charge.Id)
	}
	if charge.Amount, err = optionalFloat(field("amount")); err != nil {
		return nil, errors.Wrapf(err, "charge %s: amount", charge.Id)
	}

	return charge, nil
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.Newf("not a number: %q", s)
	}
	return &v, nil
}

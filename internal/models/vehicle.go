package models

import "time"

type Vehicle struct {
	Id           string `json:"id"`
	Registration string `json:"registration"`
	Name         string `json:"name,omitempty"`
	VehicleType  string `json:"vehicle_type,omitempty"`
}

type VehiclesResponse struct {
	Success  bool         `json:"success"`
	Data     []Vehicle    `json:"data"`
	Message  string       `json:"message,omitempty"`
	MetaData PageMetaData `json:"metadata"`
}

func (v *Vehicle) ToTuple() []any {
	return []any{
		v.Id,
		v.Registration,
		v.Name,
		v.VehicleType,
		time.Now().UTC(),
	}
}

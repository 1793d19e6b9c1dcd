// Package models provides request and response models for the RoadPulse API.
package models

import (
	"fmt"
	"time"
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IncidentType enumerates the supported incident categories.
type IncidentType string

const (
	IncidentAccident IncidentType = "accident"
	IncidentTraffic  IncidentType = "traffic"
	IncidentClosure  IncidentType = "closure"
	IncidentPolice   IncidentType = "police"
	IncidentHazard   IncidentType = "hazard"
	IncidentObstacle IncidentType = "obstacle"
)

// ValidIncidentType reports whether t is a known incident category.
func ValidIncidentType(t string) bool {
	switch IncidentType(t) {
	case IncidentAccident, IncidentTraffic, IncidentClosure,
		IncidentPolice, IncidentHazard, IncidentObstacle:
		return true
	}
	return false
}

// HealthStatus represents the health status of a service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp is a helper type for time.Time with RFC3339 JSON formatting.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string, got %s", data)
	}
	s := string(data[1 : len(data)-1])
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

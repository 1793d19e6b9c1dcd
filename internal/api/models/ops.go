package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Readiness reports whether the service can take traffic, with per-dependency
// detail.
type Readiness struct {
	Status       HealthStatus      `json:"status"`
	Time         Timestamp         `json:"time"`
	Dependencies []SubsystemStatus `json:"dependencies,omitempty"`
}

// SubsystemStatus represents the status of a single dependency.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// Package handler provides HTTP handlers for the RoadPulse API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/roadpulse/roadpulse/internal/api/models"
	"github.com/roadpulse/roadpulse/internal/api/response"
)

// probeTimeout bounds each readiness probe.
const probeTimeout = 2 * time.Second

// Probe checks one dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	probes    []Probe
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, probes ...Probe) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		probes:    probes,
	}
}

// HealthCheck handles GET /ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /ops/ready - probe every dependency and
// report per-dependency status. Any failing probe turns the answer into
// a 503.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	readiness := models.Readiness{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	for _, probe := range h.probes {
		status := models.SubsystemStatus{Name: probe.Name, Status: models.HealthStatusOK}

		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		if err := probe.Check(ctx); err != nil {
			detail := err.Error()
			status.Status = models.HealthStatusFail
			status.Detail = &detail
			readiness.Status = models.HealthStatusFail
		}
		cancel()

		readiness.Dependencies = append(readiness.Dependencies, status)
	}

	code := http.StatusOK
	if readiness.Status != models.HealthStatusOK {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, readiness)
}

// Package enrichment provides the composition root for house-data enrichment.
package enrichment

import (
	"time"

	"lead_funnel_backend/internal/enrichment/client"
	"lead_funnel_backend/internal/enrichment/service"
	"lead_funnel_backend/platform/logger"
)

// Module wires the enrichment service.
type Module struct {
	service *service.Service
}

// NewModule creates a new enrichment module against the given endpoint.
func NewModule(url string, minDuration time.Duration, log *logger.Logger) *Module {
	cli := client.New(url, log)
	svc := service.New(cli, minDuration, log)
	return &Module{service: svc}
}

// Service returns the enrichment service.
func (m *Module) Service() *service.Service {
	return m.service
}

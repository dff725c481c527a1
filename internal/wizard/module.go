// Package wizard wires the session funnel: store, controller and HTTP
// surface for the multi-step lead forms.
package wizard

import (
	"time"

	"lead_funnel_backend/internal/addresslookup"
	"lead_funnel_backend/internal/flows"
	apphttp "lead_funnel_backend/internal/http"
	"lead_funnel_backend/internal/installers"
	"lead_funnel_backend/internal/leads"
	"lead_funnel_backend/internal/tracking"
	"lead_funnel_backend/internal/wizard/handler"
	"lead_funnel_backend/internal/wizard/service"
	"lead_funnel_backend/internal/wizard/session"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Config carries the wizard module's wiring parameters.
type Config struct {
	SessionTTL              time.Duration
	AddressDebounce         time.Duration
	CompletionRedirectURL   string
	CompletionRedirectDelay time.Duration
}

// Module bundles the wizard controller and its HTTP handler.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the wizard from its collaborators.
func NewModule(
	cfg Config,
	rdb *redis.Client,
	registry *flows.Registry,
	enricher service.Enricher,
	address *addresslookup.Client,
	directory *installers.Client,
	submitter *leads.Submitter,
	tracker tracking.Tracker,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	store := session.NewStore(rdb, cfg.SessionTTL, log)
	svc := service.New(store, registry, enricher, address, directory, submitter, tracker, val, cfg.AddressDebounce, log)
	h := handler.New(svc, cfg.CompletionRedirectURL, int(cfg.CompletionRedirectDelay.Seconds()), log)
	return &Module{handler: h, service: svc}
}

// Name implements http.Module.
func (m *Module) Name() string {
	return "wizard"
}

// RegisterRoutes implements http.Module.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/wizard"), ctx.SubmitLimiter)
}

// Service exposes the controller for composition.
func (m *Module) Service() *service.Service {
	return m.service
}

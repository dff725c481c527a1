// Package handler exposes the wizard session API over HTTP.
package handler

import (
	"net/http"

	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/internal/wizard/service"
	"lead_funnel_backend/internal/wizard/session"
	"lead_funnel_backend/internal/wizard/transport"
	"lead_funnel_backend/platform/httpkit"
	"lead_funnel_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Handler carries the wizard service and the completion redirect settings.
type Handler struct {
	svc        *service.Service
	completion transport.CompletionInfo
	log        *logger.Logger
}

// New creates the wizard HTTP handler.
func New(svc *service.Service, redirectURL string, redirectDelaySeconds int, log *logger.Logger) *Handler {
	return &Handler{
		svc: svc,
		completion: transport.CompletionInfo{
			RedirectURL:   redirectURL,
			RedirectDelay: redirectDelaySeconds,
		},
		log: log,
	}
}

// RegisterRoutes mounts the session endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, submitLimiter *httpkit.SubmitRateLimiter) {
	rg.POST("/sessions", h.Start)
	rg.GET("/sessions/:id", h.Get)
	rg.PATCH("/sessions/:id", h.Update)
	rg.POST("/sessions/:id/next", h.Next)
	rg.POST("/sessions/:id/back", h.Back)
	rg.POST("/sessions/:id/submit", submitLimiter.RateLimit(), h.Submit)
	rg.POST("/sessions/:id/validate", h.ValidateField)
	rg.GET("/sessions/:id/installers", h.Installers)
	rg.POST("/sessions/:id/installer", h.SelectInstaller)
}

// Start creates a session, running the deep-link auto-advance when both
// address parameters are passed.
func (h *Handler) Start(c *gin.Context) {
	var req transport.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	var link *service.DeepLink
	if req.PostalCode != "" || req.HouseNumber != "" {
		link = &service.DeepLink{
			PostalCode:          req.PostalCode,
			HouseNumber:         req.HouseNumber,
			HouseNumberAddition: req.HouseNumberAddition,
		}
	}

	sess, err := h.svc.Start(c.Request.Context(), req.FlowID, link)
	if httpkit.HandleError(c, err) {
		return
	}
	h.respond(c, http.StatusCreated, sess)
}

// Get returns the session snapshot.
func (h *Handler) Get(c *gin.Context) {
	sess, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	h.respond(c, http.StatusOK, sess)
}

// Update merges a partial form update.
func (h *Handler) Update(c *gin.Context) {
	var update domain.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	sess, err := h.svc.Update(c.Request.Context(), c.Param("id"), update)
	if httpkit.HandleError(c, err) {
		return
	}
	h.respond(c, http.StatusOK, sess)
}

// Next advances the session one step.
func (h *Handler) Next(c *gin.Context) {
	sess, err := h.svc.Next(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	h.respond(c, http.StatusOK, sess)
}

// Back moves the session one step back.
func (h *Handler) Back(c *gin.Context) {
	sess, err := h.svc.Back(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	h.respond(c, http.StatusOK, sess)
}

// Submit posts the lead and moves the session to the completion step.
func (h *Handler) Submit(c *gin.Context) {
	sess, err := h.svc.Submit(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	h.respond(c, http.StatusOK, sess)
}

// ValidateField runs the on-blur format check for a contact field.
func (h *Handler) ValidateField(c *gin.Context) {
	var req transport.ValidateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	sess, err := h.svc.ValidateField(c.Request.Context(), c.Param("id"), req.Field)
	if httpkit.HandleError(c, err) {
		return
	}
	h.respond(c, http.StatusOK, sess)
}

// Installers lists installers near the session's resolved coordinates.
func (h *Handler) Installers(c *gin.Context) {
	list, err := h.svc.Installers(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.InstallersResponse{Installers: list})
}

// SelectInstaller records or clears the installer choice.
func (h *Handler) SelectInstaller(c *gin.Context) {
	var req transport.SelectInstallerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	sess, err := h.svc.SelectInstaller(c.Request.Context(), c.Param("id"), domain.InstallerRef{
		ID:   req.ID,
		Name: req.Name,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	h.respond(c, http.StatusOK, sess)
}

func (h *Handler) respond(c *gin.Context, status int, sess *session.Session) {
	flow, err := h.svc.Flow(sess)
	if httpkit.HandleError(c, err) {
		return
	}
	completion := h.completion
	httpkit.JSON(c, status, transport.NewSessionResponse(sess, flow, &completion))
}

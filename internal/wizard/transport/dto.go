// Package transport defines the wizard module's request and response shapes.
package transport

import (
	"lead_funnel_backend/internal/flows"
	"lead_funnel_backend/internal/installers"
	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/internal/wizard/session"
)

// StartSessionRequest starts a wizard session. The address fields are the
// optional deep-link parameters from a campaign URL.
type StartSessionRequest struct {
	FlowID              string `json:"flowId" binding:"required"`
	PostalCode          string `json:"postalCode"`
	HouseNumber         string `json:"houseNumber"`
	HouseNumberAddition string `json:"houseNumberAddition"`
}

// ValidateFieldRequest names the contact field to run the on-blur check for.
type ValidateFieldRequest struct {
	Field string `json:"field" binding:"required,oneof=email phone"`
}

// SelectInstallerRequest records or clears the installer choice. An empty id
// clears the selection.
type SelectInstallerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CompletionInfo tells the client where to send the visitor after the
// thank-you step and how long to show it first.
type CompletionInfo struct {
	RedirectURL   string `json:"redirectUrl"`
	RedirectDelay int    `json:"redirectDelaySeconds"`
}

// SessionResponse is the full session snapshot the frontend renders from.
type SessionResponse struct {
	ID         string `json:"id"`
	FlowID     string `json:"flowId"`
	Step       int    `json:"step"`
	TotalSteps int    `json:"totalSteps"`
	Completed  bool   `json:"completed"`

	Form   domain.FormData   `json:"form"`
	Errors map[string]string `json:"errors"`

	DataStatus    domain.DataStatus    `json:"dataStatus"`
	AddressStatus domain.AddressStatus `json:"addressStatus"`

	// StepValid reports whether the current step allows advancing.
	StepValid bool `json:"stepValid"`
	// Disqualified is set when the selected heat distribution rules the
	// household out of the product.
	Disqualified bool `json:"disqualified"`

	Completion *CompletionInfo `json:"completion,omitempty"`
}

// InstallersResponse lists installers offered to the visitor.
type InstallersResponse struct {
	Installers []installers.Installer `json:"installers"`
}

// NewSessionResponse builds the snapshot for a session on its flow.
func NewSessionResponse(sess *session.Session, flow *flows.Flow, completion *CompletionInfo) SessionResponse {
	resp := SessionResponse{
		ID:            sess.ID,
		FlowID:        sess.FlowID,
		Step:          sess.Step,
		TotalSteps:    flow.TotalSteps(),
		Completed:     sess.Completed,
		Form:          sess.Form,
		Errors:        sess.Errors,
		DataStatus:    sess.DataStatus,
		AddressStatus: sess.AddressStatus,
		StepValid:     domain.StepValid(flow, sess.Step, &sess.Form),
		Disqualified:  domain.IsDisqualifyingHeating(sess.Form.HeatDistribution),
	}
	if sess.Completed {
		resp.Completion = completion
	}
	return resp
}

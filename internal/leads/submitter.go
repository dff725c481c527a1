package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"lead_funnel_backend/internal/flows"
	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/platform/logger"
)

const defaultHTTPTimeout = 15 * time.Second

// Submitter posts finished leads to the workflow automation webhook. One
// attempt per submission; a failed attempt is logged and the wizard moves
// on. Losing a field value beats losing the whole lead.
type Submitter struct {
	httpClient *http.Client
	url        string
	log        *logger.Logger
}

// NewSubmitter creates a submitter for the configured webhook URL. An empty
// URL disables delivery (development); submissions are then logged only.
func NewSubmitter(url string, log *logger.Logger) *Submitter {
	return &Submitter{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		url:        url,
		log:        log,
	}
}

// Submit serializes the form into the flow's webhook envelope and performs
// a single delivery attempt. The returned error is informational; callers
// advance to the completion step regardless.
func (s *Submitter) Submit(ctx context.Context, flow *flows.Flow, sessionID string, form *domain.FormData) error {
	envelope := Envelope{
		TriggerType: triggerFormSubmission,
		Payload: Payload{
			Name:          flow.Lead.FormName,
			SiteID:        flow.Lead.SiteID,
			Data:          buildData(flow, form),
			SubmittedAt:   submittedAt(time.Now()),
			ID:            newSubmissionID(),
			FormID:        flow.Lead.FormID,
			FormElementID: flow.Lead.FormElementID,
			PageID:        flow.Lead.PageID,
			PublishedPath: flow.Lead.PublishedPath,
			PageURL:       flow.Lead.PageURL,
			Schema:        []any{},
		},
	}

	if s.url == "" {
		s.log.Warn("lead webhook not configured, submission dropped",
			"session_id", sessionID, "flow_id", flow.ID)
		return fmt.Errorf("lead webhook not configured")
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		s.log.LeadSubmission(sessionID, flow.ID, 0, err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.log.LeadSubmission(sessionID, flow.ID, 0, err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.LeadSubmission(sessionID, flow.ID, 0, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("lead webhook status %d", resp.StatusCode)
		s.log.LeadSubmission(sessionID, flow.ID, resp.StatusCode, err)
		return err
	}

	s.log.LeadSubmission(sessionID, flow.ID, resp.StatusCode, nil)
	return nil
}

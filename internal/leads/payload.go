// Package leads serializes a finished wizard session into the workflow
// automation webhook payload and performs the submission.
package leads

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Envelope is the webhook's outer message.
type Envelope struct {
	TriggerType string  `json:"triggerType"`
	Payload     Payload `json:"payload"`
}

// Payload carries the submission metadata and the flow-specific data map.
// The data keys are the downstream form's field labels, not the wizard's
// internal field names; buildData owns that translation.
type Payload struct {
	Name          string            `json:"name"`
	SiteID        string            `json:"siteId"`
	Data          map[string]string `json:"data"`
	SubmittedAt   string            `json:"submittedAt"`
	ID            string            `json:"id"`
	FormID        string            `json:"formId"`
	FormElementID string            `json:"formElementId"`
	PageID        string            `json:"pageId"`
	PublishedPath string            `json:"publishedPath"`
	PageURL       string            `json:"pageUrl"`
	Schema        []any             `json:"schema"`
}

const triggerFormSubmission = "form_submission"

// newSubmissionID returns a 24-character random hex identifier, the format
// the workflow endpoint expects.
func newSubmissionID() string {
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// submittedAt formats the submission timestamp as ISO-8601 with millisecond
// precision in UTC.
func submittedAt(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

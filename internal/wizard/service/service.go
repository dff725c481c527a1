// Package service implements the wizard controller: the single writer that
// advances a session through its flow, merges form updates, coordinates the
// debounced address validation and the blocking house-data fetch, and hands
// the finished form to the lead submitter.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"lead_funnel_backend/internal/addresslookup"
	"lead_funnel_backend/internal/flows"
	"lead_funnel_backend/internal/installers"
	"lead_funnel_backend/internal/tracking"
	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/internal/wizard/session"
	"lead_funnel_backend/platform/apperr"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/metrics"
	"lead_funnel_backend/platform/validator"
)

// Enricher fetches house data for an address. The call blocks for at least
// the configured minimum duration.
type Enricher interface {
	Enrich(ctx context.Context, sessionID, postalCode, houseNumber, addition string) (domain.EnrichedData, domain.DataStatus)
}

// AddressValidator resolves street and city for a Dutch address.
type AddressValidator interface {
	Validate(ctx context.Context, postalCode, houseNumber string) addresslookup.Result
}

// Directory lists installers near a coordinate.
type Directory interface {
	Near(ctx context.Context, latitude, longitude string) []installers.Installer
}

// LeadSubmitter posts a completed form to the lead intake webhook.
type LeadSubmitter interface {
	Submit(ctx context.Context, flow *flows.Flow, sessionID string, form *domain.FormData) error
}

// Service is the wizard controller. All session mutation goes through it,
// under the store's per-session lock.
type Service struct {
	store     *session.Store
	flows     *flows.Registry
	enricher  Enricher
	address   AddressValidator
	directory Directory
	submitter LeadSubmitter
	tracker   tracking.Tracker
	val       *validator.Validator

	debounce      *debouncer
	debounceDelay time.Duration
	log           *logger.Logger
}

// New wires the wizard controller.
func New(
	store *session.Store,
	registry *flows.Registry,
	enricher Enricher,
	address AddressValidator,
	directory Directory,
	submitter LeadSubmitter,
	tracker tracking.Tracker,
	val *validator.Validator,
	debounceDelay time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		store:         store,
		flows:         registry,
		enricher:      enricher,
		address:       address,
		directory:     directory,
		submitter:     submitter,
		tracker:       tracker,
		val:           val,
		debounce:      newDebouncer(),
		debounceDelay: debounceDelay,
		log:           log,
	}
}

// DeepLink carries address parameters passed on entry, typically from a
// campaign URL. When both postal code and house number are present the
// location step runs once automatically, whatever shape the values have;
// a lookup miss just lands the visitor on step 2 with empty house data.
type DeepLink struct {
	PostalCode          string
	HouseNumber         string
	HouseNumberAddition string
}

func (d *DeepLink) present() bool {
	return d != nil && d.PostalCode != "" && d.HouseNumber != ""
}

// Start creates a session for the given flow. A deep link with both address
// values seeds the form as given, fetches house data and advances the
// session to step 2. The automatic advance fires at most once per session.
func (s *Service) Start(ctx context.Context, flowID string, link *DeepLink) (*session.Session, error) {
	flow, ok := s.flows.Get(flowID)
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("unknown flow %q", flowID))
	}

	sess := session.New(flow.ID)
	metrics.SessionStarted(flow.ID)
	s.tracker.Track(ctx, "wizard_session_started", map[string]any{
		"session_id": sess.ID,
		"flow":       flow.ID,
	})

	if link.present() && !sess.AutoFetched {
		sess.AutoFetched = true
		sess.Form.PostalCode = link.PostalCode
		sess.Form.HouseNumber = link.HouseNumber
		sess.Form.HouseNumberAddition = link.HouseNumberAddition
		s.resolveAddressNow(ctx, sess)
		s.runEnrichment(ctx, sess)
		sess.Step = 2
		metrics.StepCompleted(flow.ID, "1")
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "save session", err)
	}
	return sess, nil
}

// Get returns the session snapshot.
func (s *Service) Get(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return sess, nil
}

// Update merges a partial form update into the session. Editing a contact
// field clears its inline error; changing the address inputs invalidates the
// resolved street and city and schedules a debounced re-validation.
func (s *Service) Update(ctx context.Context, id string, u domain.Update) (*session.Session, error) {
	unlock := s.store.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if sess.Completed {
		return sess, nil
	}

	result := sess.Form.Apply(u)
	for _, field := range result.ClearedErrors {
		delete(sess.Errors, field)
	}

	if result.AddressChanged {
		s.checkAddressFormat(sess)
		s.scheduleAddressValidation(sess)
	}
	if u.HouseNumberAddition != nil {
		if *u.HouseNumberAddition != "" && s.val.Var(*u.HouseNumberAddition, "house_addition") != nil {
			sess.Errors["houseNumberAddition"] = "Vul een geldige toevoeging in"
		} else {
			delete(sess.Errors, "houseNumberAddition")
		}
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "save session", err)
	}
	return sess, nil
}

// Next advances the session one step. Leaving the location step first runs
// the blocking house-data fetch; leaving the last interactive step submits
// the lead. A session past its last interactive step does not move.
func (s *Service) Next(ctx context.Context, id string) (*session.Session, error) {
	unlock := s.store.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if sess.Completed {
		return sess, nil
	}

	flow, ok := s.flows.Get(sess.FlowID)
	if !ok {
		return nil, apperr.Internal("session references unknown flow")
	}
	if sess.Step > flow.TerminalInteractiveStep() {
		return sess, nil
	}
	if !domain.StepValid(flow, sess.Step, &sess.Form) {
		return nil, apperr.Validation("current step is incomplete")
	}

	if flow.IsLocationStep(sess.Step) {
		s.runEnrichment(ctx, sess)
	}

	if sess.Step == flow.TerminalInteractiveStep() {
		s.submitLocked(ctx, sess, flow)
	} else {
		metrics.StepCompleted(flow.ID, strconv.Itoa(sess.Step))
		s.tracker.Track(ctx, "wizard_step_completed", map[string]any{
			"session_id": sess.ID,
			"flow":       flow.ID,
			"step":       sess.Step,
		})
		sess.Step++
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "save session", err)
	}
	return sess, nil
}

// Back moves the session one step back, never below step 1. Arriving back at
// step 1 resets all collected progress; the funnel restarts from a clean
// form there.
func (s *Service) Back(ctx context.Context, id string) (*session.Session, error) {
	unlock := s.store.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if sess.Completed || sess.Step <= 1 {
		return sess, nil
	}

	sess.Step--
	if sess.Step == 1 {
		sess.Reset()
		s.debounce.cancel(sess.ID)
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "save session", err)
	}
	return sess, nil
}

// Submit posts the lead from the last interactive step. The attempt is made
// exactly once; whatever the webhook answers, the session moves to the
// completion step. Submitting an already completed session is a no-op.
func (s *Service) Submit(ctx context.Context, id string) (*session.Session, error) {
	unlock := s.store.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if sess.Completed {
		return sess, nil
	}

	flow, ok := s.flows.Get(sess.FlowID)
	if !ok {
		return nil, apperr.Internal("session references unknown flow")
	}
	if sess.Step != flow.TerminalInteractiveStep() {
		return nil, apperr.Validation("session is not on the final step")
	}
	if !domain.StepValid(flow, sess.Step, &sess.Form) {
		return nil, apperr.Validation("current step is incomplete")
	}

	s.submitLocked(ctx, sess, flow)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "save session", err)
	}
	return sess, nil
}

// ValidateField runs the on-blur format check for a contact field and
// records or clears its inline error. Empty values never produce an error;
// required-ness is enforced by step validity, not here.
func (s *Service) ValidateField(ctx context.Context, id, field string) (*session.Session, error) {
	unlock := s.store.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if sess.Completed {
		return sess, nil
	}

	switch field {
	case "email":
		if sess.Form.Email != "" && !domain.IsValidEmail(sess.Form.Email) {
			sess.Errors["email"] = "Vul een geldig e-mailadres in"
		} else {
			delete(sess.Errors, "email")
		}
	case "phone":
		if sess.Form.Phone != "" && !domain.IsValidPhone(sess.Form.Phone) {
			sess.Errors["phone"] = "Vul een geldig telefoonnummer in"
		} else {
			delete(sess.Errors, "phone")
		}
	default:
		return nil, apperr.Validation(fmt.Sprintf("field %q has no validator", field))
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "save session", err)
	}
	return sess, nil
}

// Installers fetches the installer list for the session's resolved
// coordinates and records the returned ids; a later selection must reference
// one of them. A selection from an earlier fetch is cleared when the new
// list no longer offers it.
func (s *Service) Installers(ctx context.Context, id string) ([]installers.Installer, error) {
	unlock := s.store.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	list := s.directory.Near(ctx, sess.Form.Latitude, sess.Form.Longitude)
	ids := make([]string, 0, len(list))
	offered := false
	for _, inst := range list {
		ids = append(ids, inst.ID)
		if sess.Form.SelectedInstaller != nil && inst.ID == sess.Form.SelectedInstaller.ID {
			offered = true
		}
	}
	sess.InstallerIDs = ids
	if sess.Form.SelectedInstaller != nil && !offered {
		sess.Form.SelectedInstaller = nil
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "save session", err)
	}
	return list, nil
}

// SelectInstaller records the chosen installer. The id must come from the
// list returned by the most recent Installers call for this session; an
// empty id clears the selection.
func (s *Service) SelectInstaller(ctx context.Context, id string, ref domain.InstallerRef) (*session.Session, error) {
	unlock := s.store.Lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if sess.Completed {
		return sess, nil
	}

	if ref.ID == "" {
		sess.Form.SelectedInstaller = nil
		if err := s.store.Save(ctx, sess); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "save session", err)
		}
		return sess, nil
	}

	known := false
	for _, knownID := range sess.InstallerIDs {
		if knownID == ref.ID {
			known = true
			break
		}
	}
	if !known {
		return nil, apperr.Validation("installer is not in the offered list")
	}

	sess.Form.SelectedInstaller = &ref
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "save session", err)
	}
	return sess, nil
}

// Flow returns the flow definition a session runs on.
func (s *Service) Flow(sess *session.Session) (*flows.Flow, error) {
	flow, ok := s.flows.Get(sess.FlowID)
	if !ok {
		return nil, apperr.Internal("session references unknown flow")
	}
	return flow, nil
}

// runEnrichment performs the blocking house-data fetch and folds the result
// into the form. A failed fetch flips the status to not-found but never
// touches previously enriched fields.
func (s *Service) runEnrichment(ctx context.Context, sess *session.Session) {
	data, status := s.enricher.Enrich(ctx,
		sess.ID,
		domain.CleanPostalCode(sess.Form.PostalCode),
		sess.Form.HouseNumber,
		sess.Form.HouseNumberAddition,
	)
	sess.DataStatus = status
	if status == domain.DataFound {
		sess.Form.ApplyEnrichment(data)
	}
}

// checkAddressFormat records or clears the inline postal-code error. Empty
// input never carries an error.
func (s *Service) checkAddressFormat(sess *session.Session) {
	if sess.Form.PostalCode != "" && s.val.Var(sess.Form.PostalCode, "nl_postcode") != nil {
		sess.Errors["postalCode"] = "Vul een geldige postcode in"
	} else {
		delete(sess.Errors, "postalCode")
	}
}

// scheduleAddressValidation reacts to an address-input change: incomplete
// input drops straight to idle, complete input goes to validating and the
// lookup fires after the debounce delay. The request key makes results of
// superseded lookups identifiable so they are discarded.
func (s *Service) scheduleAddressValidation(sess *session.Session) {
	if !sess.Form.AddressComplete() {
		sess.AddressStatus = domain.AddressIdle
		sess.AddressRequestKey = ""
		s.debounce.cancel(sess.ID)
		return
	}

	postalCode := domain.CleanPostalCode(sess.Form.PostalCode)
	houseNumber := sess.Form.HouseNumber
	key := postalCode + "|" + houseNumber

	sess.AddressStatus = domain.AddressValidating
	sess.AddressRequestKey = key

	sessionID := sess.ID
	s.debounce.schedule(sessionID, s.debounceDelay, func() {
		s.finishAddressValidation(sessionID, key, postalCode, houseNumber)
	})
}

// finishAddressValidation runs on the debounce timer. It performs the lookup
// without holding the session lock, then re-reads the session and applies
// the result only if no newer lookup superseded it.
func (s *Service) finishAddressValidation(sessionID, key, postalCode, houseNumber string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := s.address.Validate(ctx, postalCode, houseNumber)

	unlock := s.store.Lock(sessionID)
	defer unlock()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return
	}
	if sess.AddressRequestKey != key {
		return
	}

	sess.AddressStatus = result.Status
	if result.Status == domain.AddressFound {
		sess.Form.SetResolvedAddress(result.Street, result.City)
	} else {
		sess.Form.ClearResolvedAddress()
	}
	if err := s.store.Save(ctx, sess); err != nil {
		s.log.Error("save address validation result", "session_id", sessionID, "error", err)
	}
}

// resolveAddressNow validates the address synchronously, bypassing the
// debounce. Used on deep-link entry; skips when the seeded inputs do not
// form a lookupable address.
func (s *Service) resolveAddressNow(ctx context.Context, sess *session.Session) {
	if !sess.Form.AddressComplete() {
		return
	}
	result := s.address.Validate(ctx, domain.CleanPostalCode(sess.Form.PostalCode), sess.Form.HouseNumber)
	sess.AddressStatus = result.Status
	if result.Status == domain.AddressFound {
		sess.Form.SetResolvedAddress(result.Street, result.City)
	}
}

// submitLocked performs the single-attempt lead submission and moves the
// session to the completion step regardless of outcome. The caller holds the
// session lock and saves afterwards.
func (s *Service) submitLocked(ctx context.Context, sess *session.Session, flow *flows.Flow) {
	if sess.Submitting {
		return
	}
	sess.Submitting = true

	err := s.submitter.Submit(ctx, flow, sess.ID, &sess.Form)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.LeadSubmitted(flow.ID, outcome)
	s.tracker.Track(ctx, "lead_submitted", map[string]any{
		"session_id": sess.ID,
		"flow":       flow.ID,
		"outcome":    outcome,
	})

	sess.Submitting = false
	sess.Step = flow.CompletionStep()
	sess.Completed = true
	s.debounce.cancel(sess.ID)
}

func notFound(err error) error {
	if err == session.ErrNotFound {
		return apperr.Gone("session not found or expired")
	}
	return apperr.Wrap(apperr.KindInternal, "load session", err)
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lead_funnel_backend/internal/addresslookup"
	"lead_funnel_backend/internal/flows"
	"lead_funnel_backend/internal/installers"
	"lead_funnel_backend/internal/tracking"
	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/internal/wizard/session"
	"lead_funnel_backend/platform/apperr"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeEnricher struct {
	data   domain.EnrichedData
	status domain.DataStatus
	calls  int
}

func (f *fakeEnricher) Enrich(ctx context.Context, sessionID, postalCode, houseNumber, addition string) (domain.EnrichedData, domain.DataStatus) {
	f.calls++
	return f.data, f.status
}

type fakeAddress struct {
	mu     sync.Mutex
	result addresslookup.Result
	calls  []string
}

func (f *fakeAddress) Validate(ctx context.Context, postalCode, houseNumber string) addresslookup.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, postalCode+"|"+houseNumber)
	return f.result
}

func (f *fakeAddress) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeDirectory struct {
	list []installers.Installer
}

func (f *fakeDirectory) Near(ctx context.Context, latitude, longitude string) []installers.Installer {
	return f.list
}

type fakeSubmitter struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeSubmitter) Submit(ctx context.Context, flow *flows.Flow, sessionID string, form *domain.FormData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type deps struct {
	svc       *Service
	store     *session.Store
	enricher  *fakeEnricher
	address   *fakeAddress
	directory *fakeDirectory
	submitter *fakeSubmitter
}

func newTestService(t *testing.T, debounce time.Duration) *deps {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.New("test")
	registry, err := flows.Load("")
	if err != nil {
		t.Fatalf("load flows: %v", err)
	}

	store := session.NewStore(rdb, time.Minute, log)
	enricher := &fakeEnricher{status: domain.DataNotFound}
	address := &fakeAddress{result: addresslookup.Result{Status: domain.AddressFound, Street: "Groenestraat", City: "Nijmegen"}}
	directory := &fakeDirectory{list: []installers.Installer{installers.Fallback}}
	submitter := &fakeSubmitter{}

	svc := New(store, registry, enricher, address, directory, submitter, tracking.Noop{}, validator.New(), debounce, log)
	return &deps{svc: svc, store: store, enricher: enricher, address: address, directory: directory, submitter: submitter}
}

func fillContact(t *testing.T, d *deps, id string) {
	t.Helper()
	first, last := "Jan", "de Vries"
	email, phone := "jan@example.com", "0612345678"
	if _, err := d.svc.Update(context.Background(), id, domain.Update{
		FirstName: &first, LastName: &last, Email: &email, Phone: &phone,
	}); err != nil {
		t.Fatalf("fill contact: %v", err)
	}
}

// walkToContact drives a savings-check session from step 1 to the contact
// step by satisfying each rule in turn.
func walkToContact(t *testing.T, d *deps) *session.Session {
	t.Helper()
	ctx := context.Background()

	sess, err := d.svc.Start(ctx, "savings-check", nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	id := sess.ID

	postal, number := "6531KJ", "4"
	if _, err := d.svc.Update(ctx, id, domain.Update{PostalCode: &postal, HouseNumber: &number}); err != nil {
		t.Fatalf("Update address: %v", err)
	}
	// Resolve synchronously for the walk; the debounce path is tested on
	// its own.
	d.mustResolveAddress(t, id)

	for _, step := range []domain.Update{
		{},
		{Insulation: &[]string{"Het dak is geïsoleerd"}},
		{HeatDistribution: &[]string{domain.HeatRadiators}},
		{},
	} {
		if _, err := d.svc.Update(ctx, id, step); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if _, err := d.svc.Next(ctx, id); err != nil {
			t.Fatalf("Next: %v", err)
		}
	}

	sess, err = d.svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return sess
}

func (d *deps) mustResolveAddress(t *testing.T, id string) {
	t.Helper()
	unlock := d.store.Lock(id)
	defer unlock()
	sess, err := d.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.Form.SetResolvedAddress("Groenestraat", "Nijmegen")
	sess.AddressStatus = domain.AddressFound
	if err := d.store.Save(context.Background(), sess); err != nil {
		t.Fatalf("save session: %v", err)
	}
}

func TestStartUnknownFlow(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	if _, err := d.svc.Start(context.Background(), "no-such-flow", nil); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestStartDeepLinkAutoAdvances(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	d.enricher.status = domain.DataFound
	d.enricher.data = domain.EnrichedData{EnergyLabel: "C", HouseType: domain.HouseTypeTerraced}

	sess, err := d.svc.Start(context.Background(), "savings-check", &DeepLink{
		PostalCode:  "6531 KJ",
		HouseNumber: "4",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if sess.Step != 2 {
		t.Errorf("Step = %d, want auto-advance to 2", sess.Step)
	}
	if !sess.AutoFetched {
		t.Error("AutoFetched guard not set")
	}
	if sess.DataStatus != domain.DataFound {
		t.Errorf("DataStatus = %q", sess.DataStatus)
	}
	if sess.Form.EnergyLabel != "C" {
		t.Error("enriched data not applied")
	}
	if sess.Form.Street != "Groenestraat" {
		t.Error("address not resolved on deep-link entry")
	}
}

func TestStartDeepLinkSeedsValuesAsGiven(t *testing.T) {
	d := newTestService(t, time.Millisecond)

	sess, err := d.svc.Start(context.Background(), "savings-check", &DeepLink{
		PostalCode:  "1234A",
		HouseNumber: "10",
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if sess.Step != 2 || !sess.AutoFetched {
		t.Errorf("Step = %d AutoFetched = %v, want advance to 2", sess.Step, sess.AutoFetched)
	}
	if sess.Form.PostalCode != "1234A" || sess.Form.HouseNumber != "10" {
		t.Errorf("form = %q/%q, want the deep-link values seeded untouched",
			sess.Form.PostalCode, sess.Form.HouseNumber)
	}
	if d.enricher.calls != 1 {
		t.Errorf("enricher calls = %d, want 1", d.enricher.calls)
	}
}

func TestStartIncompleteDeepLinkStaysOnStepOne(t *testing.T) {
	d := newTestService(t, time.Millisecond)

	sess, err := d.svc.Start(context.Background(), "savings-check", &DeepLink{PostalCode: "6531KJ"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if sess.Step != 1 || sess.AutoFetched {
		t.Errorf("Step = %d AutoFetched = %v, want untouched session", sess.Step, sess.AutoFetched)
	}
	if d.enricher.calls != 0 {
		t.Error("enrichment ran for an incomplete deep link")
	}
}

func TestUpdateSchedulesDebouncedValidation(t *testing.T) {
	d := newTestService(t, 20*time.Millisecond)
	ctx := context.Background()

	sess, err := d.svc.Start(ctx, "savings-check", nil)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Two quick edits; only the last one should reach the lookup.
	postal, number := "1234AB", "10"
	if _, err := d.svc.Update(ctx, sess.ID, domain.Update{PostalCode: &postal, HouseNumber: &number}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	postal2 := "6531KJ"
	updated, err := d.svc.Update(ctx, sess.ID, domain.Update{PostalCode: &postal2})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.AddressStatus != domain.AddressValidating {
		t.Errorf("AddressStatus = %q, want validating", updated.AddressStatus)
	}

	deadline := time.Now().Add(time.Second)
	for {
		got, err := d.svc.Get(ctx, sess.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.AddressStatus == domain.AddressFound {
			if got.Form.Street != "Groenestraat" || got.Form.City != "Nijmegen" {
				t.Errorf("resolved to %q, %q", got.Form.Street, got.Form.City)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("address never resolved, status %q", got.AddressStatus)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := d.address.callCount(); got != 1 {
		t.Errorf("lookup calls = %d, want 1 after debounce", got)
	}
	d.address.mu.Lock()
	last := d.address.calls[len(d.address.calls)-1]
	d.address.mu.Unlock()
	if last != "6531KJ|10" {
		t.Errorf("lookup ran with %q, want the latest inputs", last)
	}
}

func TestUpdateIncompleteAddressGoesIdle(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	ctx := context.Background()

	sess, _ := d.svc.Start(ctx, "savings-check", nil)
	postal, number := "1234AB", "10"
	d.svc.Update(ctx, sess.ID, domain.Update{PostalCode: &postal, HouseNumber: &number})

	short := "1234A"
	got, err := d.svc.Update(ctx, sess.ID, domain.Update{PostalCode: &short})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.AddressStatus != domain.AddressIdle {
		t.Errorf("AddressStatus = %q, want idle for incomplete input", got.AddressStatus)
	}
	if got.Form.Street != "" {
		t.Error("stale street survived an address change")
	}
}

func TestUpdateRecordsPostalCodeFormatError(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	ctx := context.Background()

	sess, _ := d.svc.Start(ctx, "savings-check", nil)
	bad := "0123AB"
	got, err := d.svc.Update(ctx, sess.ID, domain.Update{PostalCode: &bad})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Errors["postalCode"] == "" {
		t.Error("expected inline postal code error")
	}

	good := "1234AB"
	got, _ = d.svc.Update(ctx, sess.ID, domain.Update{PostalCode: &good})
	if got.Errors["postalCode"] != "" {
		t.Error("postal code error not cleared")
	}
}

func TestNextBlockedOnInvalidStep(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	sess, _ := d.svc.Start(context.Background(), "savings-check", nil)

	if _, err := d.svc.Next(context.Background(), sess.ID); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error on an empty location step", err)
	}
}

func TestNextFromLocationRunsEnrichment(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	d.enricher.status = domain.DataFound
	d.enricher.data = domain.EnrichedData{BuildYear: domain.BuildYear1971To1989}
	ctx := context.Background()

	sess, _ := d.svc.Start(ctx, "savings-check", nil)
	postal, number := "6531KJ", "4"
	d.svc.Update(ctx, sess.ID, domain.Update{PostalCode: &postal, HouseNumber: &number})
	d.mustResolveAddress(t, sess.ID)

	got, err := d.svc.Next(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if d.enricher.calls != 1 {
		t.Errorf("enrichment calls = %d, want 1", d.enricher.calls)
	}
	if got.Step != 2 || got.DataStatus != domain.DataFound {
		t.Errorf("Step = %d DataStatus = %q", got.Step, got.DataStatus)
	}
	if got.Form.BuildYear != domain.BuildYear1971To1989 {
		t.Error("enrichment result not applied")
	}
}

func TestNextEnrichmentMissLeavesFormUntouched(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	d.enricher.status = domain.DataNotFound
	ctx := context.Background()

	sess, _ := d.svc.Start(ctx, "savings-check", nil)
	postal, number := "9999ZZ", "1"
	d.svc.Update(ctx, sess.ID, domain.Update{PostalCode: &postal, HouseNumber: &number})
	d.mustResolveAddress(t, sess.ID)

	got, err := d.svc.Next(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if got.DataStatus != domain.DataNotFound {
		t.Errorf("DataStatus = %q", got.DataStatus)
	}
	if got.Form.BuildYear != "" || got.Form.EnergyLabel != "" {
		t.Error("failed enrichment wrote into the form")
	}
	if got.Step != 2 {
		t.Errorf("Step = %d, want advance despite the miss", got.Step)
	}
}

func TestBackToStepOneResetsForm(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	ctx := context.Background()

	sess, _ := d.svc.Start(ctx, "savings-check", nil)
	postal, number := "6531KJ", "4"
	d.svc.Update(ctx, sess.ID, domain.Update{PostalCode: &postal, HouseNumber: &number})
	d.mustResolveAddress(t, sess.ID)
	if _, err := d.svc.Next(ctx, sess.ID); err != nil {
		t.Fatalf("Next: %v", err)
	}

	got, err := d.svc.Back(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if got.Step != 1 {
		t.Fatalf("Step = %d, want 1", got.Step)
	}
	if got.Form.PostalCode != "" || got.Form.Street != "" {
		t.Error("form not reset on return to step 1")
	}
	if got.DataStatus != domain.DataUnknown || got.AddressStatus != domain.AddressIdle {
		t.Error("statuses not reset")
	}
}

func TestBackClampsAtStepOne(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	sess, _ := d.svc.Start(context.Background(), "savings-check", nil)

	got, err := d.svc.Back(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if got.Step != 1 {
		t.Errorf("Step = %d", got.Step)
	}
}

func TestNextOnTerminalStepSubmits(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	sess := walkToContact(t, d)
	fillContact(t, d, sess.ID)

	got, err := d.svc.Next(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if d.submitter.callCount() != 1 {
		t.Errorf("submit calls = %d, want 1", d.submitter.callCount())
	}
	if !got.Completed || got.Step != 6 {
		t.Errorf("Completed = %v Step = %d", got.Completed, got.Step)
	}
}

func TestSubmitFailureStillCompletes(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	d.submitter.err = errors.New("webhook down")
	sess := walkToContact(t, d)
	fillContact(t, d, sess.ID)

	got, err := d.svc.Submit(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !got.Completed {
		t.Error("failed webhook must not strand the visitor")
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	sess := walkToContact(t, d)
	fillContact(t, d, sess.ID)

	if _, err := d.svc.Submit(context.Background(), sess.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := d.svc.Submit(context.Background(), sess.ID); err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if d.submitter.callCount() != 1 {
		t.Errorf("submit calls = %d, want exactly 1", d.submitter.callCount())
	}
}

func TestSubmitRejectedOffTerminalStep(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	sess, _ := d.svc.Start(context.Background(), "savings-check", nil)

	if _, err := d.svc.Submit(context.Background(), sess.ID); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestCompletedSessionIgnoresMutations(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	sess := walkToContact(t, d)
	fillContact(t, d, sess.ID)
	if _, err := d.svc.Submit(context.Background(), sess.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	name := "Piet"
	got, err := d.svc.Update(context.Background(), sess.ID, domain.Update{FirstName: &name})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Form.FirstName == "Piet" {
		t.Error("completed session accepted a form update")
	}

	got, _ = d.svc.Back(context.Background(), sess.ID)
	if got.Step != 6 {
		t.Errorf("Back moved a completed session to step %d", got.Step)
	}
}

func TestExpiredSessionIsGone(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	if _, err := d.svc.Get(context.Background(), "expired"); !apperr.Is(err, apperr.KindGone) {
		t.Fatalf("err = %v, want gone", err)
	}
}

func TestValidateFieldEmail(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	ctx := context.Background()
	sess, _ := d.svc.Start(ctx, "savings-check", nil)

	bad := "not-an-email"
	d.svc.Update(ctx, sess.ID, domain.Update{Email: &bad})
	got, err := d.svc.ValidateField(ctx, sess.ID, "email")
	if err != nil {
		t.Fatalf("ValidateField: %v", err)
	}
	if got.Errors["email"] == "" {
		t.Error("expected email error")
	}

	// Editing the field clears the error before re-validation.
	good := "jan@example.com"
	got, _ = d.svc.Update(ctx, sess.ID, domain.Update{Email: &good})
	if got.Errors["email"] != "" {
		t.Error("error not cleared on edit")
	}
}

func TestSelectInstallerMustComeFromOfferedList(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	ctx := context.Background()
	sess, _ := d.svc.Start(ctx, "installer-intake", nil)

	if _, err := d.svc.SelectInstaller(ctx, sess.ID, domain.InstallerRef{ID: "ghost"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error before any fetch", err)
	}

	list, err := d.svc.Installers(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Installers: %v", err)
	}
	if len(list) != 1 || list[0].ID != installers.Fallback.ID {
		t.Fatalf("list = %+v", list)
	}

	got, err := d.svc.SelectInstaller(ctx, sess.ID, domain.InstallerRef{ID: list[0].ID, Name: list[0].Name})
	if err != nil {
		t.Fatalf("SelectInstaller: %v", err)
	}
	if got.Form.SelectedInstaller == nil || got.Form.SelectedInstaller.ID != list[0].ID {
		t.Error("selection not recorded")
	}

	got, err = d.svc.SelectInstaller(ctx, sess.ID, domain.InstallerRef{})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got.Form.SelectedInstaller != nil {
		t.Error("selection not cleared")
	}
}

func TestInstallersRefetchDropsMissingSelection(t *testing.T) {
	d := newTestService(t, time.Millisecond)
	ctx := context.Background()
	sess, _ := d.svc.Start(ctx, "installer-intake", nil)

	d.directory.list = []installers.Installer{{ID: "inst-1", Name: "Eerste"}}
	if _, err := d.svc.Installers(ctx, sess.ID); err != nil {
		t.Fatalf("Installers: %v", err)
	}
	if _, err := d.svc.SelectInstaller(ctx, sess.ID, domain.InstallerRef{ID: "inst-1", Name: "Eerste"}); err != nil {
		t.Fatalf("SelectInstaller: %v", err)
	}

	d.directory.list = []installers.Installer{{ID: "inst-2", Name: "Tweede"}}
	if _, err := d.svc.Installers(ctx, sess.ID); err != nil {
		t.Fatalf("refetch: %v", err)
	}

	got, err := d.svc.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Form.SelectedInstaller != nil {
		t.Errorf("SelectedInstaller = %+v, want cleared after refetch", got.Form.SelectedInstaller)
	}
	if len(got.InstallerIDs) != 1 || got.InstallerIDs[0] != "inst-2" {
		t.Errorf("InstallerIDs = %v", got.InstallerIDs)
	}

	d.directory.list = []installers.Installer{{ID: "inst-2", Name: "Tweede"}, {ID: "inst-3", Name: "Derde"}}
	if _, err := d.svc.SelectInstaller(ctx, sess.ID, domain.InstallerRef{ID: "inst-2", Name: "Tweede"}); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if _, err := d.svc.Installers(ctx, sess.ID); err != nil {
		t.Fatalf("third fetch: %v", err)
	}
	got, _ = d.svc.Get(ctx, sess.ID)
	if got.Form.SelectedInstaller == nil || got.Form.SelectedInstaller.ID != "inst-2" {
		t.Error("selection dropped even though the new list still offers it")
	}
}

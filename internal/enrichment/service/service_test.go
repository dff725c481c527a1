package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"lead_funnel_backend/internal/enrichment/client"
	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/platform/logger"
)

type stubFetcher struct {
	data  domain.EnrichedData
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *stubFetcher) Fetch(ctx context.Context, postalCode, houseNumber, addition string) (domain.EnrichedData, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return domain.EnrichedData{}, ctx.Err()
		}
	}
	return f.data, f.err
}

func TestEnrichFound(t *testing.T) {
	fetcher := &stubFetcher{data: domain.EnrichedData{EnergyLabel: "C", HouseType: domain.HouseTypeTerraced}}
	svc := New(fetcher, time.Millisecond, logger.New("test"))

	data, status := svc.Enrich(context.Background(), "s1", "1234AB", "10", "")
	if status != domain.DataFound {
		t.Fatalf("status = %q, want found", status)
	}
	if data.EnergyLabel != "C" {
		t.Errorf("EnergyLabel = %q", data.EnergyLabel)
	}
}

func TestEnrichMissCollapsesToNotFound(t *testing.T) {
	for _, fetchErr := range []error{client.ErrNoData, errors.New("boom")} {
		fetcher := &stubFetcher{err: fetchErr}
		svc := New(fetcher, time.Millisecond, logger.New("test"))

		data, status := svc.Enrich(context.Background(), "s1", "1234AB", "10", "")
		if status != domain.DataNotFound {
			t.Errorf("status for %v = %q, want not_found", fetchErr, status)
		}
		if data != (domain.EnrichedData{}) {
			t.Errorf("data for %v = %+v, want zero value", fetchErr, data)
		}
	}
}

func TestEnrichWaitsMinimumDuration(t *testing.T) {
	fetcher := &stubFetcher{}
	minDuration := 50 * time.Millisecond
	svc := New(fetcher, minDuration, logger.New("test"))

	start := time.Now()
	svc.Enrich(context.Background(), "s1", "1234AB", "10", "")
	if elapsed := time.Since(start); elapsed < minDuration {
		t.Errorf("returned after %v, want at least %v", elapsed, minDuration)
	}
}

func TestEnrichSharesConcurrentFlightsPerSession(t *testing.T) {
	fetcher := &stubFetcher{delay: 30 * time.Millisecond}
	svc := New(fetcher, time.Millisecond, logger.New("test"))

	done := make(chan struct{})
	for i := 0; i < 3; i++ {
		go func() {
			svc.Enrich(context.Background(), "shared", "1234AB", "10", "")
			done <- struct{}{}
		}()
	}
	for i := 0; i < 3; i++ {
		<-done
	}

	if got := fetcher.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1 shared flight", got)
	}
}

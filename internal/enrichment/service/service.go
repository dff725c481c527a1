// Package service orchestrates house-data enrichment: it serializes
// concurrent attempts per session and holds the loading state on screen for
// a minimum visible duration.
package service

import (
	"context"
	"errors"
	"time"

	"lead_funnel_backend/internal/enrichment/client"
	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/platform/logger"
	"lead_funnel_backend/platform/metrics"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Fetcher is the raw house-information lookup.
type Fetcher interface {
	Fetch(ctx context.Context, postalCode, houseNumber, addition string) (domain.EnrichedData, error)
}

// Service wraps the enrichment client with the wizard's pacing rules.
type Service struct {
	fetcher     Fetcher
	minDuration time.Duration
	group       singleflight.Group
	log         *logger.Logger
}

// New creates the enrichment service. minDuration is the minimum visible
// loading time; the real request races against a timer and both are awaited,
// so an instant response never flashes the loading state away.
func New(fetcher Fetcher, minDuration time.Duration, log *logger.Logger) *Service {
	return &Service{fetcher: fetcher, minDuration: minDuration, log: log}
}

type outcome struct {
	data   domain.EnrichedData
	status domain.DataStatus
}

// Enrich looks up building data for the session's address. Concurrent calls
// for the same session share a single flight, so a rapid back-then-forward
// can never race two writes into the form. Every failure mode collapses
// into DataNotFound; the caller falls back to manual entry.
func (s *Service) Enrich(ctx context.Context, sessionID, postalCode, houseNumber, addition string) (domain.EnrichedData, domain.DataStatus) {
	v, _, _ := s.group.Do(sessionID, func() (interface{}, error) {
		return s.enrichOnce(ctx, sessionID, postalCode, houseNumber, addition), nil
	})
	result := v.(outcome)
	return result.data, result.status
}

func (s *Service) enrichOnce(ctx context.Context, sessionID, postalCode, houseNumber, addition string) outcome {
	start := time.Now()

	var (
		data     domain.EnrichedData
		fetchErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, fetchErr = s.fetcher.Fetch(gctx, postalCode, houseNumber, addition)
		// The fetch outcome is reported through fetchErr so the minimum
		// duration timer below is always awaited as well.
		return nil
	})
	g.Go(func() error {
		select {
		case <-time.After(s.minDuration):
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})
	waitErr := g.Wait()

	elapsed := time.Since(start)

	if waitErr != nil {
		s.log.Warn("enrichment cancelled", "session_id", sessionID, "error", waitErr)
		metrics.EnrichmentRequest("error")
		return outcome{status: domain.DataNotFound}
	}

	if fetchErr != nil {
		if errors.Is(fetchErr, client.ErrNoData) {
			metrics.EnrichmentRequest("not_found")
		} else {
			metrics.EnrichmentRequest("error")
		}
		s.log.EnrichmentResult(sessionID, domain.CleanPostalCode(postalCode), false, float64(elapsed.Milliseconds()))
		return outcome{status: domain.DataNotFound}
	}

	metrics.EnrichmentRequest("found")
	s.log.EnrichmentResult(sessionID, domain.CleanPostalCode(postalCode), true, float64(elapsed.Milliseconds()))
	return outcome{data: data, status: domain.DataFound}
}

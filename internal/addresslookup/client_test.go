package addresslookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/platform/logger"
)

func TestValidateIncompleteInputSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(srv.URL, logger.New("test"))
	tests := []struct {
		postal string
		number string
	}{
		{"1234A", "10"},
		{"1234AB", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := c.Validate(context.Background(), tt.postal, tt.number); got.Status != domain.AddressIdle {
			t.Errorf("Validate(%q, %q).Status = %q, want idle", tt.postal, tt.number, got.Status)
		}
	}
	if called {
		t.Error("incomplete input must not hit the network")
	}
}

func TestValidateFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "1234AB 10" {
			t.Errorf("q = %q", q.Get("q"))
		}
		if q.Get("rows") != "1" {
			t.Errorf("rows = %q", q.Get("rows"))
		}
		w.Write([]byte(`{"response":{"numFound":1,"docs":[{"straatnaam":"Keizersgracht","woonplaatsnaam":"Amsterdam"}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, logger.New("test"))
	got := c.Validate(context.Background(), "1234 ab", "10")
	if got.Status != domain.AddressFound {
		t.Fatalf("Status = %q, want found", got.Status)
	}
	if got.Street != "Keizersgracht" || got.City != "Amsterdam" {
		t.Errorf("resolved to %q, %q", got.Street, got.City)
	}
}

func TestValidateNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"numFound":0,"docs":[]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, logger.New("test"))
	if got := c.Validate(context.Background(), "9999ZZ", "1"); got.Status != domain.AddressNotFound {
		t.Fatalf("Status = %q, want not found", got.Status)
	}
}

func TestValidateUpstreamFailureIsUnverifiable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, logger.New("test"))
	if got := c.Validate(context.Background(), "1234AB", "10"); got.Status != domain.AddressUnverifiable {
		t.Fatalf("Status = %q, want unverifiable", got.Status)
	}
}

package installers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"lead_funnel_backend/platform/logger"
)

func TestNearEmptyCoordinatesReturnsFallback(t *testing.T) {
	c := New("http://unused.invalid", logger.New("test"))
	got := c.Near(context.Background(), "", "")
	if len(got) != 1 || got[0].ID != Fallback.ID {
		t.Fatalf("got %+v, want single fallback", got)
	}
}

func TestNearUpstreamFailureReturnsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, logger.New("test"))
	got := c.Near(context.Background(), "51.8", "5.8")
	if len(got) != 1 || got[0].ID != Fallback.ID {
		t.Fatalf("got %+v, want single fallback", got)
	}
}

func TestNearZeroAccountsReturnsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accounts":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, logger.New("test"))
	got := c.Near(context.Background(), "51.8", "5.8")
	if len(got) != 1 || got[0].ID != Fallback.ID {
		t.Fatalf("got %+v, want single fallback", got)
	}
}

func TestNearMapsAndOrdersByRank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("latitude") != "51.8335" || q.Get("longitude") != "5.8372" {
			t.Errorf("coordinates = %q, %q", q.Get("latitude"), q.Get("longitude"))
		}
		w.Write([]byte(`{"accounts":[
			{"sfid":"b","name":"Bravo","location":"Arnhem","order":2,"distance":12.5,"tags":["warmtepomp"]},
			{"sfid":"a","name":"Alfa","location":"Nijmegen","order":1,"distance":3.1,"nationWide":true}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, logger.New("test"))
	got := c.Near(context.Background(), "51.8335", "5.8372")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("order = %s, %s; want rank order", got[0].ID, got[1].ID)
	}
	if got[0].Rank != 1 || !got[0].Nationwide {
		t.Errorf("first entry not mapped: %+v", got[0])
	}
	if got[1].Distance != 12.5 || got[1].Location != "Arnhem" {
		t.Errorf("second entry not mapped: %+v", got[1])
	}
}

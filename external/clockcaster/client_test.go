package clockcaster

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/openregatta/timing-sync/internal/usecase"
)

const eventDumpResponse = `{
  "info": {"name": "Head Of The River", "start_date": "2024-12-08"},
  "schedule": [
    {
      "cat_abrev": "MV8",
      "category": {"name": "Mens Varsity 8"},
      "race": {"race_num": "12", "race_day": "2024-12-08", "start_armed": true},
      "results": [
        {"lane_boat_number": "4", "competitor": {"name_long": "Portland Boat Club"}, "placement": "1"}
      ]
    }
  ]
}`

func TestClient_FetchEventDump(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/api/eventDump" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart form: %v", err)
		}
		if got := r.FormValue("eventId"); got != "60" {
			t.Errorf("unexpected eventId %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(eventDumpResponse))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL})

	payload, raw, err := client.FetchEventDump(context.Background(), "60")
	if err != nil {
		t.Fatalf("FetchEventDump returned error: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("raw response bytes missing")
	}
	if payload.Info.Name != "Head Of The River" {
		t.Fatalf("unexpected event name %q", payload.Info.Name)
	}
	if len(payload.Schedule) != 1 {
		t.Fatalf("expected 1 schedule item, got %d", len(payload.Schedule))
	}
	item := payload.Schedule[0]
	if item.Race.StartArmed == nil || !*item.Race.StartArmed {
		t.Fatal("start_armed should decode")
	}
	if len(item.Results) != 1 || item.Results[0].Competitor.NameLong != "Portland Boat Club" {
		t.Fatalf("unexpected results: %+v", item.Results)
	}
}

func TestClient_FetchEventDump_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(eventDumpResponse))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 1})

	if _, _, err := client.FetchEventDump(context.Background(), "60"); err != nil {
		t.Fatalf("expected retry to recover, got error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestClient_FetchEventDump_ClientErrorDoesNotRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 3})

	_, _, err := client.FetchEventDump(context.Background(), "60")
	if err == nil {
		t.Fatal("expected error from 400 response")
	}
	if errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("client error should not map to dependency unavailable: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 request, got %d", got)
	}
}

func TestClient_FetchEventDump_TransientExhaustionMapsToDependencyError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 0})

	_, _, err := client.FetchEventDump(context.Background(), "60")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestClient_FetchEventDump_RejectsEmptyEventID(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://localhost:1"})

	_, _, err := client.FetchEventDump(context.Background(), "  ")
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

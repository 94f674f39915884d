package strava

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(Config{BaseURL: srv.URL, AccessToken: "tok"})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestListActivities(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/athlete/activities" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("per_page"); got != "7" {
			t.Errorf("per_page = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 11, "name": "Morning Run", "type": "Run", "start_date": "2024-05-01T06:00:00Z", "distance": 5012.5,
			 "map": {"id": "a11", "summary_polyline": "xyz"}},
			{"id": 12, "name": "Lunch Ride", "type": "Ride", "start_date": "2024-05-01T12:00:00Z", "distance": 20000}
		]`))
	})

	acts, err := c.ListActivities(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(acts) != 2 || acts[0].ID != 11 || acts[1].Name != "Lunch Ride" {
		t.Fatalf("unexpected activities: %+v", acts)
	}
	if acts[0].Map.SummaryPolyline != "xyz" || acts[0].StartDate != "2024-05-01T06:00:00Z" {
		t.Fatalf("fields not decoded: %+v", acts[0])
	}
}

func TestListActivitiesEmptyIsNotNil(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	acts, err := c.ListActivities(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if acts == nil {
		t.Fatalf("empty list must not be nil")
	}
}

func TestListActivitiesPerPageBounds(t *testing.T) {
	var hits atomic.Int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) { hits.Add(1) })
	for _, n := range []int{0, -1, MaxPerPage + 1} {
		if _, err := c.ListActivities(context.Background(), n); !errors.Is(err, ErrInvalidPerPage) {
			t.Fatalf("per_page=%d: want ErrInvalidPerPage, got %v", n, err)
		}
	}
	if hits.Load() != 0 {
		t.Fatalf("invalid requests reached the server")
	}
}

func TestUnauthorizedSurfacesAPIError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Authorization Error","errors":[{"resource":"Athlete","field":"access_token","code":"invalid"}]}`))
	})

	acts, err := c.ListActivities(context.Background(), 7)
	if acts != nil {
		t.Fatalf("no fallback value expected, got %v", acts)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %T %v", err, err)
	}
	if !apiErr.Unauthorized() || apiErr.Message != "Authorization Error" || len(apiErr.Errors) != 1 {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if apiErr.Errors[0].Field != "access_token" {
		t.Fatalf("fault not decoded: %+v", apiErr.Errors)
	}
}

func TestGetActivity(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/activities/42" {
			t.Errorf("path = %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "name": "Track", "type": "Run", "distance": 8000, "calories": 512.5,
			"description": "intervals", "map": {"id": "m42", "polyline": "abc"}, "laps": [{"id": 1, "lap_index": 1, "distance": 400}]}`))
	})

	d, err := c.GetActivity(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetActivity: %v", err)
	}
	if d.ID != 42 || d.Calories != 512.5 || d.Description != "intervals" || d.Map.Polyline != "abc" || len(d.Laps) != 1 {
		t.Fatalf("unexpected detail: %+v", d)
	}
}

func TestGetActivityErrors(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/activities/1":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"Rate Limit Exceeded"}`))
		case "/activities/2":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}
	})

	_, err := c.GetActivity(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.RateLimited() {
		t.Fatalf("want rate limited api error, got %v", err)
	}

	_, err = c.GetActivity(context.Background(), 2)
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message == "" {
		t.Fatalf("want 500 api error with status text, got %v", err)
	}

	if _, err := c.GetActivity(context.Background(), 3); err == nil {
		t.Fatalf("empty object must be an error, not a placeholder")
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url})
	defer c.Close()
	if _, err := c.ListActivities(context.Background(), 7); err == nil {
		t.Fatalf("expected transport error")
	}
}

package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCurrentConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("path = %q, want /weather", r.URL.Path)
		}
		if r.URL.Query().Get("q") != "Madrid" || r.URL.Query().Get("appid") != "key" {
			t.Errorf("query = %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{
			"name": "Madrid",
			"main": {"temp": 24.5},
			"weather": [{"description": "clear sky", "icon": "01d"}],
			"wind": {"speed": 3.1}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "Madrid", time.Second)
	current, err := client.CurrentConditions(context.Background())
	if err != nil {
		t.Fatalf("CurrentConditions: %v", err)
	}
	if current.City != "Madrid" || current.Temp != 24.5 || current.Description != "clear sky" ||
		current.WindSpeed != 3.1 || current.Icon != "01d" {
		t.Fatalf("unexpected conditions: %+v", current)
	}
}

func TestCurrentConditionsToleratesMissingWeatherArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Madrid", "main": {"temp": 20}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "Madrid", time.Second)
	current, err := client.CurrentConditions(context.Background())
	if err != nil {
		t.Fatalf("partial payload should not fail: %v", err)
	}
	if current.Description != "" || current.Icon != "" {
		t.Fatalf("missing fields should stay empty: %+v", current)
	}
}

func TestClientErrorsMapToUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-200 status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"malformed payload", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name": `))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewClient(srv.URL, "key", "Madrid", time.Second)
			if _, err := client.CurrentConditions(context.Background()); !errors.Is(err, ErrUnavailable) {
				t.Fatalf("err = %v, want ErrUnavailable", err)
			}
			if _, err := client.Forecast(context.Background()); !errors.Is(err, ErrUnavailable) {
				t.Fatalf("forecast err = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestDailyForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("path = %q, want /forecast", r.URL.Path)
		}
		// Two entries on the first day, one on the second.
		w.Write([]byte(`{"list": [
			{"dt": 1714550400, "main": {"temp": 10}, "weather": [{"description": "rain", "icon": "09d"}]},
			{"dt": 1714561200, "main": {"temp": 14}, "weather": [{"description": "clouds", "icon": "03d"}]},
			{"dt": 1714636800, "main": {"temp": 12}, "weather": [{"description": "clear", "icon": "01d"}]}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "Madrid", time.Second)
	daily, err := client.DailyForecast(context.Background())
	if err != nil {
		t.Fatalf("DailyForecast: %v", err)
	}
	if len(daily) != 2 {
		t.Fatalf("got %d daily entries, want 2", len(daily))
	}
	if daily[0].Temp != 10 || daily[0].Description != "rain" {
		t.Fatalf("first day should be the first feed entry: %+v", daily[0])
	}
}

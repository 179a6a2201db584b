package openweather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_GetCurrentWeather(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"dt":1700000000,"name":"London","main":{"temp":14.2,"humidity":81},"weather":[{"main":"Clouds"}]}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL+"/data/2.5/weather", "secret", time.Second, testLogger())
	resp, err := client.GetCurrentWeather(context.Background(), 51.5, -0.12)
	if err != nil {
		t.Fatalf("GetCurrentWeather() unexpected error = %v", err)
	}

	if resp.Main.Temp == nil || *resp.Main.Temp != 14.2 {
		t.Errorf("Main.Temp = %v, want 14.2", resp.Main.Temp)
	}

	want := map[string]string{"lat": "51.5", "lon": "-0.12", "units": "metric", "appid": "secret"}
	for key, value := range want {
		if got := gotQuery[key]; len(got) != 1 || got[0] != value {
			t.Errorf("query %s = %v, want %v", key, got, value)
		}
	}
}

func TestClient_GetCurrentWeather_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		errContains string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, "status 401"},
		{"server error", http.StatusBadGateway, "bad gateway", "status 502"},
		{"malformed payload", http.StatusOK, `{"main":`, "failed to decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClientWithBaseURL(srv.URL, "secret", time.Second, testLogger())
			_, err := client.GetCurrentWeather(context.Background(), 0, 0)
			if err == nil {
				t.Fatal("GetCurrentWeather() expected error but got none")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("GetCurrentWeather() error = %v, want error containing %v", err, tt.errContains)
			}
		})
	}
}

func TestClient_GetCurrentWeather_MissingAPIKey(t *testing.T) {
	client := NewClientWithBaseURL("http://127.0.0.1:0", "", time.Second, testLogger())
	_, err := client.GetCurrentWeather(context.Background(), 0, 0)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("GetCurrentWeather() error = %v, want %v", err, ErrMissingAPIKey)
	}
}

func TestClient_GetCurrentWeather_CircuitOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "secret", time.Second, testLogger())
	for i := 0; i < tripAfter; i++ {
		if _, err := client.GetCurrentWeather(context.Background(), 0, 0); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	_, err := client.GetCurrentWeather(context.Background(), 0, 0)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("GetCurrentWeather() error = %v, want %v", err, ErrCircuitOpen)
	}
	if got := hits.Load(); got != tripAfter {
		t.Errorf("server hits = %d, want %d", got, tripAfter)
	}
}

func TestClient_GetCurrentWeather_CancelledCallsKeepCircuitClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte(`{"main":{"temp":14.2}}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "secret", time.Second, testLogger())
	for i := 0; i < tripAfter+1; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		_, err := client.GetCurrentWeather(ctx, 0, 0)
		cancel()
		if err == nil {
			t.Fatalf("call %d: expected error from abandoned request", i)
		}
		if errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d: circuit opened on abandoned requests", i)
		}
	}

	resp, err := client.GetCurrentWeather(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("GetCurrentWeather() unexpected error = %v", err)
	}
	if resp.Main.Temp == nil || *resp.Main.Temp != 14.2 {
		t.Errorf("Main.Temp = %v, want 14.2", resp.Main.Temp)
	}
}

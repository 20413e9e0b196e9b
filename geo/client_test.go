package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupCityFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "Almaty" {
			t.Errorf("name query = %q, want %q", got, "Almaty")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"Almaty","region":"Almaty","country":"KZ"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	city, err := client.LookupCity(context.Background(), "Almaty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if city.Name != "Almaty" || city.Country != "KZ" {
		t.Errorf("city = %+v", city)
	}
}

func TestLookupCityNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"404 status", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"empty list", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL)
			_, err := client.LookupCity(context.Background(), "Nowhere")
			if !errors.Is(err, ErrCityNotFound) {
				t.Errorf("error = %v, want ErrCityNotFound", err)
			}
		})
	}
}

func TestLookupCityServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.LookupCity(context.Background(), "Almaty")
	if err == nil || errors.Is(err, ErrCityNotFound) {
		t.Errorf("error = %v, want generic failure", err)
	}
}

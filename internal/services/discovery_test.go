package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
	tu "github.com/desertthunder/moodtune/internal/testing"
)

func TestDiscoveryService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewDiscoveryService("", nil, nil)
			if srv.BaseURL() != defaultDiscoveryURL {
				t.Errorf("expected default baseURL %s, got %s", defaultDiscoveryURL, srv.BaseURL())
			}
			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			srv := NewDiscoveryService("http://example.com/", nil, nil)
			if srv.BaseURL() != "http://example.com" {
				t.Errorf("expected trimmed baseURL, got %s", srv.BaseURL())
			}
		})
	})

	t.Run("Discover", func(t *testing.T) {
		t.Run("Successful Request", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST method, got %s", r.Method)
				}
				if r.URL.Path != "/api/discover" {
					t.Errorf("expected path /api/discover, got %s", r.URL.Path)
				}

				var body models.DiscoverRequest
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body.Query != "rainy day reading by the window" || body.Language != models.Spanish {
					t.Errorf("unexpected body %+v", body)
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{
					"success": true,
					"tracks": [
						{"id": "3135556", "title": "Harder Better Faster", "artist": "Daft Punk", "album": "Discovery",
						 "preview_url": "https://cdn/p.mp3", "deezer_link": "https://www.deezer.com/track/3135556", "duration": 224},
						{"id": "1", "title": "No Preview", "artist": "Someone", "album": "", "preview_url": null,
						 "deezer_link": "https://www.deezer.com/track/1", "duration": 180}
					],
					"metadata": {"interpreted_mood": "Calm", "energy_level": "low", "suggested_genres": ["jazz", "lofi"],
						"search_query_used": "calm jazz"}
				}`))
			}))
			defer server.Close()

			srv := NewDiscoveryService(server.URL, nil, nil)
			result, err := srv.Discover(context.Background(), models.DiscoverRequest{
				Query:    "rainy day reading by the window",
				Language: models.Spanish,
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(result.Tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(result.Tracks))
			}
			if !result.Tracks[0].HasPreview() || result.Tracks[1].HasPreview() {
				t.Error("unexpected preview availability")
			}
			if result.Metadata.Energy != models.EnergyLow {
				t.Errorf("expected low energy, got %s", result.Metadata.Energy)
			}
		})

		t.Run("Invalid Query Makes No Request", func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
			}))
			defer server.Close()

			srv := NewDiscoveryService(server.URL, nil, nil)
			_, err := srv.Discover(context.Background(), models.DiscoverRequest{Query: "meh", Language: models.English})
			if !errors.Is(err, shared.ErrQueryTooShort) {
				t.Errorf("expected ErrQueryTooShort, got %v", err)
			}

			_, err = srv.Discover(context.Background(), models.DiscoverRequest{Query: "long enough query", Language: "fr"})
			if !errors.Is(err, shared.ErrInvalidLanguage) {
				t.Errorf("expected ErrInvalidLanguage, got %v", err)
			}

			if calls.Load() != 0 {
				t.Errorf("expected no requests, got %d", calls.Load())
			}
		})

		t.Run("Backend Errors Map To Generic Error", func(t *testing.T) {
			tc := []struct {
				name    string
				status  int
				body    string
				message string
			}{
				{name: "error envelope", status: 500, body: `{"error": "LLM unavailable", "error_code": "LLM_ERROR"}`, message: "LLM unavailable"},
				{name: "fastapi detail", status: 422, body: `{"detail": "query too short"}`, message: "query too short"},
				{name: "plain text", status: 502, body: `bad gateway`, message: "bad gateway"},
			}

			for _, tt := range tc {
				t.Run(tt.name, func(t *testing.T) {
					server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(tt.status)
						w.Write([]byte(tt.body))
					}))
					defer server.Close()

					srv := NewDiscoveryService(server.URL, nil, nil)
					_, err := srv.Discover(context.Background(), models.DiscoverRequest{
						Query:    "energetic morning workout",
						Language: models.English,
					})
					if !errors.Is(err, shared.ErrDiscoveryFailed) {
						t.Fatalf("expected ErrDiscoveryFailed, got %v", err)
					}

					var apiErr *APIError
					if !errors.As(err, &apiErr) {
						t.Fatalf("expected wrapped APIError, got %v", err)
					}
					if apiErr.StatusCode != tt.status || apiErr.Message != tt.message {
						t.Errorf("unexpected api error %+v", apiErr)
					}
				})
			}
		})

		t.Run("Unsuccessful Payload", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success": false, "tracks": []}`))
			}))
			defer server.Close()

			srv := NewDiscoveryService(server.URL, nil, nil)
			_, err := srv.Discover(context.Background(), models.DiscoverRequest{Query: "melancholic autumn walk", Language: models.English})
			if !errors.Is(err, shared.ErrDiscoveryFailed) {
				t.Errorf("expected ErrDiscoveryFailed, got %v", err)
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			srv := NewDiscoveryService("http://backend", client, nil)

			_, err := srv.Discover(context.Background(), models.DiscoverRequest{Query: "melancholic autumn walk", Language: models.English})
			if !errors.Is(err, shared.ErrDiscoveryFailed) || !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrDiscoveryFailed wrapping ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("Health", func(t *testing.T) {
		t.Run("Healthy", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/health" {
					t.Errorf("expected path /api/health, got %s", r.URL.Path)
				}
				w.Write([]byte(`{"status": "healthy", "version": "1.0.0"}`))
			}))
			defer server.Close()

			health, err := NewDiscoveryService(server.URL, nil, nil).Health(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if health.Status != "healthy" || health.Version != "1.0.0" {
				t.Errorf("unexpected health %+v", health)
			}
		})

		t.Run("Unhealthy", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer server.Close()

			_, err := NewDiscoveryService(server.URL, nil, nil).Health(context.Background())
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})
}

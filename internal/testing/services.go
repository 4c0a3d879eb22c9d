package testing

import (
	"context"
	"sync"

	"github.com/desertthunder/moodtune/internal/models"
)

// MockDiscoverer is a test double for [services.Discoverer]
//
// It is safe for concurrent use. FailFor fails individual queries.
type MockDiscoverer struct {
	Result   *models.DiscoverResult
	Err      error
	FailFor  map[string]error
	Requests []models.DiscoverRequest
	HealthOK *models.Health

	mu sync.Mutex
}

func (m *MockDiscoverer) Discover(ctx context.Context, req models.DiscoverRequest) (*models.DiscoverResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if err, ok := m.FailFor[req.Query]; ok {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Calls returns the number of Discover requests received.
func (m *MockDiscoverer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

func (m *MockDiscoverer) Health(ctx context.Context) (*models.Health, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.HealthOK == nil {
		return &models.Health{Status: "healthy", Version: "test"}, nil
	}
	return m.HealthOK, nil
}

// MockExporter is a test double for [services.PlaylistExporter]
type MockExporter struct {
	AuthStatus  models.AuthStatus
	User        *models.DeezerUser
	Playlist    *models.ExportedPlaylist
	Err         error
	UserCalls   int
	CreateCalls int
	Requests    []models.ExportRequest
}

func (m *MockExporter) Status() models.AuthStatus { return m.AuthStatus }

func (m *MockExporter) CurrentUser(ctx context.Context) (*models.DeezerUser, error) {
	m.UserCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.User == nil {
		return &models.DeezerUser{ID: 1, Name: "tester"}, nil
	}
	return m.User, nil
}

func (m *MockExporter) CreateMoodPlaylist(ctx context.Context, req models.ExportRequest) (*models.ExportedPlaylist, error) {
	m.CreateCalls++
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Playlist, nil
}

// NetworkCalls is the number of calls that would have touched the network.
func (m *MockExporter) NetworkCalls() int { return m.UserCalls + m.CreateCalls }

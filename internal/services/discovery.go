// Discovery backend client
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/shared"
)

const defaultDiscoveryURL string = "http://localhost:8000"

// APIError is a non-2xx response from the discovery backend.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error (status %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

// parseAPIError reads {"error","error_code"} or FastAPI's {"detail"} from body.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload struct {
		Error     string          `json:"error"`
		ErrorCode string          `json:"error_code"`
		Detail    json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	apiErr.Code = payload.ErrorCode
	switch {
	case payload.Error != "":
		apiErr.Message = payload.Error
	case len(payload.Detail) > 0:
		var detail string
		if err := json.Unmarshal(payload.Detail, &detail); err == nil {
			apiErr.Message = detail
		} else {
			apiErr.Message = string(payload.Detail) // validation errors arrive as a list
		}
	default:
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// DiscoveryService implements [Discoverer] for the mood backend.
type DiscoveryService struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewDiscoveryService creates a client for the backend at baseURL.
func NewDiscoveryService(baseURL string, client *http.Client, logger *log.Logger) *DiscoveryService {
	if baseURL == "" {
		baseURL = defaultDiscoveryURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &DiscoveryService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger,
	}
}

// BaseURL returns the backend address.
func (d *DiscoveryService) BaseURL() string { return d.baseURL }

func (d *DiscoveryService) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("%w: %v", shared.ErrTimeout, err)
		}
		return 0, nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// Discover posts the mood query and decodes the track list.
func (d *DiscoveryService) Discover(ctx context.Context, req models.DiscoverRequest) (*models.DiscoverResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	status, data, err := d.do(ctx, http.MethodPost, "/api/discover", body)
	if err != nil {
		d.logger.Error("discovery request failed", "err", err)
		return nil, fmt.Errorf("%w: %w", shared.ErrDiscoveryFailed, err)
	}

	if status < 200 || status >= 300 {
		apiErr := parseAPIError(status, data)
		d.logger.Error("discovery rejected", "status", status, "code", apiErr.Code, "message", apiErr.Message)
		return nil, fmt.Errorf("%w: %w", shared.ErrDiscoveryFailed, apiErr)
	}

	var result models.DiscoverResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrDiscoveryFailed, err)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: backend reported failure", shared.ErrDiscoveryFailed)
	}

	d.logger.Debug("discovered tracks", "count", len(result.Tracks), "mood", result.Metadata.InterpretedMood)
	return &result, nil
}

// Health calls the backend health endpoint.
func (d *DiscoveryService) Health(ctx context.Context) (*models.Health, error) {
	status, data, err := d.do(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, parseAPIError(status, data))
	}

	var health models.Health
	if err := json.Unmarshal(data, &health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &health, nil
}

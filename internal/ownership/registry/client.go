package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leadflow/leadflow-backend/internal/ownership/domain"
	"github.com/leadflow/leadflow-backend/pkg/config"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/leadflow/leadflow-backend/pkg/logger"
)

// APIKeyHeader carries the registry API key
const APIKeyHeader = "X-API-Key"

// VehicleHistory is the registry's answer for one vehicle. Owners are
// ordered most recent first.
type VehicleHistory struct {
	RegNr     string                     `json:"reg_nr"`
	ChassisNr string                     `json:"chassis_nr,omitempty"`
	Owners    []domain.RawOwnershipEvent `json:"owners"`
}

// Client fetches ownership histories from the vehicle registry
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewClient creates a new registry client
func NewClient(cfg config.RegistryConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.WithComponent("registry_client"),
	}
}

// FetchHistory returns the ownership history of a vehicle
func (c *Client) FetchHistory(ctx context.Context, regNr string) ([]domain.RawOwnershipEvent, error) {
	vehicle, err := c.FetchVehicle(ctx, regNr)
	if err != nil {
		return nil, err
	}
	return vehicle.Owners, nil
}

// FetchVehicle returns the registry record of a vehicle including its
// chassis number
func (c *Client) FetchVehicle(ctx context.Context, regNr string) (*VehicleHistory, error) {
	regNr = strings.ToUpper(strings.TrimSpace(regNr))
	if regNr == "" {
		return nil, errors.BadRequest("reg_nr is required")
	}

	endpoint := fmt.Sprintf("%s/api/v1/vehicles/%s/owners", c.baseURL, url.PathEscape(regNr))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set(APIKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error().Err(err).Str("reg_nr", regNr).Msg("failed to call vehicle registry")
		return nil, errors.Upstream(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NotFound("vehicle")
	case resp.StatusCode != http.StatusOK:
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("reg_nr", regNr).
			Msg("vehicle registry request failed")
		return nil, errors.Upstream(fmt.Errorf("registry returned status %d", resp.StatusCode))
	}

	// The registry wraps responses in {"success": true, "data": ...}
	var response struct {
		Success bool           `json:"success"`
		Data    VehicleHistory `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.Upstream(fmt.Errorf("failed to decode registry response: %w", err))
	}

	if response.Data.RegNr == "" {
		response.Data.RegNr = regNr
	}

	c.logger.Debug().
		Str("reg_nr", regNr).
		Int("owners", len(response.Data.Owners)).
		Msg("fetched ownership history")

	return &response.Data, nil
}

package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/BBMRI-cz/fhir-place/internal/config"
	"github.com/BBMRI-cz/fhir-place/internal/models"
)

const (
	msgQueryRequired = "Query parameter is required"
	msgQueryOK       = "Query executed successfully"
	msgUnexpected    = "An unexpected error occurred while querying Prometheus"
)

type envelope struct {
	Status    string            `json:"status"`
	Data      *models.QueryData `json:"data"`
	ErrorType string            `json:"errorType"`
	Error     string            `json:"error"`
}

// Client runs instant queries against the Prometheus HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg config.MetricsConfig, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.PrometheusURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

func (c *Client) Query(ctx context.Context, query string) models.QueryResult {
	if strings.TrimSpace(query) == "" {
		return models.QueryResult{Message: msgQueryRequired}
	}

	endpoint := c.baseURL + "/api/v1/query?" + url.Values{"query": []string{query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Error().Err(err).Msg("build prometheus request failed")
		return models.QueryResult{Message: msgUnexpected}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("query", query).Msg("prometheus request failed")
		return models.QueryResult{Message: msgUnexpected}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return models.QueryResult{
			Message: fmt.Sprintf("Prometheus API request failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.log.Error().Err(err).Str("query", query).Msg("decode prometheus response failed")
		return models.QueryResult{Message: msgUnexpected}
	}

	if env.Status == "error" {
		reason := env.Error
		if reason == "" {
			reason = "Unknown error"
		}
		return models.QueryResult{Message: "Prometheus query error: " + reason}
	}

	return models.QueryResult{
		Success: true,
		Message: msgQueryOK,
		Data:    env.Data,
	}
}

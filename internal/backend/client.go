package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/BBMRI-cz/fhir-place/internal/config"
	"github.com/BBMRI-cz/fhir-place/internal/models"
)

type Operation string

const (
	OpSync         Operation = "sync"
	OpMiabisSync   Operation = "miabis-sync"
	OpDelete       Operation = "delete"
	OpMiabisDelete Operation = "miabis-delete"
)

const (
	DefaultSuccessMessage = "Operation completed successfully"
	unexpectedMessage     = "An unexpected error occurred while calling the backend API"
)

func ParseOperation(name string) (Operation, bool) {
	switch op := Operation(name); op {
	case OpSync, OpMiabisSync, OpDelete, OpMiabisDelete:
		return op, true
	}
	return "", false
}

func (o Operation) Path() string {
	return "/" + string(o)
}

// Destructive operations wipe data on the backend and need an explicit
// confirmation from the caller.
func (o Operation) Destructive() bool {
	return o == OpDelete || o == OpMiabisDelete
}

// Client triggers sync and delete runs on the FHIR backend service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg config.BackendConfig, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

func (c *Client) Sync(ctx context.Context) models.BackendActionResult {
	return c.Run(ctx, OpSync)
}

func (c *Client) MiabisSync(ctx context.Context) models.BackendActionResult {
	return c.Run(ctx, OpMiabisSync)
}

func (c *Client) DeleteAll(ctx context.Context) models.BackendActionResult {
	return c.Run(ctx, OpDelete)
}

func (c *Client) MiabisDelete(ctx context.Context) models.BackendActionResult {
	return c.Run(ctx, OpMiabisDelete)
}

// Run POSTs to the operation endpoint without a body. Failures are reported
// in the result, never as an error.
func (c *Client) Run(ctx context.Context, op Operation) models.BackendActionResult {
	url := c.baseURL + op.Path()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		c.log.Error().Err(err).Str("operation", string(op)).Msg("build backend request failed")
		return models.BackendActionResult{Message: unexpectedMessage}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("operation", string(op)).Str("url", url).Msg("backend request failed")
		return models.BackendActionResult{Message: unexpectedMessage}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Warn().Str("operation", string(op)).Int("status", resp.StatusCode).Msg("backend rejected operation")
		return models.BackendActionResult{
			Message: fmt.Sprintf("Backend API request failed: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	result := models.BackendActionResult{
		Success: true,
		Message: DefaultSuccessMessage,
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if err != io.EOF {
			c.log.Debug().Err(err).Str("operation", string(op)).Msg("backend response is not json")
		}
		return result
	}

	result.Data = body
	if msg, ok := body["message"].(string); ok && msg != "" {
		result.Message = msg
	}

	c.log.Info().Str("operation", string(op)).Msg("backend operation completed")
	return result
}

package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BBMRI-cz/fhir-place/internal/config"
	"github.com/BBMRI-cz/fhir-place/internal/models"
)

type stubQuerier struct {
	mu      sync.Mutex
	results map[string]models.QueryResult
	seen    []string
}

func (s *stubQuerier) Query(_ context.Context, query string) models.QueryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, query)
	return s.results[query]
}

func vector(ts float64, value string) models.QueryResult {
	return models.QueryResult{
		Success: true,
		Data: &models.QueryData{
			ResultType: "vector",
			Result:     []models.MetricSeries{{Value: &models.Sample{Timestamp: ts, Value: value}}},
		},
	}
}

var statusCfg = config.MetricsConfig{UpQuery: "up-query", LastSyncQuery: "sync-query"}

func TestStatusService_Online(t *testing.T) {
	q := &stubQuerier{results: map[string]models.QueryResult{
		"up-query":   vector(1700000000, "1"),
		"sync-query": vector(1700000000, "1699990000000"),
	}}

	status := NewStatusService(q, statusCfg).Status(context.Background())

	assert.ElementsMatch(t, []string{"up-query", "sync-query"}, q.seen)
	assert.True(t, status.IsOnline)
	assert.Equal(t, models.FetchStateLoaded, status.FetchState)
	assert.Nil(t, status.Error)
	require.NotNil(t, status.LastChecked)
	assert.True(t, status.LastChecked.Equal(time.Unix(1700000000, 0)))
	require.NotNil(t, status.LastSync)
	assert.True(t, status.LastSync.Equal(time.UnixMilli(1699990000000)))
}

func TestStatusService_Offline(t *testing.T) {
	q := &stubQuerier{results: map[string]models.QueryResult{
		"up-query":   vector(1700000000, "0"),
		"sync-query": {Success: true, Data: &models.QueryData{ResultType: "vector"}},
	}}

	status := NewStatusService(q, statusCfg).Status(context.Background())

	assert.False(t, status.IsOnline)
	assert.NotNil(t, status.LastChecked)
	assert.Nil(t, status.LastSync)
	assert.Equal(t, models.FetchStateLoaded, status.FetchState)
}

func TestStatusService_FailedQueries(t *testing.T) {
	q := &stubQuerier{results: map[string]models.QueryResult{
		"up-query":   {Message: "Prometheus API request failed: 502 Bad Gateway"},
		"sync-query": {Message: "Prometheus API request failed: 502 Bad Gateway"},
	}}

	status := NewStatusService(q, statusCfg).Status(context.Background())

	assert.False(t, status.IsOnline)
	assert.Nil(t, status.LastChecked)
	assert.Nil(t, status.LastSync)
	assert.Equal(t, models.FetchStateLoaded, status.FetchState)
}

func TestStatusService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status := NewStatusService(&stubQuerier{}, statusCfg).Status(ctx)

	assert.Equal(t, models.FetchStateError, status.FetchState)
	require.NotNil(t, status.Error)
}

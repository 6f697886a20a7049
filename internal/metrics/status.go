package metrics

import (
	"context"
	"math"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BBMRI-cz/fhir-place/internal/config"
	"github.com/BBMRI-cz/fhir-place/internal/models"
)

type Querier interface {
	Query(ctx context.Context, query string) models.QueryResult
}

// StatusService derives the dashboard health summary from two instant
// queries: the scrape "up" series and the last successful sync timestamp.
type StatusService struct {
	querier       Querier
	upQuery       string
	lastSyncQuery string
}

func NewStatusService(querier Querier, cfg config.MetricsConfig) *StatusService {
	return &StatusService{
		querier:       querier,
		upQuery:       cfg.UpQuery,
		lastSyncQuery: cfg.LastSyncQuery,
	}
}

func (s *StatusService) Status(ctx context.Context) models.SystemStatus {
	var up, lastSync models.QueryResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		up = s.querier.Query(gctx, s.upQuery)
		return nil
	})
	g.Go(func() error {
		lastSync = s.querier.Query(gctx, s.lastSyncQuery)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		msg := err.Error()
		return models.SystemStatus{FetchState: models.FetchStateError, Error: &msg}
	}

	status := models.SystemStatus{FetchState: models.FetchStateLoaded}

	if sample, ok := firstSample(up); ok {
		status.IsOnline = sample.Value == "1"
		status.LastChecked = secondsToTime(sample.Timestamp)
	}
	if sample, ok := firstSample(lastSync); ok {
		status.LastSync = millisToTime(sample.Value)
	}

	return status
}

func firstSample(res models.QueryResult) (models.Sample, bool) {
	if !res.Success || res.Data == nil || len(res.Data.Result) == 0 || res.Data.Result[0].Value == nil {
		return models.Sample{}, false
	}
	return *res.Data.Result[0].Value, true
}

func secondsToTime(ts float64) *time.Time {
	if ts <= 0 {
		return nil
	}
	sec, frac := math.Modf(ts)
	t := time.Unix(int64(sec), int64(frac*1e9)).UTC()
	return &t
}

func millisToTime(value string) *time.Time {
	ms, err := strconv.ParseFloat(value, 64)
	if err != nil || ms <= 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return nil
	}
	t := time.UnixMilli(int64(ms)).UTC()
	return &t
}

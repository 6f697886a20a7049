package models

import "time"

type BackendActionResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type QueryResult struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    *QueryData `json:"data,omitempty"`
}

type QueryData struct {
	ResultType string         `json:"resultType"`
	Result     []MetricSeries `json:"result"`
}

type MetricSeries struct {
	Metric map[string]string `json:"metric"`
	Value  *Sample           `json:"value,omitempty"`
	Values []Sample          `json:"values,omitempty"`
}

type FetchState string

const (
	FetchStateLoaded FetchState = "loaded"
	FetchStateError  FetchState = "error"
)

type SystemStatus struct {
	IsOnline    bool       `json:"isOnline"`
	LastChecked *time.Time `json:"lastChecked"`
	LastSync    *time.Time `json:"lastSync"`
	FetchState  FetchState `json:"fetchState"`
	Error       *string    `json:"error"`
}

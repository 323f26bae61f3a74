package model

import "time"

// SummaryStatistics are the aggregate numbers computed from one batch of
// normalized test rows.
type SummaryStatistics struct {
	TotalExecutions      int            `json:"total_executions"`
	UniqueTests          int            `json:"unique_tests"`
	StatusDistribution   map[string]int `json:"status_distribution"`
	PlatformDistribution map[string]int `json:"platform_distribution"`
	AverageDuration      *float64       `json:"average_duration,omitempty"`
	FailureRate          float64        `json:"failure_rate"`
	DateRangeStart       *time.Time     `json:"date_range_start,omitempty"`
	DateRangeEnd         *time.Time     `json:"date_range_end,omitempty"`
	FlakyTests           []string       `json:"flaky_tests,omitempty"`
}

// QueryRequest is the API payload for a single query.
type QueryRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id"`
}

// ResponseMetadata annotates a query response with pipeline details. Error
// is set only on a degraded response.
type ResponseMetadata struct {
	QueryType           QueryType          `json:"query_type,omitempty"`
	ResponseTimeSeconds float64            `json:"response_time_seconds"`
	DataPoints          int                `json:"data_points"`
	Statistics          *SummaryStatistics `json:"statistics,omitempty"`
	Error               string             `json:"error,omitempty"`
}

// QueryResponse is the outcome of one pipeline run. Degraded marks a
// best-effort fallback answer produced after an internal failure; callers can
// branch on it instead of parsing the answer text.
type QueryResponse struct {
	Answer    string            `json:"answer"`
	QueryTime time.Time         `json:"query_time"`
	SessionID string            `json:"session_id,omitempty"`
	Degraded  bool              `json:"degraded,omitempty"`
	Metadata  *ResponseMetadata `json:"metadata,omitempty"`
}

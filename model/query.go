package model

type QueryType string

const (
	QueryTypeStatusCheck      QueryType = "status_check"
	QueryTypeHistory          QueryType = "history_query"
	QueryTypeStatistics       QueryType = "statistics"
	QueryTypeFlakyAnalysis    QueryType = "flaky_analysis"
	QueryTypeOwner            QueryType = "owner_query"
	QueryTypePlatformSpecific QueryType = "platform_specific"
	QueryTypeGeneral          QueryType = "general"
)

// TimeFilter restricts a query to the last DaysBack days.
type TimeFilter struct {
	DaysBack int `json:"days_back"`
}

// FilterCriteria carries the structured filters extracted from a query.
// Every field is optional; a nil/empty field means no constraint.
type FilterCriteria struct {
	TimeFilter *TimeFilter `json:"time_filter,omitempty"`
	Status     string      `json:"status,omitempty"`
	Platform   string      `json:"platform,omitempty"`
	Owner      string      `json:"owner,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
}

// QueryIntent is the structured form of one natural-language query. It is
// built once by the classifier and never mutated afterwards.
type QueryIntent struct {
	OriginalQuery       string         `json:"original_query"`
	QueryType           QueryType      `json:"query_type"`
	Filters             FilterCriteria `json:"filters"`
	TestNames           []string       `json:"test_names,omitempty"`
	RequiresAggregation bool           `json:"requires_aggregation"`
}

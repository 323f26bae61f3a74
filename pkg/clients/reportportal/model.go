package reportportal

import "encoding/json"

// Filter parameter names understood by the ReportPortal API. Values are
// passed through verbatim.
const (
	FilterGteStartTime  = "filter.gte.startTime"
	FilterEqStatus      = "filter.eq.status"
	FilterHasAttributes = "filter.has.attributes"
	FilterEqLaunchID    = "filter.eq.launchId"
	FilterEqName        = "filter.eq.name"

	ParamPageSize = "page.size"
	ParamPage     = "page.page"
	ParamPageSort = "page.sort"

	SortStartTimeDesc = "startTime,DESC"
)

// page is the paging envelope every list endpoint returns.
type page struct {
	Number     int `json:"number"`
	TotalPages int `json:"totalPages"`
}

type listResponse struct {
	Content json.RawMessage `json:"content"`
	Page    page            `json:"page"`
}

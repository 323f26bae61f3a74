package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/paraggit/reportportal-llm-query/constant"
	"github.com/paraggit/reportportal-llm-query/model"
)

const unknownAttribute = "unknown"

// Row is one normalized test execution, flattened for aggregation and for
// the tabular LLM context.
type Row struct {
	TestID          string     `json:"test_id"`
	TestName        string     `json:"test_name"`
	Status          string     `json:"status"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty"`
	Platform        string     `json:"platform"`
	Owner           string     `json:"owner"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	Tags            string     `json:"tags"`
	LaunchID        string     `json:"launch_id"`
	ParentID        string     `json:"parent_id,omitempty"`
}

// Normalize flattens raw executions into rows. Duration stays unset unless
// both timestamps are present.
func Normalize(records []model.TestExecution) []Row {
	rows := make([]Row, 0, len(records))

	for i := range records {
		test := &records[i]

		row := Row{
			TestID:    test.ID,
			TestName:  test.Name,
			Status:    test.Status,
			StartTime: test.StartDateTime(),
			Platform:  attributeOrUnknown(test.Attributes, "platform"),
			Owner:     attributeOrUnknown(test.Attributes, "owner"),
			Tags:      strings.Join(test.Tags, ","),
			LaunchID:  test.LaunchID,
			ParentID:  test.ParentID,
		}

		if test.EndTime != 0 {
			endTime := time.UnixMilli(test.EndTime)
			row.EndTime = &endTime
		}
		if duration, ok := test.Duration(); ok {
			row.DurationSeconds = &duration
		}
		if test.Issue != nil {
			row.ErrorMessage = test.Issue.Comment
		}

		rows = append(rows, row)
	}

	return rows
}

// Summarize computes aggregate statistics over rows. Empty input yields an
// empty statistics object with zero counts, never an error.
func Summarize(rows []Row) model.SummaryStatistics {
	stats := model.SummaryStatistics{
		StatusDistribution:   map[string]int{},
		PlatformDistribution: map[string]int{},
	}
	if len(rows) == 0 {
		return stats
	}

	stats.TotalExecutions = len(rows)

	uniqueNames := map[string]bool{}
	failed := 0
	var durationSum float64
	durationCount := 0
	minStart, maxStart := rows[0].StartTime, rows[0].StartTime

	// passed/failed observation per test name, in first-encountered order so
	// the flaky list is stable for a given input.
	type nameStatus struct {
		passed bool
		failed bool
	}
	statusByName := map[string]*nameStatus{}
	var nameOrder []string

	for i := range rows {
		row := &rows[i]

		uniqueNames[row.TestName] = true
		stats.StatusDistribution[row.Status]++
		stats.PlatformDistribution[row.Platform]++

		if row.Status == model.StatusFailed {
			failed++
		}
		if row.DurationSeconds != nil {
			durationSum += *row.DurationSeconds
			durationCount++
		}
		if row.StartTime.Before(minStart) {
			minStart = row.StartTime
		}
		if row.StartTime.After(maxStart) {
			maxStart = row.StartTime
		}

		ns, ok := statusByName[row.TestName]
		if !ok {
			ns = &nameStatus{}
			statusByName[row.TestName] = ns
			nameOrder = append(nameOrder, row.TestName)
		}
		switch row.Status {
		case model.StatusPassed:
			ns.passed = true
		case model.StatusFailed:
			ns.failed = true
		}
	}

	stats.UniqueTests = len(uniqueNames)
	stats.FailureRate = float64(failed) / float64(len(rows)) * 100
	if durationCount > 0 {
		avg := durationSum / float64(durationCount)
		stats.AverageDuration = &avg
	}
	stats.DateRangeStart = &minStart
	stats.DateRangeEnd = &maxStart

	// flaky: seen both passing and failing within the queried window
	for _, name := range nameOrder {
		ns := statusByName[name]
		if ns.passed && ns.failed {
			stats.FlakyTests = append(stats.FlakyTests, name)
			if len(stats.FlakyTests) == 10 {
				break
			}
		}
	}

	return stats
}

// FormatContext renders at most maxRows rows as a fixed-column table for the
// generation model. Empty input yields a literal placeholder.
func FormatContext(rows []Row, maxRows int) string {
	if len(rows) == 0 {
		return "No test data available."
	}
	if maxRows <= 0 {
		maxRows = constant.DefaultContextMaxRows
	}
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}

	var b strings.Builder
	b.WriteString("test_name | status | start_time | platform | owner | error_message\n")
	for i := range rows {
		row := &rows[i]
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s | %s\n",
			row.TestName,
			row.Status,
			row.StartTime.Format("2006-01-02 15:04:05"),
			row.Platform,
			row.Owner,
			row.ErrorMessage,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func attributeOrUnknown(attributes map[string]string, key string) string {
	if v, ok := attributes[key]; ok && v != "" {
		return v
	}
	return unknownAttribute
}

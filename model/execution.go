package model

import (
	"encoding/json"
	"time"

	"github.com/spf13/cast"
)

const (
	StatusFailed  = "FAILED"
	StatusPassed  = "PASSED"
	StatusSkipped = "SKIPPED"
)

// TestIssue is the failure annotation attached to a failed test item.
type TestIssue struct {
	IssueType      string `json:"issueType,omitempty"`
	Comment        string `json:"comment,omitempty"`
	AutoAnalyzed   bool   `json:"autoAnalyzed,omitempty"`
	IgnoreAnalysis bool   `json:"ignoreAnalysis,omitempty"`
}

// TestExecution is one executed test case as reported by ReportPortal.
// Timestamps are unix milliseconds. EndTime of 0 means the item never
// finished; duration is undefined in that case.
type TestExecution struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Type       string            `json:"type,omitempty"`
	StartTime  int64             `json:"startTime"`
	EndTime    int64             `json:"endTime,omitempty"`
	Status     string            `json:"status"`
	LaunchID   string            `json:"launchId"`
	ParentID   string            `json:"parentId,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Issue      *TestIssue        `json:"issue,omitempty"`
}

// Duration returns the execution duration in seconds, and false when either
// timestamp is missing.
func (t *TestExecution) Duration() (float64, bool) {
	if t.StartTime == 0 || t.EndTime == 0 {
		return 0, false
	}
	return float64(t.EndTime-t.StartTime) / 1000, true
}

func (t *TestExecution) StartDateTime() time.Time {
	return time.UnixMilli(t.StartTime)
}

// Launch is a top-level test run grouping many test items.
type Launch struct {
	ID         string            `json:"id"`
	UUID       string            `json:"uuid,omitempty"`
	Name       string            `json:"name"`
	Number     int               `json:"number,omitempty"`
	StartTime  int64             `json:"startTime"`
	EndTime    int64             `json:"endTime,omitempty"`
	Status     string            `json:"status"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Mode       string            `json:"mode,omitempty"`
}

// rawExecution mirrors the wire shape. ReportPortal is loose about types:
// ids arrive as numbers or strings, timestamps as ints or floats, attributes
// as a map or as a list of {key,value} pairs.
type rawExecution struct {
	ID         json.RawMessage `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	StartTime  json.Number     `json:"startTime"`
	EndTime    json.Number     `json:"endTime"`
	Status     string          `json:"status"`
	LaunchID   json.RawMessage `json:"launchId"`
	ParentID   json.RawMessage `json:"parentId"`
	Attributes json.RawMessage `json:"attributes"`
	Tags       []string        `json:"tags"`
	Issue      *TestIssue      `json:"issue"`
}

type rawLaunch struct {
	ID         json.RawMessage `json:"id"`
	UUID       string          `json:"uuid"`
	Name       string          `json:"name"`
	Number     int             `json:"number"`
	StartTime  json.Number     `json:"startTime"`
	EndTime    json.Number     `json:"endTime"`
	Status     string          `json:"status"`
	Attributes json.RawMessage `json:"attributes"`
	Mode       string          `json:"mode"`
}

func (t *TestExecution) UnmarshalJSON(data []byte) error {
	var raw rawExecution
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.ID = decodeFlexibleID(raw.ID)
	t.Name = raw.Name
	t.Type = raw.Type
	t.StartTime = decodeMillis(raw.StartTime)
	t.EndTime = decodeMillis(raw.EndTime)
	t.Status = raw.Status
	t.LaunchID = decodeFlexibleID(raw.LaunchID)
	t.ParentID = decodeFlexibleID(raw.ParentID)
	t.Attributes = decodeAttributes(raw.Attributes)
	t.Tags = raw.Tags
	t.Issue = raw.Issue
	return nil
}

func (l *Launch) UnmarshalJSON(data []byte) error {
	var raw rawLaunch
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	l.ID = decodeFlexibleID(raw.ID)
	l.UUID = raw.UUID
	l.Name = raw.Name
	l.Number = raw.Number
	l.StartTime = decodeMillis(raw.StartTime)
	l.EndTime = decodeMillis(raw.EndTime)
	l.Status = raw.Status
	l.Attributes = decodeAttributes(raw.Attributes)
	l.Mode = raw.Mode
	return nil
}

func decodeFlexibleID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func decodeMillis(n json.Number) int64 {
	if n == "" {
		return 0
	}
	return cast.ToInt64(cast.ToFloat64(n.String()))
}

func decodeAttributes(raw json.RawMessage) map[string]string {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]string{}
	}

	var m map[string]string
	if err := json.Unmarshal(raw, &m); err == nil {
		return m
	}

	var pairs []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	result := map[string]string{}
	if err := json.Unmarshal(raw, &pairs); err == nil {
		for _, p := range pairs {
			if p.Key != "" {
				result[p.Key] = p.Value
			}
		}
	}
	return result
}

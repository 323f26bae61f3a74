// Package query implements the query-intent pipeline core: classification of
// free-text questions, normalization and aggregation of fetched test data,
// and prompt construction for the generation model.
package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/paraggit/reportportal-llm-query/model"
)

// timeRule maps one text pattern to a days-back value. Rules are evaluated
// in declaration order; the first match wins.
type timeRule struct {
	pattern *regexp.Regexp
	parse   func(match []string, now time.Time) int
}

// statusRule maps a status value to its synonym group. Evaluated in order;
// the first group with any matching keyword wins.
type statusRule struct {
	status   string
	keywords []string
}

type typeRule struct {
	queryType model.QueryType
	keywords  []string
}

var (
	quotedNamePattern = regexp.MustCompile(`"([^"]+)"`)
	testNamePattern   = regexp.MustCompile(`test_\w+`)
	ownerPattern      = regexp.MustCompile(`owned by (\w+)`)
)

// knownPlatforms is the fixed enumeration matched as substrings, in order.
var knownPlatforms = []string{"aws", "gcp", "azure", "vsphere", "openstack"}

var aggregationKeywords = []string{
	"how many", "count", "total", "average", "mean",
	"distribution", "percentage", "rate", "top", "most",
}

// Classifier turns raw query text into a structured QueryIntent. It never
// fails: an unrecognized query degrades to the general type with empty
// filters.
type Classifier struct {
	typeRules   []typeRule
	timeRules   []timeRule
	statusRules []statusRule

	now func() time.Time
}

func NewClassifier() *Classifier {
	return &Classifier{
		// Priority order matters: a query like "flaky tests on aws" carries
		// both flaky and platform keywords and must classify as flaky.
		typeRules: []typeRule{
			{model.QueryTypeFlakyAnalysis, []string{"flaky", "unstable", "intermittent"}},
			{model.QueryTypeOwner, []string{"owner", "owned by", "who owns"}},
			{model.QueryTypeStatistics, []string{"statistics", "summary", "report"}},
			{model.QueryTypeHistory, []string{"history", "trend", "over time"}},
			{model.QueryTypePlatformSpecific, []string{"platform", "aws", "gcp", "azure"}},
			{model.QueryTypeStatusCheck, []string{"status", "failed", "passed"}},
		},
		timeRules: []timeRule{
			{regexp.MustCompile(`last (\d+) days?`), parseDays},
			{regexp.MustCompile(`past (\d+) weeks?`), parseWeeks},
			{regexp.MustCompile(`last (\d+) hours?`), parseHours},
			{regexp.MustCompile(`since (\d{4}-\d{2}-\d{2})`), parseSinceDate},
			{regexp.MustCompile(`today`), fixedDays(1)},
			{regexp.MustCompile(`yesterday`), fixedDays(1)},
			{regexp.MustCompile(`this week`), fixedDays(7)},
			{regexp.MustCompile(`last week`), fixedDays(14)},
		},
		statusRules: []statusRule{
			{"failed", []string{"failed", "failure", "failing", "broken"}},
			{"passed", []string{"passed", "passing", "successful", "green"}},
			{"skipped", []string{"skipped", "skip", "ignored"}},
			{"all", []string{"all", "any", "every"}},
		},
		now: time.Now,
	}
}

// Classify extracts the intent and parameters of one natural-language query.
func (c *Classifier) Classify(text string) model.QueryIntent {
	lower := strings.ToLower(text)

	return model.QueryIntent{
		OriginalQuery:       text,
		QueryType:           c.identifyQueryType(lower),
		Filters:             c.extractFilters(lower),
		TestNames:           c.extractTestNames(text),
		RequiresAggregation: c.requiresAggregation(lower),
	}
}

func (c *Classifier) identifyQueryType(lower string) model.QueryType {
	for _, rule := range c.typeRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.queryType
			}
		}
	}
	return model.QueryTypeGeneral
}

func (c *Classifier) extractFilters(lower string) model.FilterCriteria {
	filters := model.FilterCriteria{}

	for _, rule := range c.timeRules {
		if match := rule.pattern.FindStringSubmatch(lower); match != nil {
			filters.TimeFilter = &model.TimeFilter{DaysBack: rule.parse(match, c.now())}
			break
		}
	}

	for _, rule := range c.statusRules {
		if containsAny(lower, rule.keywords) {
			filters.Status = rule.status
			break
		}
	}

	for _, platform := range knownPlatforms {
		if strings.Contains(lower, platform) {
			filters.Platform = platform
			break
		}
	}

	if match := ownerPattern.FindStringSubmatch(lower); match != nil {
		filters.Owner = match[1]
	}

	return filters
}

// extractTestNames collects quoted substrings and test_-prefixed identifiers,
// deduplicated. Order is not significant.
func (c *Classifier) extractTestNames(text string) []string {
	seen := map[string]bool{}
	var names []string

	for _, match := range quotedNamePattern.FindAllStringSubmatch(text, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	for _, match := range testNamePattern.FindAllString(text, -1) {
		if !seen[match] {
			seen[match] = true
			names = append(names, match)
		}
	}
	return names
}

func (c *Classifier) requiresAggregation(lower string) bool {
	return containsAny(lower, aggregationKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

func parseDays(match []string, _ time.Time) int {
	n, _ := strconv.Atoi(match[1])
	return n
}

func parseWeeks(match []string, _ time.Time) int {
	n, _ := strconv.Atoi(match[1])
	return n * 7
}

// parseHours rounds any hour window up to one day, the remote system's
// smallest useful unit here.
func parseHours(_ []string, _ time.Time) int {
	return 1
}

func parseSinceDate(match []string, now time.Time) int {
	date, err := time.Parse("2006-01-02", match[1])
	if err != nil {
		return 0
	}
	days := int(now.Sub(date).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func fixedDays(n int) func([]string, time.Time) int {
	return func([]string, time.Time) int { return n }
}

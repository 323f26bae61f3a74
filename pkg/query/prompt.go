package query

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/paraggit/reportportal-llm-query/constant"
	"github.com/paraggit/reportportal-llm-query/model"
)

// Prompt is the two-part prompt handed to the generation model.
type Prompt struct {
	System string
	User   string
}

func (p Prompt) Messages() []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: p.System},
		{Role: openai.ChatMessageRoleUser, Content: p.User},
	}
}

// ConstructPrompt selects a template by intent type and fills it with the
// tabular context and the formatted summary statistics.
func ConstructPrompt(intent model.QueryIntent, context string, stats *model.SummaryStatistics) Prompt {
	var user string
	switch intent.QueryType {
	case model.QueryTypeFlakyAnalysis:
		user = fmt.Sprintf(constant.FlakyAnalysisPromptTemplate, context, intent.OriginalQuery)
	case model.QueryTypeStatistics:
		user = fmt.Sprintf(constant.SummaryStatisticsPromptTemplate, FormatSummaryStats(stats), context, intent.OriginalQuery)
	default:
		user = fmt.Sprintf(constant.TestAnalysisPromptTemplate, context, intent.OriginalQuery)
	}

	return Prompt{
		System: constant.SystemPrompt,
		User:   user,
	}
}

// FormatSummaryStats renders statistics as readable lines for prompt use.
func FormatSummaryStats(stats *model.SummaryStatistics) string {
	if stats == nil || stats.TotalExecutions == 0 {
		return "No summary statistics available."
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Total Executions: %d", stats.TotalExecutions))
	lines = append(lines, fmt.Sprintf("Unique Tests: %d", stats.UniqueTests))
	lines = append(lines, fmt.Sprintf("Overall Failure Rate: %.2f%%", stats.FailureRate))

	if len(stats.StatusDistribution) > 0 {
		lines = append(lines, "", "Status Distribution:")
		for status, count := range stats.StatusDistribution {
			lines = append(lines, fmt.Sprintf("  - %s: %d", status, count))
		}
	}

	if len(stats.PlatformDistribution) > 0 {
		lines = append(lines, "", "Platform Distribution:")
		for platform, count := range stats.PlatformDistribution {
			lines = append(lines, fmt.Sprintf("  - %s: %d", platform, count))
		}
	}

	if len(stats.FlakyTests) > 0 {
		lines = append(lines, "", fmt.Sprintf("Flaky Tests Detected: %d", len(stats.FlakyTests)))
		lines = append(lines, "Top Flaky Tests:")
		top := stats.FlakyTests
		if len(top) > 5 {
			top = top[:5]
		}
		for _, test := range top {
			lines = append(lines, fmt.Sprintf("  - %s", test))
		}
	}

	return strings.Join(lines, "\n")
}

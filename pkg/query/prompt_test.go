package query

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paraggit/reportportal-llm-query/model"
)

func TestConstructPromptSelectsTemplate(t *testing.T) {
	stats := &model.SummaryStatistics{TotalExecutions: 2, UniqueTests: 2}

	flaky := ConstructPrompt(model.QueryIntent{
		OriginalQuery: "which tests are flaky?",
		QueryType:     model.QueryTypeFlakyAnalysis,
	}, "ctx-table", stats)
	assert.Contains(t, flaky.User, "ctx-table")
	assert.Contains(t, flaky.User, "which tests are flaky?")
	assert.Contains(t, flaky.User, "flaky")

	statistics := ConstructPrompt(model.QueryIntent{
		OriginalQuery: "summary please",
		QueryType:     model.QueryTypeStatistics,
	}, "ctx-table", stats)
	assert.Contains(t, statistics.User, "Total Executions: 2")

	general := ConstructPrompt(model.QueryIntent{
		OriginalQuery: "what failed?",
		QueryType:     model.QueryTypeStatusCheck,
	}, "ctx-table", stats)
	assert.Contains(t, general.User, "ctx-table")
	assert.Contains(t, general.User, "what failed?")
}

func TestPromptMessages(t *testing.T) {
	p := Prompt{System: "sys", User: "usr"}

	messages := p.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, "sys", messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)
	assert.Equal(t, "usr", messages[1].Content)
}

func TestFormatSummaryStatsEmpty(t *testing.T) {
	assert.Equal(t, "No summary statistics available.", FormatSummaryStats(nil))
	assert.Equal(t, "No summary statistics available.", FormatSummaryStats(&model.SummaryStatistics{}))
}

func TestFormatSummaryStatsTopFlaky(t *testing.T) {
	stats := &model.SummaryStatistics{
		TotalExecutions: 10,
		UniqueTests:     7,
		FailureRate:     30,
		FlakyTests:      []string{"a", "b", "c", "d", "e", "f", "g"},
	}

	out := FormatSummaryStats(stats)
	assert.Contains(t, out, "Flaky Tests Detected: 7")
	assert.Contains(t, out, "  - e")
	assert.NotContains(t, out, "  - f")
}

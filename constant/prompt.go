package constant

// Prompt templates used when constructing the two-part LLM prompt.
// Placeholders are filled by pkg/query.ConstructPrompt.

const (
	SystemPrompt = `You are an intelligent assistant for analyzing software test execution data from Report Portal.
You help users understand test results, identify patterns, and provide insights about test stability and failures.
Always be specific and data-driven in your responses.`

	TestAnalysisPromptTemplate = `Based on the following test execution data:

%s

User Query: %s

Please provide a clear, concise analysis addressing the user's question.
Include specific test names, failure reasons, and relevant statistics where applicable.`

	FlakyAnalysisPromptTemplate = `Analyze the following test execution history to identify flaky tests:

%s

A flaky test is one that has both passed and failed without code changes.

User Query: %s

Identify flaky tests, their failure patterns, and potential causes.`

	SummaryStatisticsPromptTemplate = `Generate a summary report based on the following test data:

%s

Recent Test Executions:
%s

User Query: %s

Provide a comprehensive summary with key metrics and insights.`
)

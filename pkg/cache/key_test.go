package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/paraggit/reportportal-llm-query/model"
)

func TestBuildQueryKeyDeterministic(t *testing.T) {
	filters := model.FilterCriteria{
		TimeFilter: &model.TimeFilter{DaysBack: 7},
		Status:     "failed",
		Platform:   "aws",
	}

	k1 := BuildQueryKey("show failed tests", filters)
	k2 := BuildQueryKey("show failed tests", filters)
	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "query:"))
}

func TestBuildQueryKeyNormalizesQueryText(t *testing.T) {
	filters := model.FilterCriteria{}

	assert.Equal(t,
		BuildQueryKey("Show Failed Tests", filters),
		BuildQueryKey("  show failed tests  ", filters),
	)
}

func TestBuildQueryKeyDistinguishesFilters(t *testing.T) {
	base := model.FilterCriteria{Status: "failed"}

	k := BuildQueryKey("q", base)
	assert.NotEqual(t, k, BuildQueryKey("q", model.FilterCriteria{Status: "passed"}))
	assert.NotEqual(t, k, BuildQueryKey("q", model.FilterCriteria{Status: "failed", Platform: "aws"}))
	assert.NotEqual(t, k, BuildQueryKey("q", model.FilterCriteria{Status: "failed", TimeFilter: &model.TimeFilter{DaysBack: 7}}))
	assert.NotEqual(t, k, BuildQueryKey("other query", base))
}

func TestBuildQueryKeyZeroDaysBackDiffersFromNoTimeFilter(t *testing.T) {
	assert.NotEqual(t,
		BuildQueryKey("q", model.FilterCriteria{TimeFilter: &model.TimeFilter{DaysBack: 0}}),
		BuildQueryKey("q", model.FilterCriteria{}),
	)
}

func TestBuildQueryKeyTagOrderIrrelevant(t *testing.T) {
	assert.Equal(t,
		BuildQueryKey("q", model.FilterCriteria{Tags: []string{"smoke", "nightly"}}),
		BuildQueryKey("q", model.FilterCriteria{Tags: []string{"nightly", "smoke"}}),
	)
}

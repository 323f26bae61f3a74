package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paraggit/reportportal-llm-query/model"
)

func TestQueryValid(t *testing.T) {
	assert.Nil(t, Query("show me failed tests"))
	assert.Nil(t, Query("  padded but fine  "))
}

func TestQueryEmpty(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		err := Query(q)
		require.NotNil(t, err, "query: %q", q)
		assert.Equal(t, model.ErrorQueryEmpty, err.Code)
	}
}

func TestQueryTooShort(t *testing.T) {
	err := Query("ab")
	require.NotNil(t, err)
	assert.Equal(t, model.ErrorQueryTooShort, err.Code)
}

func TestQueryTooLong(t *testing.T) {
	err := Query(strings.Repeat("x", MaxQueryLength+1))
	require.NotNil(t, err)
	assert.Equal(t, model.ErrorQueryTooLong, err.Code)
}

func TestQueryUnsafe(t *testing.T) {
	cases := []string{
		"<script>alert(1)</script>",
		"<SCRIPT>alert(1)</SCRIPT>",
		"javascript:alert(1)",
		"exec ( 'rm -rf' )",
		"eval(payload)",
		"__import__('os')",
	}
	for _, q := range cases {
		err := Query(q)
		require.NotNil(t, err, "query: %q", q)
		assert.Equal(t, model.ErrorQueryUnsafe, err.Code, "query: %q", q)
	}
}

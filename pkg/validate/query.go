package validate

import (
	"regexp"
	"strings"

	"github.com/paraggit/reportportal-llm-query/model"
)

const (
	MinQueryLength = 3
	MaxQueryLength = 1000
)

// unsafePatterns rejects obvious injection attempts before the query text is
// embedded into prompts or stored in history.
var unsafePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)exec\s*\(`),
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`__import__`),
}

// Query checks an incoming query string and returns a coded error when it is
// unusable.
func Query(query string) *model.Error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return model.NewError(model.ErrorQueryEmpty, nil)
	}
	if len(trimmed) < MinQueryLength {
		return model.NewError(model.ErrorQueryTooShort, nil)
	}
	if len(trimmed) > MaxQueryLength {
		return model.NewError(model.ErrorQueryTooLong, nil)
	}

	for _, p := range unsafePatterns {
		if p.MatchString(trimmed) {
			return model.NewError(model.ErrorQueryUnsafe, nil)
		}
	}
	return nil
}

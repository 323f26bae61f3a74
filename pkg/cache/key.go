package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/paraggit/reportportal-llm-query/model"
)

// BuildQueryKey derives the cache key for one (query text, filters) pair.
// The key is a digest over a canonical serialization of the normalized query
// and every filter field, so identical inputs map to identical keys across
// process restarts. Tag order is irrelevant.
func BuildQueryKey(query string, filters model.FilterCriteria) string {
	var b strings.Builder

	b.WriteString("q=")
	b.WriteString(strings.ToLower(strings.TrimSpace(query)))
	b.WriteByte('\n')

	daysBack := -1
	if filters.TimeFilter != nil {
		daysBack = filters.TimeFilter.DaysBack
	}
	fmt.Fprintf(&b, "days_back=%d\n", daysBack)
	fmt.Fprintf(&b, "status=%s\n", filters.Status)
	fmt.Fprintf(&b, "platform=%s\n", filters.Platform)
	fmt.Fprintf(&b, "owner=%s\n", filters.Owner)

	tags := append([]string(nil), filters.Tags...)
	sort.Strings(tags)
	fmt.Fprintf(&b, "tags=%s", strings.Join(tags, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return "query:" + hex.EncodeToString(sum[:])
}

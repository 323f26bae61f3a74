package answer

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paraggit/reportportal-llm-query/model"
	"github.com/paraggit/reportportal-llm-query/pkg/clients/reportportal"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, payload interface{}, _ time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = raw
	return nil
}

type fakeSource struct {
	mu           sync.Mutex
	launches     []model.Launch
	itemsByID    map[string][]model.TestExecution
	launchCalls  int
	itemCalls    int
	lastFilters  map[string]string
	launchErr    error
	itemErr      error
	itemCallsFor []string
}

func (f *fakeSource) GetLaunches(_ context.Context, filterParams map[string]string, _ int) ([]model.Launch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.launchCalls++
	f.lastFilters = filterParams
	if f.launchErr != nil {
		return nil, f.launchErr
	}
	return f.launches, nil
}

func (f *fakeSource) GetTestItems(_ context.Context, launchID string) ([]model.TestExecution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.itemCalls++
	f.itemCallsFor = append(f.itemCallsFor, launchID)
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	return f.itemsByID[launchID], nil
}

type fakeGenerator struct {
	answer     string
	chunks     []string
	err        error
	lastPrompt []openai.ChatCompletionMessage
}

func (f *fakeGenerator) PostChatCompletionsNonStreamContent(_ context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	f.lastPrompt = messages
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) PostChatCompletionsStream(_ context.Context, messages []openai.ChatCompletionMessage, onChunk func(string) error) error {
	f.lastPrompt = messages
	if f.err != nil {
		return f.err
	}
	for _, chunk := range f.chunks {
		if err := onChunk(chunk); err != nil {
			return nil
		}
	}
	return nil
}

func item(id, name, status, launchID string) model.TestExecution {
	return model.TestExecution{
		ID:        id,
		Name:      name,
		Status:    status,
		StartTime: 1700000000000,
		LaunchID:  launchID,
	}
}

func newTestService(source *fakeSource, gen *fakeGenerator) (*Service, *fakeCache) {
	c := newFakeCache()
	svc := NewService(c, source, gen, Options{
		CacheTTL:       time.Hour,
		LaunchLimit:    10,
		LaunchPageSize: 50,
		FetchWorkers:   3,
		ContextMaxRows: 50,
	})
	return svc, c
}

func TestAnswerSuccess(t *testing.T) {
	source := &fakeSource{
		launches: []model.Launch{{ID: "1", Name: "nightly"}},
		itemsByID: map[string][]model.TestExecution{
			"1": {
				item("a", "test_login", model.StatusFailed, "1"),
				item("b", "test_login", model.StatusPassed, "1"),
			},
		},
	}
	gen := &fakeGenerator{answer: "test_login is flaky"}
	svc, _ := newTestService(source, gen)

	res := svc.Answer(context.Background(), "is test_login flaky?", "sess-1")

	assert.False(t, res.Degraded)
	assert.Equal(t, "test_login is flaky", res.Answer)
	assert.Equal(t, "sess-1", res.SessionID)
	require.NotNil(t, res.Metadata)
	assert.Equal(t, model.QueryTypeFlakyAnalysis, res.Metadata.QueryType)
	assert.Equal(t, 2, res.Metadata.DataPoints)
	require.NotNil(t, res.Metadata.Statistics)
	assert.Equal(t, []string{"test_login"}, res.Metadata.Statistics.FlakyTests)
	assert.Empty(t, res.Metadata.Error)

	// the prompt carries the fetched data
	require.Len(t, gen.lastPrompt, 2)
	assert.Contains(t, gen.lastPrompt[1].Content, "test_login")
}

func TestAnswerUsesCacheForIdenticalQueries(t *testing.T) {
	source := &fakeSource{
		launches: []model.Launch{{ID: "1"}},
		itemsByID: map[string][]model.TestExecution{
			"1": {item("a", "test_api", model.StatusPassed, "1")},
		},
	}
	gen := &fakeGenerator{answer: "ok"}
	svc, _ := newTestService(source, gen)

	ctx := context.Background()
	res1 := svc.Answer(ctx, "status of test_api", "s1")
	res2 := svc.Answer(ctx, "status of test_api", "s2")

	assert.False(t, res1.Degraded)
	assert.False(t, res2.Degraded)
	assert.Equal(t, 1, source.launchCalls)
	assert.Equal(t, 1, source.itemCalls)
	assert.Equal(t, 1, res2.Metadata.DataPoints)
}

func TestAnswerFilterTranslation(t *testing.T) {
	source := &fakeSource{launches: []model.Launch{}}
	gen := &fakeGenerator{answer: "nothing ran"}
	svc, _ := newTestService(source, gen)

	res := svc.Answer(context.Background(), "show me failed tests on aws in the last 7 days", "s1")
	assert.False(t, res.Degraded)

	require.NotNil(t, source.lastFilters)
	assert.Equal(t, "FAILED", source.lastFilters[reportportal.FilterEqStatus])
	assert.Equal(t, "platform:aws", source.lastFilters[reportportal.FilterHasAttributes])
	assert.NotEmpty(t, source.lastFilters[reportportal.FilterGteStartTime])
}

func TestAnswerCapsLaunches(t *testing.T) {
	var launches []model.Launch
	items := map[string][]model.TestExecution{}
	for _, id := range []string{"1", "2", "3", "4"} {
		launches = append(launches, model.Launch{ID: id})
		items[id] = []model.TestExecution{item("i"+id, "test_x", model.StatusPassed, id)}
	}
	source := &fakeSource{launches: launches, itemsByID: items}
	gen := &fakeGenerator{answer: "ok"}

	svc := NewService(newFakeCache(), source, gen, Options{
		CacheTTL:       time.Hour,
		LaunchLimit:    2,
		LaunchPageSize: 50,
		FetchWorkers:   2,
		ContextMaxRows: 50,
	})

	res := svc.Answer(context.Background(), "how is test_x doing", "s1")
	assert.False(t, res.Degraded)
	assert.Equal(t, 2, source.itemCalls)
	assert.ElementsMatch(t, []string{"1", "2"}, source.itemCallsFor)
	assert.Equal(t, 2, res.Metadata.DataPoints)
}

func TestAnswerFiltersByTestName(t *testing.T) {
	source := &fakeSource{
		launches: []model.Launch{{ID: "1"}},
		itemsByID: map[string][]model.TestExecution{
			"1": {
				item("a", "test_login", model.StatusFailed, "1"),
				item("b", "test_checkout", model.StatusPassed, "1"),
			},
		},
	}
	gen := &fakeGenerator{answer: "ok"}
	svc, _ := newTestService(source, gen)

	res := svc.Answer(context.Background(), "what happened to test_login", "s1")
	assert.False(t, res.Degraded)
	assert.Equal(t, 1, res.Metadata.DataPoints)
}

func TestAnswerDegradedOnFetchError(t *testing.T) {
	source := &fakeSource{launchErr: assert.AnError}
	gen := &fakeGenerator{answer: "unreachable"}
	svc, _ := newTestService(source, gen)

	res := svc.Answer(context.Background(), "show failed tests", "s1")

	assert.True(t, res.Degraded)
	assert.Contains(t, res.Answer, "I encountered an error while processing your query:")
	require.NotNil(t, res.Metadata)
	assert.Equal(t, model.QueryTypeStatusCheck, res.Metadata.QueryType)
	assert.Equal(t, assert.AnError.Error(), res.Metadata.Error)
	assert.Nil(t, res.Metadata.Statistics)
}

func TestAnswerDegradedOnGenerationError(t *testing.T) {
	source := &fakeSource{launches: []model.Launch{}}
	gen := &fakeGenerator{err: assert.AnError}
	svc, _ := newTestService(source, gen)

	res := svc.Answer(context.Background(), "show failed tests", "s1")

	assert.True(t, res.Degraded)
	assert.Contains(t, res.Answer, assert.AnError.Error())
}

func TestAnswerStream(t *testing.T) {
	source := &fakeSource{
		launches: []model.Launch{{ID: "1"}},
		itemsByID: map[string][]model.TestExecution{
			"1": {item("a", "test_x", model.StatusPassed, "1")},
		},
	}
	gen := &fakeGenerator{chunks: []string{"test_x ", "looks ", "healthy"}}
	svc, _ := newTestService(source, gen)

	var got strings.Builder
	svc.AnswerStream(context.Background(), "status of test_x", "s1", func(chunk string) error {
		got.WriteString(chunk)
		return nil
	})

	assert.Equal(t, "test_x looks healthy", got.String())
}

func TestAnswerStreamEmitsErrorChunk(t *testing.T) {
	source := &fakeSource{launchErr: assert.AnError}
	gen := &fakeGenerator{}
	svc, _ := newTestService(source, gen)

	var chunks []string
	svc.AnswerStream(context.Background(), "show failed tests", "s1", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "\nError:")
	assert.Contains(t, chunks[0], assert.AnError.Error())
}

func TestTranslateFilters(t *testing.T) {
	got := translateFilters(model.FilterCriteria{
		TimeFilter: &model.TimeFilter{DaysBack: 7},
		Status:     "failed",
		Platform:   "gcp",
	})

	assert.Equal(t, "FAILED", got[reportportal.FilterEqStatus])
	assert.Equal(t, "platform:gcp", got[reportportal.FilterHasAttributes])
	assert.NotEmpty(t, got[reportportal.FilterGteStartTime])

	// "all" means no status restriction at the source
	got = translateFilters(model.FilterCriteria{Status: "all"})
	_, ok := got[reportportal.FilterEqStatus]
	assert.False(t, ok)

	// no filters at all
	assert.Empty(t, translateFilters(model.FilterCriteria{}))
}

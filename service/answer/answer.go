// Package answer orchestrates the query pipeline: classify, cache, fetch,
// aggregate, generate.
package answer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"github.com/paraggit/reportportal-llm-query/config"
	"github.com/paraggit/reportportal-llm-query/constant"
	"github.com/paraggit/reportportal-llm-query/model"
	"github.com/paraggit/reportportal-llm-query/pkg/cache"
	"github.com/paraggit/reportportal-llm-query/pkg/clients/llm_model"
	"github.com/paraggit/reportportal-llm-query/pkg/clients/reportportal"
	"github.com/paraggit/reportportal-llm-query/pkg/metrics"
	"github.com/paraggit/reportportal-llm-query/pkg/query"
)

var (
	serviceOnce sync.Once
	instance    *Service
)

// DataSource is the remote test-execution store consumed by the pipeline.
type DataSource interface {
	GetLaunches(ctx context.Context, filterParams map[string]string, pageSize int) ([]model.Launch, error)
	GetTestItems(ctx context.Context, launchID string) ([]model.TestExecution, error)
}

// Generator is the language-model collaborator.
type Generator interface {
	PostChatCompletionsNonStreamContent(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
	PostChatCompletionsStream(ctx context.Context, messages []openai.ChatCompletionMessage, onChunk func(chunk string) error) error
}

// ResultCache stores fetched record batches between identical queries.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, payload interface{}, ttl time.Duration) error
}

type Options struct {
	CacheTTL       time.Duration
	LaunchLimit    int
	LaunchPageSize int
	FetchWorkers   int
	ContextMaxRows int
}

type Service struct {
	classifier *query.Classifier
	cache      ResultCache
	dataSource DataSource
	generator  Generator
	opts       Options
}

func NewService(resultCache ResultCache, dataSource DataSource, generator Generator, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = constant.DefaultCacheTTLHours * time.Hour
	}
	if opts.LaunchLimit <= 0 {
		opts.LaunchLimit = constant.DefaultLaunchLimit
	}
	if opts.LaunchPageSize <= 0 {
		opts.LaunchPageSize = constant.DefaultLaunchPageSize
	}
	if opts.FetchWorkers <= 0 {
		opts.FetchWorkers = 1
	}
	if opts.ContextMaxRows <= 0 {
		opts.ContextMaxRows = constant.DefaultContextMaxRows
	}
	return &Service{
		classifier: query.NewClassifier(),
		cache:      resultCache,
		dataSource: dataSource,
		generator:  generator,
		opts:       opts,
	}
}

func GetInstance() *Service {
	serviceOnce.Do(func() {
		cfg := config.GetInstance()
		instance = NewService(
			cache.GetInstance(),
			reportportal.GetInstance(),
			llm_model.GetInstance(),
			Options{
				CacheTTL:       time.Duration(cfg.GetIntOrDefault(config.CacheTTLHours, constant.DefaultCacheTTLHours)) * time.Hour,
				LaunchLimit:    cfg.GetIntOrDefault(config.ReportPortalLaunchCap, constant.DefaultLaunchLimit),
				LaunchPageSize: cfg.GetIntOrDefault(config.ReportPortalPageSize, constant.DefaultLaunchPageSize),
				FetchWorkers:   cfg.GetIntOrDefault(config.ReportPortalWorkers, 1),
				ContextMaxRows: cfg.GetIntOrDefault(config.AnswerContextMaxRows, constant.DefaultContextMaxRows),
			},
		)
	})
	return instance
}

// Answer runs the full pipeline for one query. It never returns an error:
// any failure inside the pipeline degrades to a response whose answer text
// names the error and whose metadata carries it.
func (s *Service) Answer(ctx context.Context, queryText, sessionID string) *model.QueryResponse {
	startTime := time.Now()

	intent := s.classifier.Classify(queryText)
	log.Infof("processed query: %v", intent.QueryType)

	testData, err := s.loadTestData(ctx, intent)
	if err != nil {
		return s.degraded(intent, sessionID, startTime, err)
	}

	rows := query.Normalize(testData)
	summaryStats := query.Summarize(rows)
	contextTable := query.FormatContext(rows, s.opts.ContextMaxRows)

	prompt := query.ConstructPrompt(intent, contextTable, &summaryStats)
	answerText, err := s.generator.PostChatCompletionsNonStreamContent(ctx, prompt.Messages())
	if err != nil {
		return s.degraded(intent, sessionID, startTime, err)
	}

	elapsed := time.Since(startTime)
	metrics.RecordQuery(string(intent.QueryType), false, elapsed)

	return &model.QueryResponse{
		Answer:    answerText,
		QueryTime: startTime,
		SessionID: sessionID,
		Metadata: &model.ResponseMetadata{
			QueryType:           intent.QueryType,
			ResponseTimeSeconds: elapsed.Seconds(),
			DataPoints:          len(testData),
			Statistics:          &summaryStats,
		},
	}
}

// AnswerStream runs the same pipeline but forwards generated text through
// onChunk as it arrives. A failure anywhere yields one final error chunk; an
// onChunk error (caller gone) stops forwarding silently.
func (s *Service) AnswerStream(ctx context.Context, queryText, sessionID string, onChunk func(chunk string) error) {
	intent := s.classifier.Classify(queryText)

	testData, err := s.loadTestData(ctx, intent)
	if err != nil {
		s.streamError(onChunk, err)
		return
	}

	rows := query.Normalize(testData)
	summaryStats := query.Summarize(rows)
	contextTable := query.FormatContext(rows, s.opts.ContextMaxRows)

	prompt := query.ConstructPrompt(intent, contextTable, &summaryStats)
	if err := s.generator.PostChatCompletionsStream(ctx, prompt.Messages(), onChunk); err != nil {
		s.streamError(onChunk, err)
	}
}

// loadTestData serves records from cache when possible, fetching and caching
// on a miss. Two concurrent identical queries may both fetch; the duplicate
// write is harmless (last-write-wins).
func (s *Service) loadTestData(ctx context.Context, intent model.QueryIntent) ([]model.TestExecution, error) {
	cacheKey := cache.BuildQueryKey(intent.OriginalQuery, intent.Filters)

	var cached []model.TestExecution
	hit, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		log.Warnf("cache read failed, fetching from source: %v", err)
	}
	metrics.RecordCacheLookup(hit)
	if hit {
		log.Info("using cached data")
		return cached, nil
	}

	testData, err := s.fetchRelevantData(ctx, intent)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, testData, s.opts.CacheTTL); err != nil {
		log.Warnf("cache write failed: %v", err)
	}
	return testData, nil
}

// fetchRelevantData translates intent filters into ReportPortal parameters,
// fetches the matching launches, then their test items, capped at the most
// recent LaunchLimit launches.
func (s *Service) fetchRelevantData(ctx context.Context, intent model.QueryIntent) ([]model.TestExecution, error) {
	rpFilters := translateFilters(intent.Filters)

	launches, err := s.dataSource.GetLaunches(ctx, rpFilters, s.opts.LaunchPageSize)
	if err != nil {
		return nil, err
	}

	if len(launches) > s.opts.LaunchLimit {
		launches = launches[:s.opts.LaunchLimit]
	}

	allItems, err := s.fetchLaunchItems(ctx, launches)
	if err != nil {
		return nil, err
	}

	if len(intent.TestNames) > 0 {
		allItems = filterByTestNames(allItems, intent.TestNames)
	}

	if allItems == nil {
		allItems = []model.TestExecution{}
	}
	return allItems, nil
}

// fetchLaunchItems gathers test items for each launch through a bounded
// worker pool and merges them in launch order. The first fetch error cancels
// the remaining work.
func (s *Service) fetchLaunchItems(ctx context.Context, launches []model.Launch) ([]model.TestExecution, error) {
	if len(launches) == 0 {
		return nil, nil
	}

	workers := s.opts.FetchWorkers
	if workers > len(launches) {
		workers = len(launches)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	perLaunch := make([][]model.TestExecution, len(launches))

	var wg sync.WaitGroup
	var errOnce sync.Once
	var fetchErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				items, err := s.dataSource.GetTestItems(ctx, launches[idx].ID)
				if err != nil {
					errOnce.Do(func() {
						fetchErr = err
						cancel()
					})
					return
				}
				perLaunch[idx] = items
			}
		}()
	}

	for idx := range launches {
		select {
		case jobs <- idx:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}

	var merged []model.TestExecution
	for _, items := range perLaunch {
		merged = append(merged, items...)
	}
	return merged, nil
}

// translateFilters maps intent filters onto ReportPortal filter parameters.
func translateFilters(filters model.FilterCriteria) map[string]string {
	rpFilters := map[string]string{}

	if filters.TimeFilter != nil {
		fromDate := time.Now().AddDate(0, 0, -filters.TimeFilter.DaysBack)
		rpFilters[reportportal.FilterGteStartTime] = strconv.FormatInt(fromDate.UnixMilli(), 10)
	}
	if filters.Status != "" && !strings.EqualFold(filters.Status, "all") {
		rpFilters[reportportal.FilterEqStatus] = strings.ToUpper(filters.Status)
	}
	if filters.Platform != "" {
		rpFilters[reportportal.FilterHasAttributes] = "platform:" + filters.Platform
	}

	return rpFilters
}

// filterByTestNames keeps items whose name contains any referenced name.
func filterByTestNames(items []model.TestExecution, names []string) []model.TestExecution {
	filtered := make([]model.TestExecution, 0, len(items))
	for _, item := range items {
		for _, name := range names {
			if strings.Contains(item.Name, name) {
				filtered = append(filtered, item)
				break
			}
		}
	}
	return filtered
}

func (s *Service) degraded(intent model.QueryIntent, sessionID string, startTime time.Time, err error) *model.QueryResponse {
	log.Errorf("error generating response: %v", err)

	elapsed := time.Since(startTime)
	metrics.RecordQuery(string(intent.QueryType), true, elapsed)

	return &model.QueryResponse{
		Answer:    fmt.Sprintf("I encountered an error while processing your query: %v", err),
		QueryTime: startTime,
		SessionID: sessionID,
		Degraded:  true,
		Metadata: &model.ResponseMetadata{
			QueryType:           intent.QueryType,
			ResponseTimeSeconds: elapsed.Seconds(),
			Error:               err.Error(),
		},
	}
}

func (s *Service) streamError(onChunk func(chunk string) error, err error) {
	log.Errorf("error in streaming response: %v", err)
	if sendErr := onChunk(fmt.Sprintf("\nError: %v", err)); sendErr != nil {
		log.Debugf("client gone before error chunk: %v", sendErr)
	}
}

package reportportal

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/paraggit/reportportal-llm-query/config"
	"github.com/paraggit/reportportal-llm-query/constant"
	"github.com/paraggit/reportportal-llm-query/model"
	"github.com/paraggit/reportportal-llm-query/pkg/clients/httptool"
	"github.com/paraggit/reportportal-llm-query/pkg/metrics"
)

const clientNameReportPortal = "report_portal"

var (
	instance *Client
	once     sync.Once
)

// Client fetches launches and test items from one ReportPortal project.
// Every call paginates to completion; every request carries the client-level
// timeout so a stalled remote cannot block a query indefinitely.
type Client struct {
	hc           *httptool.HTTPClient
	project      string
	itemPageSize int
}

func NewClient(hc *httptool.HTTPClient, project string, itemPageSize int) *Client {
	if itemPageSize <= 0 {
		itemPageSize = constant.DefaultItemPageSize
	}
	return &Client{
		hc:           hc,
		project:      project,
		itemPageSize: itemPageSize,
	}
}

func GetInstance() *Client {
	once.Do(func() {
		cfg := config.GetInstance()
		timeout := time.Duration(cfg.GetIntOrDefault(config.ReportPortalTimeout, 30)) * time.Second

		hc := httptool.NewHTTPClient(cfg.GetString(config.ReportPortalBaseURL), clientNameReportPortal, timeout, nil)
		hc.SetHeader("Authorization", "Bearer "+cfg.GetString(config.ReportPortalToken))
		hc.SetHeader(httptool.HeaderContentType, "application/json")

		instance = NewClient(hc,
			cfg.GetString(config.ReportPortalProject),
			cfg.GetIntOrDefault(config.ReportPortalItemPage, constant.DefaultItemPageSize),
		)
	})
	return instance
}

// GetLaunches returns every launch matching filterParams, newest first.
// filterParams are forwarded verbatim alongside the paging parameters.
func (c *Client) GetLaunches(ctx context.Context, filterParams map[string]string, pageSize int) ([]model.Launch, error) {
	if pageSize <= 0 {
		pageSize = constant.DefaultLaunchPageSize
	}
	endpoint := fmt.Sprintf("/api/v1/%v/launch", c.project)

	params := map[string][]string{
		ParamPageSize: {strconv.Itoa(pageSize)},
		ParamPageSort: {SortStartTimeDesc},
	}
	for k, v := range filterParams {
		params[k] = []string{v}
	}

	started := time.Now()
	defer func() { metrics.RecordRemoteFetch("launches", time.Since(started)) }()

	var launches []model.Launch
	for pageNum := 1; ; pageNum++ {
		params[ParamPage] = []string{strconv.Itoa(pageNum)}

		body, err := c.hc.GetParamsWithContext(ctx, endpoint, params)
		if err != nil {
			log.Errorf("%s: error fetching launches: %v", clientNameReportPortal, err)
			return nil, err
		}

		var resp listResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, errors.Wrap(err, "decode launch page")
		}

		var content []model.Launch
		if len(resp.Content) > 0 {
			if err := json.Unmarshal(resp.Content, &content); err != nil {
				return nil, errors.Wrap(err, "decode launches")
			}
		}
		launches = append(launches, content...)

		if resp.Page.Number >= resp.Page.TotalPages {
			break
		}
	}

	return launches, nil
}

// GetTestItems returns every test item of one launch.
func (c *Client) GetTestItems(ctx context.Context, launchID string) ([]model.TestExecution, error) {
	return c.getTestItems(ctx, map[string]string{FilterEqLaunchID: launchID})
}

func (c *Client) getTestItems(ctx context.Context, filterParams map[string]string) ([]model.TestExecution, error) {
	endpoint := fmt.Sprintf("/api/v1/%v/item", c.project)

	params := map[string][]string{
		ParamPageSize: {strconv.Itoa(c.itemPageSize)},
	}
	for k, v := range filterParams {
		params[k] = []string{v}
	}

	started := time.Now()
	defer func() { metrics.RecordRemoteFetch("test_items", time.Since(started)) }()

	var items []model.TestExecution
	for pageNum := 1; ; pageNum++ {
		params[ParamPage] = []string{strconv.Itoa(pageNum)}

		body, err := c.hc.GetParamsWithContext(ctx, endpoint, params)
		if err != nil {
			log.Errorf("%s: error fetching test items: %v", clientNameReportPortal, err)
			return nil, err
		}

		var resp listResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, errors.Wrap(err, "decode item page")
		}

		var content []model.TestExecution
		if len(resp.Content) > 0 {
			if err := json.Unmarshal(resp.Content, &content); err != nil {
				return nil, errors.Wrap(err, "decode test items")
			}
		}
		items = append(items, content...)

		if resp.Page.Number >= resp.Page.TotalPages {
			break
		}
	}

	return items, nil
}

// GetTestHistory returns the executions of one named test over the last
// daysBack days, gathered across all matching launches.
func (c *Client) GetTestHistory(ctx context.Context, testName string, daysBack int) ([]model.TestExecution, error) {
	filterDate := time.Now().AddDate(0, 0, -daysBack)

	launches, err := c.GetLaunches(ctx, map[string]string{
		FilterEqName:       testName,
		FilterGteStartTime: strconv.FormatInt(filterDate.UnixMilli(), 10),
	}, 0)
	if err != nil {
		return nil, err
	}

	var all []model.TestExecution
	for _, launch := range launches {
		items, err := c.getTestItems(ctx, map[string]string{
			FilterEqLaunchID: launch.ID,
			FilterEqName:     testName,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	return all, nil
}

package httptool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/paraggit/reportportal-llm-query/config"
	"github.com/paraggit/reportportal-llm-query/pkg/tools"
)

const (
	HeaderContentType       = "Content-Type"
	HeaderContentTypeStream = "text/event-stream;charset=utf-8"
	HeaderContentCache      = "Cache-Control"
	HeaderContentCacheNo    = "no-cache"
	HeaderContentConnection = "Connection"
	HeaderContentKeepAlive  = "keep-alive"
	HeaderContentTransfer   = "Transfer-Encoding"
	HeaderContentChunked    = "chunked"
)

type ResponseMsg struct {
	Message string `json:"message"`
}

type HTTPClient struct {
	sync.RWMutex
	hc         http.Client
	baseAddr   string
	header     http.Header
	clientName string
}

// NewHTTPClient builds a client rooted at baseAddr. baseAddr must carry its
// scheme; every request runs with the given timeout.
func NewHTTPClient(baseAddr, clientName string, timeout time.Duration, transport *http.Transport) *HTTPClient {
	hc := http.Client{Timeout: timeout}
	// a typed-nil *http.Transport stored in the interface field would bypass
	// http.DefaultTransport and panic on the first request
	if transport != nil {
		hc.Transport = transport
	}
	return &HTTPClient{
		baseAddr:   strings.TrimRight(baseAddr, "/"),
		hc:         hc,
		clientName: clientName,
	}
}

func (hc *HTTPClient) SetHeader(key, value string) {
	hc.Lock()
	defer hc.Unlock()

	if hc.header == nil {
		hc.header = http.Header{}
	}

	hc.header.Set(key, value)
}

func (hc *HTTPClient) GetWithContext(ctx context.Context, url string) ([]byte, error) {
	return hc.fetchWithContext(ctx, http.MethodGet, url, nil)
}

// GetParamsWithContext issues a GET with the params map rendered as an
// encoded query string. Multi-valued keys repeat.
func (hc *HTTPClient) GetParamsWithContext(ctx context.Context, path string, params map[string][]string) ([]byte, error) {
	if len(params) == 0 {
		return hc.fetchWithContext(ctx, http.MethodGet, path, nil)
	}
	path = path + "?" + url.Values(params).Encode()
	return hc.fetchWithContext(ctx, http.MethodGet, path, nil)
}

func (hc *HTTPClient) PostJSONWithContext(ctx context.Context, url string, obj interface{}) ([]byte, error) {
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return hc.fetchWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
}

func (hc *HTTPClient) fetchWithContext(ctx context.Context, method, url string, body io.Reader) ([]byte, error) {
	targetURL := fmt.Sprintf("%v%v", hc.baseAddr, url)

	requestLog := config.GetInstance().GetBool(config.ClientsCommonRequestLog)
	now := time.Now()

	if requestLog && body != nil {
		b, _ := io.ReadAll(body)
		body = bytes.NewReader(b)
		log.Debugf("Sending %v request to %v", method, targetURL)
		log.Debugf("Body = %v", string(b))
	}

	req, err := http.NewRequestWithContext(ctx, method, targetURL, body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	hc.RLock()
	req.Header = hc.header.Clone()
	hc.RUnlock()
	if req.Header == nil {
		req.Header = http.Header{}
	}

	resp, err := hc.hc.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return hc.readResponse(resp, req, now)
}

func (hc *HTTPClient) readResponse(resp *http.Response, req *http.Request, startTime time.Time) ([]byte, error) {
	defer tools.ErrorWithPrintContext(resp.Body.Close, "close response body")
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var respStr string
	if len(bodyBytes) > 1024*100 {
		respStr = fmt.Sprintf("resp size: %v", len(bodyBytes))
	} else {
		respStr = string(bodyBytes)
	}

	if config.GetInstance().GetBool(config.ClientsCommonRequestLog) {
		log.Debugf("Got response from %v %v, status code = %d, body = %v took = %v", req.Method, req.URL, resp.StatusCode, respStr, time.Since(startTime))
	}

	if time.Since(startTime) > 800*time.Millisecond {
		log.Infof("TimeConsuming: from %v %v, status code = %d, took = %v", req.Method, req.URL, resp.StatusCode, time.Since(startTime))
	}

	if resp.StatusCode/100 != 2 {
		errMsg := fmt.Errorf("%s: HTTP request to %v %v failed with status code %d response:%v", hc.clientName, req.Method, req.URL, resp.StatusCode, respStr)
		if len(bodyBytes) == 0 {
			return bodyBytes, errMsg
		}
		var result = new(ResponseMsg)
		if err = json.Unmarshal(bodyBytes, result); err != nil || result.Message == "" {
			return bodyBytes, errMsg
		}
		return bodyBytes, fmt.Errorf("%s: %s", hc.clientName, result.Message)
	}
	return bodyBytes, nil
}

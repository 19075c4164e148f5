// Package weather fetches observations from the AMap weather API and
// persists them as snapshots.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shaharia-lab/weatherbrief/internal/metrics"
	"github.com/shaharia-lab/weatherbrief/internal/storage"
)

// DefaultBaseURL is the AMap weatherInfo endpoint.
const DefaultBaseURL = "https://restapi.amap.com/v3/weather/weatherInfo"

// DefaultTimeout bounds each API call.
const DefaultTimeout = 10 * time.Second

const (
	extensionsBase = "base"
	extensionsAll  = "all"

	statusOK   = "1"
	infocodeOK = "10000"
)

// Live is the current observation block of an AMap response.
type Live struct {
	Province      string `json:"province"`
	City          string `json:"city"`
	Adcode        string `json:"adcode"`
	Weather       string `json:"weather"`
	Temperature   string `json:"temperature"`
	WindDirection string `json:"winddirection"`
	WindPower     string `json:"windpower"`
	Humidity      string `json:"humidity"`
	ReportTime    string `json:"reporttime"`
}

type forecast struct {
	City       string                 `json:"city"`
	Adcode     string                 `json:"adcode"`
	ReportTime string                 `json:"reporttime"`
	Casts      []storage.ForecastCast `json:"casts"`
}

type apiResponse struct {
	Status    string     `json:"status"`
	Info      string     `json:"info"`
	Infocode  string     `json:"infocode"`
	Lives     []Live     `json:"lives"`
	Forecasts []forecast `json:"forecasts"`
}

// Fetcher is the subset of Client used by Service.
type Fetcher interface {
	FetchCurrent(ctx context.Context, regionCode string) (*Live, error)
	FetchForecast(ctx context.Context, regionCode string) ([]storage.ForecastCast, error)
}

// Client calls the AMap weather API. It performs no retries.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient returns a Client. An empty baseURL selects DefaultBaseURL and a
// non-positive timeout selects DefaultTimeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCurrent returns the live observation for a region.
func (c *Client) FetchCurrent(ctx context.Context, regionCode string) (*Live, error) {
	resp, err := c.call(ctx, regionCode, extensionsBase)
	if err != nil {
		return nil, err
	}
	if len(resp.Lives) == 0 {
		return nil, &FetchError{Kind: KindEmpty, RegionCode: regionCode, Info: "no live observation in response"}
	}
	live := resp.Lives[0]
	return &live, nil
}

// FetchForecast returns the forecast casts for a region in chronological order.
// A response without forecasts yields an empty slice.
func (c *Client) FetchForecast(ctx context.Context, regionCode string) ([]storage.ForecastCast, error) {
	resp, err := c.call(ctx, regionCode, extensionsAll)
	if err != nil {
		return nil, err
	}
	casts := []storage.ForecastCast{}
	for _, f := range resp.Forecasts {
		casts = append(casts, f.Casts...)
	}
	return casts, nil
}

func (c *Client) call(ctx context.Context, regionCode, extensions string) (*apiResponse, error) {
	start := time.Now()
	resp, err := c.doRequest(ctx, regionCode, extensions)
	metrics.WeatherAPIDuration.WithLabelValues(extensions).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		var fe *FetchError
		if errors.As(err, &fe) {
			status = string(fe.Kind)
		}
	}
	metrics.WeatherAPIRequests.WithLabelValues(extensions, status).Inc()
	return resp, err
}

func (c *Client) doRequest(ctx context.Context, regionCode, extensions string) (*apiResponse, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("city", regionCode)
	q.Set("extensions", extensions)
	q.Set("output", "JSON")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, RegionCode: regionCode, Err: err}
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindTransport, RegionCode: regionCode, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 1024))
		return nil, &FetchError{
			Kind:       KindTransport,
			RegionCode: regionCode,
			Info:       fmt.Sprintf("status=%d body=%q", httpResp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var out apiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, &FetchError{Kind: KindParse, RegionCode: regionCode, Err: err}
	}
	if out.Status != statusOK || out.Infocode != infocodeOK {
		return nil, &FetchError{
			Kind:       KindAPIStatus,
			RegionCode: regionCode,
			Info:       fmt.Sprintf("status=%s infocode=%s info=%s", out.Status, out.Infocode, out.Info),
		}
	}
	return &out, nil
}

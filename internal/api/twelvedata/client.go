package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/Recommender/internal/platform/http"
	"github.com/Alias1177/Recommender/models"
)

// DefaultBaseURL is the public Twelve Data endpoint
const DefaultBaseURL = "https://api.twelvedata.com"

// maxOutputSize is the largest page the time_series endpoint returns
const maxOutputSize = 5000

// ErrNoData is returned when the API answers without any bars
var ErrNoData = errors.New("twelve data: empty data returned")

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	interval   string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	Interval        string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// timeSeries is the time_series response. Prices arrive as strings.
type timeSeries struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   string  `json:"volume"`
	} `json:"values"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	if options.Interval == "" {
		options.Interval = "1day"
	}

	return &Client{
		apiKey:   options.APIKey,
		baseURL:  options.BaseURL,
		interval: options.Interval,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// History returns enough bars, oldest first, to cover lookback trading days
func (c *Client) History(ctx context.Context, ticker string, lookback int) ([]models.PriceBar, error) {
	count := models.BarsForLookback(c.interval, lookback)
	if count > maxOutputSize {
		count = maxOutputSize
	}
	return c.GetCandles(ctx, ticker, count)
}

// GetCandles fetches count bars for symbol from the time_series endpoint
func (c *Client) GetCandles(ctx context.Context, symbol string, count int) ([]models.PriceBar, error) {
	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("interval", c.interval)
	query.Set("outputsize", strconv.Itoa(count))
	query.Set("apikey", c.apiKey)

	c.logger.Debug().Str("symbol", symbol).Int("outputsize", count).Msg("Fetching candles")

	resp, err := c.httpClient.Get(ctx, c.baseURL+"/time_series?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data timeSeries
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Status == "error" {
		c.logger.Error().Int("code", data.Code).Str("message", data.Message).Msg("Twelve Data API error")
		return nil, fmt.Errorf("twelve data API error %d: %s", data.Code, data.Message)
	}
	if len(data.Values) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No candles in response")
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	// Sort candles by datetime (oldest first for proper calculations)
	sort.Slice(data.Values, func(i, j int) bool {
		return data.Values[i].Datetime < data.Values[j].Datetime
	})

	bars := make([]models.PriceBar, 0, len(data.Values))
	for _, v := range data.Values {
		date, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", symbol, err)
		}
		var volume int64
		if v.Volume != "" {
			volume, _ = strconv.ParseInt(v.Volume, 10, 64)
		}
		bars = append(bars, models.PriceBar{
			Date:   date,
			Open:   v.Open,
			High:   v.High,
			Low:    v.Low,
			Close:  v.Close,
			Volume: volume,
		})
	}

	c.logger.Debug().Str("symbol", symbol).Int("count", len(bars)).Msg("Fetched candles")
	return bars, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{models.DayLayout, "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unexpected datetime %q", s)
}

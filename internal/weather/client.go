// Package weather fetches current conditions from weatherapi.com and keeps
// the latest report cached for the dashboard.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"
)

const defaultBaseURL = "https://api.weatherapi.com"

// Report is the summary the dashboard shows.
type Report struct {
	Temperature float64 `json:"temperature"`
	WillRain    bool    `json:"willRain"`
	WillSnow    bool    `json:"willSnow"`
}

// Client fetches a fresh Report from a weather provider.
type Client interface {
	Fetch(ctx context.Context) (Report, error)
}

// WeatherAPIClient implements Client against the weatherapi.com forecast API.
type WeatherAPIClient struct {
	baseURL  string
	apiKey   string
	city     string
	http     *http.Client
	attempts uint
	delay    time.Duration
}

type ClientOption func(*WeatherAPIClient)

func WithBaseURL(u string) ClientOption {
	return func(c *WeatherAPIClient) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *WeatherAPIClient) { c.http = h }
}

// WithRetry sets how many times a failed fetch is attempted and the base
// delay between attempts.
func WithRetry(attempts uint, delay time.Duration) ClientOption {
	return func(c *WeatherAPIClient) {
		c.attempts = attempts
		c.delay = delay
	}
}

func NewWeatherAPIClient(apiKey, city string, opts ...ClientOption) *WeatherAPIClient {
	c := &WeatherAPIClient{
		baseURL:  defaultBaseURL,
		apiKey:   apiKey,
		city:     city,
		http:     &http.Client{Timeout: 10 * time.Second},
		attempts: 3,
		delay:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type forecastResponse struct {
	Current struct {
		TempC float64 `json:"temp_c"`
	} `json:"current"`
	Forecast struct {
		Forecastday []struct {
			Day struct {
				DailyWillItRain int `json:"daily_will_it_rain"`
				DailyWillItSnow int `json:"daily_will_it_snow"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather provider returned %d: %s", e.Code, e.Body)
}

// Fetch calls the forecast endpoint, retrying transport failures and 5xx
// responses. Client errors (4xx) are not retried.
func (c *WeatherAPIClient) Fetch(ctx context.Context) (Report, error) {
	return retry.DoWithData(
		func() (Report, error) { return c.fetchOnce(ctx) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

func (c *WeatherAPIClient) fetchOnce(ctx context.Context) (Report, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", c.city)
	endpoint := c.baseURL + "/v1/forecast.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Report{}, retry.Unrecoverable(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := &StatusError{Code: resp.StatusCode, Body: string(body)}
		if resp.StatusCode < 500 {
			return Report{}, retry.Unrecoverable(statusErr)
		}
		return Report{}, statusErr
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Report{}, fmt.Errorf("decode weather response: %w", err)
	}
	if len(payload.Forecast.Forecastday) == 0 {
		return Report{}, retry.Unrecoverable(errors.New("weather response has no forecast days"))
	}

	today := payload.Forecast.Forecastday[0].Day
	return Report{
		Temperature: payload.Current.TempC,
		WillRain:    today.DailyWillItRain != 0,
		WillSnow:    today.DailyWillItSnow != 0,
	}, nil
}

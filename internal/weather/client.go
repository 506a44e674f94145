// Package weather wraps the studio's external weather provider. The provider
// is decoration for the landing and dashboard pages; every failure here is
// recoverable and must never take a page down.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrUnavailable = errors.New("weather data unavailable")
)

// Current holds the current conditions for the configured city.
type Current struct {
	City        string  `json:"city"`
	Temp        float64 `json:"temp"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"windSpeed"`
	Icon        string  `json:"icon"`
}

// ForecastEntry is one timestamped entry of the 3-hourly forecast feed.
type ForecastEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Temp        float64   `json:"temp"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// Client talks to an OpenWeather-compatible API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	city       string
}

// NewClient creates a weather client for one city.
func NewClient(baseURL, apiKey, city string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		city:       city,
	}
}

// --- provider payload shapes ---

type conditionsPayload struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type forecastPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
}

// CurrentConditions fetches the current snapshot for the configured city.
func (c *Client) CurrentConditions(ctx context.Context) (*Current, error) {
	var payload conditionsPayload
	if err := c.get(ctx, "/weather", &payload); err != nil {
		return nil, err
	}

	current := &Current{
		City:      payload.Name,
		Temp:      payload.Main.Temp,
		WindSpeed: payload.Wind.Speed,
	}
	// The weather array can be empty on partial payloads; degrade, don't fail.
	if len(payload.Weather) > 0 {
		current.Description = payload.Weather[0].Description
		current.Icon = payload.Weather[0].Icon
	}
	return current, nil
}

// Forecast fetches the 3-hourly forecast list in feed order.
func (c *Client) Forecast(ctx context.Context) ([]ForecastEntry, error) {
	var payload forecastPayload
	if err := c.get(ctx, "/forecast", &payload); err != nil {
		return nil, err
	}

	entries := make([]ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		entry := ForecastEntry{
			Timestamp: time.Unix(item.Dt, 0).UTC(),
			Temp:      item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			entry.Description = item.Weather[0].Description
			entry.Icon = item.Weather[0].Icon
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DailyForecast is the dashboard view: the 3-hourly feed reduced to at most
// five calendar days.
func (c *Client) DailyForecast(ctx context.Context) ([]ForecastEntry, error) {
	entries, err := c.Forecast(ctx)
	if err != nil {
		return nil, err
	}
	return ReduceToDaily(entries), nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	query := url.Values{}
	query.Set("q", c.city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: provider returned %d", ErrUnavailable, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

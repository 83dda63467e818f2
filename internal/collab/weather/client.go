// Package weather talks to the Open-Meteo geocoding and forecast APIs.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tgbots/internal/collab"
	"tgbots/internal/models"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1"
	DefaultForecastURL  = "https://api.open-meteo.com/v1"
)

// Provider resolves cities and their current weather
type Provider interface {
	// Geocode returns collab.ErrNotFound when nothing matches
	Geocode(ctx context.Context, city string) (models.Place, error)
	Current(ctx context.Context, place models.Place) (models.Weather, error)
}

// Client is an Open-Meteo client
type Client struct {
	geocodingURL string
	forecastURL  string
	language     string
	httpClient   *http.Client
}

// NewClient creates a client; empty URLs fall back to the public endpoints
func NewClient(geocodingURL, forecastURL string, timeout time.Duration) *Client {
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		geocodingURL: strings.TrimRight(geocodingURL, "/"),
		forecastURL:  strings.TrimRight(forecastURL, "/"),
		language:     "ru",
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current *struct {
		Temperature   *float64 `json:"temperature_2m"`
		Precipitation *float64 `json:"precipitation"`
		WindSpeed     *float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// Geocode looks a city up by name and returns the best match
func (c *Client) Geocode(ctx context.Context, city string) (models.Place, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return models.Place{}, collab.ErrNotFound
	}

	params := url.Values{}
	params.Set("name", city)
	params.Set("count", "1")
	params.Set("language", c.language)
	params.Set("format", "json")

	var resp geocodingResponse
	if err := c.getJSON(ctx, c.geocodingURL+"/search?"+params.Encode(), &resp); err != nil {
		return models.Place{}, fmt.Errorf("geocoding failed: %w", err)
	}
	if len(resp.Results) == 0 {
		return models.Place{}, collab.ErrNotFound
	}

	r := resp.Results[0]
	name := r.Name
	if name == "" {
		name = city
	}
	return models.Place{Name: name, Lat: r.Latitude, Lon: r.Longitude}, nil
}

// Current returns the current conditions at the place
func (c *Client) Current(ctx context.Context, place models.Place) (models.Weather, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(place.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(place.Lon, 'f', -1, 64))
	params.Set("current", "temperature_2m,precipitation,wind_speed_10m")
	params.Set("wind_speed_unit", "ms")
	params.Set("forecast_days", "1")
	params.Set("timezone", "auto")

	var resp forecastResponse
	if err := c.getJSON(ctx, c.forecastURL+"/forecast?"+params.Encode(), &resp); err != nil {
		return models.Weather{}, fmt.Errorf("forecast failed: %w", err)
	}
	if resp.Current == nil || resp.Current.Temperature == nil {
		return models.Weather{}, fmt.Errorf("forecast has no current conditions")
	}

	w := models.Weather{Temperature: *resp.Current.Temperature}
	if resp.Current.Precipitation != nil {
		w.Precipitation = *resp.Current.Precipitation
	}
	if resp.Current.WindSpeed != nil {
		w.Wind = *resp.Current.WindSpeed
	}
	return w, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

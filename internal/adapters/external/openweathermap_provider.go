// Package external provides adapters for external services: the weather
// provider, its logging decorator and the cache backends.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

const (
	openWeatherMapName    = "openweathermap"
	defaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"
	maxResponseBytes      = 1 << 20
)

// statusCode is the provider "cod" field, a number on /weather and /find and
// a string on /forecast
type statusCode string

func (c *statusCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = statusCode(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = statusCode(n.String())
	return nil
}

func (c statusCode) ok() bool { return c == "200" }

// rejected reports a 4xx answer about the request itself, such as an unknown
// or unparseable location
func (c statusCode) rejected() bool {
	code, err := strconv.Atoi(string(c))
	return err == nil && rejectedStatus(code)
}

// rejectedStatus is true for client errors other than credential and quota
// failures, which are provider faults for every caller
func rejectedStatus(code int) bool {
	if code < 400 || code >= 500 {
		return false
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return false
	}
	return true
}

type owmEnvelope struct {
	Cod     statusCode `json:"cod"`
	Message any        `json:"message"`
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmMain struct {
	Temp *float64 `json:"temp"`
}

type owmCurrentResponse struct {
	Name    string         `json:"name"`
	Dt      int64          `json:"dt"`
	Main    owmMain        `json:"main"`
	Weather []owmCondition `json:"weather"`
}

type owmForecastResponse struct {
	List []struct {
		Dt      int64          `json:"dt"`
		Main    owmMain        `json:"main"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
}

type owmFindResponse struct {
	List []struct {
		Name string `json:"name"`
	} `json:"list"`
}

// OpenWeatherMapProviderAdapter implements WeatherProvider port for OpenWeatherMap
type OpenWeatherMapProviderAdapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  ports.Logger
}

// OpenWeatherMapProviderParams holds parameters for creating OpenWeatherMap provider
type OpenWeatherMapProviderParams struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// FailureThreshold is the number of consecutive transient failures that opens the circuit
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before probing again
	OpenTimeout time.Duration
	Client      *http.Client
	Logger      ports.Logger
}

func NewOpenWeatherMapProviderAdapter(params OpenWeatherMapProviderParams) (*OpenWeatherMapProviderAdapter, error) {
	if params.APIKey == "" {
		return nil, errors.NewConfigurationError("OpenWeatherMap API key is required", nil)
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	baseURL := strings.TrimRight(params.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenWeatherURL
	}

	client := params.Client
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	threshold := params.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := params.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = time.Minute
	}

	p := &OpenWeatherMapProviderAdapter{
		apiKey:  params.APIKey,
		baseURL: baseURL,
		client:  client,
		logger:  params.Logger,
	}
	p.circuit = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        openWeatherMapName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// an unknown city is a valid answer, not a provider fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.IsNotFoundError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn("Weather provider circuit changed state",
				ports.F("provider", name),
				ports.F("from", from.String()),
				ports.F("to", to.String()))
		},
	})

	return p, nil
}

// CurrentByCity retrieves the current weather of a city by name
func (p *OpenWeatherMapProviderAdapter) CurrentByCity(ctx context.Context, city string) (*ports.WeatherData, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	values := url.Values{}
	values.Set("q", city)
	return p.current(ctx, values)
}

// CurrentByCoordinates retrieves the current weather of the city nearest to coords
func (p *OpenWeatherMapProviderAdapter) CurrentByCoordinates(ctx context.Context, coords ports.Coordinates) (*ports.WeatherData, error) {
	return p.current(ctx, coordinateValues(coords))
}

// Forecast returns up to count three-hour samples for a city
func (p *OpenWeatherMapProviderAdapter) Forecast(ctx context.Context, city string, count int) ([]ports.ForecastSample, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, errors.NewValidationError("city cannot be empty")
	}

	values := url.Values{}
	values.Set("q", city)
	if count > 0 {
		values.Set("cnt", strconv.Itoa(count))
	}

	var payload owmForecastResponse
	if err := p.get(ctx, "/forecast", values, &payload); err != nil {
		return nil, err
	}

	samples := make([]ports.ForecastSample, 0, len(payload.List))
	for _, item := range payload.List {
		if item.Main.Temp == nil || len(item.Weather) == 0 || item.Dt == 0 {
			return nil, errors.NewExternalAPIError("OpenWeatherMap forecast sample is incomplete", nil)
		}
		samples = append(samples, ports.ForecastSample{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: *item.Main.Temp,
			Condition:   item.Weather[0].Main,
			Description: item.Weather[0].Description,
			Icon:        item.Weather[0].Icon,
		})
	}

	return samples, nil
}

// FindNearby returns the names of up to count cities around coords
func (p *OpenWeatherMapProviderAdapter) FindNearby(ctx context.Context, coords ports.Coordinates, count int) ([]string, error) {
	values := coordinateValues(coords)
	if count > 0 {
		values.Set("cnt", strconv.Itoa(count))
	}

	var payload owmFindResponse
	if err := p.get(ctx, "/find", values, &payload); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(payload.List))
	for _, item := range payload.List {
		names = append(names, item.Name)
	}
	return names, nil
}

func (p *OpenWeatherMapProviderAdapter) Name() string {
	return openWeatherMapName
}

// CircuitState reports the breaker state: "closed", "half-open" or "open"
func (p *OpenWeatherMapProviderAdapter) CircuitState() string {
	return p.circuit.State().String()
}

func (p *OpenWeatherMapProviderAdapter) current(ctx context.Context, values url.Values) (*ports.WeatherData, error) {
	var payload owmCurrentResponse
	if err := p.get(ctx, "/weather", values, &payload); err != nil {
		return nil, err
	}

	if payload.Name == "" || payload.Main.Temp == nil || len(payload.Weather) == 0 {
		return nil, errors.NewExternalAPIError("OpenWeatherMap response is missing required fields", nil)
	}

	timestamp := time.Now().UTC()
	if payload.Dt > 0 {
		timestamp = time.Unix(payload.Dt, 0).UTC()
	}

	return &ports.WeatherData{
		City:        payload.Name,
		Condition:   payload.Weather[0].Main,
		Description: payload.Weather[0].Description,
		Icon:        payload.Weather[0].Icon,
		Temperature: *payload.Main.Temp,
		Timestamp:   timestamp,
	}, nil
}

// get calls one endpoint through the circuit breaker and decodes a successful body into out
func (p *OpenWeatherMapProviderAdapter) get(ctx context.Context, path string, values url.Values, out any) error {
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	endpoint := p.baseURL + path + "?" + values.Encode()

	p.logger.Debug("Calling OpenWeatherMap", ports.F("endpoint", path))

	result, err := p.circuit.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, errors.NewExternalAPIError("failed to call OpenWeatherMap", err)
		}
		defer func() {
			if closeErr := resp.Body.Close(); closeErr != nil {
				p.logger.Warn("Failed to close OpenWeatherMap response body", ports.F("error", closeErr))
			}
		}()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, errors.NewExternalAPIError("failed to read OpenWeatherMap response", err)
		}

		switch {
		case rejectedStatus(resp.StatusCode):
			return nil, errors.NewNotFoundError(fmt.Sprintf("location not found (status %d)", resp.StatusCode))
		case resp.StatusCode != http.StatusOK:
			return nil, errors.NewExternalAPIError(fmt.Sprintf("OpenWeatherMap returned status %d", resp.StatusCode), nil)
		}

		var envelope owmEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, errors.NewExternalAPIError("failed to decode OpenWeatherMap response", err)
		}
		switch {
		case envelope.Cod.rejected():
			return nil, errors.NewNotFoundError(fmt.Sprintf("location not found (cod %s)", string(envelope.Cod)))
		case !envelope.Cod.ok():
			return nil, errors.NewExternalAPIError(fmt.Sprintf("OpenWeatherMap returned cod %q", string(envelope.Cod)), nil)
		}

		return body, nil
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.NewExternalAPIError("OpenWeatherMap circuit is open", err)
		}
		if errors.IsNotFoundError(err) || errors.IsExternalAPIError(err) {
			return err
		}
		return errors.NewExternalAPIError("OpenWeatherMap request failed", err)
	}

	body, ok := result.([]byte)
	if !ok {
		return errors.NewExternalAPIError("unexpected result type from circuit breaker", nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.NewExternalAPIError("failed to decode OpenWeatherMap response", err)
	}
	return nil
}

func coordinateValues(coords ports.Coordinates) url.Values {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	return values
}

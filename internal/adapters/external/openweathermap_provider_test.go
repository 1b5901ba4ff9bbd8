package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/mocks"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenWeatherMapProviderAdapter {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewOpenWeatherMapProviderAdapter(OpenWeatherMapProviderParams{
		APIKey:           "test-api-key",
		BaseURL:          server.URL,
		Timeout:          2 * time.Second,
		FailureThreshold: 3,
		OpenTimeout:      time.Hour,
		Logger:           mocks.NewLogger(),
	})
	require.NoError(t, err)
	return provider
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	assert.NoError(t, err)
}

func TestNewOpenWeatherMapProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenWeatherMapProviderAdapter(OpenWeatherMapProviderParams{Logger: mocks.NewLogger()})
	assert.True(t, errors.IsConfigurationError(err))
}

func TestOpenWeatherMapProvider_CurrentByCity(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "London", r.URL.Query().Get("q"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))

		writeJSON(t, w, http.StatusOK, `{
			"cod": 200,
			"name": "London",
			"dt": 1717236000,
			"main": {"temp": 15.5},
			"weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}]
		}`)
	})

	weather, err := provider.CurrentByCity(context.Background(), "London")

	require.NoError(t, err)
	assert.Equal(t, "London", weather.City)
	assert.Equal(t, "Rain", weather.Condition)
	assert.Equal(t, "light rain", weather.Description)
	assert.Equal(t, "10d", weather.Icon)
	assert.Equal(t, 15.5, weather.Temperature)
	assert.Equal(t, time.Unix(1717236000, 0).UTC(), weather.Timestamp)
	assert.Equal(t, "openweathermap", provider.Name())
}

func TestOpenWeatherMapProvider_CurrentByCoordinates(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "41.31", r.URL.Query().Get("lat"))
		assert.Equal(t, "69.28", r.URL.Query().Get("lon"))
		assert.Empty(t, r.URL.Query().Get("q"))

		writeJSON(t, w, http.StatusOK, `{
			"cod": 200, "name": "Tashkent",
			"main": {"temp": 0},
			"weather": [{"main": "Clear", "description": "clear sky", "icon": "01n"}]
		}`)
	})

	weather, err := provider.CurrentByCoordinates(context.Background(), ports.Coordinates{Latitude: 41.31, Longitude: 69.28})

	require.NoError(t, err)
	assert.Equal(t, "Tashkent", weather.City)
	assert.Equal(t, 0.0, weather.Temperature)
}

func TestOpenWeatherMapProvider_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "HTTP404", status: http.StatusNotFound, body: `{"cod":"404","message":"city not found"}`},
		{name: "Cod404StringInBody", status: http.StatusOK, body: `{"cod":"404","message":"city not found"}`},
		{name: "Cod404NumberInBody", status: http.StatusOK, body: `{"cod":404,"message":"city not found"}`},
		{name: "HTTP400NothingToGeocode", status: http.StatusBadRequest, body: `{"cod":"400","message":"Nothing to geocode"}`},
		{name: "Cod400InBody", status: http.StatusOK, body: `{"cod":"400","message":"wrong latitude"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, tt.body)
			})

			_, err := provider.CurrentByCity(context.Background(), "InvalidCity123")

			assert.True(t, errors.IsNotFoundError(err))
		})
	}
}

func TestOpenWeatherMapProvider_TransientFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "ServerError", status: http.StatusBadGateway, body: `bad gateway`},
		{name: "Unauthorized", status: http.StatusUnauthorized, body: `{"cod":401,"message":"Invalid API key"}`},
		{name: "Forbidden", status: http.StatusForbidden, body: `{"cod":403,"message":"blocked"}`},
		{name: "RateLimited", status: http.StatusTooManyRequests, body: `{"cod":429,"message":"too many"}`},
		{name: "MalformedJSON", status: http.StatusOK, body: `{"cod":200,"name":`},
		{name: "MissingWeather", status: http.StatusOK, body: `{"cod":200,"name":"London","main":{"temp":10}}`},
		{name: "MissingTemperature", status: http.StatusOK, body: `{"cod":200,"name":"London","main":{},"weather":[{"description":"x"}]}`},
		{name: "MissingCod", status: http.StatusOK, body: `{"name":"London"}`},
		{name: "UnexpectedCod", status: http.StatusOK, body: `{"cod":"429","message":"too many"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, tt.status, tt.body)
			})

			_, err := provider.CurrentByCity(context.Background(), "London")

			require.Error(t, err)
			assert.True(t, errors.IsExternalAPIError(err))
			assert.False(t, errors.IsNotFoundError(err))
		})
	}
}

func TestOpenWeatherMapProvider_Forecast(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "8", r.URL.Query().Get("cnt"))

		writeJSON(t, w, http.StatusOK, `{
			"cod": "200",
			"cnt": 2,
			"list": [
				{"dt": 1717290000, "main": {"temp": 10}, "weather": [{"main": "Clouds", "description": "overcast clouds", "icon": "04d"}]},
				{"dt": 1717300800, "main": {"temp": 14}, "weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}]}
			]
		}`)
	})

	samples, err := provider.Forecast(context.Background(), "London", 8)

	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, time.Unix(1717290000, 0).UTC(), samples[0].Time)
	assert.Equal(t, 10.0, samples[0].Temperature)
	assert.Equal(t, "Clouds", samples[0].Condition)
	assert.Equal(t, "light rain", samples[1].Description)
	assert.Equal(t, "10d", samples[1].Icon)
}

func TestOpenWeatherMapProvider_ForecastIncompleteSample(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `{"cod":"200","list":[{"dt":1717290000,"main":{"temp":10}}]}`)
	})

	_, err := provider.Forecast(context.Background(), "London", 8)

	assert.True(t, errors.IsExternalAPIError(err))
}

func TestOpenWeatherMapProvider_FindNearby(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/find", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("cnt"))

		writeJSON(t, w, http.StatusOK, `{
			"message": "accurate", "cod": "200", "count": 3,
			"list": [{"name": "London"}, {"name": "Camden Town"}, {"name": "Islington"}]
		}`)
	})

	names, err := provider.FindNearby(context.Background(), ports.Coordinates{Latitude: 51.5, Longitude: -0.12}, 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"London", "Camden Town", "Islington"}, names)
}

func TestOpenWeatherMapProvider_CircuitOpensOnTransientFailures(t *testing.T) {
	var calls int32
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(t, w, http.StatusInternalServerError, `oops`)
	})

	for i := 0; i < 3; i++ {
		_, err := provider.CurrentByCity(context.Background(), "London")
		require.True(t, errors.IsExternalAPIError(err))
	}

	_, err := provider.CurrentByCity(context.Background(), "London")

	assert.True(t, errors.IsExternalAPIError(err))
	assert.Contains(t, err.Error(), "circuit is open")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "open", provider.CircuitState())
}

func TestOpenWeatherMapProvider_NotFoundDoesNotOpenCircuit(t *testing.T) {
	var calls int32
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(t, w, http.StatusNotFound, `{"cod":"404","message":"city not found"}`)
	})

	for i := 0; i < 6; i++ {
		_, err := provider.CurrentByCity(context.Background(), "Nowhere")
		require.True(t, errors.IsNotFoundError(err))
	}

	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
	assert.Equal(t, "closed", provider.CircuitState())
}

func TestOpenWeatherMapProvider_RejectedNamesDoNotOpenCircuit(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "London" {
			writeJSON(t, w, http.StatusOK, `{
				"cod": 200,
				"name": "London",
				"main": {"temp": 12},
				"weather": [{"main": "Clouds", "description": "overcast clouds", "icon": "04d"}]
			}`)
			return
		}
		writeJSON(t, w, http.StatusBadRequest, `{"cod":"400","message":"Nothing to geocode"}`)
	})

	for _, city := range []string{",", ";", "  ,", "#"} {
		_, err := provider.CurrentByCity(context.Background(), city)
		require.True(t, errors.IsNotFoundError(err), "city %q", city)
	}

	weather, err := provider.CurrentByCity(context.Background(), "London")

	require.NoError(t, err)
	assert.Equal(t, "London", weather.City)
	assert.Equal(t, "closed", provider.CircuitState())
}

func TestOpenWeatherMapProvider_ContextDeadline(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := provider.CurrentByCity(ctx, "London")

	assert.True(t, errors.IsExternalAPIError(err))
}

func TestStatusCode_Unmarshal(t *testing.T) {
	var c statusCode

	require.NoError(t, c.UnmarshalJSON([]byte(`200`)))
	assert.True(t, c.ok())
	require.NoError(t, c.UnmarshalJSON([]byte(`"200"`)))
	assert.True(t, c.ok())
	require.NoError(t, c.UnmarshalJSON([]byte(`"404"`)))
	assert.True(t, c.rejected())
	require.NoError(t, c.UnmarshalJSON([]byte(`400`)))
	assert.True(t, c.rejected())
	require.NoError(t, c.UnmarshalJSON([]byte(`"401"`)))
	assert.False(t, c.rejected())
	require.NoError(t, c.UnmarshalJSON([]byte(`"429"`)))
	assert.False(t, c.rejected())
	require.NoError(t, c.UnmarshalJSON([]byte(`"500"`)))
	assert.False(t, c.rejected())
	require.NoError(t, c.UnmarshalJSON([]byte(`null`)))
	assert.False(t, c.ok())
	assert.Error(t, c.UnmarshalJSON([]byte(`{}`)))
}

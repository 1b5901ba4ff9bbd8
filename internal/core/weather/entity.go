package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const absoluteZeroCelsius = -273.15

// Weather represents one weather reading for a resolved city
type Weather struct {
	City        string
	Condition   string
	Description string
	Icon        string
	Temperature float64
	Timestamp   time.Time
}

// WeatherRequest represents a request for weather information
type WeatherRequest struct {
	City string
}

// Sample is a single forecast slot
type Sample struct {
	Time        time.Time
	Temperature float64
	Condition   string
	Description string
	Icon        string
}

// Forecast is the aggregate of all samples that fall on one UTC calendar day
type Forecast struct {
	City         string
	Date         time.Time
	Temperature  float64
	Condition    string
	Icon         string
	Descriptions []string
	Samples      int
}

// IsValid validates weather data
func (w *Weather) IsValid() error {
	if strings.TrimSpace(w.City) == "" {
		return fmt.Errorf("city cannot be empty")
	}
	if strings.TrimSpace(w.Description) == "" {
		return fmt.Errorf("description cannot be empty")
	}
	if w.Temperature < absoluteZeroCelsius {
		return fmt.Errorf("temperature cannot be below absolute zero")
	}
	return nil
}

// IsValid validates weather request
func (wr *WeatherRequest) IsValid() error {
	if strings.TrimSpace(wr.City) == "" {
		return fmt.Errorf("city cannot be empty")
	}
	return nil
}

// NormalizeCity normalizes city name for consistent processing
func (wr *WeatherRequest) NormalizeCity() {
	wr.City = strings.TrimSpace(wr.City)
}

// CacheKey is the key current readings for a city are cached under
func (wr *WeatherRequest) CacheKey() string {
	return "weather:" + strings.ToLower(strings.TrimSpace(wr.City))
}

// RoundedTemperature returns the temperature rounded half away from zero
func (w *Weather) RoundedTemperature() int {
	return int(math.Round(w.Temperature))
}

// IconURL renders the provider icon code into template, or "" without an icon
func (w *Weather) IconURL(template string) string {
	return iconURL(template, w.Icon)
}

// String returns a string representation of the weather
func (w *Weather) String() string {
	return fmt.Sprintf("%s: %d°C, %s", w.City, w.RoundedTemperature(), w.Description)
}

// RoundedTemperature returns the mean temperature rounded half away from zero
func (f *Forecast) RoundedTemperature() int {
	return int(math.Round(f.Temperature))
}

// Description joins the distinct sample descriptions in first-seen order
func (f *Forecast) Description() string {
	return strings.Join(f.Descriptions, ", ")
}

// IconURL renders the icon of the first sample into template
func (f *Forecast) IconURL(template string) string {
	return iconURL(template, f.Icon)
}

// TomorrowUTC returns midnight UTC of the day after now
func TomorrowUTC(now time.Time) time.Time {
	y, m, d := now.UTC().AddDate(0, 0, 1).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Aggregate combines the samples whose UTC calendar date equals day.
// It reports false when no sample falls on that day.
func Aggregate(city string, day time.Time, samples []Sample) (*Forecast, bool) {
	dy, dm, dd := day.UTC().Date()

	forecast := &Forecast{City: city, Date: time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)}
	seen := make(map[string]struct{})
	var sum float64

	for _, s := range samples {
		y, m, d := s.Time.UTC().Date()
		if y != dy || m != dm || d != dd {
			continue
		}

		if forecast.Samples == 0 {
			forecast.Condition = s.Condition
			forecast.Icon = s.Icon
		}
		forecast.Samples++
		sum += s.Temperature

		desc := strings.TrimSpace(s.Description)
		if desc == "" {
			continue
		}
		if _, ok := seen[desc]; ok {
			continue
		}
		seen[desc] = struct{}{}
		forecast.Descriptions = append(forecast.Descriptions, desc)
	}

	if forecast.Samples == 0 {
		return nil, false
	}

	forecast.Temperature = sum / float64(forecast.Samples)
	return forecast, true
}

func iconURL(template, icon string) string {
	if icon == "" || template == "" {
		return ""
	}
	return fmt.Sprintf(template, icon)
}

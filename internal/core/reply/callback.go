package reply

import "strings"

// Callback payload prefixes. A payload without a known prefix is a bare city name.
const (
	PrefixSubscribe   = "sub:"
	PrefixUnsubscribe = "unsub:"
	PrefixForecast    = "fc:"

	// MaxCallbackBytes is the platform limit for callback data
	MaxCallbackBytes = 64
)

// SubscribeData encodes a "subscribe to city" payload
func SubscribeData(city string) string { return PrefixSubscribe + city }

// UnsubscribeData encodes an "unsubscribe" payload
func UnsubscribeData() string { return PrefixUnsubscribe }

// ForecastData encodes a "show tomorrow's forecast" payload
func ForecastData(city string) string { return PrefixForecast + city }

// FitsCallback reports whether data can be sent as callback data
func FitsCallback(data string) bool {
	return data != "" && len(data) <= MaxCallbackBytes
}

// CurrentData encodes a "show current weather" payload. Cities that look
// like a prefixed payload cannot be encoded and yield "".
func CurrentData(city string) string {
	for _, prefix := range []string{PrefixSubscribe, PrefixUnsubscribe, PrefixForecast} {
		if strings.HasPrefix(city, prefix) {
			return ""
		}
	}
	return city
}

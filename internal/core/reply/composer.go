// Package reply renders weather results and bot answers into outbound messages.
package reply

import (
	"context"
	"html"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"weatherbot.app/internal/core/i18n"
	"weatherbot.app/internal/core/weather"
	"weatherbot.app/internal/ports"
)

// Message is one outbound message. With a PhotoURL Text becomes the caption.
type Message struct {
	Text     string
	PhotoURL string
	Keyboard *ports.Keyboard
}

// Send delivers m through messenger
func Send(ctx context.Context, messenger ports.Messenger, chatID int64, m Message) error {
	if m.PhotoURL != "" {
		return messenger.SendPhoto(ctx, chatID, m.PhotoURL, m.Text, m.Keyboard)
	}
	return messenger.SendText(ctx, chatID, m.Text, m.Keyboard)
}

// Composer builds localized messages
type Composer struct {
	catalog       *i18n.Catalog
	iconTemplate  string
	popularCities []string
}

func NewComposer(catalog *i18n.Catalog, iconTemplate string, popularCities []string) *Composer {
	return &Composer{
		catalog:       catalog,
		iconTemplate:  iconTemplate,
		popularCities: popularCities,
	}
}

// Localizer returns the texts for a user's language tag
func (c *Composer) Localizer(languageCode string) i18n.Localizer {
	return c.catalog.For(languageCode)
}

// Text renders a plain localized message with escaped placeholder values
func (c *Composer) Text(l i18n.Localizer, key i18n.Key, pairs ...string) Message {
	return Message{Text: l.T(key, escapeValues(pairs)...)}
}

// Welcome is the /start answer with the location and city-picker keyboard
func (c *Composer) Welcome(l i18n.Localizer, name string) Message {
	greeting := ""
	if name != "" {
		greeting = ", " + name
	}
	return Message{
		Text: l.T(i18n.Welcome, "name", html.EscapeString(greeting)),
		Keyboard: &ports.Keyboard{
			Kind: ports.KeyboardReply,
			Rows: [][]ports.Button{{
				{Text: l.T(i18n.ButtonSendLocation), RequestLocation: true},
				{Text: l.T(i18n.ButtonChooseCity)},
			}},
		},
	}
}

// IsChooseCityButton reports whether text is the "Choose City" reply button in any locale
func (c *Composer) IsChooseCityButton(text string) bool {
	for _, tag := range c.catalog.Locales() {
		if text == c.catalog.For(tag).T(i18n.ButtonChooseCity) {
			return true
		}
	}
	return false
}

// PopularCities lists the configured cities as current-weather buttons, two per row
func (c *Composer) PopularCities(l i18n.Localizer) Message {
	return Message{
		Text:     l.T(i18n.ChooseCity),
		Keyboard: cityKeyboard(c.popularCities, 2),
	}
}

// NearbyCities lists cities around the user as current-weather buttons
func (c *Composer) NearbyCities(l i18n.Localizer, cities []string) Message {
	if len(cities) == 0 {
		return Message{Text: l.T(i18n.NearbyNone)}
	}
	return Message{
		Text:     l.T(i18n.NearbyCities),
		Keyboard: cityKeyboard(cities, 2),
	}
}

// Weather renders a current reading as an icon photo with caption and action buttons
func (c *Composer) Weather(l i18n.Localizer, w *weather.Weather) Message {
	caption := l.T(i18n.WeatherCaption,
		"city", html.EscapeString(w.City),
		"condition", html.EscapeString(w.Condition),
		"temperature", strconv.Itoa(w.RoundedTemperature()),
		"description", html.EscapeString(Capitalize(w.Description)))

	return Message{
		Text:     caption,
		PhotoURL: w.IconURL(c.iconTemplate),
		Keyboard: c.actionKeyboard(l, w.City, true),
	}
}

// DailyWeather is the scheduled notification for a subscriber
func (c *Composer) DailyWeather(l i18n.Localizer, w *weather.Weather) Message {
	m := c.Weather(l, w)
	m.Text = l.T(i18n.DailyHeader) + "\n\n" + m.Text
	m.Keyboard = c.actionKeyboard(l, w.City, false)
	return m
}

// Forecast renders the aggregated next-day forecast
func (c *Composer) Forecast(l i18n.Localizer, f *weather.Forecast) Message {
	caption := l.T(i18n.ForecastCaption,
		"city", html.EscapeString(f.City),
		"condition", html.EscapeString(f.Condition),
		"temperature", strconv.Itoa(f.RoundedTemperature()),
		"description", html.EscapeString(Capitalize(f.Description())))

	var keyboard *ports.Keyboard
	if data := SubscribeData(f.City); FitsCallback(data) {
		keyboard = &ports.Keyboard{
			Kind: ports.KeyboardInline,
			Rows: [][]ports.Button{{{Text: l.T(i18n.ButtonSubscribe), CallbackData: data}}},
		}
	}

	return Message{
		Text:     caption,
		PhotoURL: f.IconURL(c.iconTemplate),
		Keyboard: keyboard,
	}
}

// actionKeyboard offers subscribe and tomorrow buttons, or unsubscribe and
// tomorrow for messages sent to existing subscribers
func (c *Composer) actionKeyboard(l i18n.Localizer, city string, subscribe bool) *ports.Keyboard {
	var row []ports.Button
	if subscribe {
		if data := SubscribeData(city); FitsCallback(data) {
			row = append(row, ports.Button{Text: l.T(i18n.ButtonSubscribe), CallbackData: data})
		}
	} else {
		row = append(row, ports.Button{Text: l.T(i18n.ButtonUnsubscribe), CallbackData: UnsubscribeData()})
	}
	if data := ForecastData(city); FitsCallback(data) {
		row = append(row, ports.Button{Text: l.T(i18n.ButtonTomorrow), CallbackData: data})
	}
	if len(row) == 0 {
		return nil
	}
	return &ports.Keyboard{Kind: ports.KeyboardInline, Rows: [][]ports.Button{row}}
}

func cityKeyboard(cities []string, perRow int) *ports.Keyboard {
	keyboard := &ports.Keyboard{Kind: ports.KeyboardInline}
	var row []ports.Button
	for _, city := range cities {
		data := CurrentData(city)
		if !FitsCallback(data) {
			continue
		}
		row = append(row, ports.Button{Text: city, CallbackData: data})
		if len(row) == perRow {
			keyboard.Rows = append(keyboard.Rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		keyboard.Rows = append(keyboard.Rows, row)
	}
	return keyboard
}

// Capitalize upper-cases the first letter and lower-cases the rest
func Capitalize(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func escapeValues(pairs []string) []string {
	out := make([]string, len(pairs))
	for i, v := range pairs {
		if i%2 == 1 {
			v = html.EscapeString(v)
		}
		out[i] = v
	}
	return out
}

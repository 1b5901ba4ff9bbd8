// Package i18n loads reply texts from YAML locale bundles.
//
// Bundles for en and ru are embedded. A directory of <locale>.yaml files can
// override single keys or add locales. Placeholders use the {name} syntax.
package i18n

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	"weatherbot.app/pkg/errors"
)

// Key identifies a reply text
type Key string

const (
	Welcome             Key = "welcome"
	ButtonSendLocation  Key = "button_send_location"
	ButtonChooseCity    Key = "button_choose_city"
	ButtonSubscribe     Key = "button_subscribe"
	ButtonUnsubscribe   Key = "button_unsubscribe"
	ButtonTomorrow      Key = "button_tomorrow"
	ChooseCity          Key = "choose_city"
	LocationNear        Key = "location_near"
	LocationUnknown     Key = "location_unknown"
	NearbyCities        Key = "nearby_cities"
	NearbyNone          Key = "nearby_none"
	NearbyError         Key = "nearby_error"
	WeatherCaption      Key = "weather_caption"
	ForecastCaption     Key = "forecast_caption"
	DailyHeader         Key = "daily_header"
	CityNotFound        Key = "city_not_found"
	ForecastNotFound    Key = "forecast_not_found"
	TryLater            Key = "try_later"
	GenericError        Key = "generic_error"
	Subscribed          Key = "subscribed"
	SubscribeFailed     Key = "subscribe_failed"
	Unsubscribed        Key = "unsubscribed"
	UnsubscribeFailed   Key = "unsubscribe_failed"
	NoSubscription      Key = "no_subscription"
	CurrentSubscription Key = "current_subscription"
	SubscriptionNotice  Key = "subscription_notice"
	AdminOnly           Key = "admin_only"
	UsersCount          Key = "users_count"
	UnknownCommand      Key = "unknown_command"
)

var requiredKeys = []Key{
	Welcome, ButtonSendLocation, ButtonChooseCity, ButtonSubscribe, ButtonUnsubscribe,
	ButtonTomorrow, ChooseCity, LocationNear, LocationUnknown, NearbyCities, NearbyNone,
	NearbyError, WeatherCaption, ForecastCaption, DailyHeader, CityNotFound, ForecastNotFound,
	TryLater, GenericError, Subscribed, SubscribeFailed, Unsubscribed, UnsubscribeFailed,
	NoSubscription, CurrentSubscription, SubscriptionNotice, AdminOnly, UsersCount, UnknownCommand,
}

//go:embed locales/*.yaml
var embedded embed.FS

// Catalog holds every loaded locale
type Catalog struct {
	bundles  map[string]map[Key]string
	fallback string
}

// Load reads the embedded bundles and then merges overrideDir on top of them.
// An empty overrideDir uses the embedded bundles only. The fallback locale
// must define every key.
func Load(overrideDir, fallback string) (*Catalog, error) {
	c := &Catalog{
		bundles:  make(map[string]map[Key]string),
		fallback: normalizeTag(fallback),
	}

	entries, err := embedded.ReadDir("locales")
	if err != nil {
		return nil, errors.NewConfigurationError("read embedded locales", err)
	}
	for _, entry := range entries {
		raw, err := embedded.ReadFile("locales/" + entry.Name())
		if err != nil {
			return nil, errors.NewConfigurationError("read embedded locale "+entry.Name(), err)
		}
		if err := c.merge(localeFromFile(entry.Name()), raw); err != nil {
			return nil, err
		}
	}

	if overrideDir != "" {
		if err := c.loadDir(overrideDir); err != nil {
			return nil, err
		}
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustLoadDefaults returns the embedded catalog with en as fallback
func MustLoadDefaults() *Catalog {
	c, err := Load("", "en")
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) loadDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return errors.NewConfigurationError("scan locale directory", err)
	}
	if len(files) == 0 {
		return errors.NewConfigurationError(fmt.Sprintf("no *.yaml locale files in %s", dir), nil)
	}

	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return errors.NewConfigurationError("read locale file "+file, err)
		}
		if err := c.merge(localeFromFile(file), raw); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) merge(locale string, raw []byte) error {
	var messages map[string]string
	if err := yaml.Unmarshal(raw, &messages); err != nil {
		return errors.NewConfigurationError("parse locale "+locale, err)
	}

	bundle, ok := c.bundles[locale]
	if !ok {
		bundle = make(map[Key]string, len(messages))
		c.bundles[locale] = bundle
	}
	for k, v := range messages {
		bundle[Key(k)] = v
	}
	return nil
}

func (c *Catalog) validate() error {
	base, ok := c.bundles[c.fallback]
	if !ok {
		return errors.NewConfigurationError("DEFAULT_LOCALE "+c.fallback+" has no bundle", nil)
	}

	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(base[key]) == "" {
			missing = append(missing, string(key))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.NewConfigurationError(
			fmt.Sprintf("locale %s is missing keys: %s", c.fallback, strings.Join(missing, ", ")), nil)
	}
	return nil
}

// Locales lists the loaded locale tags
func (c *Catalog) Locales() []string {
	tags := make([]string, 0, len(c.bundles))
	for tag := range c.bundles {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// For returns a localizer for an IETF language tag such as "ru" or "pt-BR"
func (c *Catalog) For(languageCode string) Localizer {
	tag := normalizeTag(languageCode)
	if bundle, ok := c.bundles[tag]; ok {
		return Localizer{locale: tag, messages: bundle, fallback: c.bundles[c.fallback]}
	}
	if base, _, found := strings.Cut(tag, "-"); found {
		if bundle, ok := c.bundles[base]; ok {
			return Localizer{locale: base, messages: bundle, fallback: c.bundles[c.fallback]}
		}
	}
	return Localizer{locale: c.fallback, messages: c.bundles[c.fallback], fallback: c.bundles[c.fallback]}
}

// Localizer renders texts of one locale, falling back key by key
type Localizer struct {
	locale   string
	messages map[Key]string
	fallback map[Key]string
}

// Locale returns the resolved locale tag
func (l Localizer) Locale() string {
	return l.locale
}

// T renders key, replacing {name} placeholders from name/value pairs
func (l Localizer) T(key Key, pairs ...string) string {
	text, ok := l.messages[key]
	if !ok || text == "" {
		text, ok = l.fallback[key]
	}
	if !ok {
		return string(key)
	}
	if len(pairs) < 2 {
		return text
	}

	oldnew := make([]string, 0, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		oldnew = append(oldnew, "{"+pairs[i]+"}", pairs[i+1])
	}
	return strings.NewReplacer(oldnew...).Replace(text)
}

func localeFromFile(name string) string {
	return normalizeTag(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
}

func normalizeTag(tag string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(tag)), "_", "-")
}

package dispatcher

import (
	"strings"

	"weatherbot.app/internal/core/reply"
	"weatherbot.app/internal/core/user"
	"weatherbot.app/internal/ports"
)

// EventKind is the class of an inbound chat event
type EventKind int

const (
	EventUnknown EventKind = iota
	EventCommand
	EventText
	EventLocation
	EventCallback
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventText:
		return "text"
	case EventLocation:
		return "location"
	case EventCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Command names understood by the bot
const (
	CommandStart        = "start"
	CommandHelp         = "help"
	CommandUsersCount   = "users_count"
	CommandUnsubscribe  = "unsubscribe"
	CommandSubscription = "subscription"
)

// Event is one inbound message, location or button press
type Event struct {
	Kind   EventKind
	ChatID int64
	Sender user.Profile

	// EventCommand
	Command string
	Args    string

	// EventText
	Text string

	// EventLocation
	Location ports.Coordinates

	// EventCallback
	CallbackID string
	Payload    string
}

// ParseCommand splits "/name@bot args" into a lower-cased name and its arguments.
// It reports false when text is not a command.
func ParseCommand(text string) (name, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") || len(text) < 2 {
		return "", "", false
	}

	head, rest, _ := strings.Cut(text[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", "", false
	}
	return strings.ToLower(head), strings.TrimSpace(rest), true
}

// CallbackKind tags the intent of a button press
type CallbackKind int

const (
	CallbackInvalid CallbackKind = iota
	CallbackShowCurrent
	CallbackSubscribe
	CallbackUnsubscribe
	CallbackShowForecast
)

func (k CallbackKind) String() string {
	switch k {
	case CallbackShowCurrent:
		return "show_current"
	case CallbackSubscribe:
		return "subscribe"
	case CallbackUnsubscribe:
		return "unsubscribe"
	case CallbackShowForecast:
		return "show_forecast"
	default:
		return "invalid"
	}
}

// Callback is a parsed button payload
type Callback struct {
	Kind CallbackKind
	City string
}

// ParseCallback turns an opaque payload into a tagged intent. Prefixed
// payloads carry a city after the prefix; anything else is a bare city name.
func ParseCallback(payload string) Callback {
	switch {
	case strings.HasPrefix(payload, reply.PrefixSubscribe):
		return cityCallback(CallbackSubscribe, strings.TrimPrefix(payload, reply.PrefixSubscribe))
	case strings.HasPrefix(payload, reply.PrefixForecast):
		return cityCallback(CallbackShowForecast, strings.TrimPrefix(payload, reply.PrefixForecast))
	case strings.HasPrefix(payload, reply.PrefixUnsubscribe):
		return Callback{Kind: CallbackUnsubscribe}
	default:
		return cityCallback(CallbackShowCurrent, payload)
	}
}

func cityCallback(kind CallbackKind, city string) Callback {
	city = strings.TrimSpace(city)
	if city == "" {
		return Callback{Kind: CallbackInvalid}
	}
	return Callback{Kind: kind, City: city}
}

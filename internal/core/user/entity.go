package user

import "strings"

// Profile is the identity and display data carried by every chat event
type Profile struct {
	TelegramID   int64  `validate:"gt=0"`
	Username     string `validate:"max=64"`
	FirstName    string `validate:"max=256"`
	LastName     string `validate:"max=256"`
	LanguageCode string `validate:"max=35"`
	IsPremium    bool
}

// Normalize trims the text attributes
func (p *Profile) Normalize() {
	p.Username = strings.TrimSpace(p.Username)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.LanguageCode = strings.TrimSpace(p.LanguageCode)
}

// DisplayName returns the best human-readable name for greetings
func (p *Profile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name != "" {
		return name
	}
	if p.Username != "" {
		return "@" + p.Username
	}
	return ""
}

package subscription

import (
	"strings"
	"time"
)

// Subscription is the single city a user receives daily updates for
type Subscription struct {
	UserID    int64
	City      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscribeParams holds the input of a subscribe action
type SubscribeParams struct {
	UserID int64  `validate:"gt=0"`
	City   string `validate:"required,max=100"`
}

// Normalize trims the city; casing is kept as the user or provider wrote it
func (p *SubscribeParams) Normalize() {
	p.City = strings.TrimSpace(p.City)
}

package core

import (
	"regexp"
	"time"
)

// TriggerCooldown is the minimum interval between successful dispatches
// for one subscription.
const TriggerCooldown = 5 * time.Minute

// Circuit breaker: a subscription is deactivated once it accumulates
// BreakerFailureThreshold failed dispatches within BreakerWindow.
// Reactivation is manual.
const (
	BreakerFailureThreshold = 5
	BreakerWindow           = 24 * time.Hour
)

var endpointPattern = regexp.MustCompile(`^https://hooks\.slack\.com/services/[A-Za-z0-9/]+$`)

// Subscription routes new records matching its trigger key to a webhook
// endpoint. Active can be cleared automatically by the circuit breaker.
type Subscription struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	EndpointURL     string     `json:"endpoint_url"`
	Process         string     `json:"process"`
	Status          string     `json:"status"`
	Active          bool       `json:"active"`
	TestMode        bool       `json:"test_mode"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (s Subscription) TriggerKey() TriggerKey {
	return TriggerKey{Process: s.Process, Status: s.Status}
}

// CanTrigger reports whether the rate-limit window has elapsed.
func (s Subscription) CanTrigger(now time.Time) bool {
	if !s.Active {
		return false
	}
	if s.LastTriggeredAt == nil {
		return true
	}
	return now.Sub(*s.LastTriggeredAt) > TriggerCooldown
}

// ValidateEndpoint checks the endpoint host/path shape. Only enforced at
// subscription creation, never at dispatch time.
func ValidateEndpoint(url string) error {
	if url == "" {
		return NewAppError(ErrBadRequest, "endpoint_url is required")
	}
	if !endpointPattern.MatchString(url) {
		return NewAppError(ErrBadRequest, "endpoint_url must be a Slack webhook URL (https://hooks.slack.com/services/...)")
	}
	return nil
}

package jobs

import (
	"encoding/json"
	"time"
)

// WelcomeNotificationPayload is enqueued in the signup transaction and
// delivered by the worker. Keep it ID-based and minimal.
type WelcomeNotificationPayload struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	RequestedAt time.Time `json:"requestedAt"`
}

func (p WelcomeNotificationPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

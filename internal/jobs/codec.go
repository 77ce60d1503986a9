package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/danmelak/shopcart/internal/domain/job"
)

// DecodePayload unmarshals a claimed job's payload into its typed struct.
func DecodePayload(j job.Job) (any, error) {
	if !IsValidType(j.Type) {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch j.Type {
	case TypeWelcomeNotification:
		var p WelcomeNotificationPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		if p.UserID == "" || p.Email == "" {
			return nil, ErrInvalidJobPayload
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}

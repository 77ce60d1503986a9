package jobs_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/danmelak/shopcart/internal/domain/job"
	"github.com/danmelak/shopcart/internal/jobs"
)

func TestDecodePayloadWelcome(t *testing.T) {
	payload, err := jobs.WelcomeNotificationPayload{
		UserID:      "u1",
		Email:       "dan@example.com",
		Name:        "dan",
		RequestedAt: time.Now().UTC(),
	}.JSON()

	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	j := job.New(job.CreateRequest{
		Type:    jobs.TypeWelcomeNotification,
		Payload: payload,
	})

	decoded, err := jobs.DecodePayload(j)

	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	p, ok := decoded.(jobs.WelcomeNotificationPayload)

	if !ok {
		t.Fatalf("got %T, want WelcomeNotificationPayload", decoded)
	}
	if p.UserID != "u1" || p.Email != "dan@example.com" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	tests := []struct {
		name    string
		jobType string
		payload json.RawMessage
		wantErr error
	}{
		{
			name:    "unknown_type",
			jobType: "no.such.job",
			payload: json.RawMessage(`{}`),
			wantErr: jobs.ErrInvalidJobType,
		},
		{
			name:    "empty_payload",
			jobType: jobs.TypeWelcomeNotification,
			payload: nil,
			wantErr: jobs.ErrInvalidJobPayload,
		},
		{
			name:    "malformed_json",
			jobType: jobs.TypeWelcomeNotification,
			payload: json.RawMessage(`{not json`),
			wantErr: jobs.ErrInvalidJobPayload,
		},
		{
			name:    "missing_required_fields",
			jobType: jobs.TypeWelcomeNotification,
			payload: json.RawMessage(`{"name":"dan"}`),
			wantErr: jobs.ErrInvalidJobPayload,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			j := job.New(job.CreateRequest{Type: tt.jobType, Payload: tt.payload})

			_, err := jobs.DecodePayload(j)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidType(t *testing.T) {
	if !jobs.IsValidType(jobs.TypeWelcomeNotification) {
		t.Fatalf("welcome type should be valid")
	}
	if jobs.IsValidType("no.such.job") {
		t.Fatalf("unknown type should be invalid")
	}
}

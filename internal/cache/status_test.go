package cache

import (
	"testing"
	"time"
)

func TestSignupStatusKey(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		want      string
	}{
		{"ulid", "01HV3ZK8Y2M4N6P8R0T2V4X6Z8", "signup:status:01HV3ZK8Y2M4N6P8R0T2V4X6Z8"},
		{"empty", "", "signup:status:"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := signupStatusKey(test.requestID); got != test.want {
				t.Errorf("expected %q, got %q", test.want, got)
			}
		})
	}
}

func TestNewStatusStore_TTLFallback(t *testing.T) {
	store := NewStatusStore(nil, 0)
	if store.ttl != DefaultStatusTTL {
		t.Errorf("expected default TTL %v, got %v", DefaultStatusTTL, store.ttl)
	}

	store = NewStatusStore(nil, time.Minute)
	if store.ttl != time.Minute {
		t.Errorf("expected TTL 1m, got %v", store.ttl)
	}
}

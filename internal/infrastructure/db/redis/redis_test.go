package redis

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestKeyFormats(t *testing.T) {
	cases := map[string]string{
		sessionKey("s-1"):            "storefront:session:s-1",
		userSessionsKey("u-1"):       "storefront:user-sessions:u-1",
		idempotencyKey("u-1", "k-1"): "storefront:idempotency:u-1:k-1",
		AuthEventChannel:             "storefront:auth-events",
		lockKey("withdrawal:u-1"):    "storefront:lock:withdrawal:u-1",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}

func TestNewIdempotencyStore_DefaultTTL(t *testing.T) {
	s := NewIdempotencyStore(nil, 0)
	if s.ttl != idempotencyTTL {
		t.Fatalf("expected default ttl %s, got %s", idempotencyTTL, s.ttl)
	}
}

func TestNewLocker_DefaultTTL(t *testing.T) {
	l := NewLocker(nil, 0, zerolog.Nop())
	if l.ttl != lockTTL || l.wait != lockWait {
		t.Fatalf("unexpected defaults: ttl %s wait %s", l.ttl, l.wait)
	}
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clikenova/storefront/internal/core/ports"
)

// AuthEventChannel is the pub/sub channel credential changes are published on.
const AuthEventChannel = keyPrefix + "auth-events"

// AuthEventBus publishes and fans out credential state changes over Redis
// pub/sub, so that every replica revokes sessions of a signed-out user.
type AuthEventBus struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

// NewAuthEventBus creates an AuthEventBus on AuthEventChannel.
func NewAuthEventBus(client *redis.Client, log zerolog.Logger) *AuthEventBus {
	return &AuthEventBus{client: client, channel: AuthEventChannel, log: log}
}

// Publish sends ev to every subscriber.
func (b *AuthEventBus) Publish(ctx context.Context, ev ports.AuthEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode auth event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish auth event: %w", err)
	}
	return nil
}

// Subscribe waits for the subscription to be confirmed before returning, so
// that no event published afterwards is missed.
func (b *AuthEventBus) Subscribe(ctx context.Context) (ports.AuthSubscription, error) {
	ps := b.client.Subscribe(ctx, b.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe auth events: %w", err)
	}

	sub := &subscription{
		ps:     ps,
		events: make(chan ports.AuthEvent, 64),
		done:   make(chan struct{}),
		log:    b.log,
	}
	go sub.pump()
	return sub, nil
}

type subscription struct {
	ps     *redis.PubSub
	events chan ports.AuthEvent
	done   chan struct{}
	log    zerolog.Logger
	once   sync.Once
}

func (s *subscription) Events() <-chan ports.AuthEvent { return s.events }

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}

// pump decodes messages until the subscription is closed.
func (s *subscription) pump() {
	defer close(s.events)
	for msg := range s.ps.Channel() {
		var ev ports.AuthEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			s.log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed auth event")
			continue
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		}
	}
}

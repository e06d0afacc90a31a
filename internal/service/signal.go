package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/pubky-garden/pubky-playground"
)

// EventChannel is the redis pub/sub channel record events travel on.
const EventChannel = "pubky:events"

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, event pubky.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, EventChannel, jsonstr).Err()
	if err != nil {
		return err

	}

	return nil
}

// Realtime streams record events to a subscriber. The input channel
// carries URI prefix subscriptions; only events whose URI matches one of
// the current prefixes are forwarded. Returns when ctx is done or input
// closes.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- pubky.Event) {
	pubsub := s.rdb.Subscribe(ctx, EventChannel)
	defer pubsub.Close()

	messages := pubsub.Channel()
	var prefixes []string

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-input:
			if !ok {
				return
			}
			prefixes = update
		case message, ok := <-messages:
			if !ok {
				return
			}

			var event pubky.Event
			if err := json.Unmarshal([]byte(message.Payload), &event); err != nil {
				continue
			}

			if !matchesAny(event.URI, prefixes) {
				continue
			}

			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

func matchesAny(uri string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(uri, prefix) {
			return true
		}
	}
	return false
}
